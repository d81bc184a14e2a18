package s3

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/clustr/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDDBClient is an in-memory DynamoDB mock for testing.
type mockDDBClient struct {
	mu    sync.RWMutex
	items map[string]map[string]types.AttributeValue // key -> item
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{
		items: make(map[string]map[string]types.AttributeValue),
	}
}

func itemID(key map[string]types.AttributeValue) string {
	return key["base_uri"].(*types.AttributeValueMemberS).Value + ":" +
		key["version"].(*types.AttributeValueMemberN).Value
}

func (m *mockDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := itemID(params.Item)

	// Check conditional expression
	if aws.ToString(params.ConditionExpression) == "attribute_not_exists(version)" {
		if _, exists := m.items[key]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	baseURI := params.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value

	var items []map[string]types.AttributeValue
	for _, item := range m.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == baseURI {
			items = append(items, item)
		}
	}

	version := func(item map[string]types.AttributeValue) uint64 {
		v, _ := strconv.ParseUint(item["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	descending := params.ScanIndexForward != nil && !*params.ScanIndexForward
	sort.Slice(items, func(i, j int) bool {
		if descending {
			return version(items[i]) > version(items[j])
		}
		return version(items[i]) < version(items[j])
	})

	if params.Limit != nil && int(*params.Limit) < len(items) {
		items = items[:*params.Limit]
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

func (m *mockDDBClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if item, ok := m.items[itemID(params.Key)]; ok {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDDBClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, itemID(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDDBCommitter_FirstCommit(t *testing.T) {
	ctx := context.Background()
	c := NewDDBCommitter(newMockDDBClient(), "clustr-commits", "s3://test-bucket/test/")

	version, _, err := c.Latest(ctx)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, c.Commit(ctx, 1, "model-00001.clm"))

	version, name, err := c.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, "model-00001.clm", name)
}

func TestDDBCommitter_MultipleCommits(t *testing.T) {
	ctx := context.Background()
	c := NewDDBCommitter(newMockDDBClient(), "clustr-commits", "s3://test-bucket/test/")

	// Crosses a digit boundary so numeric ordering matters.
	for i := uint64(1); i <= 12; i++ {
		require.NoError(t, c.Commit(ctx, i, "model-"+strconv.FormatUint(i, 10)))
	}

	version, name, err := c.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), version)
	assert.Equal(t, "model-12", name)

	name, err = c.Lookup(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "model-3", name)
}

func TestDDBCommitter_ConflictingVersion(t *testing.T) {
	ctx := context.Background()
	c := NewDDBCommitter(newMockDDBClient(), "clustr-commits", "s3://test-bucket/test/")

	require.NoError(t, c.Commit(ctx, 1, "a"))
	err := c.Commit(ctx, 1, "b")
	assert.ErrorIs(t, err, blobstore.ErrConcurrentModification)
}

func TestDDBCommitter_ConcurrentCommits(t *testing.T) {
	ctx := context.Background()
	c := NewDDBCommitter(newMockDDBClient(), "clustr-commits", "s3://test-bucket/test/")

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, conflicts := 0, 0

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := c.Commit(ctx, 2, "writer-"+strconv.Itoa(id))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, blobstore.ErrConcurrentModification):
				conflicts++
			case err == nil:
				successes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 1, successes)
	assert.Equal(t, 4, conflicts)
}

func TestDDBCommitter_LookupAndForget(t *testing.T) {
	ctx := context.Background()
	c := NewDDBCommitter(newMockDDBClient(), "clustr-commits", "s3://test-bucket/test/")

	_, err := c.Lookup(ctx, 1)
	require.ErrorIs(t, err, blobstore.ErrNotFound)

	require.NoError(t, c.Commit(ctx, 1, "a"))
	require.NoError(t, c.Commit(ctx, 2, "b"))
	require.NoError(t, c.Forget(ctx, 2))

	version, name, err := c.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, "a", name)
}

func TestDDBCommitter_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newMockDDBClient()

	c1 := NewDDBCommitter(ddb, "clustr-commits", "s3://bucket-a/path/")
	c2 := NewDDBCommitter(ddb, "clustr-commits", "s3://bucket-b/path/")

	require.NoError(t, c1.Commit(ctx, 1, "model-a"))
	require.NoError(t, c2.Commit(ctx, 1, "model-b"))

	_, name, err := c1.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "model-a", name)

	_, name, err = c2.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "model-b", name)
}
