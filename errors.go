package clustr

import (
	"errors"
	"fmt"

	"github.com/hupe1980/clustr/dense"
	"github.com/hupe1980/clustr/distance"
	"github.com/hupe1980/clustr/internal/kmeans"
	"github.com/hupe1980/clustr/internal/resource"
)

var (
	// ErrInvalidArgument is matched by every input validation error.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = fmt.Errorf("%w: k must be positive", ErrInvalidArgument)

	// ErrNotTwoDimensional is returned when a shape does not describe a
	// points × features matrix.
	ErrNotTwoDimensional = dense.ErrNotTwoDimensional

	// ErrMemoryLimitExceeded is returned when a kernel buffer does not fit
	// into the configured memory budget.
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

	// ErrClosed is returned by operations on a closed Clusterer.
	ErrClosed = errors.New("clusterer is closed")

	// ErrNotFitted is returned by Estimator methods that need fitted centers.
	ErrNotFitted = errors.New("estimator is not fitted")
)

// ErrNotEnoughData indicates fewer points than requested centers.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrNotEnoughData struct {
	Points  int
	Centers int
	cause   error
}

func (e *ErrNotEnoughData) Error() string {
	return fmt.Sprintf("not enough data to initialize desired number of centers. Provided frames (%d) < n_centers (%d).",
		e.Points, e.Centers)
}

func (e *ErrNotEnoughData) Unwrap() error { return e.cause }

// Is reports ErrInvalidArgument.
func (e *ErrNotEnoughData) Is(target error) bool { return target == ErrInvalidArgument }

// ErrDimensionMismatch indicates points and centers of different dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// Is reports ErrInvalidArgument.
func (e *ErrDimensionMismatch) Is(target error) bool { return target == ErrInvalidArgument }

// ErrInvalidAssignment indicates a label vector that does not fit the data
// and centers. Index is -1 when the vector has the wrong length.
type ErrInvalidAssignment struct {
	Index int
	Label int
	K     int
	cause error
}

func (e *ErrInvalidAssignment) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("invalid assignment: %v", e.cause)
	}
	return fmt.Sprintf("invalid assignment: point %d assigned to center %d, expected [0, %d)", e.Index, e.Label, e.K)
}

func (e *ErrInvalidAssignment) Unwrap() error { return e.cause }

// Is reports ErrInvalidArgument.
func (e *ErrInvalidAssignment) Is(target error) bool { return target == ErrInvalidArgument }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var ne *kmeans.ErrNotEnoughData
	if errors.As(err, &ne) {
		return &ErrNotEnoughData{Points: ne.Points, Centers: ne.Centers, cause: err}
	}
	var dm *kmeans.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	var ia *kmeans.ErrInvalidAssignment
	if errors.As(err, &ia) {
		return &ErrInvalidAssignment{Index: ia.Index, Label: ia.Label, K: ia.K, cause: err}
	}
	var al *kmeans.ErrAssignmentLength
	if errors.As(err, &al) {
		return &ErrInvalidAssignment{Index: -1, Label: -1, cause: err}
	}
	if errors.Is(err, kmeans.ErrInvalidK) {
		return ErrInvalidK
	}

	// Argument normalization.
	var um *distance.ErrUnknownMetric
	if errors.As(err, &um) ||
		errors.Is(err, kmeans.ErrInvalidIterations) ||
		errors.Is(err, kmeans.ErrInvalidTolerance) ||
		errors.Is(err, dense.ErrNotTwoDimensional) ||
		errors.Is(err, dense.ErrShape) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
