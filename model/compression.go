package model

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload compression of a model file.
type Compression uint8

const (
	// CompressionNone stores the centers as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the stable name of c.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

const blockHeaderSize = 8

var errBlockTruncated = errors.New("model: compressed block truncated")

// compressBlock returns [uncompressed u32][compressed u32][data].
// A compressed size of 0 marks data stored uncompressed, which is also
// used when compression saves less than 10%.
func compressBlock(data []byte, c Compression) ([]byte, error) {
	var compressed []byte

	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("model: unsupported compression %s", c)
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		compressed = nil
	}

	payload := data
	if compressed != nil {
		payload = compressed
	}
	out := make([]byte, blockHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(compressed)))
	copy(out[blockHeaderSize:], payload)
	return out, nil
}

// decompressBlock reverses compressBlock. It returns the decoded data and
// the number of bytes consumed from block.
func decompressBlock(block []byte, c Compression) ([]byte, int, error) {
	if len(block) < blockHeaderSize {
		return nil, 0, errBlockTruncated
	}
	rawSize := int(binary.LittleEndian.Uint32(block[0:]))
	compressedSize := int(binary.LittleEndian.Uint32(block[4:]))

	if compressedSize == 0 {
		if len(block) < blockHeaderSize+rawSize {
			return nil, 0, errBlockTruncated
		}
		return block[blockHeaderSize : blockHeaderSize+rawSize], blockHeaderSize + rawSize, nil
	}

	if len(block) < blockHeaderSize+compressedSize {
		return nil, 0, errBlockTruncated
	}
	src := block[blockHeaderSize : blockHeaderSize+compressedSize]
	out := make([]byte, rawSize)

	switch c {
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(src, out)
		if err != nil {
			return nil, 0, err
		}
		if n != rawSize {
			return nil, 0, errors.New("model: decompressed size mismatch")
		}
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(src, out[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, 0, err
		}
		if len(decoded) != rawSize {
			return nil, 0, errors.New("model: decompressed size mismatch")
		}
		out = decoded
	default:
		return nil, 0, fmt.Errorf("model: unsupported compression %s", c)
	}
	return out, blockHeaderSize + compressedSize, nil
}
