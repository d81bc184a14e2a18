package model

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"time"

	"github.com/hupe1980/clustr/codec"
	"github.com/hupe1980/clustr/dense"
)

const (
	// Magic identifies a model file.
	Magic = "CLSM"
	// FormatVersion is the current file format version.
	FormatVersion uint16 = 1

	dtypeFloat32 uint8 = 4
	dtypeFloat64 uint8 = 8
)

var (
	// ErrBadMagic is returned when the input is not a model file.
	ErrBadMagic = errors.New("model: bad magic")
	// ErrUnsupportedVersion is returned for files written by a newer format.
	ErrUnsupportedVersion = errors.New("model: unsupported format version")
	// ErrChecksum is returned when the centers fail the CRC32 check.
	ErrChecksum = errors.New("model: checksum mismatch")
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

type header struct {
	Metric         string    `json:"metric"`
	Box            []float64 `json:"box,omitempty"`
	K              int       `json:"k"`
	Dim            int       `json:"dim"`
	Iterations     int       `json:"iterations"`
	Converged      bool      `json:"converged"`
	InitialCost    float64   `json:"initial_cost"`
	CostTrajectory []float64 `json:"cost_trajectory"`
	Seed           int64     `json:"seed"`
	CreatedAt      time.Time `json:"created_at"`
}

func dtypeOf[T dense.Float]() uint8 {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return dtypeFloat32
	}
	return dtypeFloat64
}

// Encode writes m to w.
func Encode[T dense.Float](w io.Writer, m *Model[T], c Compression) error {
	return EncodeWith(w, m, c, codec.Default)
}

// EncodeWith writes m to w using cd for the header.
func EncodeWith[T dense.Float](w io.Writer, m *Model[T], c Compression, cd codec.Codec) error {
	if err := m.Centers.Validate(); err != nil {
		return err
	}

	hdr, err := cd.Marshal(header{
		Metric:         m.Metric,
		Box:            m.Box,
		K:              m.K(),
		Dim:            m.Dim(),
		Iterations:     m.Iterations,
		Converged:      m.Converged,
		InitialCost:    m.InitialCost,
		CostTrajectory: m.CostTrajectory,
		Seed:           m.Seed,
		CreatedAt:      m.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("model header: %w", err)
	}

	dtype := dtypeOf[T]()
	raw := make([]byte, 0, len(m.Centers.Data())*int(dtype))
	for _, v := range m.Centers.Data() {
		if dtype == dtypeFloat32 {
			raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(float32(v)))
		} else {
			raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(float64(v)))
		}
	}
	block, err := compressBlock(raw, c)
	if err != nil {
		return err
	}

	name := cd.Name()
	var buf bytes.Buffer
	buf.WriteString(Magic)
	_ = binary.Write(&buf, binary.LittleEndian, FormatVersion)
	buf.WriteByte(dtype)
	buf.WriteByte(byte(c))
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(hdr)))
	buf.Write(hdr)
	buf.Write(block)
	_ = binary.Write(&buf, binary.LittleEndian, crc32.Checksum(raw, crcTable))

	_, err = w.Write(buf.Bytes())
	return err
}

// Decode reads a model from r. Centers stored with a different precision
// are converted to T.
func Decode[T dense.Float](r io.Reader) (*Model[T], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeBytes[T](data)
}

func decodeBytes[T dense.Float](data []byte) (*Model[T], error) {
	const preamble = 4 + 2 + 1 + 1 + 1
	if len(data) < preamble || string(data[:4]) != Magic {
		return nil, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(data[4:]); v > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	dtype := data[6]
	if dtype != dtypeFloat32 && dtype != dtypeFloat64 {
		return nil, fmt.Errorf("model: unknown dtype %d", dtype)
	}
	comp := Compression(data[7])
	nameLen := int(data[8])
	off := preamble

	if len(data) < off+nameLen+4 {
		return nil, io.ErrUnexpectedEOF
	}
	cd, ok := codec.ByName(string(data[off : off+nameLen]))
	if !ok {
		return nil, fmt.Errorf("model: unknown header codec %q", data[off:off+nameLen])
	}
	off += nameLen

	hdrLen := int(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if len(data) < off+hdrLen {
		return nil, io.ErrUnexpectedEOF
	}
	var hdr header
	if err := cd.Unmarshal(data[off:off+hdrLen], &hdr); err != nil {
		return nil, fmt.Errorf("model header: %w", err)
	}
	off += hdrLen

	raw, n, err := decompressBlock(data[off:], comp)
	if err != nil {
		return nil, err
	}
	off += n
	if len(data) < off+4 {
		return nil, io.ErrUnexpectedEOF
	}
	if crc32.Checksum(raw, crcTable) != binary.LittleEndian.Uint32(data[off:]) {
		return nil, ErrChecksum
	}
	if len(raw) != hdr.K*hdr.Dim*int(dtype) {
		return nil, fmt.Errorf("model: %d payload bytes for %d × %d centers", len(raw), hdr.K, hdr.Dim)
	}

	values := make([]T, hdr.K*hdr.Dim)
	for i := range values {
		if dtype == dtypeFloat32 {
			values[i] = T(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		} else {
			values[i] = T(math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:])))
		}
	}
	centers, err := dense.NewMatrix(values, hdr.K, hdr.Dim)
	if err != nil {
		return nil, err
	}

	return &Model[T]{
		Metric:         hdr.Metric,
		Box:            hdr.Box,
		Centers:        centers,
		Iterations:     hdr.Iterations,
		Converged:      hdr.Converged,
		InitialCost:    hdr.InitialCost,
		CostTrajectory: hdr.CostTrajectory,
		Seed:           hdr.Seed,
		CreatedAt:      hdr.CreatedAt,
	}, nil
}
