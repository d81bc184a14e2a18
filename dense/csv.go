package dense

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadCSV parses comma-separated rows of numbers into a matrix.
// Blank lines and lines starting with '#' are skipped. Every row must have
// the same number of fields.
func ReadCSV[T Float](r io.Reader) (Matrix[T], error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	bits := bitSize[T]()

	var (
		data []T
		cols = -1
		rows int
	)

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) {
				return Matrix[T]{}, fmt.Errorf("%w: line %d: %v", ErrShape, pe.Line, pe.Err)
			}
			return Matrix[T]{}, err
		}
		if cols < 0 {
			cols = len(rec)
		}
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), bits)
			if err != nil {
				return Matrix[T]{}, fmt.Errorf("row %d column %d: %w", rows, i, err)
			}
			data = append(data, T(v))
		}
		rows++
	}

	if rows == 0 {
		return Matrix[T]{}, nil
	}
	return NewMatrix(data, rows, cols)
}

// WriteCSV writes the matrix as comma-separated rows.
func WriteCSV[T Float](w io.Writer, m Matrix[T]) error {
	cw := csv.NewWriter(w)
	bits := bitSize[T]()
	rec := make([]string, m.cols)
	for i := 0; i < m.rows; i++ {
		for j, v := range m.Row(i) {
			rec[j] = strconv.FormatFloat(float64(v), 'g', -1, bits)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func bitSize[T Float]() int {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return 32
	}
	return 64
}
