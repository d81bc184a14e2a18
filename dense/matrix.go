package dense

import (
	"errors"
	"fmt"
	"slices"
)

// Float is the set of element types supported by the clustering kernels.
type Float interface {
	float32 | float64
}

var (
	// ErrNotTwoDimensional is returned when a shape does not describe a
	// points × features matrix.
	ErrNotTwoDimensional = errors.New("input data does not have two dimensions")

	// ErrShape is returned when the backing slice does not match the shape.
	ErrShape = errors.New("data length does not match shape")
)

// Matrix is a dense, row-major rows × cols matrix.
type Matrix[T Float] struct {
	rows int
	cols int
	data []T
}

// NewMatrix wraps data as a matrix with the given shape.
// The shape must have exactly two entries (points, features).
func NewMatrix[T Float](data []T, shape ...int) (Matrix[T], error) {
	if len(shape) != 2 {
		return Matrix[T]{}, fmt.Errorf("%w: got %d-dimensional shape %v", ErrNotTwoDimensional, len(shape), shape)
	}
	rows, cols := shape[0], shape[1]
	if rows < 0 || cols < 0 {
		return Matrix[T]{}, fmt.Errorf("%w: negative shape %v", ErrShape, shape)
	}
	if rows*cols != len(data) {
		return Matrix[T]{}, fmt.Errorf("%w: %d×%d needs %d values, got %d", ErrShape, rows, cols, rows*cols, len(data))
	}
	return Matrix[T]{rows: rows, cols: cols, data: data}, nil
}

// MustMatrix is like NewMatrix but panics on error. Intended for tests and
// literals.
func MustMatrix[T Float](data []T, rows, cols int) Matrix[T] {
	m, err := NewMatrix(data, rows, cols)
	if err != nil {
		panic(err)
	}
	return m
}

// Zeros allocates a zero-filled rows × cols matrix.
func Zeros[T Float](rows, cols int) Matrix[T] {
	return Matrix[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}
}

// FromRows copies a slice of equally sized rows into a new matrix.
func FromRows[T Float](rows [][]T) (Matrix[T], error) {
	if len(rows) == 0 {
		return Matrix[T]{}, nil
	}
	cols := len(rows[0])
	data := make([]T, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			return Matrix[T]{}, fmt.Errorf("%w: row %d has %d values, expected %d", ErrShape, i, len(r), cols)
		}
		data = append(data, r...)
	}
	return Matrix[T]{rows: len(rows), cols: cols, data: data}, nil
}

// Rows returns the number of rows (points).
func (m Matrix[T]) Rows() int { return m.rows }

// Cols returns the number of columns (features).
func (m Matrix[T]) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m Matrix[T]) Shape() (int, int) { return m.rows, m.cols }

// Data returns the backing row-major slice.
func (m Matrix[T]) Data() []T { return m.data }

// Row returns row i as a sub-slice of the backing array.
func (m Matrix[T]) Row(i int) []T {
	return m.data[i*m.cols : (i+1)*m.cols : (i+1)*m.cols]
}

// RowRange returns rows [lo, hi) as a matrix view sharing storage.
func (m Matrix[T]) RowRange(lo, hi int) Matrix[T] {
	return Matrix[T]{rows: hi - lo, cols: m.cols, data: m.data[lo*m.cols : hi*m.cols]}
}

// SetRow copies src into row i.
func (m Matrix[T]) SetRow(i int, src []T) {
	copy(m.data[i*m.cols:(i+1)*m.cols], src)
}

// Empty reports whether the matrix has no rows.
func (m Matrix[T]) Empty() bool { return m.rows == 0 }

// Clone returns a deep copy.
func (m Matrix[T]) Clone() Matrix[T] {
	return Matrix[T]{rows: m.rows, cols: m.cols, data: slices.Clone(m.data)}
}

// ToRows copies the matrix into a slice of rows.
func (m Matrix[T]) ToRows() [][]T {
	out := make([][]T, m.rows)
	for i := range out {
		out[i] = slices.Clone(m.Row(i))
	}
	return out
}

// Validate checks that the matrix is internally consistent and has at least
// one feature column.
func (m Matrix[T]) Validate() error {
	if m.rows < 0 || m.cols < 0 || m.rows*m.cols != len(m.data) {
		return fmt.Errorf("%w: %d×%d with %d values", ErrShape, m.rows, m.cols, len(m.data))
	}
	if m.rows > 0 && m.cols == 0 {
		return fmt.Errorf("%w: rows have no features", ErrNotTwoDimensional)
	}
	return nil
}

// Equal reports whether both matrices have the same shape and values.
func (m Matrix[T]) Equal(o Matrix[T]) bool {
	return m.rows == o.rows && m.cols == o.cols && slices.Equal(m.data, o.data)
}

func (m Matrix[T]) String() string {
	return fmt.Sprintf("Matrix(%d×%d)", m.rows, m.cols)
}
