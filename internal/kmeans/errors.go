package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidIterations is returned for a negative iteration budget.
	ErrInvalidIterations = errors.New("max iterations must not be negative")

	// ErrInvalidTolerance is returned for a negative or NaN tolerance.
	ErrInvalidTolerance = errors.New("tolerance must be a non-negative number")
)

// ErrNotEnoughData is returned when fewer points than centers are supplied.
type ErrNotEnoughData struct {
	Points  int
	Centers int
}

func (e *ErrNotEnoughData) Error() string {
	return fmt.Sprintf("not enough data to initialize desired number of centers. Provided frames (%d) < n_centers (%d).",
		e.Points, e.Centers)
}

// ErrDimensionMismatch indicates centers and points of different dimension.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidAssignment indicates a label outside [0, k).
type ErrInvalidAssignment struct {
	Index int
	Label int
	K     int
}

func (e *ErrInvalidAssignment) Error() string {
	return fmt.Sprintf("invalid assignment: point %d assigned to center %d, expected [0, %d)", e.Index, e.Label, e.K)
}

// ErrAssignmentLength indicates an assignment vector of the wrong length.
type ErrAssignmentLength struct {
	Expected int
	Actual   int
}

func (e *ErrAssignmentLength) Error() string {
	return fmt.Sprintf("assignment length mismatch: expected %d, got %d", e.Expected, e.Actual)
}
