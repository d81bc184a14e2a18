// Package dense provides the row-major matrix container used to pass point
// sets and center sets across the clustr API boundary.
//
// A Matrix never copies its backing slice on construction; callers that
// share a slice with a Matrix must not mutate it while a clustering call
// is running.
package dense
