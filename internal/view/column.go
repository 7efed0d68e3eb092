package view

import "github.com/polykv/polykv-go/internal/status"

// Column is a lazily-indexed, broadcastable sequence of length Count.
type Column[T any] struct {
	values []T
	count  int
}

// NewColumn builds a Column of the given task count from values.
//
//   - an empty values slice means "not supplied"; At returns the zero
//     value of T for every index (the caller's documented default).
//   - a single-element slice broadcasts that element to every index,
//     exactly like a zero-stride input column.
//   - a slice of length count is used element-by-element.
//
// Any other length is a caller error (mismatched strided column length).
func NewColumn[T any](values []T, count int) (Column[T], *status.Status) {
	switch len(values) {
	case 0, 1:
		return Column[T]{values: values, count: count}, nil
	default:
		if len(values) != count {
			return Column[T]{}, status.Newf(status.InvalidArgument,
				"strided column has length %d, want 1 (broadcast) or %d (tasks_count)", len(values), count)
		}
		return Column[T]{values: values, count: count}, nil
	}
}

// Broadcast builds a Column that returns v for every index.
func Broadcast[T any](v T, count int) Column[T] {
	return Column[T]{values: []T{v}, count: count}
}

// Len returns the task count this column was built against.
func (c Column[T]) Len() int { return c.count }

// IsEmpty reports whether the column was constructed with no values, i.e.
// the caller omitted the input column entirely.
func (c Column[T]) IsEmpty() bool { return len(c.values) == 0 }

// At returns the logical value at task index i, applying broadcast rules.
func (c Column[T]) At(i int) T {
	switch len(c.values) {
	case 0:
		var zero T
		return zero
	case 1:
		return c.values[0]
	default:
		return c.values[i]
	}
}
