package utils

// -----------------------------------------------------------------------------
// RingBuffer keeps the last capacity values appended to it. It never grows.
// It is not safe for concurrent use.
// -----------------------------------------------------------------------------

type RingBuffer[T any] struct {
	data  []T
	index int // next write position
	size  int
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a buffer with a fixed capacity (at least 1).
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{data: make([]T, capacity)}
}

// -----------------------------------------------------------------------------

// Append stores v, overwriting the oldest value when full.
func (rb *RingBuffer[T]) Append(v T) {
	rb.data[rb.index] = v
	rb.index = (rb.index + 1) % len(rb.data)
	if rb.size < len(rb.data) {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// Latest returns up to n of the newest values, oldest first.
func (rb *RingBuffer[T]) Latest(n int) []T {
	if n <= 0 || rb.size == 0 {
		return nil
	}
	n = min(n, rb.size)

	out := make([]T, n)
	start := (rb.index - n + len(rb.data)) % len(rb.data)
	for i := range out {
		out[i] = rb.data[(start+i)%len(rb.data)]
	}
	return out
}

// -----------------------------------------------------------------------------

// All returns every stored value, oldest first.
func (rb *RingBuffer[T]) All() []T {
	return rb.Latest(rb.size)
}

func (rb *RingBuffer[T]) Len() int { return rb.size }

func (rb *RingBuffer[T]) Cap() int { return len(rb.data) }
