// Package ring provides a fixed-capacity FIFO buffer backed by a single slice.
//
// Buffer is not safe for concurrent use. It is meant to be embedded in a
// structure that serializes access with its own lock.
package ring

// Buffer is a bounded FIFO of T stored in a preallocated slice.
// Elements are addressed by index; head and length wrap modulo capacity.
type Buffer[T any] struct {
	items []T
	head  int
	n     int
}

// New returns an empty Buffer holding at most capacity elements.
// It panics if capacity is not positive.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		panic("ring: capacity must be positive")
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Len returns the number of buffered elements.
func (b *Buffer[T]) Len() int { return b.n }

// Cap returns the fixed capacity.
func (b *Buffer[T]) Cap() int { return len(b.items) }

// Full reports whether Len equals Cap.
func (b *Buffer[T]) Full() bool { return b.n == len(b.items) }

// Empty reports whether the buffer holds no elements.
func (b *Buffer[T]) Empty() bool { return b.n == 0 }

// Push appends v at the tail. It returns false without modifying the buffer when full.
func (b *Buffer[T]) Push(v T) bool {
	if b.Full() {
		return false
	}
	b.items[(b.head+b.n)%len(b.items)] = v
	b.n++
	return true
}

// Pop removes and returns the head element. ok is false when the buffer is empty.
func (b *Buffer[T]) Pop() (v T, ok bool) {
	if b.n == 0 {
		return v, false
	}
	v = b.items[b.head]
	// release references held by the slot
	var zero T
	b.items[b.head] = zero
	b.head = (b.head + 1) % len(b.items)
	b.n--
	return v, true
}
