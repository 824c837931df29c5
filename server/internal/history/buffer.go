package history

import "sync"

// DefaultCapacity is the number of readings kept when no capacity is given.
const DefaultCapacity = 20

// Buffer is a bounded FIFO. Adding to a full buffer drops the oldest item.
// All methods are safe for concurrent use.
type Buffer[T any] struct {
	mu    sync.Mutex
	items []T
	cap   int
}

// New returns an empty Buffer holding at most capacity items.
// A capacity <= 0 uses DefaultCapacity.
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer[T]{items: make([]T, 0, capacity), cap: capacity}
}

// Add appends v, evicting the oldest item when the buffer is full.
func (b *Buffer[T]) Add(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) == b.cap {
		copy(b.items, b.items[1:])
		b.items = b.items[:b.cap-1]
	}
	b.items = append(b.items, v)
}

// Items returns a copy of the buffered items, oldest first.
func (b *Buffer[T]) Items() []T {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

// Reset drops every buffered item.
func (b *Buffer[T]) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = b.items[:0]
}
