package sim

const (
	// initialBufferCapacity is the starting length of every recorder buffer.
	initialBufferCapacity = 1024
	// maxBufferCapacity is the hard ceiling; growing past it is fatal.
	maxBufferCapacity = 32768
)

// growBuffer is a zero-filled array that doubles its length on demand up to a
// hard ceiling. Indexes past the current length read as the zero value.
type growBuffer[T any] struct {
	name  string
	data  []T
	limit int
	n     int // next append position
}

func newGrowBuffer[T any](name string, initial, limit int) *growBuffer[T] {
	return &growBuffer[T]{
		name:  name,
		data:  make([]T, initial),
		limit: limit,
	}
}

// ensure grows the buffer by doubling until index fits.
func (b *growBuffer[T]) ensure(index int) error {
	if index < len(b.data) {
		return nil
	}
	size := len(b.data)
	for size <= index {
		size *= 2
		if size > b.limit {
			return &CapacityError{Buffer: b.name, Index: index, Limit: b.limit}
		}
	}
	grown := make([]T, size)
	copy(grown, b.data)
	b.data = grown
	return nil
}

// slot returns a pointer to element index, growing the buffer if needed.
func (b *growBuffer[T]) slot(index int) (*T, error) {
	if err := b.ensure(index); err != nil {
		return nil, err
	}
	if index >= b.n {
		b.n = index + 1
	}
	return &b.data[index], nil
}

// at returns element index, or the zero value when it was never written.
func (b *growBuffer[T]) at(index int) T {
	var zero T
	if index < 0 || index >= len(b.data) {
		return zero
	}
	return b.data[index]
}

// append writes v at the next free position.
func (b *growBuffer[T]) append(v T) error {
	p, err := b.slot(b.n)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// values returns a copy of the written prefix.
func (b *growBuffer[T]) values() []T {
	return append([]T(nil), b.data[:b.n]...)
}

// prefix returns a copy of the first n elements, zero-filled past the length.
func (b *growBuffer[T]) prefix(n int) []T {
	out := make([]T, n)
	copy(out, b.data)
	return out
}
