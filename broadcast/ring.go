package broadcast

// Ring is a fixed-size FIFO queue with overwrite-on-full semantics.
type Ring[T any] struct {
	buf  []T
	head int
	size int
}

// NewRing creates a ring with the given capacity.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("capacity must be > 0")
	}
	return &Ring[T]{buf: make([]T, 0, capacity)}
}

func (r *Ring[T]) Len() int {
	return r.size
}

// Push appends x; if full, it evicts the oldest element.
func (r *Ring[T]) Push(x T) {
	if r.size < cap(r.buf) {
		r.buf = append(r.buf, x)
		r.size++
		return
	}

	r.buf[r.head] = x
	r.head++
	if r.head == cap(r.buf) {
		r.head = 0
	}
}

// Slice copies the contents oldest first.
func (r *Ring[T]) Slice() []T {
	out := make([]T, 0, r.size)
	if r.size < cap(r.buf) {
		return append(out, r.buf[:r.size]...)
	}
	out = append(out, r.buf[r.head:]...)
	return append(out, r.buf[:r.head]...)
}

func (r *Ring[T]) Reset() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.buf = r.buf[:0]
	r.head = 0
	r.size = 0
}
