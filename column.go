package depot

// column is one typed value buffer of a partition. Its length is the
// partition capacity; rows past the partition length hold zero values.
type column interface {
	capacity() int
	grow(capacity int)
	set(row int, v any) bool
	get(row int) any
	copyRow(dst int, src column, srcRow int) bool
	move(dst, src int)
	clear(row int)
}

var _ column = &typedColumn[int]{}

type typedColumn[T any] struct {
	data []T
}

func newTypedColumn[T any](capacity int) *typedColumn[T] {
	return &typedColumn[T]{data: make([]T, capacity)}
}

func (c *typedColumn[T]) capacity() int {
	return len(c.data)
}

// grow allocates a larger buffer, copies the live contents and drops the
// old one. It never extends in place.
func (c *typedColumn[T]) grow(capacity int) {
	if capacity <= len(c.data) {
		return
	}
	next := make([]T, capacity)
	copy(next, c.data)
	c.data = next
}

func (c *typedColumn[T]) set(row int, v any) bool {
	if v == nil {
		var zero T
		c.data[row] = zero
		return true
	}
	typed, ok := v.(T)
	if !ok {
		return false
	}
	c.data[row] = typed
	return true
}

func (c *typedColumn[T]) get(row int) any {
	return c.data[row]
}

func (c *typedColumn[T]) copyRow(dst int, src column, srcRow int) bool {
	other, ok := src.(*typedColumn[T])
	if !ok {
		return false
	}
	c.data[dst] = other.data[srcRow]
	return true
}

func (c *typedColumn[T]) move(dst, src int) {
	c.data[dst] = c.data[src]
}

func (c *typedColumn[T]) clear(row int) {
	var zero T
	c.data[row] = zero
}
