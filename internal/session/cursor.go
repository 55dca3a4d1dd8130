package session

// Cursor is a zero-based selection over a ranked candidate list.
//
// Cursor is a value type: every method that changes the selection or a
// candidate returns a new Cursor and leaves the receiver untouched, so older
// session states keep seeing the candidates they were built with.
type Cursor[T any] struct {
	items []T
	index int
}

// NewCursor selects the first item of items.
func NewCursor[T any](items []T) Cursor[T] {
	return Cursor[T]{items: items}
}

// Len returns the number of candidates.
func (c Cursor[T]) Len() int {
	return len(c.items)
}

// Index returns the selected position. It is 0 for an empty cursor.
func (c Cursor[T]) Index() int {
	return c.index
}

// Items returns the candidates in rank order. Callers must not modify the
// returned slice.
func (c Cursor[T]) Items() []T {
	return c.items
}

// Current returns the selected candidate, or false when the cursor is empty.
func (c Cursor[T]) Current() (T, bool) {
	if len(c.items) == 0 {
		var zero T
		return zero, false
	}
	return c.items[c.index], true
}

// Previous moves the selection one step up the ranking, stopping at the first
// item.
func (c Cursor[T]) Previous() Cursor[T] {
	if c.index > 0 {
		c.index--
	}
	return c
}

// Next moves the selection one step down the ranking, stopping at the last
// item.
func (c Cursor[T]) Next() Cursor[T] {
	if c.index < len(c.items)-1 {
		c.index++
	}
	return c
}

// Select moves the selection to index i. It reports false when i is out of
// range, leaving the cursor as it was.
func (c Cursor[T]) Select(i int) (Cursor[T], bool) {
	if i < 0 || i >= len(c.items) {
		return c, false
	}
	c.index = i
	return c, true
}

// Update replaces the selected candidate with fn applied to it. The ranking is
// not recomputed. An empty cursor is returned unchanged.
func (c Cursor[T]) Update(fn func(T) T) Cursor[T] {
	if len(c.items) == 0 {
		return c
	}
	items := make([]T, len(c.items))
	copy(items, c.items)
	items[c.index] = fn(items[c.index])
	c.items = items
	return c
}
