package uistate

import "sync"

// Cell is a published value with change subscribers.
type Cell[T any] struct {
	mu    sync.Mutex
	value T
	equal func(a, b T) bool
	subs  map[int]func(T)
	next  int
}

// NewCell returns a cell that compares values with ==.
func NewCell[T comparable](initial T) *Cell[T] {
	return NewCellFunc(initial, func(a, b T) bool { return a == b })
}

// NewCellFunc returns a cell that uses equal to suppress no-op updates. A nil
// equal notifies on every Set.
func NewCellFunc[T any](initial T, equal func(a, b T) bool) *Cell[T] {
	return &Cell[T]{value: initial, equal: equal, subs: make(map[int]func(T))}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set publishes value and notifies subscribers when it differs from the
// current one. It reports whether the value changed.
func (c *Cell[T]) Set(value T) bool {
	c.mu.Lock()
	if c.equal != nil && c.equal(c.value, value) {
		c.mu.Unlock()
		return false
	}
	c.value = value
	subs := make([]func(T), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
	return true
}

// Subscribe registers fn for future changes and returns a function that
// removes it.
func (c *Cell[T]) Subscribe(fn func(T)) func() {
	c.mu.Lock()
	id := c.next
	c.next++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}
