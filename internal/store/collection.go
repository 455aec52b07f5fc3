package store

import (
	"sync"
)

// Collection is an ordered, id-keyed mirror of one remote collection. Every
// method is a single atomic patch.
type Collection[T any] struct {
	mu     sync.RWMutex
	items  []T
	id     func(T) string
	clone  func(T) T
	notify func(kind ChangeKind, id string)
}

func newCollection[T any](id func(T) string, clone func(T) T, notify func(ChangeKind, string)) *Collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	if notify == nil {
		notify = func(ChangeKind, string) {}
	}
	return &Collection[T]{id: id, clone: clone, notify: notify}
}

// All returns a copy of the items in order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.clone(item)
	}
	return out
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the item with id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.clone(c.items[i]), true
	}
	var zero T
	return zero, false
}

// Replace swaps the whole contents, as after a fetch.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	c.items = make([]T, len(items))
	for i, item := range items {
		c.items[i] = c.clone(item)
	}
	c.mu.Unlock()
	c.notify(ChangeReplaced, "")
}

// Append adds item at the end.
func (c *Collection[T]) Append(item T) {
	c.mu.Lock()
	c.items = append(c.items, c.clone(item))
	c.mu.Unlock()
	c.notify(ChangeInserted, c.id(item))
}

// Put overwrites the item with the same id in place. It reports false and
// leaves the collection unchanged when no such item exists.
func (c *Collection[T]) Put(item T) bool {
	return c.Swap(c.id(item), item)
}

// Swap replaces the item with oldID by item, keeping its position. Used to
// settle a temporary id to the server's.
func (c *Collection[T]) Swap(oldID string, item T) bool {
	c.mu.Lock()
	i := c.indexOf(oldID)
	if i < 0 {
		c.mu.Unlock()
		return false
	}
	c.items[i] = c.clone(item)
	c.mu.Unlock()
	c.notify(ChangeUpdated, c.id(item))
	return true
}

// Remove deletes the item with id and returns it.
func (c *Collection[T]) Remove(id string) (T, bool) {
	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	removed := c.items[i]
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	c.mu.Unlock()
	c.notify(ChangeRemoved, id)
	return removed, true
}

// Clear empties the collection.
func (c *Collection[T]) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.notify(ChangeReplaced, "")
}

func (c *Collection[T]) indexOf(id string) int {
	for i, item := range c.items {
		if c.id(item) == id {
			return i
		}
	}
	return -1
}
