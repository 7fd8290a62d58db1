package serialization

import "sync"

// pool hands out reusable visitors through leases.
type pool[T any] struct {
	items   sync.Pool
	newItem func() *T
	reset   func(*T)
}

func newPool[T any](newItem func() *T, reset func(*T)) *pool[T] {
	p := &pool[T]{newItem: newItem, reset: reset}
	p.items.New = func() any { return newItem() }

	return p
}

// acquire checks out an item. A dedicated lease owns a fresh item that is
// never shared with other callers.
func (p *pool[T]) acquire(dedicated bool) *lease[T] {
	if dedicated {
		return &lease[T]{item: p.newItem()}
	}

	return &lease[T]{item: p.items.Get().(*T), owner: p}
}

// lease is the handle of one checked-out item. Releasing it twice is a
// programming error and panics.
type lease[T any] struct {
	item  *T
	owner *pool[T]
}

// value returns the leased item.
func (l *lease[T]) value() *T {
	if l.item == nil {
		panic("serialization: use of a released lease")
	}

	return l.item
}

// release resets the item and returns it to its pool.
func (l *lease[T]) release() {
	if l.item == nil {
		panic("serialization: lease released twice")
	}

	item := l.item
	l.item = nil

	if l.owner != nil {
		l.owner.reset(item)
		l.owner.items.Put(item)
	}
}
