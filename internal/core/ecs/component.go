package ecs

// Arena stores one *T per live entity in a slice indexed by EntityID.Index.
// A slot remembers the full ID it was set with, so a stale handle whose
// index has been reused reads as absent.
type Arena[T any] struct {
	ids   []EntityID
	items []*T
	live  int
}

func NewArena[T any]() *Arena[T] {
	return &Arena[T]{
		ids:   make([]EntityID, 0, 256),
		items: make([]*T, 0, 256),
	}
}

func (a *Arena[T]) grow(idx uint32) {
	for int(idx) >= len(a.items) {
		a.ids = append(a.ids, 0)
		a.items = append(a.items, nil)
	}
}

// Set stores c for id, replacing whatever occupied the slot.
func (a *Arena[T]) Set(id EntityID, c *T) {
	idx := id.Index()
	a.grow(idx)
	if a.items[idx] == nil {
		a.live++
	}
	a.ids[idx] = id
	a.items[idx] = c
}

func (a *Arena[T]) Get(id EntityID) (*T, bool) {
	idx := id.Index()
	if int(idx) >= len(a.items) || a.ids[idx] != id || a.items[idx] == nil {
		return nil, false
	}
	return a.items[idx], true
}

func (a *Arena[T]) Remove(id EntityID) {
	if _, ok := a.Get(id); !ok {
		return
	}
	idx := id.Index()
	a.ids[idx] = 0
	a.items[idx] = nil
	a.live--
}

func (a *Arena[T]) Has(id EntityID) bool {
	_, ok := a.Get(id)
	return ok
}

func (a *Arena[T]) Len() int {
	return a.live
}
