// Package arena provides a generational-index arena: a slot-backed store
// whose keys stay valid and distinguishable across removal and slot reuse.
//
// Every Insert returns an Index carrying both the slot number and the slot's
// current generation. Removing an entry bumps the slot's generation, so an
// Index held from before the removal no longer resolves, even after the slot
// has been handed out again. Addresses of other entries are never disturbed
// by inserts or removals, which is what makes the arena safe to use as the
// graph store behind a mutable signal graph.
package arena

import "fmt"

// Index addresses one entry in an Arena.
type Index struct {
	Slot       uint32
	Generation uint32
}

func (i Index) String() string {
	return fmt.Sprintf("%d.g%d", i.Slot, i.Generation)
}

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
}

// Arena is a generational-index arena. The zero value is not usable; call New.
type Arena[T any] struct {
	slots  []slot[T]
	free   []uint32
	length int
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// Insert stores v and returns its address. Freed slots are reused in LIFO
// order; a reused slot keeps the generation it was given at removal time.
func (a *Arena[T]) Insert(v T) Index {
	if n := len(a.free); n > 0 {
		s := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[s].value = v
		a.slots[s].occupied = true
		a.length++
		return Index{Slot: s, Generation: a.slots[s].generation}
	}
	a.slots = append(a.slots, slot[T]{value: v, occupied: true})
	a.length++
	return Index{Slot: uint32(len(a.slots) - 1)}
}

// Get returns a pointer to the entry at idx, or false if idx is stale or
// was never issued.
func (a *Arena[T]) Get(idx Index) (*T, bool) {
	if !a.Contains(idx) {
		return nil, false
	}
	return &a.slots[idx.Slot].value, true
}

// Contains reports whether idx addresses a live entry.
func (a *Arena[T]) Contains(idx Index) bool {
	if int(idx.Slot) >= len(a.slots) {
		return false
	}
	s := &a.slots[idx.Slot]
	return s.occupied && s.generation == idx.Generation
}

// Remove deletes the entry at idx and reports whether anything was removed.
// The slot's generation is bumped immediately so the removed address becomes
// detectably invalid.
func (a *Arena[T]) Remove(idx Index) bool {
	if !a.Contains(idx) {
		return false
	}
	s := &a.slots[idx.Slot]
	var zero T
	s.value = zero
	s.occupied = false
	s.generation++
	a.free = append(a.free, idx.Slot)
	a.length--
	return true
}

// Len returns the number of live entries.
func (a *Arena[T]) Len() int {
	return a.length
}

// Each calls f for every live entry in slot order. Iteration stops early if
// f returns false. The arena must not be mutated during iteration.
func (a *Arena[T]) Each(f func(Index, *T) bool) {
	for s := range a.slots {
		if !a.slots[s].occupied {
			continue
		}
		idx := Index{Slot: uint32(s), Generation: a.slots[s].generation}
		if !f(idx, &a.slots[s].value) {
			return
		}
	}
}

// Clone returns a deep copy of the arena. Slot layout, generations and the
// free list are preserved, so every Index valid for the original is valid
// for the copy. cloneValue copies one entry.
func (a *Arena[T]) Clone(cloneValue func(*T) T) *Arena[T] {
	c := &Arena[T]{
		slots:  make([]slot[T], len(a.slots)),
		free:   append([]uint32(nil), a.free...),
		length: a.length,
	}
	for s := range a.slots {
		c.slots[s].generation = a.slots[s].generation
		c.slots[s].occupied = a.slots[s].occupied
		if a.slots[s].occupied {
			c.slots[s].value = cloneValue(&a.slots[s].value)
		}
	}
	return c
}
