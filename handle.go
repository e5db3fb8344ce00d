package anim

import "fmt"

type handle struct {
	index uint32
	gen   uint32
}

func (h handle) valid() bool { return h.gen != 0 }

// CurveID is a handle to a [Curve] owned by a [Document]. The zero value refers
// to no curve.
type CurveID handle

// ClipID is a handle to a [Clip] owned by a [Document]. The zero value refers to
// no clip.
type ClipID handle

// AnimatedID is a handle to an [Animated] value owned by a [Document]. The zero
// value refers to nothing.
type AnimatedID handle

// Ref is implemented by all handle types. It identifies an object in a
// document's dirty set.
type Ref interface {
	fmt.Stringer
	IsZero() bool
	ref() handle
}

func (id CurveID) IsZero() bool    { return !handle(id).valid() }
func (id ClipID) IsZero() bool     { return !handle(id).valid() }
func (id AnimatedID) IsZero() bool { return !handle(id).valid() }

func (id CurveID) ref() handle    { return handle(id) }
func (id ClipID) ref() handle     { return handle(id) }
func (id AnimatedID) ref() handle { return handle(id) }

func (id CurveID) String() string    { return fmt.Sprintf("curve#%d.%d", id.index, id.gen) }
func (id ClipID) String() string     { return fmt.Sprintf("clip#%d.%d", id.index, id.gen) }
func (id AnimatedID) String() string { return fmt.Sprintf("animated#%d.%d", id.index, id.gen) }

type slot[T any] struct {
	gen uint32
	val *T
}

// arena stores objects in stable slots. Removing an object bumps the slot's
// generation so that outstanding handles stop resolving.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
}

func (a *arena[T]) insert(v *T) handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx].val = v
		return handle{index: idx, gen: a.slots[idx].gen}
	}
	a.slots = append(a.slots, slot[T]{gen: 1, val: v})
	return handle{index: uint32(len(a.slots) - 1), gen: 1}
}

func (a *arena[T]) get(h handle) (*T, bool) {
	if !h.valid() || int(h.index) >= len(a.slots) {
		return nil, false
	}
	s := a.slots[h.index]
	if s.gen != h.gen || s.val == nil {
		return nil, false
	}
	return s.val, true
}

func (a *arena[T]) remove(h handle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}
	s := &a.slots[h.index]
	s.val = nil
	s.gen++
	a.free = append(a.free, h.index)
	return true
}

// each calls fn for every live object in slot order.
func (a *arena[T]) each(fn func(h handle, v *T) bool) {
	for i, s := range a.slots {
		if s.val == nil {
			continue
		}
		if !fn(handle{index: uint32(i), gen: s.gen}, s.val) {
			return
		}
	}
}

func (a *arena[T]) len() int {
	return len(a.slots) - len(a.free)
}
