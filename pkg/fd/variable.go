// Domain variables. An IntVar is either an interval variable (bounds only)
// or an explicit-domain variable backed by a reversible bit vector; which one
// it is gets decided at construction from the range width. All mutation
// routes through the trail and schedules the reactions registered for the
// event classes it triggers.

package fd

import (
	"fmt"
	"sort"
)

// IntVar is a finite-domain integer variable owned by a Store.
//
// Queries are pure; mutations either shrink the domain reversibly or return
// a wipeout error chained to ErrFailed. Within one checkpoint, Min is
// non-decreasing and Max is non-increasing; rewinding the checkpoint grows
// the domain back exactly.
type IntVar struct {
	store *Store
	id    int
	name  string

	min RevInt
	max RevInt

	// dom is nil for interval-only variables. When present, bit i stands
	// for value offset+i and bits outside [min, max] are kept clear.
	dom    *RevBitSet
	offset int

	// Bounds before the first change since the last propagation fixpoint.
	// Propagators read these to compute incremental deltas; they are only
	// meaningful until Drain returns.
	dirty  bool
	oldMin int
	oldMax int

	onBound  *RevList[*Reaction]
	onRange  *RevList[*Reaction]
	onDomain *RevList[*Reaction]
}

// ID returns the variable's index in its store.
func (v *IntVar) ID() int { return v.id }

// Name returns the variable's name.
func (v *IntVar) Name() string { return v.name }

// Min returns the current lower bound.
func (v *IntVar) Min() int { return v.min.Value() }

// Max returns the current upper bound.
func (v *IntVar) Max() int { return v.max.Value() }

// Bound reports whether the domain has been reduced to a single value.
func (v *IntVar) Bound() bool { return v.min.Value() == v.max.Value() }

// Value returns the single remaining value. Panics if the variable is not
// bound; callers must check Bound first.
func (v *IntVar) Value() int {
	if !v.Bound() {
		panic(fmt.Sprintf("fd: Value on unbound variable %s", v.name))
	}
	return v.min.Value()
}

// Size returns the number of values left in the domain.
func (v *IntVar) Size() int {
	if v.dom != nil {
		return v.dom.Count()
	}
	return v.max.Value() - v.min.Value() + 1
}

// Contains reports whether u is still in the domain.
func (v *IntVar) Contains(u int) bool {
	if u < v.min.Value() || u > v.max.Value() {
		return false
	}
	if v.dom != nil {
		return v.dom.Test(uint(u - v.offset))
	}
	return true
}

// OldMin returns the lower bound as it was before the first change since the
// last propagation fixpoint. Equal to Min when nothing changed.
func (v *IntVar) OldMin() int {
	if v.dirty {
		return v.oldMin
	}
	return v.min.Value()
}

// OldMax is the upper-bound counterpart of OldMin.
func (v *IntVar) OldMax() int {
	if v.dirty {
		return v.oldMax
	}
	return v.max.Value()
}

// DomainValues returns the remaining values in ascending order.
func (v *IntVar) DomainValues() []int {
	values := make([]int, 0, v.Size())
	for u := v.min.Value(); u <= v.max.Value(); u++ {
		if v.Contains(u) {
			values = append(values, u)
		}
	}
	return values
}

// String returns a compact rendering such as "x[2..5]" or "x{3}".
func (v *IntVar) String() string {
	if v.Bound() {
		return fmt.Sprintf("%s{%d}", v.name, v.min.Value())
	}
	return fmt.Sprintf("%s[%d..%d]", v.name, v.min.Value(), v.max.Value())
}

// WhenBound registers r to run after the variable becomes bound.
func (v *IntVar) WhenBound(r *Reaction) { v.onBound.Push(r) }

// WhenRange registers r to run after the lower or upper bound changes.
func (v *IntVar) WhenRange(r *Reaction) { v.onRange.Push(r) }

// WhenDomain registers r to run after any domain change, including interior
// holes.
func (v *IntVar) WhenDomain(r *Reaction) { v.onDomain.Push(r) }

// markDirty snapshots the pre-change bounds the first time the variable
// moves since the last fixpoint.
func (v *IntVar) markDirty() {
	if v.dirty {
		return
	}
	v.dirty = true
	v.oldMin = v.min.Value()
	v.oldMax = v.max.Value()
	v.store.dirtyVars = append(v.store.dirtyVars, v)
}

// wipeoutf builds a domain-wipeout failure for this variable.
func (v *IntVar) wipeoutf(format string, args ...any) error {
	return failf("%s: %s", v.name, fmt.Sprintf(format, args...))
}

// SetMin raises the lower bound to at least lo. Returns a wipeout failure if
// that would empty the domain.
func (v *IntVar) SetMin(lo int) error {
	min, max := v.min.Value(), v.max.Value()
	if lo <= min {
		return nil
	}
	if lo > max {
		return v.wipeoutf("min %d above max %d", lo, max)
	}
	if v.dom != nil {
		next, ok := v.dom.NextSet(uint(lo - v.offset))
		if !ok {
			return v.wipeoutf("no value at or above %d", lo)
		}
		lo = v.offset + int(next)
		if lo > max {
			return v.wipeoutf("min %d above max %d", lo, max)
		}
		v.markDirty()
		for u := min; u < lo; u++ {
			v.dom.Clear(uint(u - v.offset))
		}
	} else {
		v.markDirty()
	}
	v.min.SetValue(lo)
	v.store.rangeChanged(v)
	return nil
}

// SetMax lowers the upper bound to at most hi. Returns a wipeout failure if
// that would empty the domain.
func (v *IntVar) SetMax(hi int) error {
	min, max := v.min.Value(), v.max.Value()
	if hi >= max {
		return nil
	}
	if hi < min {
		return v.wipeoutf("max %d below min %d", hi, min)
	}
	if v.dom != nil {
		prev, ok := v.dom.PrevSet(uint(hi - v.offset))
		if !ok {
			return v.wipeoutf("no value at or below %d", hi)
		}
		hi = v.offset + int(prev)
		if hi < min {
			return v.wipeoutf("max %d below min %d", hi, min)
		}
		v.markDirty()
		for u := max; u > hi; u-- {
			v.dom.Clear(uint(u - v.offset))
		}
	} else {
		v.markDirty()
	}
	v.max.SetValue(hi)
	v.store.rangeChanged(v)
	return nil
}

// SetRange tightens the domain to [lo, hi]. Panics if lo > hi: an empty
// requested range is a caller bug, not a recoverable failure.
func (v *IntVar) SetRange(lo, hi int) error {
	if lo > hi {
		panic(fmt.Sprintf("fd: SetRange(%d, %d) on %s with lo > hi", lo, hi, v.name))
	}
	if err := v.SetMin(lo); err != nil {
		return err
	}
	return v.SetMax(hi)
}

// SetValue binds the variable to u.
func (v *IntVar) SetValue(u int) error {
	return v.SetRange(u, u)
}

// RemoveValue removes u from the domain. Boundary removals tighten the
// corresponding bound; interior removals punch a hole in the explicit
// domain. Interval-only variables ignore interior removals (a sound
// bounds-only relaxation for ranges too wide to materialize).
func (v *IntVar) RemoveValue(u int) error {
	min, max := v.min.Value(), v.max.Value()
	if u < min || u > max {
		return nil
	}
	if u == min {
		return v.SetMin(u + 1)
	}
	if u == max {
		return v.SetMax(u - 1)
	}
	if v.dom == nil || !v.dom.Test(uint(u-v.offset)) {
		return nil
	}
	v.markDirty()
	v.dom.Clear(uint(u - v.offset))
	v.store.domainChanged(v)
	return nil
}

// newIntVar wires a variable into the store. values is nil for a full
// interval; otherwise it lists the initial members (sorted, deduplicated).
func newIntVar(s *Store, lo, hi int, name string, values []int, explicit bool) *IntVar {
	t := s.trail
	v := &IntVar{
		store:    s,
		id:       len(s.vars),
		name:     name,
		min:      NewRevInt(t, lo),
		max:      NewRevInt(t, hi),
		offset:   lo,
		onBound:  NewRevList[*Reaction](t),
		onRange:  NewRevList[*Reaction](t),
		onDomain: NewRevList[*Reaction](t),
	}
	if explicit {
		width := uint(hi - lo + 1)
		v.dom = NewRevBitSet(t, width)
		if values == nil {
			v.dom.SetAll()
		} else {
			for _, u := range values {
				v.dom.Set(uint(u - lo))
			}
		}
	}
	s.vars = append(s.vars, v)
	return v
}

// dedupeSorted sorts values ascending and drops duplicates in place.
func dedupeSorted(values []int) []int {
	sort.Ints(values)
	out := values[:0]
	for i, u := range values {
		if i == 0 || u != out[len(out)-1] {
			out = append(out, u)
		}
	}
	return out
}
