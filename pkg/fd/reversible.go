// Reversible containers built on the trail. All of them follow the same
// contract: record before mutate, never fail, restore exactly on rewind.

package fd

// RevInt is a reversible integer cell. The zero value is not usable; create
// one with NewRevInt.
type RevInt struct {
	t    *Trail
	cell int32
}

// NewRevInt allocates a reversible integer initialized to v.
func NewRevInt(t *Trail, v int) RevInt {
	return RevInt{t: t, cell: t.newIntCell(int64(v))}
}

// Value returns the current value.
func (r RevInt) Value() int { return int(r.t.intValue(r.cell)) }

// SetValue sets the current value, recording the old one reversibly.
func (r RevInt) SetValue(v int) { r.t.setInt(r.cell, int64(v)) }

// Add adds delta and returns the new value.
func (r RevInt) Add(delta int) int {
	v := r.Value() + delta
	r.SetValue(v)
	return v
}

// Incr increments and returns the new value.
func (r RevInt) Incr() int { return r.Add(1) }

// Decr decrements and returns the new value.
func (r RevInt) Decr() int { return r.Add(-1) }

// RevBool is a reversible boolean cell.
type RevBool struct {
	cell RevInt
}

// NewRevBool allocates a reversible boolean initialized to v.
func NewRevBool(t *Trail, v bool) RevBool {
	i := 0
	if v {
		i = 1
	}
	return RevBool{cell: NewRevInt(t, i)}
}

// Value returns the current value.
func (r RevBool) Value() bool { return r.cell.Value() != 0 }

// SetValue sets the current value reversibly.
func (r RevBool) SetValue(v bool) {
	if v {
		r.cell.SetValue(1)
	} else {
		r.cell.SetValue(0)
	}
}

// RevIntArray is a fixed-length array of reversible integers.
type RevIntArray struct {
	t     *Trail
	cells []int32
}

// NewRevIntArray allocates an array of n reversible integers, all set to
// init.
func NewRevIntArray(t *Trail, n int, init int) RevIntArray {
	cells := make([]int32, n)
	for i := range cells {
		cells[i] = t.newIntCell(int64(init))
	}
	return RevIntArray{t: t, cells: cells}
}

// Len returns the array length.
func (r RevIntArray) Len() int { return len(r.cells) }

// At returns the value at index i.
func (r RevIntArray) At(i int) int { return int(r.t.intValue(r.cells[i])) }

// SetAt sets the value at index i reversibly.
func (r RevIntArray) SetAt(i, v int) { r.t.setInt(r.cells[i], int64(v)) }

// RevSparseSet is a reversible set over the fixed universe 0..capacity-1.
// Removal moves an element into the removed partition with one symmetric
// swap, O(1); rewinding restores membership by undoing the swap and the size
// cell.
//
// The layout is the classic sparse-set pair: elems is a permutation of the
// universe, pos is its inverse, and the first Size() entries of elems are the
// live members.
type RevSparseSet struct {
	elems RevIntArray
	pos   RevIntArray
	size  RevInt
}

// NewRevSparseSet creates a sparse set initially containing every element of
// 0..capacity-1.
func NewRevSparseSet(t *Trail, capacity int) *RevSparseSet {
	s := &RevSparseSet{
		elems: NewRevIntArray(t, capacity, 0),
		pos:   NewRevIntArray(t, capacity, 0),
		size:  NewRevInt(t, capacity),
	}
	for i := 0; i < capacity; i++ {
		s.elems.SetAt(i, i)
		s.pos.SetAt(i, i)
	}
	return s
}

// Capacity returns the size of the universe.
func (s *RevSparseSet) Capacity() int { return s.elems.Len() }

// Size returns the number of live members.
func (s *RevSparseSet) Size() int { return s.size.Value() }

// Contains reports whether e is a live member.
func (s *RevSparseSet) Contains(e int) bool {
	return e >= 0 && e < s.Capacity() && s.pos.At(e) < s.Size()
}

// At returns the i-th live member, 0 <= i < Size(). Iteration order is
// unspecified and may change after removals.
func (s *RevSparseSet) At(i int) int { return s.elems.At(i) }

// Remove moves e to the removed partition. No-op if e is already removed.
func (s *RevSparseSet) Remove(e int) {
	if !s.Contains(e) {
		return
	}
	last := s.Size() - 1
	i := s.pos.At(e)
	other := s.elems.At(last)
	s.elems.SetAt(i, other)
	s.elems.SetAt(last, e)
	s.pos.SetAt(other, i)
	s.pos.SetAt(e, last)
	s.size.SetValue(last)
}

// RevList is a reversible append-only list. Pushes are undone by rewinding
// the length cell; the backing slice keeps its capacity so re-pushing after
// a rewind does not reallocate.
type RevList[T any] struct {
	items  []T
	length RevInt
}

// NewRevList creates an empty reversible list.
func NewRevList[T any](t *Trail) *RevList[T] {
	return &RevList[T]{length: NewRevInt(t, 0)}
}

// Len returns the current number of elements.
func (l *RevList[T]) Len() int { return l.length.Value() }

// At returns the element at index i, 0 <= i < Len().
func (l *RevList[T]) At(i int) T { return l.items[i] }

// Push appends v, reversibly.
func (l *RevList[T]) Push(v T) {
	n := l.length.Value()
	if n < len(l.items) {
		l.items[n] = v
	} else {
		l.items = append(l.items, v)
	}
	l.length.SetValue(n + 1)
}
