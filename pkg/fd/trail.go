// The trail: an append-only undo log over typed cell arenas. Every
// reversible container in the kernel stores its payload in one of the
// trail's arenas and records the old value before mutating, so that
// rewinding a checkpoint restores all state in strict LIFO order.

package fd

import "github.com/bits-and-blooms/bitset"

// cellKind tags an undo record with the arena it restores into. Records are
// plain values, never pointers, so restoration cannot alias freed memory.
type cellKind uint8

const (
	cellInt cellKind = iota // integer cell: ints[cell] = old
	cellBit                 // single bit: sets[cell] bit pos = old
)

// entry is one undo record: which cell changed and what it held before.
type entry struct {
	kind cellKind
	cell int32  // arena index
	pos  uint32 // bit position, cellBit only
	old  int64  // previous value (0/1 for bits)
}

// Mark identifies a checkpoint taken on the trail. Marks form a stack:
// rewinding to mark m discards every mark taken after it.
type Mark int

// Trail is the undo log shared by all reversible state in one Store.
//
// The trail owns two arenas: integer cells and bit vectors. Containers hold
// arena indices, not pointers, and route every mutation through the trail so
// it is undone exactly once when search backtracks past the checkpoint that
// recorded it.
//
// A Trail is not safe for concurrent use; the kernel is single threaded.
type Trail struct {
	entries []entry
	marks   []int // trail length at each checkpoint

	ints  []int64
	stamp []uint64 // checkpoint era of the last record per int cell
	era   uint64   // bumped on every checkpoint and rewind

	sets []*bitset.BitSet
}

// NewTrail creates an empty trail with no checkpoints.
func NewTrail() *Trail {
	return &Trail{
		entries: make([]entry, 0, 1024),
		era:     1,
	}
}

// Len returns the number of undo records currently on the trail.
func (t *Trail) Len() int { return len(t.entries) }

// Depth returns the number of active checkpoints.
func (t *Trail) Depth() int { return len(t.marks) }

// Checkpoint marks the current trail length. The returned mark is valid
// until a rewind to an earlier mark discards it.
func (t *Trail) Checkpoint() Mark {
	t.marks = append(t.marks, len(t.entries))
	t.era++
	return Mark(len(t.marks) - 1)
}

// RewindTo pops, in reverse order, every undo record pushed since mark m.
// Mark m stays active; all later checkpoints are discarded. Panics if m is
// not an active checkpoint: rewinding past an already-popped mark means the
// reversible memory invariant is broken and continuing would be unsound.
func (t *Trail) RewindTo(m Mark) {
	if m < 0 || int(m) >= len(t.marks) {
		panic("fd: rewind to inactive checkpoint")
	}
	target := t.marks[m]
	for i := len(t.entries) - 1; i >= target; i-- {
		e := t.entries[i]
		switch e.kind {
		case cellInt:
			t.ints[e.cell] = e.old
		case cellBit:
			if e.old != 0 {
				t.sets[e.cell].Set(uint(e.pos))
			} else {
				t.sets[e.cell].Clear(uint(e.pos))
			}
		}
	}
	t.entries = t.entries[:target]
	t.marks = t.marks[:int(m)+1]
	t.era++
}

// newIntCell allocates an integer cell holding v and returns its index.
// Cells live for the lifetime of the trail.
func (t *Trail) newIntCell(v int64) int32 {
	idx := int32(len(t.ints))
	t.ints = append(t.ints, v)
	t.stamp = append(t.stamp, 0)
	return idx
}

// intValue reads an integer cell.
func (t *Trail) intValue(cell int32) int64 { return t.ints[cell] }

// setInt writes an integer cell, recording its old value at most once per
// checkpoint era. Writing the current value is a no-op, which keeps record
// idempotent against double restoration.
func (t *Trail) setInt(cell int32, v int64) {
	old := t.ints[cell]
	if old == v {
		return
	}
	if t.stamp[cell] != t.era {
		t.stamp[cell] = t.era
		t.entries = append(t.entries, entry{kind: cellInt, cell: cell, old: old})
	}
	t.ints[cell] = v
}

// newBitSetCell allocates a bit vector of n bits, all clear, and returns its
// arena index.
func (t *Trail) newBitSetCell(n uint) int32 {
	idx := int32(len(t.sets))
	t.sets = append(t.sets, bitset.New(n))
	return idx
}

// bits exposes the underlying bit vector for read-only queries.
func (t *Trail) bits(cell int32) *bitset.BitSet { return t.sets[cell] }

// setBit writes one bit, recording the flip only when the bit actually
// changes. Within one checkpoint a bit flipped twice produces two records;
// LIFO restoration keeps that correct.
func (t *Trail) setBit(cell int32, pos uint, v bool) bool {
	s := t.sets[cell]
	cur := s.Test(pos)
	if cur == v {
		return false
	}
	var old int64
	if cur {
		old = 1
	}
	t.entries = append(t.entries, entry{kind: cellBit, cell: cell, pos: uint32(pos), old: old})
	s.SetTo(pos, v)
	return true
}
