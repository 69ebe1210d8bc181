// Reversible bit vectors and bit matrices. The backing storage is a
// bits-and-blooms bitset held in the trail's arena; individual bit flips are
// recorded as undo entries and cardinality is tracked in a reversible cell.

package fd

// RevBitSet is a reversible fixed-width bit vector with O(1) amortized
// set/clear and O(1) cardinality queries.
type RevBitSet struct {
	t    *Trail
	cell int32
	card RevInt
	n    uint
}

// NewRevBitSet creates a bit vector of n bits, all clear.
func NewRevBitSet(t *Trail, n uint) *RevBitSet {
	return &RevBitSet{
		t:    t,
		cell: t.newBitSetCell(n),
		card: NewRevInt(t, 0),
		n:    n,
	}
}

// Len returns the number of bits.
func (b *RevBitSet) Len() uint { return b.n }

// Count returns the number of set bits.
func (b *RevBitSet) Count() int { return b.card.Value() }

// Test reports whether bit i is set.
func (b *RevBitSet) Test(i uint) bool {
	return i < b.n && b.t.bits(b.cell).Test(i)
}

// Set sets bit i, reversibly. No-op if already set or out of range.
func (b *RevBitSet) Set(i uint) {
	if i >= b.n {
		return
	}
	if b.t.setBit(b.cell, i, true) {
		b.card.Incr()
	}
}

// Clear clears bit i, reversibly. No-op if already clear or out of range.
func (b *RevBitSet) Clear(i uint) {
	if i >= b.n {
		return
	}
	if b.t.setBit(b.cell, i, false) {
		b.card.Decr()
	}
}

// SetAll sets every bit. Intended for initialization at model-build time.
func (b *RevBitSet) SetAll() {
	for i := uint(0); i < b.n; i++ {
		b.Set(i)
	}
}

// NextSet returns the index of the first set bit at or after i, or false if
// there is none.
func (b *RevBitSet) NextSet(i uint) (uint, bool) {
	if i >= b.n {
		return 0, false
	}
	return b.t.bits(b.cell).NextSet(i)
}

// PrevSet returns the index of the last set bit at or before i, or false if
// there is none.
func (b *RevBitSet) PrevSet(i uint) (uint, bool) {
	if i >= b.n {
		if b.n == 0 {
			return 0, false
		}
		i = b.n - 1
	}
	for {
		if b.t.bits(b.cell).Test(i) {
			return i, true
		}
		if i == 0 {
			return 0, false
		}
		i--
	}
}

// RevBitMatrix is a reversible 2-D bit array with total and per-row
// cardinality tracking. It is row-major over a single RevBitSet.
type RevBitMatrix struct {
	bits    *RevBitSet
	rowCard RevIntArray
	rows    uint
	cols    uint
}

// NewRevBitMatrix creates a rows x cols matrix, all clear.
func NewRevBitMatrix(t *Trail, rows, cols uint) *RevBitMatrix {
	return &RevBitMatrix{
		bits:    NewRevBitSet(t, rows*cols),
		rowCard: NewRevIntArray(t, int(rows), 0),
		rows:    rows,
		cols:    cols,
	}
}

// Rows returns the number of rows.
func (m *RevBitMatrix) Rows() uint { return m.rows }

// Cols returns the number of columns.
func (m *RevBitMatrix) Cols() uint { return m.cols }

// Count returns the total number of set bits.
func (m *RevBitMatrix) Count() int { return m.bits.Count() }

// RowCount returns the number of set bits in row r.
func (m *RevBitMatrix) RowCount(r uint) int { return m.rowCard.At(int(r)) }

// Test reports whether bit (r, c) is set.
func (m *RevBitMatrix) Test(r, c uint) bool {
	if r >= m.rows || c >= m.cols {
		return false
	}
	return m.bits.Test(r*m.cols + c)
}

// Set sets bit (r, c), reversibly.
func (m *RevBitMatrix) Set(r, c uint) {
	if r >= m.rows || c >= m.cols || m.Test(r, c) {
		return
	}
	m.bits.Set(r*m.cols + c)
	m.rowCard.SetAt(int(r), m.rowCard.At(int(r))+1)
}

// Clear clears bit (r, c), reversibly.
func (m *RevBitMatrix) Clear(r, c uint) {
	if r >= m.rows || c >= m.cols || !m.Test(r, c) {
		return
	}
	m.bits.Clear(r*m.cols + c)
	m.rowCard.SetAt(int(r), m.rowCard.At(int(r))-1)
}
