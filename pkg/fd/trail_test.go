package fd

import (
	"math/rand"
	"testing"
)

// TestTrailRoundTrip performs interleaved mutations and checkpoints on a set
// of reversible cells and verifies that rewinding to any checkpoint restores
// every cell to exactly the value it held when the checkpoint was taken.
func TestTrailRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	trail := NewTrail()

	const numCells = 16
	cells := make([]RevInt, numCells)
	for i := range cells {
		cells[i] = NewRevInt(trail, i)
	}

	type snapshot struct {
		mark   Mark
		values [numCells]int
	}
	var snaps []snapshot

	for round := 0; round < 20; round++ {
		var snap snapshot
		snap.mark = trail.Checkpoint()
		for i := range cells {
			snap.values[i] = cells[i].Value()
		}
		snaps = append(snaps, snap)

		for m := 0; m < 10; m++ {
			cells[rng.Intn(numCells)].SetValue(rng.Intn(1000))
		}
	}

	// Rewind checkpoint by checkpoint, newest first.
	for i := len(snaps) - 1; i >= 0; i-- {
		trail.RewindTo(snaps[i].mark)
		for c := range cells {
			if got, want := cells[c].Value(), snaps[i].values[c]; got != want {
				t.Fatalf("after rewind to checkpoint %d: cell %d = %d, want %d", i, c, got, want)
			}
		}
	}
}

// TestTrailRewindSkipsLevels rewinds straight to an early checkpoint,
// jumping over several later ones.
func TestTrailRewindSkipsLevels(t *testing.T) {
	trail := NewTrail()
	c := NewRevInt(trail, 1)

	m0 := trail.Checkpoint()
	c.SetValue(2)
	trail.Checkpoint()
	c.SetValue(3)
	trail.Checkpoint()
	c.SetValue(4)

	trail.RewindTo(m0)
	if got := c.Value(); got != 1 {
		t.Fatalf("value = %d, want 1", got)
	}
	if got := trail.Depth(); got != 1 {
		t.Fatalf("depth = %d, want 1 (rewound mark stays active)", got)
	}
}

// TestTrailMarkStaysActive checks that a mark can be rewound to repeatedly.
func TestTrailMarkStaysActive(t *testing.T) {
	trail := NewTrail()
	c := NewRevInt(trail, 0)

	m := trail.Checkpoint()
	for i := 1; i <= 3; i++ {
		c.SetValue(i * 10)
		trail.RewindTo(m)
		if got := c.Value(); got != 0 {
			t.Fatalf("round %d: value = %d, want 0", i, got)
		}
	}
}

// TestTrailRecordOncePerCheckpoint verifies the record stamp: writing a cell
// many times within one checkpoint produces a single undo entry.
func TestTrailRecordOncePerCheckpoint(t *testing.T) {
	trail := NewTrail()
	c := NewRevInt(trail, 0)

	m := trail.Checkpoint()
	before := trail.Len()
	for i := 1; i <= 100; i++ {
		c.SetValue(i)
	}
	if got := trail.Len() - before; got != 1 {
		t.Fatalf("recorded %d entries for one cell in one checkpoint, want 1", got)
	}
	trail.RewindTo(m)
	if got := c.Value(); got != 0 {
		t.Fatalf("value = %d, want 0", got)
	}
}

// TestTrailNoOpWrite checks that writing the current value records nothing.
func TestTrailNoOpWrite(t *testing.T) {
	trail := NewTrail()
	c := NewRevInt(trail, 5)
	trail.Checkpoint()
	before := trail.Len()
	c.SetValue(5)
	if got := trail.Len(); got != before {
		t.Fatalf("no-op write grew the trail from %d to %d", before, got)
	}
}

// TestTrailRewindInvalidMarkPanics ensures rewinding past an already-popped
// checkpoint is treated as a fatal programming error.
func TestTrailRewindInvalidMarkPanics(t *testing.T) {
	trail := NewTrail()
	trail.Checkpoint()
	m1 := trail.Checkpoint()
	trail.RewindTo(Mark(0))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on rewind to discarded mark")
		}
	}()
	trail.RewindTo(m1)
}
