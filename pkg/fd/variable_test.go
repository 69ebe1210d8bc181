package fd

import (
	"errors"
	"reflect"
	"testing"
)

func mustVar(t *testing.T, s *Store, lo, hi int, name string) *IntVar {
	t.Helper()
	v, err := s.NewIntVar(lo, hi, name)
	if err != nil {
		t.Fatalf("NewIntVar(%d, %d): %v", lo, hi, err)
	}
	return v
}

func TestIntVarQueries(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 2, 7, "v")

	if v.Min() != 2 || v.Max() != 7 {
		t.Fatalf("bounds = [%d, %d], want [2, 7]", v.Min(), v.Max())
	}
	if v.Bound() {
		t.Fatal("fresh variable reported bound")
	}
	if got := v.Size(); got != 6 {
		t.Fatalf("size = %d, want 6", got)
	}
	if !v.Contains(2) || !v.Contains(7) || v.Contains(1) || v.Contains(8) {
		t.Fatal("Contains disagrees with bounds")
	}
	if got := v.String(); got != "v[2..7]" {
		t.Fatalf("String = %q", got)
	}
}

func TestIntVarTighteningAndWipeout(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 0, 9, "v")

	if err := v.SetMin(3); err != nil {
		t.Fatalf("SetMin: %v", err)
	}
	if err := v.SetMax(5); err != nil {
		t.Fatalf("SetMax: %v", err)
	}
	if v.Min() != 3 || v.Max() != 5 {
		t.Fatalf("bounds = [%d, %d], want [3, 5]", v.Min(), v.Max())
	}

	// Loosening requests are no-ops.
	if err := v.SetMin(1); err != nil {
		t.Fatalf("loosening SetMin errored: %v", err)
	}
	if err := v.SetMax(8); err != nil {
		t.Fatalf("loosening SetMax errored: %v", err)
	}
	if v.Min() != 3 || v.Max() != 5 {
		t.Fatal("loosening request changed bounds")
	}

	err := v.SetMin(6)
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("wipeout SetMin: err = %v, want ErrFailed", err)
	}
	err = v.SetMax(2)
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("wipeout SetMax: err = %v, want ErrFailed", err)
	}
}

func TestIntVarMonotonicShrink(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 0, 20, "v")

	lastMin, lastMax := v.Min(), v.Max()
	steps := []func() error{
		func() error { return v.SetMin(2) },
		func() error { return v.RemoveValue(20) },
		func() error { return v.SetMax(15) },
		func() error { return v.RemoveValue(7) },
		func() error { return v.SetRange(5, 12) },
		func() error { return v.SetMin(5) }, // no-op
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if v.Min() < lastMin || v.Max() > lastMax {
			t.Fatalf("step %d: domain grew to [%d, %d] from [%d, %d]",
				i, v.Min(), v.Max(), lastMin, lastMax)
		}
		lastMin, lastMax = v.Min(), v.Max()
	}
}

func TestIntVarBoundAndValue(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 1, 5, "v")

	if err := v.SetValue(4); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if !v.Bound() {
		t.Fatal("not bound after SetValue")
	}
	if got := v.Value(); got != 4 {
		t.Fatalf("Value = %d, want 4", got)
	}
	if got := v.String(); got != "v{4}" {
		t.Fatalf("String = %q", got)
	}

	// Binding to a different value must fail, not rebind.
	if err := v.SetValue(2); !errors.Is(err, ErrFailed) {
		t.Fatalf("rebind: err = %v, want ErrFailed", err)
	}
}

func TestIntVarValuePanicsWhenUnbound(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 1, 5, "v")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_ = v.Value()
}

func TestIntVarSetRangePanicsOnEmptyRange(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 1, 5, "v")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_ = v.SetRange(4, 3)
}

func TestIntVarInteriorHoles(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 1, 5, "v")

	if err := v.RemoveValue(3); err != nil {
		t.Fatalf("RemoveValue: %v", err)
	}
	if v.Contains(3) {
		t.Fatal("3 still in domain")
	}
	if v.Min() != 1 || v.Max() != 5 {
		t.Fatal("interior removal moved bounds")
	}
	if got := v.Size(); got != 4 {
		t.Fatalf("size = %d, want 4", got)
	}
	if got := v.DomainValues(); !reflect.DeepEqual(got, []int{1, 2, 4, 5}) {
		t.Fatalf("values = %v", got)
	}

	// Raising the min over a hole lands on the next present value.
	if err := v.SetMin(3); err != nil {
		t.Fatalf("SetMin over hole: %v", err)
	}
	if got := v.Min(); got != 4 {
		t.Fatalf("min = %d, want 4 (hole skipped)", got)
	}
}

func TestIntVarBoundaryRemovalTightens(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 5, 6, "v")

	if err := v.RemoveValue(5); err != nil {
		t.Fatalf("RemoveValue: %v", err)
	}
	if !v.Bound() || v.Value() != 6 {
		t.Fatalf("domain = %v, want bound to 6", v)
	}
	if err := v.RemoveValue(6); !errors.Is(err, ErrFailed) {
		t.Fatalf("removing last value: err = %v, want ErrFailed", err)
	}
}

func TestIntVarFromValues(t *testing.T) {
	s := NewStore()
	v, err := s.NewIntVarFromValues([]int{8, 3, 5, 3}, "v")
	if err != nil {
		t.Fatalf("NewIntVarFromValues: %v", err)
	}
	if v.Min() != 3 || v.Max() != 8 {
		t.Fatalf("bounds = [%d, %d], want [3, 8]", v.Min(), v.Max())
	}
	if got := v.DomainValues(); !reflect.DeepEqual(got, []int{3, 5, 8}) {
		t.Fatalf("values = %v", got)
	}
	if got := v.Size(); got != 3 {
		t.Fatalf("size = %d, want 3", got)
	}

	// Lowering the max over absent values lands on the previous member.
	if err := v.SetMax(7); err != nil {
		t.Fatalf("SetMax: %v", err)
	}
	if got := v.Max(); got != 5 {
		t.Fatalf("max = %d, want 5", got)
	}

	if _, err := s.NewIntVarFromValues(nil, "empty"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty value set: err = %v, want ErrInvalidArgument", err)
	}
}

func TestIntVarWideRangeKeepsBoundsOnly(t *testing.T) {
	s := NewStoreWithOptions(Options{MaxExplicitWidth: 10})
	v := mustVar(t, s, 0, 1000, "wide")

	// Interior removal on a bounds-only variable is a sound no-op.
	if err := v.RemoveValue(500); err != nil {
		t.Fatalf("RemoveValue: %v", err)
	}
	if !v.Contains(500) {
		t.Fatal("bounds-only variable dropped an interior value")
	}
	// Boundary removal still tightens.
	if err := v.RemoveValue(0); err != nil {
		t.Fatalf("RemoveValue: %v", err)
	}
	if got := v.Min(); got != 1 {
		t.Fatalf("min = %d, want 1", got)
	}
}

func TestIntVarOldBoundsDelta(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 0, 9, "v")

	if err := s.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	if err := v.SetMin(2); err != nil {
		t.Fatalf("SetMin: %v", err)
	}
	if err := v.SetMin(4); err != nil {
		t.Fatalf("SetMin: %v", err)
	}
	if got := v.OldMin(); got != 0 {
		t.Fatalf("OldMin = %d, want 0 (value before first change)", got)
	}
	if got := v.OldMax(); got != 9 {
		t.Fatalf("OldMax = %d, want 9", got)
	}

	// Reaching a fixpoint collapses the delta window.
	if err := s.Drain(); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if got := v.OldMin(); got != 4 {
		t.Fatalf("OldMin after fixpoint = %d, want 4", got)
	}
}

func TestIntVarRewindRestoresDomain(t *testing.T) {
	s := NewStore()
	v := mustVar(t, s, 1, 9, "v")

	if err := v.RemoveValue(4); err != nil {
		t.Fatalf("RemoveValue: %v", err)
	}
	before := v.DomainValues()

	m := s.Checkpoint()
	if err := v.SetRange(3, 7); err != nil {
		t.Fatalf("SetRange: %v", err)
	}
	if err := v.RemoveValue(6); err != nil {
		t.Fatalf("RemoveValue: %v", err)
	}

	s.RewindTo(m)
	if got := v.DomainValues(); !reflect.DeepEqual(got, before) {
		t.Fatalf("after rewind: values = %v, want %v", got, before)
	}
	if v.Min() != 1 || v.Max() != 9 {
		t.Fatalf("after rewind: bounds = [%d, %d], want [1, 9]", v.Min(), v.Max())
	}
	// The hole punched before the checkpoint survives the rewind.
	if v.Contains(4) {
		t.Fatal("pre-checkpoint hole resurrected")
	}
}
