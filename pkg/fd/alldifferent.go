// AllDifferent propagators.
//
// BoundsAllDifferent is the bounds-consistency algorithm of Lopez-Ortiz,
// Quimper, Tromp and van Beek: Hall intervals are detected with union-find
// forests over the sorted bound values, giving O(n log n) per call.
// ValueAllDifferent is the cheaper only-values variant: direct bound-value
// removal below a cost threshold, a pairwise disequality decomposition above
// it.

package fd

import (
	"fmt"
	"sort"

	"github.com/spjmurray/go-util/pkg/set"
	"github.com/spjmurray/go-util/pkg/slices"
)

// distinctVars rejects a variable list that is empty or mentions the same
// variable twice.
func distinctVars(vars []*IntVar) error {
	if len(vars) == 0 {
		return fmt.Errorf("alldifferent requires at least one variable: %w", ErrInvalidArgument)
	}
	ids := set.New[int]()
	for _, v := range vars {
		ids.Add(v.ID())
	}
	n := 0
	for range ids.All() {
		n++
	}
	if n != len(vars) {
		return fmt.Errorf("alldifferent mentions a variable twice: %w", ErrInvalidArgument)
	}
	return nil
}

// forest is a union-find structure over bound-rank positions, represented as
// a plain parent array with hand-rolled path compression. The array form is
// deliberate: the AllDifferent passes rebuild it from scratch every call, so
// it must stay allocation-light and cache friendly.
type forest []int

// pathMax follows parents upward and returns the representative.
func (f forest) pathMax(i int) int {
	for f[i] > i {
		i = f[i]
	}
	return i
}

// pathMin follows parents downward and returns the representative.
func (f forest) pathMin(i int) int {
	for f[i] < i {
		i = f[i]
	}
	return i
}

// pathSet compresses the path from start to end, pointing every node at to.
func (f forest) pathSet(start, end, to int) {
	for p := start; p != end; {
		next := f[p]
		f[p] = to
		p = next
	}
}

// adInterval is one variable's interval in the per-call scratch.
type adInterval struct {
	v        *IntVar
	min, max int
	minRank  int
	maxRank  int
}

// adScratch is rebuilt from the live variable bounds on every propagation
// call and discarded afterwards; it needs no reversibility because it is
// purely derived.
type adScratch struct {
	byMin  []*adInterval // sorted by min ascending
	byMax  []*adInterval // sorted by max ascending
	bounds []int         // deduplicated bound values with two sentinels
	nb     int
	tree   forest
	hall   forest
	diff   []int
}

// BoundsAllDifferent enforces pairwise distinctness with bounds consistency.
//
// Each call computes the tightest [min, max] achievable for every variable
// under the constraint, or fails when some value interval is asked to hold
// more variables than it has values (an over-subscribed Hall interval, the
// pigeonhole condition). It runs on range events at deferred priority: the
// scheduler re-invokes it until the overall fixpoint when its own tightening
// triggers further changes.
type BoundsAllDifferent struct {
	store *Store
	vars  []*IntVar
}

// NewBoundsAllDifferent creates the constraint over vars.
func NewBoundsAllDifferent(store *Store, vars []*IntVar) (*BoundsAllDifferent, error) {
	if err := distinctVars(vars); err != nil {
		return nil, err
	}
	varsCopy := make([]*IntVar, len(vars))
	copy(varsCopy, vars)
	return &BoundsAllDifferent{store: store, vars: varsCopy}, nil
}

// Variables implements Propagator.
func (c *BoundsAllDifferent) Variables() []*IntVar { return c.vars }

// String implements Propagator.
func (c *BoundsAllDifferent) String() string {
	return fmt.Sprintf("BoundsAllDifferent(%d vars)", len(c.vars))
}

// Post implements Propagator.
func (c *BoundsAllDifferent) Post() error {
	r := c.store.NewReaction(c, PriorityDeferred)
	for _, v := range c.vars {
		v.WhenRange(r)
	}
	c.store.Schedule(r)
	return nil
}

// Propagate implements Propagator.
func (c *BoundsAllDifferent) Propagate() error {
	if len(c.vars) < 2 {
		return nil
	}
	sc := c.buildScratch()
	if err := c.tightenMins(sc); err != nil {
		return err
	}
	if err := c.tightenMaxes(sc); err != nil {
		return err
	}
	// Apply only the bounds that actually moved, to avoid redundant
	// scheduling. A tightening that cascades re-enqueues this propagator
	// through the range events it triggers.
	for _, iv := range sc.byMin {
		if iv.min > iv.v.Min() {
			if err := iv.v.SetMin(iv.min); err != nil {
				return err
			}
		}
		if iv.max < iv.v.Max() {
			if err := iv.v.SetMax(iv.max); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildScratch sorts the intervals by min and by max and merges the distinct
// bound values (min_i and max_i+1) into one ascending array with a sentinel
// at each end, recording every interval's rank within it. Equal bounds keep
// their sorted position, so processing order is stable.
func (c *BoundsAllDifferent) buildScratch() *adScratch {
	n := len(c.vars)
	intervals := make([]adInterval, n)
	byMin := make([]*adInterval, n)
	byMax := make([]*adInterval, n)
	for i, v := range c.vars {
		intervals[i] = adInterval{v: v, min: v.Min(), max: v.Max()}
		byMin[i] = &intervals[i]
		byMax[i] = &intervals[i]
	}
	sort.SliceStable(byMin, func(a, b int) bool { return byMin[a].min < byMin[b].min })
	sort.SliceStable(byMax, func(a, b int) bool { return byMax[a].max < byMax[b].max })

	bounds := make([]int, 2*n+2)
	min, max := byMin[0].min, byMax[0].max+1
	last := min - 2
	bounds[0] = last

	i, j, nb := 0, 0, 0
	for {
		if i < n && min <= max {
			if min != last {
				nb++
				last = min
				bounds[nb] = last
			}
			byMin[i].minRank = nb
			i++
			if i < n {
				min = byMin[i].min
			}
		} else {
			if max != last {
				nb++
				last = max
				bounds[nb] = last
			}
			byMax[j].maxRank = nb
			j++
			if j == n {
				break
			}
			max = byMax[j].max + 1
		}
	}
	bounds[nb+1] = bounds[nb] + 2

	return &adScratch{
		byMin:  byMin,
		byMax:  byMax,
		bounds: bounds[:nb+2],
		nb:     nb,
		tree:   make(forest, nb+3),
		hall:   make(forest, nb+3),
		diff:   make([]int, nb+3),
	}
}

// tightenMins walks the intervals in increasing max order. tree points each
// bound-rank position at the next position with remaining capacity, diff
// holds that capacity, and hall points positions inside a saturated Hall
// interval at its right end. When an interval's demand overflows the values
// available up to its max, the constraint is infeasible.
func (c *BoundsAllDifferent) tightenMins(sc *adScratch) error {
	t, h, d, bounds := sc.tree, sc.hall, sc.diff, sc.bounds
	for i := 1; i <= sc.nb+1; i++ {
		t[i], h[i] = i-1, i-1
		d[i] = bounds[i] - bounds[i-1]
	}
	t[0], h[0], d[0] = 0, 0, 0

	for _, iv := range sc.byMax {
		x, y := iv.minRank, iv.maxRank
		z := t.pathMax(x + 1)
		j := t[z]
		d[z]--
		if d[z] == 0 {
			t[z] = z + 1
			z = t.pathMax(t[z])
			t[z] = j
		}
		t.pathSet(x+1, z, z)
		if d[z] < bounds[z]-bounds[y] {
			return failf("alldifferent: interval [%d, %d] over-subscribed", bounds[y], bounds[z]-1)
		}
		if h[x] > x {
			// min lies inside a saturated Hall interval; jump past it.
			w := h.pathMax(h[x])
			iv.min = bounds[w]
			h.pathSet(x, w, w)
		}
		if d[z] == bounds[z]-bounds[y] {
			// [bounds[y], bounds[z]) is now saturated; later intervals
			// starting inside it must jump past bounds[z].
			h.pathSet(h[y], j-1, y)
			h[y] = j - 1
		}
	}
	return nil
}

// tightenMaxes is the mirror-image pass: intervals in decreasing min order,
// parents pointing downward.
func (c *BoundsAllDifferent) tightenMaxes(sc *adScratch) error {
	t, h, d, bounds := sc.tree, sc.hall, sc.diff, sc.bounds
	for i := 0; i <= sc.nb; i++ {
		t[i], h[i] = i+1, i+1
		d[i] = bounds[i+1] - bounds[i]
	}
	t[sc.nb+1], h[sc.nb+1], d[sc.nb+1] = sc.nb+1, sc.nb+1, 0

	for k := len(sc.byMin) - 1; k >= 0; k-- {
		iv := sc.byMin[k]
		x, y := iv.maxRank, iv.minRank
		z := t.pathMin(x - 1)
		j := t[z]
		d[z]--
		if d[z] == 0 {
			t[z] = z - 1
			z = t.pathMin(t[z])
			t[z] = j
		}
		t.pathSet(x-1, z, z)
		if d[z] < bounds[y]-bounds[z] {
			return failf("alldifferent: interval [%d, %d] over-subscribed", bounds[z], bounds[y]-1)
		}
		if h[x] < x {
			w := h.pathMin(h[x])
			iv.max = bounds[w] - 1
			h.pathSet(x, w, w)
		}
		if d[z] == bounds[y]-bounds[z] {
			h.pathSet(h[y], j+1, y)
			h[y] = j + 1
		}
	}
	return nil
}

// DefaultDecompositionThreshold is the cost bound above which
// ValueAllDifferent posts pairwise disequalities instead of scanning
// domains. A tuning constant with no documented derivation; kept
// configurable.
const DefaultDecompositionThreshold = 0xFFFFFF

// ValueAllDifferentOptions configures the only-values variant.
type ValueAllDifferentOptions struct {
	// DecompositionThreshold overrides DefaultDecompositionThreshold when
	// positive.
	DecompositionThreshold int
}

// ValueAllDifferent enforces pairwise distinctness with exact per-value
// removal: whenever a variable becomes bound, its value is removed from
// every other variable in the constraint.
//
// When the estimated removal work (variable count times widest domain)
// exceeds the decomposition threshold, Post instead expands the constraint
// into pairwise NotEqual propagators. That trades precision bookkeeping for
// never paying an explicit domain scan; it is a complexity trade-off, not a
// correctness requirement.
type ValueAllDifferent struct {
	store     *Store
	vars      []*IntVar
	threshold int

	// active holds the indices of variables whose bound value has not yet
	// been swept out of the peers. Reversible, so backtracking re-arms it.
	active *RevSparseSet
}

// NewValueAllDifferent creates the constraint with default options.
func NewValueAllDifferent(store *Store, vars []*IntVar) (*ValueAllDifferent, error) {
	return NewValueAllDifferentWithOptions(store, vars, ValueAllDifferentOptions{})
}

// NewValueAllDifferentWithOptions creates the constraint.
func NewValueAllDifferentWithOptions(store *Store, vars []*IntVar, opts ValueAllDifferentOptions) (*ValueAllDifferent, error) {
	if err := distinctVars(vars); err != nil {
		return nil, err
	}
	threshold := opts.DecompositionThreshold
	if threshold <= 0 {
		threshold = DefaultDecompositionThreshold
	}
	varsCopy := make([]*IntVar, len(vars))
	copy(varsCopy, vars)
	return &ValueAllDifferent{store: store, vars: varsCopy, threshold: threshold}, nil
}

// Variables implements Propagator.
func (c *ValueAllDifferent) Variables() []*IntVar { return c.vars }

// String implements Propagator.
func (c *ValueAllDifferent) String() string {
	return fmt.Sprintf("ValueAllDifferent(%d vars)", len(c.vars))
}

// Post implements Propagator.
func (c *ValueAllDifferent) Post() error {
	widest := 0
	for _, v := range c.vars {
		if w := v.Max() - v.Min() + 1; w > widest {
			widest = w
		}
	}
	if len(c.vars)*widest > c.threshold {
		for x, y := range slices.Permute(c.vars) {
			ne, err := NewNotEqual(c.store, x, y, 0)
			if err != nil {
				return err
			}
			if err := c.store.AddPropagator(ne); err != nil {
				return err
			}
		}
		return nil
	}
	c.active = NewRevSparseSet(c.store.Trail(), len(c.vars))
	r := c.store.NewReaction(c, PriorityImmediate)
	for _, v := range c.vars {
		v.WhenBound(r)
	}
	c.store.Schedule(r)
	return nil
}

// Propagate implements Propagator.
func (c *ValueAllDifferent) Propagate() error {
	if c.active == nil {
		// Decomposed at post time; the NotEqual propagators do the work.
		return nil
	}
	for {
		swept := false
		for i := 0; i < c.active.Size(); i++ {
			vi := c.active.At(i)
			v := c.vars[vi]
			if !v.Bound() {
				continue
			}
			val := v.Value()
			c.active.Remove(vi)
			// Sweep every peer, already-processed ones included: interior
			// removal no-ops on a bounds-only domain, so a processed
			// variable bound to val is only caught here, as a wipeout.
			for j, peer := range c.vars {
				if j == vi {
					continue
				}
				if err := peer.RemoveValue(val); err != nil {
					return err
				}
			}
			// Removals may have bound further variables; rescan.
			swept = true
			break
		}
		if !swept {
			return nil
		}
	}
}
