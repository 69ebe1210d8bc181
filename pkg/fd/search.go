// Labeling search over a store. The search loop is a plain consumer of the
// kernel boundary: checkpoint, decide, drain, inspect, rewind.

package fd

import "context"

// Search enumerates solutions by depth-first labeling with chronological
// backtracking. Variable order is first-fail (smallest domain first), value
// order ascending.
type Search struct {
	store *Store
	vars  []*IntVar
}

// NewSearch creates a search over the given decision variables. Variables
// not listed are constrained but never labeled.
func NewSearch(store *Store, vars []*IntVar) *Search {
	varsCopy := make([]*IntVar, len(vars))
	copy(varsCopy, vars)
	return &Search{store: store, vars: varsCopy}
}

// Solve runs the initial propagation and then searches for up to limit
// solutions (all of them when limit <= 0). Each solution maps decision
// variable position to its value. Returns early with ctx.Err on
// cancellation.
func (s *Search) Solve(ctx context.Context, limit int) ([][]int, error) {
	if err := s.store.Drain(); err != nil {
		// Infeasible at the root: no solutions, not a caller error.
		return nil, nil
	}

	var solutions [][]int

	type frame struct {
		mark    Mark
		v       *IntVar
		choices []int
		next    int
	}
	var stack []frame

	push := func() bool {
		v := s.selectVariable()
		if v == nil {
			return false
		}
		stack = append(stack, frame{
			mark:    s.store.Checkpoint(),
			v:       v,
			choices: v.DomainValues(),
		})
		return true
	}

	if !push() {
		// Everything bound by root propagation.
		solutions = append(solutions, s.snapshot())
		return solutions, nil
	}

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			return solutions, ctx.Err()
		default:
		}

		f := &stack[len(stack)-1]
		s.store.RewindTo(f.mark)

		if f.next >= len(f.choices) {
			stack = stack[:len(stack)-1]
			continue
		}
		val := f.choices[f.next]
		f.next++

		if err := f.v.SetValue(val); err != nil {
			continue
		}
		if err := s.store.Drain(); err != nil {
			continue
		}

		if !push() {
			solutions = append(solutions, s.snapshot())
			if limit > 0 && len(solutions) >= limit {
				s.store.RewindTo(stack[0].mark)
				return solutions, nil
			}
		}
	}
	return solutions, nil
}

// selectVariable returns the unbound decision variable with the smallest
// domain, or nil when all are bound.
func (s *Search) selectVariable() *IntVar {
	var best *IntVar
	for _, v := range s.vars {
		if v.Bound() {
			continue
		}
		if best == nil || v.Size() < best.Size() {
			best = v
		}
	}
	return best
}

// snapshot records the current values of the decision variables.
func (s *Search) snapshot() []int {
	sol := make([]int, len(s.vars))
	for i, v := range s.vars {
		sol[i] = v.Value()
	}
	return sol
}
