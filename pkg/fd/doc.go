// Package fd implements a finite-domain constraint propagation kernel with
// chronological backtracking.
//
// The kernel has three cooperating layers:
//
//	Trail (undo log):
//	  - Every mutation of solver state is recorded before it happens
//	  - Checkpoints mark trail depths at search decisions
//	  - Rewinding a checkpoint restores all state in reverse order, O(1)
//	    amortized per mutation
//
//	Domain variables and reversible containers:
//	  - IntVar exposes bound/value queries and tightening operations
//	  - All mutation routes through the trail, so domains shrink going
//	    forward and grow back exactly on rewind
//	  - Reversible ints, bools, arrays, sparse sets, lists, bit vectors and
//	    bit matrices are available for propagator bookkeeping
//
//	Reaction queue (scheduler):
//	  - Propagators register reactions on variable events (bound, range,
//	    domain)
//	  - Two priority tiers: immediate reactions fully drain before any
//	    deferred reaction runs
//	  - Drain runs to a fixpoint or stops at the first failure, clearing
//	    the queue so the search loop can rewind
//
// Failure is an ordinary error chained to ErrFailed: mutation helpers return
// it on domain wipeout, propagators return early, and Drain maps it to the
// failed state. No partial propagation survives a failure; the caller rewinds
// to the last checkpoint and the trail undoes everything.
//
// Typical usage:
//
//	store := fd.NewStore()
//	x, _ := store.NewIntVar(0, 9, "x")
//	y, _ := store.NewIntVar(0, 9, "y")
//	ad, _ := fd.NewBoundsAllDifferent(store, []*fd.IntVar{x, y})
//	store.AddPropagator(ad)
//	if err := store.Drain(); err != nil {
//		// infeasible at the root
//	}
//	search := fd.NewSearch(store, []*fd.IntVar{x, y})
//	solutions, err := search.Solve(ctx, 0)
package fd
