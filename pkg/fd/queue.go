// The reaction queue. Variable mutations enqueue reactions; Drain pops them
// in priority order and runs their propagators to a fixpoint or to failure.

package fd

// Priority selects the scheduling tier of a reaction. Immediate reactions
// always fully drain before any deferred reaction runs: cheap local
// inference first, expensive global inference later.
type Priority uint8

const (
	// PriorityImmediate is for cheap, local propagation steps.
	PriorityImmediate Priority = iota
	// PriorityDeferred is for expensive, global propagation steps.
	PriorityDeferred

	numPriorities
)

// queueState is the scheduler's state machine.
type queueState uint8

const (
	stateIdle queueState = iota
	stateDraining
	stateFailed
)

// Reaction is a propagator's registered callback: which propagator to run,
// at what priority, and whether it has been inhibited for the remainder of
// the current search node.
//
// Reactions are created once during a propagator's registration phase via
// Store.NewReaction and then shared between the variable event lists they
// are registered on.
type Reaction struct {
	prop      Propagator
	priority  Priority
	inhibited RevBool
	queued    bool
}

// Priority returns the reaction's scheduling tier.
func (r *Reaction) Priority() Priority { return r.priority }

// Inhibited reports whether the reaction is dead for this search node.
func (r *Reaction) Inhibited() bool { return r.inhibited.Value() }

// Inhibit kills the reaction until search backtracks past the current
// checkpoint. The flag is stored reversibly, so revival is automatic.
func (r *Reaction) Inhibit() { r.inhibited.SetValue(true) }

// fifo is one priority tier. Popping advances a head index instead of
// shifting; the slice is compacted whenever it empties.
type fifo struct {
	items []*Reaction
	head  int
}

func (f *fifo) push(r *Reaction) {
	f.items = append(f.items, r)
}

func (f *fifo) pop() *Reaction {
	if f.head >= len(f.items) {
		return nil
	}
	r := f.items[f.head]
	f.head++
	if f.head == len(f.items) {
		f.items = f.items[:0]
		f.head = 0
	}
	return r
}

func (f *fifo) empty() bool { return f.head >= len(f.items) }

// scheduler holds the pending reactions of one store.
type scheduler struct {
	tiers [numPriorities]fifo
	state queueState
}

// push enqueues a reaction unless it is already queued or inhibited.
// Coalescing is safe because propagators read current variable state, never
// event payloads: running once after all events equals running after each.
func (q *scheduler) push(r *Reaction) {
	if r.queued || r.Inhibited() {
		return
	}
	r.queued = true
	q.tiers[r.priority].push(r)
}

// pop returns the next reaction in priority order, FIFO within a tier, or
// nil when both tiers are empty.
func (q *scheduler) pop() *Reaction {
	for p := range q.tiers {
		if r := q.tiers[p].pop(); r != nil {
			r.queued = false
			return r
		}
	}
	return nil
}

// clear discards all pending reactions, resetting their queued flags.
func (q *scheduler) clear() {
	for p := range q.tiers {
		for {
			r := q.tiers[p].pop()
			if r == nil {
				break
			}
			r.queued = false
		}
	}
}

// reset returns the scheduler to idle with empty queues. Called after a
// rewind.
func (q *scheduler) reset() {
	q.clear()
	q.state = stateIdle
}

func (q *scheduler) emptyAll() bool {
	for p := range q.tiers {
		if !q.tiers[p].empty() {
			return false
		}
	}
	return true
}
