// The Store owns one propagation kernel instance: the trail, the reaction
// queue, all variables and all propagators. It is single threaded by
// contract; independent stores share nothing and need no locking.

package fd

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Kernel errors. Domain wipeouts and Hall violations are expected,
// recoverable conditions: they chain to ErrFailed and tell the search loop a
// branch is infeasible. Invariant violations panic instead.
var (
	// ErrFailed is the uniform failure condition raised by propagation.
	ErrFailed = errors.New("propagation failed")
	// ErrInvalidArgument reports unusable model-build input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// failf builds a failure chained to ErrFailed.
func failf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrFailed)...)
}

// DefaultMaxExplicitWidth is the widest initial range that gets an explicit
// bit-vector domain. Wider variables keep bounds only and ignore interior
// value removals, which is sound but less precise.
const DefaultMaxExplicitWidth = 4096

// Options configures a Store.
type Options struct {
	// MaxExplicitWidth overrides DefaultMaxExplicitWidth when positive.
	MaxExplicitWidth int
}

// Store is one propagation kernel instance.
type Store struct {
	trail *Trail
	queue *scheduler
	vars  []*IntVar
	props []Propagator

	// Variables changed since the last fixpoint; their OldMin/OldMax
	// deltas are synced when Drain returns or the store rewinds.
	dirtyVars []*IntVar

	maxExplicitWidth int
}

// NewStore creates an empty store with default options.
func NewStore() *Store { return NewStoreWithOptions(Options{}) }

// NewStoreWithOptions creates an empty store.
func NewStoreWithOptions(opts Options) *Store {
	width := opts.MaxExplicitWidth
	if width <= 0 {
		width = DefaultMaxExplicitWidth
	}
	return &Store{
		trail:            NewTrail(),
		queue:            &scheduler{},
		maxExplicitWidth: width,
	}
}

// Trail returns the store's trail, for building custom reversible state.
func (s *Store) Trail() *Trail { return s.trail }

// NumVariables returns the number of variables created so far.
func (s *Store) NumVariables() int { return len(s.vars) }

// Variable returns the variable with the given id.
func (s *Store) Variable(id int) *IntVar { return s.vars[id] }

// Failed reports whether the last Drain ended in failure and the store has
// not been rewound since.
func (s *Store) Failed() bool { return s.queue.state == stateFailed }

// NewIntVar creates a variable with domain [lo, hi]. Ranges no wider than
// the explicit-width limit get a bit-vector domain supporting interior
// holes; wider ranges keep bounds only.
func (s *Store) NewIntVar(lo, hi int, name string) (*IntVar, error) {
	if lo > hi {
		return nil, fmt.Errorf("variable %q: empty range [%d, %d]: %w", name, lo, hi, ErrInvalidArgument)
	}
	explicit := hi-lo+1 <= s.maxExplicitWidth
	return newIntVar(s, lo, hi, name, nil, explicit), nil
}

// NewIntVarFromValues creates a variable whose domain is exactly the given
// value set.
func (s *Store) NewIntVarFromValues(values []int, name string) (*IntVar, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("variable %q: empty value set: %w", name, ErrInvalidArgument)
	}
	sorted := dedupeSorted(append([]int(nil), values...))
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi-lo+1 > s.maxExplicitWidth {
		return nil, fmt.Errorf("variable %q: value spread %d exceeds explicit width limit %d: %w",
			name, hi-lo+1, s.maxExplicitWidth, ErrInvalidArgument)
	}
	return newIntVar(s, lo, hi, name, sorted, true), nil
}

// NewReaction creates a reaction running p at the given priority. Called by
// propagators during Post.
func (s *Store) NewReaction(p Propagator, priority Priority) *Reaction {
	return &Reaction{
		prop:      p,
		priority:  priority,
		inhibited: NewRevBool(s.trail, false),
	}
}

// Schedule enqueues a reaction for the next Drain. Post implementations use
// it to request their initial propagation.
func (s *Store) Schedule(r *Reaction) { s.queue.push(r) }

// AddPropagator registers p: Post runs once, registering reactions and
// possibly pruning constants. The propagator's initial run happens on the
// next Drain.
func (s *Store) AddPropagator(p Propagator) error {
	if err := p.Post(); err != nil {
		return err
	}
	s.props = append(s.props, p)
	return nil
}

// Checkpoint marks the current state for a search decision.
func (s *Store) Checkpoint() Mark {
	return s.trail.Checkpoint()
}

// RewindTo undoes every change made since mark m and returns the scheduler
// to idle with empty queues.
func (s *Store) RewindTo(m Mark) {
	s.trail.RewindTo(m)
	s.queue.reset()
	s.syncDeltas()
}

// Drain runs pending reactions to a fixpoint or to the first failure.
//
// Within a tier reactions fire in FIFO enqueue order and immediate reactions
// fully drain before any deferred reaction runs. On failure the queue is
// cleared and the error (chained to ErrFailed) is returned; the caller is
// expected to rewind. Draining an already-failed store is a caller bug.
func (s *Store) Drain() error {
	if s.queue.state == stateFailed {
		panic("fd: Drain on failed store without rewind")
	}
	s.queue.state = stateDraining
	for {
		r := s.queue.pop()
		if r == nil {
			break
		}
		if r.Inhibited() {
			continue
		}
		log.Tracef("fd: propagate %v (priority %d)", r.prop, r.priority)
		if err := r.prop.Propagate(); err != nil {
			s.queue.clear()
			s.queue.state = stateFailed
			s.syncDeltas()
			log.Debugf("fd: drain failed: %v", err)
			return err
		}
	}
	s.queue.state = stateIdle
	s.syncDeltas()
	return nil
}

// rangeChanged schedules the reactions triggered by a bound change on v.
func (s *Store) rangeChanged(v *IntVar) {
	s.scheduleList(v.onRange)
	s.scheduleList(v.onDomain)
	if v.Bound() {
		s.scheduleList(v.onBound)
	}
}

// domainChanged schedules the reactions triggered by an interior removal.
func (s *Store) domainChanged(v *IntVar) {
	s.scheduleList(v.onDomain)
}

func (s *Store) scheduleList(list *RevList[*Reaction]) {
	for i := 0; i < list.Len(); i++ {
		s.queue.push(list.At(i))
	}
}

// syncDeltas ends the delta window: OldMin/OldMax of every changed variable
// collapse to the current bounds.
func (s *Store) syncDeltas() {
	for _, v := range s.dirtyVars {
		v.dirty = false
	}
	s.dirtyVars = s.dirtyVars[:0]
}
