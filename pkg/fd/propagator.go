// The propagator contract and the basic binary propagators.

package fd

import "fmt"

// Propagator is a unit of constraint logic.
//
// Post runs once at model-build time: it registers reactions on the
// propagator's variables and may immediately reduce domains for constants.
// Propagate is the tightening procedure, invoked first via the initial
// schedule requested in Post and thereafter through reactions. It must be
// idempotent under coalescing: it reads current variable state, never event
// payloads, so running once after several events equals running after each.
//
// Propagate reports failure by returning an error chained to ErrFailed and
// returning early; the drain loop catches it, clears the queue and moves the
// store to the failed state.
type Propagator interface {
	Post() error
	Propagate() error
	Variables() []*IntVar
	String() string
}

// NotEqual enforces x != y + offset.
//
// Propagation is singleton-based: once either side is bound, its value is
// removed from the other side. This runs on bound events at immediate
// priority; it is the cheap local inference the deferred global propagators
// rely on.
type NotEqual struct {
	store  *Store
	x, y   *IntVar
	offset int
}

// NewNotEqual creates the constraint x != y + offset.
func NewNotEqual(store *Store, x, y *IntVar, offset int) (*NotEqual, error) {
	if x == nil || y == nil {
		return nil, fmt.Errorf("NotEqual requires non-nil variables: %w", ErrInvalidArgument)
	}
	return &NotEqual{store: store, x: x, y: y, offset: offset}, nil
}

// Variables returns [x, y]. Implements Propagator.
func (c *NotEqual) Variables() []*IntVar { return []*IntVar{c.x, c.y} }

// String implements Propagator.
func (c *NotEqual) String() string {
	if c.offset == 0 {
		return fmt.Sprintf("%s != %s", c.x.Name(), c.y.Name())
	}
	return fmt.Sprintf("%s != %s + %d", c.x.Name(), c.y.Name(), c.offset)
}

// Post implements Propagator.
func (c *NotEqual) Post() error {
	if c.x == c.y {
		if c.offset == 0 {
			return failf("%s", c.String())
		}
		// x != x + offset with offset != 0 always holds.
		return nil
	}
	r := c.store.NewReaction(c, PriorityImmediate)
	c.x.WhenBound(r)
	c.y.WhenBound(r)
	c.store.Schedule(r)
	return nil
}

// Propagate implements Propagator.
func (c *NotEqual) Propagate() error {
	if c.x.Bound() {
		if err := c.y.RemoveValue(c.x.Value() - c.offset); err != nil {
			return err
		}
	}
	if c.y.Bound() {
		if err := c.x.RemoveValue(c.y.Value() + c.offset); err != nil {
			return err
		}
	}
	return nil
}

// LessOrEqual enforces x + offset <= y with O(1) bounds propagation: raise
// min(y) to min(x)+offset, lower max(x) to max(y)-offset. Intentionally not
// arc-consistent; bounds reasoning is all an ordering constraint needs.
type LessOrEqual struct {
	store  *Store
	x, y   *IntVar
	offset int
}

// NewLessOrEqual creates the constraint x + offset <= y.
func NewLessOrEqual(store *Store, x, y *IntVar, offset int) (*LessOrEqual, error) {
	if x == nil || y == nil {
		return nil, fmt.Errorf("LessOrEqual requires non-nil variables: %w", ErrInvalidArgument)
	}
	return &LessOrEqual{store: store, x: x, y: y, offset: offset}, nil
}

// Variables returns [x, y]. Implements Propagator.
func (c *LessOrEqual) Variables() []*IntVar { return []*IntVar{c.x, c.y} }

// String implements Propagator.
func (c *LessOrEqual) String() string {
	if c.offset == 0 {
		return fmt.Sprintf("%s <= %s", c.x.Name(), c.y.Name())
	}
	return fmt.Sprintf("%s + %d <= %s", c.x.Name(), c.offset, c.y.Name())
}

// Post implements Propagator.
func (c *LessOrEqual) Post() error {
	if c.x == c.y {
		if c.offset > 0 {
			return failf("%s", c.String())
		}
		return nil
	}
	r := c.store.NewReaction(c, PriorityImmediate)
	c.x.WhenRange(r)
	c.y.WhenRange(r)
	c.store.Schedule(r)
	return nil
}

// Propagate implements Propagator.
func (c *LessOrEqual) Propagate() error {
	if err := c.y.SetMin(c.x.Min() + c.offset); err != nil {
		return err
	}
	return c.x.SetMax(c.y.Max() - c.offset)
}
