package motion

import "fmt"

// ChainComposer accumulates a strictly alternating
// state-transition-state-... sequence and wires the straight-line linkage
// on export. Violating the alternation poisons the composer; the error
// sticks and surfaces from Export so construction sites can chain calls
// without checking each one.
type ChainComposer struct {
	states      []*MoveState
	transitions []*Transition
	wantState   bool
	dispatched  bool
	err         error
}

// NewChainComposer returns an empty composer expecting a state first.
func NewChainComposer() *ChainComposer {
	return &ChainComposer{wantState: true}
}

// Init clears the composer for reuse, dropping any sticky error.
func (c *ChainComposer) Init() *ChainComposer {
	c.states = nil
	c.transitions = nil
	c.wantState = true
	c.dispatched = false
	c.err = nil
	return c
}

// AddState appends the next node. Adding a state when a transition is due
// poisons the composer.
func (c *ChainComposer) AddState(s *MoveState) *ChainComposer {
	if c.err != nil {
		return c
	}
	if !c.wantState {
		c.err = fmt.Errorf("chain position %d: expected a transition, got a state", len(c.states)+len(c.transitions))
		return c
	}
	c.states = append(c.states, s)
	c.wantState = false
	return c
}

// AddTransition appends the next edge.
func (c *ChainComposer) AddTransition(t *Transition) *ChainComposer {
	if c.err != nil {
		return c
	}
	if c.wantState {
		c.err = fmt.Errorf("chain position %d: expected a state, got a transition", len(c.states)+len(c.transitions))
		return c
	}
	if c.dispatched {
		c.err = fmt.Errorf("chain position %d: transition after a dispatch table", len(c.states)+len(c.transitions))
		return c
	}
	if err := t.Validate(); err != nil {
		c.err = err
		return c
	}
	if len(t.Branches) > 0 {
		// Straight-line linkage ends at a fan-out; the remaining graph is
		// defined entirely by the dispatch table.
		c.dispatched = true
	}
	c.transitions = append(c.transitions, t)
	c.wantState = true
	return c
}

// Concat splices a pre-built chain fragment after the current tail. The
// fragment must itself begin with a state; its internal wiring is assumed
// already consistent.
func (c *ChainComposer) Concat(states []*MoveState, transitions []*Transition) *ChainComposer {
	if c.err != nil {
		return c
	}
	if len(states) == 0 {
		c.err = fmt.Errorf("concat: empty fragment")
		return c
	}
	if !c.wantState {
		c.err = fmt.Errorf("concat: expected a transition before splicing")
		return c
	}
	c.states = append(c.states, states...)
	c.transitions = append(c.transitions, transitions...)
	c.wantState = len(states) == len(transitions)
	return c
}

// Export wires each transition to its surrounding states, returns the
// accumulated graph and resets the composer. A chain of N elements yields
// ceil(N/2) states and floor(N/2) transitions.
func (c *ChainComposer) Export() ([]*MoveState, []*Transition, error) {
	if c.err != nil {
		err := c.err
		c.Init()
		return nil, nil, err
	}
	if len(c.states) == 0 {
		c.Init()
		return nil, nil, fmt.Errorf("export: empty chain")
	}
	for i, t := range c.transitions {
		if t.From == nil {
			t.From = c.states[i]
		}
		if t.Next == nil && len(t.Branches) == 0 && i+1 < len(c.states) {
			t.Next = c.states[i+1]
		}
	}
	states, transitions := c.states, c.transitions
	c.Init()
	return states, transitions, nil
}
