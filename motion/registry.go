package motion

import (
	"fmt"
	"sort"
)

// CaseRegistry collects situation-code cases for one dispatch table as a
// handler builds them, then exports the table for a fan-out transition.
// Double registration is always a construction bug, never a silent
// overwrite.
type CaseRegistry struct {
	cases map[int]*MoveState
}

// NewCaseRegistry returns an empty registry.
func NewCaseRegistry() *CaseRegistry {
	return &CaseRegistry{cases: make(map[int]*MoveState)}
}

// Register binds one code to the entry state of its reaction chain.
func (r *CaseRegistry) Register(code int, s *MoveState) error {
	if s == nil {
		return fmt.Errorf("case %d: nil state", code)
	}
	if _, ok := r.cases[code]; ok {
		return fmt.Errorf("case %d registered twice", code)
	}
	r.cases[code] = s
	return nil
}

// BatchRegister binds several codes to the same entry state, for situations
// the handler reacts to identically.
func (r *CaseRegistry) BatchRegister(codes []int, s *MoveState) error {
	for _, code := range codes {
		if err := r.Register(code, s); err != nil {
			return err
		}
	}
	return nil
}

// EnsureCovered fails construction when any expected code has no case.
func (r *CaseRegistry) EnsureCovered(codes []int) error {
	var missing []int
	for _, code := range codes {
		if _, ok := r.cases[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return fmt.Errorf("uncovered cases: %v", missing)
	}
	return nil
}

// Codes returns the registered codes in ascending order.
func (r *CaseRegistry) Codes() []int {
	codes := make([]int, 0, len(r.cases))
	for code := range r.cases {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// Export returns a copy of the dispatch table.
func (r *CaseRegistry) Export() map[int]*MoveState {
	out := make(map[int]*MoveState, len(r.cases))
	for code, s := range r.cases {
		out[code] = s
	}
	return out
}
