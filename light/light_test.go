package light

import (
	"errors"
	"testing"
)

// recDriver records the last command it received.
type recDriver struct {
	all   []Color
	pairs [][2]Color
	fail  error
}

func (d *recDriver) SetAll(c Color) error {
	if d.fail != nil {
		return d.fail
	}
	d.all = append(d.all, c)
	return nil
}

func (d *recDriver) SetPair(a, b Color) error {
	if d.fail != nil {
		return d.fail
	}
	d.pairs = append(d.pairs, [2]Color{a, b})
	return nil
}

func TestSetterDispatchesPairOrAll(t *testing.T) {
	drv := &recDriver{}
	r := NewRegistry(drv, nil)

	pair, err := r.Setter("edge recovery", Red, Yellow)
	if err != nil {
		t.Fatalf("Setter failed: %v", err)
	}
	pair()
	if len(drv.pairs) != 1 || drv.pairs[0] != [2]Color{Red, Yellow} {
		t.Errorf("pair command not delivered: %v", drv.pairs)
	}

	solid, err := r.Setter("charging", Green, Green)
	if err != nil {
		t.Fatalf("Setter failed: %v", err)
	}
	solid()
	if len(drv.all) != 1 || drv.all[0] != Green {
		t.Errorf("solid command not delivered: %v", drv.all)
	}
}

func TestPairReuseForSecondPurposeRejected(t *testing.T) {
	r := NewRegistry(Noop{}, nil)
	if _, err := r.Setter("edge recovery", Red, Yellow); err != nil {
		t.Fatalf("Setter failed: %v", err)
	}
	if _, err := r.Setter("charging", Red, Yellow); err == nil {
		t.Errorf("expected error reusing a pair for a second purpose")
	}
}

func TestMirroredPairRejected(t *testing.T) {
	r := NewRegistry(Noop{}, nil)
	if _, err := r.Setter("edge recovery", Red, Yellow); err != nil {
		t.Fatalf("Setter failed: %v", err)
	}
	if _, err := r.Setter("charging", Yellow, Red); err == nil {
		t.Errorf("expected error for the mirrored pair under a second purpose")
	}
}

func TestSamePurposeReRegistersQuietly(t *testing.T) {
	r := NewRegistry(Noop{}, nil)
	if _, err := r.Setter("edge recovery", Red, Yellow); err != nil {
		t.Fatalf("first Setter failed: %v", err)
	}
	// Graphs are built per run mode; the same handler may register its
	// signal more than once.
	if _, err := r.Setter("edge recovery", Red, Yellow); err != nil {
		t.Errorf("re-registration under the same purpose failed: %v", err)
	}
	if r.Purposes() != 1 {
		t.Errorf("Purposes() = %d, want 1", r.Purposes())
	}
}

func TestSetterSwallowsDriverErrors(t *testing.T) {
	drv := &recDriver{fail: errors.New("bus gone")}
	r := NewRegistry(drv, nil)
	set, err := r.Setter("launch", Orange, White)
	if err != nil {
		t.Fatalf("Setter failed: %v", err)
	}
	set() // must not panic; failure is logged, not returned
}
