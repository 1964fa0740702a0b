package sense

import (
	"reflect"
	"testing"
)

// scripted returns a sampler that replays the given packs, repeating the
// last one once exhausted.
func scripted(packs ...[]float64) Sampler {
	i := 0
	return func() []float64 {
		p := packs[i]
		if i < len(packs)-1 {
			i++
		}
		return p
	}
}

func TestBoolBreakerTracksReadings(t *testing.T) {
	b := NewBuilder([]Sampler{scripted(
		[]float64{0.5},
		[]float64{2.0},
	)})
	fire, err := b.Bool([]Usage{{Sampler: 0, Channels: []int{0}}}, "s0 > 1.0", nil)
	if err != nil {
		t.Fatalf("Bool failed: %v", err)
	}
	if fire() {
		t.Errorf("breaker fired on reading 0.5, threshold 1.0")
	}
	if !fire() {
		t.Errorf("breaker did not fire on reading 2.0, threshold 1.0")
	}
}

func TestSymbolsBoundInUsageOrder(t *testing.T) {
	adc := func() []float64 { return []float64{10, 20, 30} }
	io := func() []float64 { return []float64{1, 0} }
	b := NewBuilder([]Sampler{adc, io})

	// s0 = adc[2], s1 = adc[0], s2 = io[1]: declaration order, not channel order.
	usages := []Usage{
		{Sampler: 0, Channels: []int{2, 0}},
		{Sampler: 1, Channels: []int{1}},
	}
	code, err := b.Int(usages, "(s0 == 30.0 ? 1 : 0) + (s1 == 10.0 ? 2 : 0) + (s2 == 0.0 ? 4 : 0)", nil)
	if err != nil {
		t.Fatalf("Int failed: %v", err)
	}
	if got := code(); got != 7 {
		t.Errorf("symbol binding order wrong: code = %d, want 7", got)
	}
}

func TestIdenticalConstructionReturnsIdenticalClosure(t *testing.T) {
	b := NewBuilder([]Sampler{scripted([]float64{0})})
	usages := []Usage{{Sampler: 0, Channels: []int{0}}}

	f1, err := b.Bool(usages, "s0 > 1.0", nil)
	if err != nil {
		t.Fatalf("first Bool failed: %v", err)
	}
	f2, err := b.Bool(usages, "s0 > 1.0", nil)
	if err != nil {
		t.Fatalf("second Bool failed: %v", err)
	}
	if reflect.ValueOf(f1).Pointer() != reflect.ValueOf(f2).Pointer() {
		t.Errorf("identical construction returned distinct closures")
	}

	f3, err := b.Bool(usages, "s0 > 2.0", nil)
	if err != nil {
		t.Fatalf("third Bool failed: %v", err)
	}
	if reflect.ValueOf(f1).Pointer() == reflect.ValueOf(f3).Pointer() {
		t.Errorf("different source shared a cached closure")
	}
}

func TestCacheKeyedByExtraNames(t *testing.T) {
	b := NewBuilder([]Sampler{scripted([]float64{0})})
	usages := []Usage{{Sampler: 0, Channels: []int{0}}}

	f1, err := b.Int(usages, "helper()", map[string]any{"helper": func() int { return 1 }})
	if err != nil {
		t.Fatalf("Int with extra failed: %v", err)
	}
	f2, err := b.Int(usages, "helper()", map[string]any{"helper": func() int { return 1 }})
	if err != nil {
		t.Fatalf("second Int with extra failed: %v", err)
	}
	if reflect.ValueOf(f1).Pointer() != reflect.ValueOf(f2).Pointer() {
		t.Errorf("same extra names produced distinct closures")
	}
}

func TestExtraHelperReachable(t *testing.T) {
	b := NewBuilder([]Sampler{scripted([]float64{5})})
	calls := 0
	helper := func() float64 {
		calls++
		return 5
	}
	fire, err := b.Bool(
		[]Usage{{Sampler: 0, Channels: []int{0}}},
		"s0 == base()",
		map[string]any{"base": helper},
	)
	if err != nil {
		t.Fatalf("Bool failed: %v", err)
	}
	if !fire() {
		t.Errorf("breaker did not fire with matching baseline")
	}
	if calls != 1 {
		t.Errorf("helper called %d times, want 1", calls)
	}
}

func TestSamplerIndexOutOfRange(t *testing.T) {
	b := NewBuilder([]Sampler{scripted([]float64{0})})
	if _, err := b.Bool([]Usage{{Sampler: 3, Channels: []int{0}}}, "s0 > 0.0", nil); err == nil {
		t.Errorf("expected error for sampler index 3 with 1 group")
	}
}

func TestBadSourceRejected(t *testing.T) {
	b := NewBuilder([]Sampler{scripted([]float64{0})})
	if _, err := b.Bool([]Usage{{Sampler: 0, Channels: []int{0}}}, "s0 >", nil); err == nil {
		t.Errorf("expected compile error for truncated source")
	}
}

func TestUsageSliceClonedAtBuild(t *testing.T) {
	b := NewBuilder([]Sampler{scripted([]float64{1, 2})})
	channels := []int{0}
	fire, err := b.Bool([]Usage{{Sampler: 0, Channels: channels}}, "s0 == 1.0", nil)
	if err != nil {
		t.Fatalf("Bool failed: %v", err)
	}
	channels[0] = 1
	if !fire() {
		t.Errorf("breaker observed caller mutation of the channel slice")
	}
}
