// Package sense builds situation breakers: zero-argument closures that read a
// declared slice of sampler channels, bind the readings to symbols s0..sn and
// evaluate a generated expr source against them. Breakers are the predicates
// the movement graph polls to decide when and where a transition fires.
//
// Sources are always produced by fmt.Sprintf with interpolated configuration
// values, so the builder never sees invalid expr. Construction is memoized:
// the cache key captures every configuration value that reached the source,
// and identical construction returns the identical closure. Downstream graph
// deduplication relies on that pointer stability.
package sense

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Sampler produces one fixed-size ordered burst of readings on demand.
type Sampler func() []float64

// Usage selects the channels of one sampler group a breaker needs. Symbols
// are assigned in declaration order across usages: the first channel of the
// first usage is s0, and so on.
type Usage struct {
	Sampler  int
	Channels []int
}

// BoolBreaker reports whether its condition currently holds.
type BoolBreaker func() bool

// IntBreaker computes a situation code from the current readings.
type IntBreaker func() int

// Builder compiles breaker sources against a fixed set of sampler groups.
type Builder struct {
	samplers []Sampler

	mu    sync.Mutex
	bools map[string]BoolBreaker
	ints  map[string]IntBreaker
}

// NewBuilder wraps the sampler groups in declaration order.
func NewBuilder(samplers []Sampler) *Builder {
	return &Builder{
		samplers: samplers,
		bools:    make(map[string]BoolBreaker),
		ints:     make(map[string]IntBreaker),
	}
}

// Bool builds (or returns the cached) boolean breaker for the given usages
// and source. Entries of extra are bound into the evaluation environment
// alongside the symbols; helper closures like baseline getters go there.
func (b *Builder) Bool(usages []Usage, src string, extra map[string]any) (BoolBreaker, error) {
	key := cacheKey(usages, src, extra)

	b.mu.Lock()
	defer b.mu.Unlock()
	if fn, ok := b.bools[key]; ok {
		return fn, nil
	}

	program, err := expr.Compile(src, expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile bool breaker: %w (source: %s)", err, src)
	}
	bind, err := b.binder(usages, extra)
	if err != nil {
		return nil, err
	}

	fn := func() bool {
		out, err := vm.Run(program, bind())
		if err != nil {
			slog.Error("bool breaker evaluation failed", "error", err, "source", src)
			return false
		}
		return out.(bool)
	}
	b.bools[key] = fn
	return fn, nil
}

// Int builds (or returns the cached) integer-code breaker.
func (b *Builder) Int(usages []Usage, src string, extra map[string]any) (IntBreaker, error) {
	key := cacheKey(usages, src, extra)

	b.mu.Lock()
	defer b.mu.Unlock()
	if fn, ok := b.ints[key]; ok {
		return fn, nil
	}

	program, err := expr.Compile(src, expr.AsInt())
	if err != nil {
		return nil, fmt.Errorf("compile int breaker: %w (source: %s)", err, src)
	}
	bind, err := b.binder(usages, extra)
	if err != nil {
		return nil, err
	}

	fn := func() int {
		out, err := vm.Run(program, bind())
		if err != nil {
			slog.Error("int breaker evaluation failed", "error", err, "source", src)
			return 0
		}
		return out.(int)
	}
	b.ints[key] = fn
	return fn, nil
}

// binder validates the usages and returns the per-poll environment factory.
func (b *Builder) binder(usages []Usage, extra map[string]any) (func() map[string]any, error) {
	for _, u := range usages {
		if u.Sampler < 0 || u.Sampler >= len(b.samplers) {
			return nil, fmt.Errorf("sampler index %d out of range (have %d groups)", u.Sampler, len(b.samplers))
		}
	}
	usages = cloneUsages(usages)

	n := 0
	for _, u := range usages {
		n += len(u.Channels)
	}

	return func() map[string]any {
		env := make(map[string]any, n+len(extra))
		sym := 0
		for _, u := range usages {
			readings := b.samplers[u.Sampler]()
			for _, ch := range u.Channels {
				var v float64
				if ch >= 0 && ch < len(readings) {
					v = readings[ch]
				} else {
					slog.Error("sampler channel out of range", "sampler", u.Sampler, "channel", ch, "got", len(readings))
				}
				env[fmt.Sprintf("s%d", sym)] = v
				sym++
			}
		}
		for k, v := range extra {
			env[k] = v
		}
		return env
	}, nil
}

// cacheKey canonicalizes everything that shaped the breaker. Extra entries
// contribute by name only: their values are helper closures chosen by the
// same configuration that produced the source.
func cacheKey(usages []Usage, src string, extra map[string]any) string {
	var sb strings.Builder
	for _, u := range usages {
		fmt.Fprintf(&sb, "u%d%v;", u.Sampler, u.Channels)
	}
	sb.WriteString("src:")
	sb.WriteString(src)
	if len(extra) > 0 {
		names := make([]string, 0, len(extra))
		for k := range extra {
			names = append(names, k)
		}
		sort.Strings(names)
		sb.WriteString(";ctx:")
		sb.WriteString(strings.Join(names, ","))
	}
	return sb.String()
}

func cloneUsages(usages []Usage) []Usage {
	out := make([]Usage, len(usages))
	for i, u := range usages {
		out[i] = Usage{Sampler: u.Sampler, Channels: append([]int(nil), u.Channels...)}
	}
	return out
}
