// Package light is the status side-channel: behavior handlers flash the
// onboard LEDs to report which branch the robot took. A registry guards the
// color vocabulary so no two purposes ever share a color pair.
package light

import (
	"fmt"
	"log/slog"
)

// Color is an RGB triple for the LED strip.
type Color struct {
	R, G, B uint8
}

var (
	Black  = Color{0, 0, 0}
	Red    = Color{255, 0, 0}
	Green  = Color{0, 255, 0}
	Blue   = Color{0, 0, 255}
	Yellow = Color{255, 255, 0}
	White  = Color{255, 255, 255}
	Orange = Color{255, 128, 0}
	Cyan   = Color{0, 255, 255}
	Purple = Color{128, 0, 255}
)

// Driver pushes colors to the LED hardware.
type Driver interface {
	// SetAll paints every LED the same color.
	SetAll(c Color) error
	// SetPair alternates the two colors across the strip.
	SetPair(a, b Color) error
}

// Noop discards all light commands, for headless runs and tests.
type Noop struct{}

func (Noop) SetAll(Color) error       { return nil }
func (Noop) SetPair(a, b Color) error { return nil }

// Registry hands out light setters while enforcing that each color pair
// signals exactly one purpose. A pair and its mirror count as the same
// signal, since the strip layout makes them indistinguishable at a glance.
type Registry struct {
	drv      Driver
	log      *slog.Logger
	purposes map[[2]Color]string
}

// NewRegistry wraps a driver.
func NewRegistry(drv Driver, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{drv: drv, log: log, purposes: make(map[[2]Color]string)}
}

// Setter registers the pair under the purpose and returns a closure that
// shows it. Reusing a pair (or its mirror) for a second purpose fails.
func (r *Registry) Setter(purpose string, a, b Color) (func(), error) {
	key := [2]Color{a, b}
	mirror := [2]Color{b, a}
	if prev, ok := r.purposes[key]; ok && prev != purpose {
		return nil, fmt.Errorf("color pair %v/%v already signals %q", a, b, prev)
	}
	if prev, ok := r.purposes[mirror]; ok && prev != purpose {
		return nil, fmt.Errorf("color pair %v/%v mirrors the pair signaling %q", a, b, prev)
	}
	r.purposes[key] = purpose

	drv, log := r.drv, r.log
	if a == b {
		return func() {
			if err := drv.SetAll(a); err != nil {
				log.Warn("status light update failed", "purpose", purpose, "error", err)
			}
		}, nil
	}
	return func() {
		if err := drv.SetPair(a, b); err != nil {
			log.Warn("status light update failed", "purpose", purpose, "error", err)
		}
	}, nil
}

// Purposes returns the number of registered signals.
func (r *Registry) Purposes() int { return len(r.purposes) }
