// Package hardware declares the interfaces of the external collaborators
// (the onboard sensor facade, the closed-loop motor controller, the tag
// detection camera) and the connectivity checkers run before a match.
// Real drivers live outside this module; everything here is the seam the
// decision core talks through.
package hardware

import "github.com/kazurobot/kazu-core/sense"

// Sampler group indexes, fixed by the facade's declaration order in
// SamplerGroups. Breaker constructors address groups by these constants.
const (
	SamplerADCAll = iota
	SamplerIOAll
	SamplerIOLevel
	SamplerIOModeAll
	SamplerAttitude
	SamplerGyro
	SamplerAcc
)

// Attitude channel order within the attitude sampler group.
const (
	AttitudePitch = iota
	AttitudeRoll
	AttitudeYaw
)

// Accelerometer axis order within the acc sampler group.
const (
	AxisX = iota
	AxisY
	AxisZ
)

// Board is the onboard multi-sensor facade. Every method returns one ordered
// burst of readings; digital channels are reported as 0/1 in float form so
// all groups share the sampler shape.
type Board interface {
	ADCAll() []float64
	IOAll() []float64
	IOLevels() []float64
	IOModes() []float64
	Attitude() []float64
	Gyro() []float64
	Acc() []float64
}

// SamplerGroups adapts a board to the seven indexed sampler groups consumed
// by the sense builder, in the order of the Sampler* constants.
func SamplerGroups(b Board) []sense.Sampler {
	return []sense.Sampler{
		b.ADCAll,
		b.IOAll,
		b.IOLevels,
		b.IOModes,
		b.Attitude,
		b.Gyro,
		b.Acc,
	}
}
