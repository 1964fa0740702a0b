// Package judge turns configuration into situation breakers: it owns the
// situation-code encodings and a factory that generates the expr sources
// the sense builder compiles. Every constructor is deterministic in the
// configuration values it reads, so repeated construction hits the builder
// cache and yields the identical closure.
package judge

import "fmt"

// Edge code weights, one bit per corner cliff sensor.
//
//	fl           fr
//	    O-----O
//	       |
//	    O-----O
//	rl           rr
const (
	EdgeFL = 1
	EdgeFR = 2
	EdgeRL = 4
	EdgeRR = 8
)

// EdgeCode packs the four corner flags into one code, 0 through 15.
func EdgeCode(fl, rl, rr, fr bool) int {
	return weight(fl, EdgeFL) + weight(rl, EdgeRL) + weight(rr, EdgeRR) + weight(fr, EdgeFR)
}

// Fence code weights, one bit per perimeter side. Scan codes share the same
// geometry; only the trigger condition differs.
const (
	FenceFront = 1
	FenceLeft  = 2
	FenceRear  = 4
	FenceRight = 8
)

// FenceCode packs the four side flags into one code, 0 through 15.
func FenceCode(front, rear, left, right bool) int {
	return weight(front, FenceFront) + weight(rear, FenceRear) + weight(left, FenceLeft) + weight(right, FenceRight)
}

// ScanCode packs baseline-delta side flags; identical layout to FenceCode.
func ScanCode(front, rear, left, right bool) int {
	return FenceCode(front, rear, left, right)
}

// Surrounding code components. The front object class rides two decimal
// digits above the flag bits so no class can collide with any flag
// combination.
const (
	SurroundingLeft   = 1
	SurroundingRight  = 2
	SurroundingBehind = 4

	FrontNothing    = 0
	FrontAllyBox    = 100
	FrontNeutralBox = 200
	FrontEnemyBox   = 300
	FrontEnemyCar   = 400
)

// SurroundingCode combines a front object class with the side flags.
func SurroundingCode(front int, left, right, behind bool) (int, error) {
	switch front {
	case FrontNothing, FrontAllyBox, FrontNeutralBox, FrontEnemyBox, FrontEnemyCar:
	default:
		return 0, fmt.Errorf("invalid front object class %d", front)
	}
	return front + weight(left, SurroundingLeft) + weight(right, SurroundingRight) + weight(behind, SurroundingBehind), nil
}

// Stage code weights. On-stage and reboot-requested combine into a 4-valued
// code that the battle composition dispatches on.
const (
	StageOn     = 1
	StageReboot = 2
)

// StageCode packs the two stage flags.
func StageCode(onStage, reboot bool) int {
	return weight(onStage, StageOn) + weight(reboot, StageReboot)
}

// AllSideCodes returns every 4-bit side combination, 0 through 15, for
// coverage checks over edge, fence and scan dispatch tables.
func AllSideCodes() []int {
	codes := make([]int, 16)
	for i := range codes {
		codes[i] = i
	}
	return codes
}

func weight(on bool, w int) int {
	if on {
		return w
	}
	return 0
}
