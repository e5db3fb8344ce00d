package anim

import (
	"fmt"
	"strings"
)

// Interpolation selects how a curve segment is interpolated between two keys.
type Interpolation uint8

const (
	InterpolationStep Interpolation = iota
	InterpolationLinear
	InterpolationBezier
	InterpolationUnknown
)

// DefaultInterpolation is the mode [Curve.Ready] assigns to keys that don't
// have one.
const DefaultInterpolation = InterpolationBezier

func (i Interpolation) String() string {
	switch i {
	case InterpolationStep:
		return "STEP"
	case InterpolationLinear:
		return "LINEAR"
	case InterpolationBezier:
		return "BEZIER"
	default:
		return "UNKNOWN"
	}
}

// ParseInterpolation parses the COLLADA name of an interpolation mode. Names
// are matched case-insensitively. Unrecognized names return
// InterpolationUnknown and an error.
func ParseInterpolation(s string) (Interpolation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STEP":
		return InterpolationStep, nil
	case "LINEAR":
		return InterpolationLinear, nil
	case "BEZIER":
		return InterpolationBezier, nil
	case "UNKNOWN":
		return InterpolationUnknown, nil
	default:
		return InterpolationUnknown, fmt.Errorf("%w: interpolation %q", ErrUnknownMode, s)
	}
}

// Infinity is an extrapolation policy, applied to inputs before the first or
// after the last key of a curve.
type Infinity uint8

const (
	InfinityConstant Infinity = iota
	InfinityLinear
	InfinityCycle
	InfinityCycleRelative
	InfinityOscillate
	InfinityUnknown
)

// DefaultInfinity is the extrapolation policy of a new curve.
const DefaultInfinity = InfinityConstant

func (inf Infinity) String() string {
	switch inf {
	case InfinityConstant:
		return "CONSTANT"
	case InfinityLinear:
		return "LINEAR"
	case InfinityCycle:
		return "CYCLE"
	case InfinityCycleRelative:
		return "CYCLE_RELATIVE"
	case InfinityOscillate:
		return "OSCILLATE"
	default:
		return "UNKNOWN"
	}
}

// ParseInfinity parses the COLLADA name of an extrapolation policy. Names are
// matched case-insensitively. Unrecognized names return InfinityUnknown and an
// error.
func ParseInfinity(s string) (Infinity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CONSTANT":
		return InfinityConstant, nil
	case "LINEAR":
		return InfinityLinear, nil
	case "CYCLE":
		return InfinityCycle, nil
	case "CYCLE_RELATIVE":
		return InfinityCycleRelative, nil
	case "OSCILLATE":
		return InfinityOscillate, nil
	case "UNKNOWN":
		return InfinityUnknown, nil
	default:
		return InfinityUnknown, fmt.Errorf("%w: infinity %q", ErrUnknownMode, s)
	}
}
