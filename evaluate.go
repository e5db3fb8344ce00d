package anim

import (
	"math"
	"sort"
)

const (
	minRescale = 0.01
	maxRescale = 100.0
)

// clampRescale clamps a Bézier tangent weight. Degenerate tangents produce
// infinite or NaN weights, which clamp to the nearest bound.
func clampRescale(v float64) float64 {
	if !(v >= minRescale) {
		return minRescale
	}
	if v > maxRescale {
		return maxRescale
	}
	return v
}

// EvaluateChecked is like [Curve.Evaluate] but reports curves without keys as
// [ErrEmptyCurve] and mismatched value arrays as [ErrLengthMismatch].
func (c *Curve) EvaluateChecked(input float64) (float64, error) {
	if len(c.keys) == 0 {
		return 0, ErrEmptyCurve
	}
	if len(c.values) != len(c.keys) {
		return 0, ErrLengthMismatch
	}
	return c.Evaluate(input), nil
}

// Evaluate returns the curve's output at input.
//
// Inputs at or before the first key are subject to the pre-infinity policy,
// inputs at or after the last key to the post-infinity policy. Constant and
// linear policies produce a value directly; the cyclic policies wrap the input
// into the key range, and relative cycles additionally offset the output by
// the net change of every skipped cycle. Inside the key range, the segment
// containing input is interpolated using the mode of its end key.
//
// A curve with a single key is constant. A curve without keys evaluates to 0.
func (c *Curve) Evaluate(input float64) float64 {
	n := len(c.keys)
	if n == 0 || len(c.values) != n {
		return 0
	}
	if n == 1 {
		return c.values[0]
	}

	inputStart, inputEnd := c.keys[0], c.keys[n-1]
	outputStart, outputEnd := c.values[0], c.values[n-1]
	span := inputEnd - inputStart
	var outputOffset float64

	if input <= inputStart {
		switch c.preInfinity {
		case InfinityLinear:
			return outputStart + (input-inputStart)*(c.values[1]-outputStart)/(c.keys[1]-inputStart)
		case InfinityCycle:
			cycles := math.Ceil((inputStart - input) / span)
			input += cycles * span
		case InfinityCycleRelative:
			cycles := math.Ceil((inputStart - input) / span)
			input += cycles * span
			outputOffset -= cycles * (outputEnd - outputStart)
		case InfinityOscillate:
			cycles := math.Ceil((inputStart - input) / (2 * span))
			input += cycles * 2 * span
			input = inputEnd - math.Abs(input-inputEnd)
		default:
			// Constant and unknown.
			return outputStart
		}
	} else if input >= inputEnd {
		switch c.postInfinity {
		case InfinityLinear:
			return outputEnd + (input-inputEnd)*(outputEnd-c.values[n-2])/(inputEnd-c.keys[n-2])
		case InfinityCycle:
			cycles := math.Ceil((input - inputEnd) / span)
			input -= cycles * span
		case InfinityCycleRelative:
			cycles := math.Ceil((input - inputEnd) / span)
			input -= cycles * span
			outputOffset += cycles * (outputEnd - outputStart)
		case InfinityOscillate:
			cycles := math.Ceil((input - inputEnd) / (2 * span))
			input -= cycles * 2 * span
			input = inputStart + math.Abs(input-inputStart)
		default:
			return outputEnd
		}
	}

	return c.interpolate(input) + outputOffset
}

// interpolate evaluates the curve at an input within the key range.
func (c *Curve) interpolate(input float64) float64 {
	n := len(c.keys)
	end := sort.Search(n, func(i int) bool { return c.keys[i] > input })
	switch {
	case end == 0:
		return c.values[0]
	case end == n:
		// Exactly on the last key.
		return c.values[n-1]
	}
	start := end - 1

	startKey, endKey := c.keys[start], c.keys[end]
	startValue, endValue := c.values[start], c.values[end]
	keySpan := endKey - startKey
	t := (input - startKey) / keySpan

	switch c.modeAt(end) {
	case InterpolationLinear:
		return startValue + t*(endValue-startValue)
	case InterpolationBezier:
		_, out := c.tangentAt(start)
		in, _ := c.tangentAt(end)
		b := out.Y
		cc := in.Y
		br := clampRescale(keySpan / (out.X - startKey))
		cr := clampRescale(keySpan / (endKey - in.X))
		ti := 1.0 - t
		return startValue*ti*ti*ti + br*b*ti*ti*t + cr*cc*ti*t*t + endValue*t*t*t
	default:
		// Step and unknown hold the start value.
		return startValue
	}
}
