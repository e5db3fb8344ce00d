package anim

import (
	"errors"
	"testing"
)

func TestParseInterpolation(t *testing.T) {
	for _, mode := range []Interpolation{InterpolationStep, InterpolationLinear, InterpolationBezier, InterpolationUnknown} {
		got, err := ParseInterpolation(mode.String())
		if err != nil {
			t.Fatalf("parsing %s: %s", mode, err)
		}
		if got != mode {
			t.Errorf("got %s, want %s", got, mode)
		}
	}
	if got, _ := ParseInterpolation(" bezier "); got != InterpolationBezier {
		t.Errorf("got %s, want BEZIER", got)
	}
	got, err := ParseInterpolation("HERMITE")
	if !errors.Is(err, ErrUnknownMode) {
		t.Errorf("got error %v, want ErrUnknownMode", err)
	}
	if got != InterpolationUnknown {
		t.Errorf("got %s, want UNKNOWN", got)
	}
}

func TestParseInfinity(t *testing.T) {
	all := []Infinity{
		InfinityConstant,
		InfinityLinear,
		InfinityCycle,
		InfinityCycleRelative,
		InfinityOscillate,
		InfinityUnknown,
	}
	for _, inf := range all {
		got, err := ParseInfinity(inf.String())
		if err != nil {
			t.Fatalf("parsing %s: %s", inf, err)
		}
		if got != inf {
			t.Errorf("got %s, want %s", got, inf)
		}
	}
	if got, _ := ParseInfinity("cycle_relative"); got != InfinityCycleRelative {
		t.Errorf("got %s, want CYCLE_RELATIVE", got)
	}
	if _, err := ParseInfinity("bounce"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("got error %v, want ErrUnknownMode", err)
	}
}
