package anim

import (
	"math"
	"testing"
)

func TestPointTranslate(t *testing.T) {
	diff(t, Pt(-10, 3), Pt(0, 3).Translate(-10))
}

func TestPointLerp(t *testing.T) {
	diff(t, Pt(1, 5), Pt(0, 0).Lerp(Pt(2, 10), 0.5))
}

func TestPointDistance(t *testing.T) {
	p1 := Pt(-11, 1)
	p2 := Pt(-7, -2)
	if d := p1.Distance(p2); d != 5 {
		t.Errorf("got distance %v, want 5", d)
	}
}

func TestPointNaNInf(t *testing.T) {
	if !Pt(math.NaN(), 0).IsNaN() {
		t.Error("expected NaN point")
	}
	if !Pt(0, math.Inf(-1)).IsInf() {
		t.Error("expected infinite point")
	}
	if Pt(1, 2).IsNaN() || Pt(1, 2).IsInf() {
		t.Error("finite point reported as NaN or Inf")
	}
}
