package anim

import "math"

// CubicBez is a cubic Bézier segment in (input, output) space, as used to
// describe one span of a [Curve] for plotting and inspection.
type CubicBez struct {
	P0 Point
	P1 Point
	P2 Point
	P3 Point
}

func (c CubicBez) IsInf() bool {
	return c.P0.IsInf() || c.P1.IsInf() || c.P2.IsInf() || c.P3.IsInf()
}

func (c CubicBez) IsNaN() bool {
	return c.P0.IsNaN() || c.P1.IsNaN() || c.P2.IsNaN() || c.P3.IsNaN()
}

// Eval evaluates the segment at parameter t ∈ [0, 1].
func (c CubicBez) Eval(t float64) Point {
	mt := 1.0 - t
	a := mt * mt * mt
	b := mt * mt * 3.0 * t
	cc := mt * 3.0 * t * t
	d := t * t * t
	return Point{
		X: c.P0.X*a + c.P1.X*b + c.P2.X*cc + c.P3.X*d,
		Y: c.P0.Y*a + c.P1.Y*b + c.P2.Y*cc + c.P3.Y*d,
	}
}

func (c CubicBez) Start() Point {
	return c.P0
}

func (c CubicBez) End() Point {
	return c.P3
}

// Extrema returns the parameter values in (0, 1) at which the segment's
// output has a local minimum or maximum, in increasing order.
func (c CubicBez) Extrema() []float64 {
	d0 := c.P1.Y - c.P0.Y
	d1 := c.P2.Y - c.P1.Y
	d2 := c.P3.Y - c.P2.Y
	roots, n := solveQuadratic(d0, 2*(d1-d0), d0-2*d1+d2)
	var out []float64
	for _, t := range roots[:n] {
		if t > 0 && t < 1 {
			out = append(out, t)
		}
	}
	return out
}

// OutputRange returns the range of output values the segment takes on.
func (c CubicBez) OutputRange() (lo, hi float64) {
	lo, hi = math.Min(c.P0.Y, c.P3.Y), math.Max(c.P0.Y, c.P3.Y)
	for _, t := range c.Extrema() {
		y := c.Eval(t).Y
		lo, hi = math.Min(lo, y), math.Max(hi, y)
	}
	return lo, hi
}

// BoundingBox returns the smallest rectangle enclosing the segment. Segments
// of a ready curve are monotonic in X, so only the output axis needs its
// extrema.
func (c CubicBez) BoundingBox() Rect {
	lo, hi := c.OutputRange()
	return Rect{
		X0: math.Min(c.P0.X, c.P3.X),
		Y0: lo,
		X1: math.Max(c.P0.X, c.P3.X),
		Y1: hi,
	}
}
