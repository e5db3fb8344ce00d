package anim

import (
	"fmt"
	"slices"
	"sort"
)

// Driver names the animated component whose current value replaces time as
// the input of a driven curve.
type Driver struct {
	Animated AnimatedID
	Index    int
}

// Curve is a keyframed scalar channel.
//
// Keys, values, tangents and interpolation modes are parallel slices. Tangents
// and interpolation modes may be empty, in which case [Curve.Ready] fills them
// in. Keys must be strictly increasing.
type Curve struct {
	keys           []float64
	values         []float64
	inTangents     []Point
	outTangents    []Point
	interpolations []Interpolation

	preInfinity  Infinity
	postInfinity Infinity

	driver    Driver
	hasDriver bool

	// Clips this curve is registered with and the offset each of them
	// places the curve at.
	clips         []ClipID
	clipOffsets   []float64
	currentClip   ClipID
	currentOffset float64
}

// NewCurve returns an empty curve with constant extrapolation on both ends.
func NewCurve() *Curve {
	return &Curve{
		preInfinity:  DefaultInfinity,
		postInfinity: DefaultInfinity,
	}
}

// NewCurveFromKeys returns a curve with the given keys and values. All keys use
// the given interpolation mode. Tangents are left for [Curve.Ready].
func NewCurveFromKeys(keys, values []float64, interp Interpolation) *Curve {
	c := NewCurve()
	c.SetKeys(keys, values)
	c.interpolations = make([]Interpolation, len(keys))
	for i := range c.interpolations {
		c.interpolations[i] = interp
	}
	return c
}

// Len returns the number of keys.
func (c *Curve) Len() int { return len(c.keys) }

// Keys returns the key inputs. The slice is owned by the curve; changing
// its elements must keep them strictly increasing.
func (c *Curve) Keys() []float64 { return c.keys }

// Values returns the key outputs. The slice is owned by the curve.
func (c *Curve) Values() []float64 { return c.values }

func (c *Curve) InTangents() []Point { return c.inTangents }
func (c *Curve) OutTangents() []Point { return c.outTangents }

func (c *Curve) Interpolations() []Interpolation { return c.interpolations }

// SetKeys replaces keys and values. Both slices are copied. Tangents are
// discarded unless they still match the number of keys.
func (c *Curve) SetKeys(keys, values []float64) {
	c.keys = slices.Clone(keys)
	c.values = slices.Clone(values)
	if len(c.inTangents) != len(keys) || len(c.outTangents) != len(keys) {
		c.inTangents = nil
		c.outTangents = nil
	}
	if len(c.interpolations) != len(keys) {
		c.interpolations = nil
	}
}

// SetTangents replaces the tangents. Both slices are copied.
func (c *Curve) SetTangents(in, out []Point) {
	c.inTangents = slices.Clone(in)
	c.outTangents = slices.Clone(out)
}

// ClearTangents drops all tangents so that the next call to [Curve.Ready]
// synthesizes new ones.
func (c *Curve) ClearTangents() {
	c.inTangents = nil
	c.outTangents = nil
}

// SetInterpolations replaces the per-key interpolation modes. The slice is
// copied.
func (c *Curve) SetInterpolations(modes []Interpolation) {
	c.interpolations = slices.Clone(modes)
}

// SetInterpolation sets the interpolation mode of all keys.
func (c *Curve) SetInterpolation(mode Interpolation) {
	c.interpolations = make([]Interpolation, len(c.keys))
	for i := range c.interpolations {
		c.interpolations[i] = mode
	}
}

func (c *Curve) PreInfinity() Infinity { return c.preInfinity }
func (c *Curve) PostInfinity() Infinity { return c.postInfinity }
func (c *Curve) SetPreInfinity(inf Infinity) { c.preInfinity = inf }
func (c *Curve) SetPostInfinity(inf Infinity) { c.postInfinity = inf }
func (c *Curve) HasDriver() bool { return c.hasDriver }
func (c *Curve) CurrentClip() ClipID { return c.currentClip }
func (c *Curve) CurrentOffset() float64 { return c.currentOffset }
func (c *Curve) Clips() []ClipID { return c.clips }

// Driver returns the curve's driver, if it has one.
func (c *Curve) Driver() (Driver, bool) {
	return c.driver, c.hasDriver
}

// SetDriver makes the curve driven by the given animated component. Passing
// a zero AnimatedID removes the driver.
func (c *Curve) SetDriver(d Driver) {
	if d.Animated.IsZero() {
		c.driver = Driver{}
		c.hasDriver = false
		return
	}
	c.driver = d
	c.hasDriver = true
}

// Bounds returns the inputs of the first and last key. It returns zeros for an
// empty curve.
func (c *Curve) Bounds() (start, end float64) {
	if len(c.keys) == 0 {
		return 0, 0
	}
	return c.keys[0], c.keys[len(c.keys)-1]
}

// BoundingBox returns the smallest rectangle enclosing the curve between its
// first and last key. A curve with no keys has an empty box at the origin.
func (c *Curve) BoundingBox() Rect {
	switch len(c.keys) {
	case 0:
		return Rect{}
	case 1:
		return NewRectFromPoints(Pt(c.keys[0], c.values[0]), Pt(c.keys[0], c.values[0]))
	}
	bbox := c.Segment(0).BoundingBox()
	for i := 1; i+1 < len(c.keys); i++ {
		bbox = bbox.Union(c.Segment(i).BoundingBox())
	}
	return bbox
}

// AddKey inserts a key, keeping keys sorted, and returns its index. If the
// curve already has tangents or interpolation modes, the new key gets a
// synthesized tangent pair and the given mode, respectively.
func (c *Curve) AddKey(input, output float64, mode Interpolation) int {
	i := sort.Search(len(c.keys), func(i int) bool { return c.keys[i] > input })
	c.keys = slices.Insert(c.keys, i, input)
	c.values = slices.Insert(c.values, i, output)
	if len(c.interpolations) > 0 {
		c.interpolations = slices.Insert(c.interpolations, i, mode)
	} else if len(c.keys) == 1 {
		c.interpolations = []Interpolation{mode}
	}
	if len(c.inTangents) > 0 && len(c.outTangents) > 0 {
		in, out := c.tangentsAt(i)
		c.inTangents = slices.Insert(c.inTangents, i, in)
		c.outTangents = slices.Insert(c.outTangents, i, out)
	}
	return i
}

// Ready makes sure that every key has tangents and an interpolation mode,
// synthesizing missing tangents and assigning [DefaultInterpolation] to keys
// without a mode. Existing data is never overwritten, which makes Ready
// idempotent. It reports whether anything was synthesized.
//
// Tangents are computed in one pass. For key i, the spans to its neighbours
// are prevSpan and nextSpan (mirrored at the first and last key), and the
// slope is (nextValue - prevValue) / (prevSpan + nextSpan). The in tangent
// lies prevSpan/3 before the key along that slope, the out tangent nextSpan/3
// after it.
func (c *Curve) Ready() bool {
	n := len(c.keys)
	if n == 0 {
		return false
	}
	changed := false
	if len(c.inTangents) == 0 || len(c.outTangents) == 0 {
		c.inTangents = make([]Point, n)
		c.outTangents = make([]Point, n)
		for i := range n {
			c.inTangents[i], c.outTangents[i] = c.tangentsAt(i)
		}
		changed = true
	}
	if len(c.interpolations) == 0 {
		c.interpolations = make([]Interpolation, n)
		for i := range c.interpolations {
			c.interpolations[i] = DefaultInterpolation
		}
		changed = true
	}
	return changed
}

// tangentsAt computes the synthesized tangent pair of key i.
func (c *Curve) tangentsAt(i int) (in, out Point) {
	n := len(c.keys)
	key, value := c.keys[i], c.values[i]
	if n == 1 {
		return Pt(key, value), Pt(key, value)
	}

	var prevSpan, nextSpan, prevValue, nextValue float64
	if i > 0 {
		prevSpan = key - c.keys[i-1]
		prevValue = c.values[i-1]
	} else {
		prevSpan = c.keys[i+1] - key
		prevValue = value
	}
	if i < n-1 {
		nextSpan = c.keys[i+1] - key
		nextValue = c.values[i+1]
	} else {
		nextSpan = key - c.keys[i-1]
		nextValue = value
	}

	var slope float64
	if span := nextSpan + prevSpan; span != 0 {
		slope = (nextValue - prevValue) / span
	}
	in = Pt(key-prevSpan/3, value-prevSpan/3*slope)
	out = Pt(key+nextSpan/3, value+nextSpan/3*slope)
	return in, out
}

// Segment returns segment i, between key i and key i+1, as a cubic Bézier in
// (input, output) space. Steps and linear segments are returned as degenerate
// cubics whose control points lie on the straight line through the rendered
// shape. It panics if i is out of range.
func (c *Curve) Segment(i int) CubicBez {
	if i < 0 || i+1 >= len(c.keys) {
		panic(fmt.Sprintf("segment %d out of range for curve with %d keys", i, len(c.keys)))
	}
	p0 := Pt(c.keys[i], c.values[i])
	p3 := Pt(c.keys[i+1], c.values[i+1])
	switch c.modeAt(i + 1) {
	case InterpolationLinear:
		return CubicBez{p0, p0.Lerp(p3, 1.0/3.0), p0.Lerp(p3, 2.0/3.0), p3}
	case InterpolationBezier:
		_, out := c.tangentAt(i)
		in, _ := c.tangentAt(i + 1)
		span := p3.X - p0.X
		br := clampRescale(span / (out.X - p0.X))
		cr := clampRescale(span / (p3.X - in.X))
		return CubicBez{
			p0,
			Pt(p0.X+span/3, br*out.Y/3),
			Pt(p3.X-span/3, cr*in.Y/3),
			p3,
		}
	default:
		// Hold the start value, then jump.
		hold := Pt(p3.X, p0.Y)
		return CubicBez{p0, p0.Lerp(hold, 1.0/3.0), p0.Lerp(hold, 2.0/3.0), hold}
	}
}

// modeAt returns the interpolation mode of key i, or the default mode if the
// curve has no modes yet.
func (c *Curve) modeAt(i int) Interpolation {
	if i < len(c.interpolations) {
		return c.interpolations[i]
	}
	return DefaultInterpolation
}

// tangentAt returns the tangents of key i, synthesizing them on the fly if
// the curve hasn't been readied.
func (c *Curve) tangentAt(i int) (in, out Point) {
	if i < len(c.inTangents) && i < len(c.outTangents) {
		return c.inTangents[i], c.outTangents[i]
	}
	return c.tangentsAt(i)
}

// Validate reports structural problems that would make evaluation
// meaningless.
func (c *Curve) Validate() error {
	n := len(c.keys)
	if n == 0 {
		return ErrEmptyCurve
	}
	if len(c.values) != n {
		return fmt.Errorf("%w: %d keys, %d values", ErrLengthMismatch, n, len(c.values))
	}
	if len(c.inTangents) != len(c.outTangents) {
		return fmt.Errorf("%w: %d in tangents, %d out tangents", ErrLengthMismatch, len(c.inTangents), len(c.outTangents))
	}
	if len(c.inTangents) != 0 && len(c.inTangents) != n {
		return fmt.Errorf("%w: %d keys, %d tangents", ErrLengthMismatch, n, len(c.inTangents))
	}
	if len(c.interpolations) != 0 && len(c.interpolations) != n {
		return fmt.Errorf("%w: %d keys, %d interpolations", ErrLengthMismatch, n, len(c.interpolations))
	}
	for i := 1; i < n; i++ {
		if !(c.keys[i] > c.keys[i-1]) {
			return fmt.Errorf("%w: key %d (%g) follows %g", ErrUnsortedKeys, i, c.keys[i], c.keys[i-1])
		}
	}
	return nil
}

// Clone returns a deep copy of the curve, including its clip registrations.
func (c *Curve) Clone() *Curve {
	cc := *c
	cc.keys = slices.Clone(c.keys)
	cc.values = slices.Clone(c.values)
	cc.inTangents = slices.Clone(c.inTangents)
	cc.outTangents = slices.Clone(c.outTangents)
	cc.interpolations = slices.Clone(c.interpolations)
	cc.clips = slices.Clone(c.clips)
	cc.clipOffsets = slices.Clone(c.clipOffsets)
	return &cc
}

// RegisterAnimationClip records that clip drives this curve, placing it at
// offset. It returns false if the clip is already registered.
func (c *Curve) RegisterAnimationClip(clip ClipID, offset float64) bool {
	if clip.IsZero() || slices.Contains(c.clips, clip) {
		return false
	}
	c.clips = append(c.clips, clip)
	c.clipOffsets = append(c.clipOffsets, offset)
	return true
}

// ClipOffset returns the offset at which clip places this curve.
func (c *Curve) ClipOffset(clip ClipID) (float64, bool) {
	i := slices.Index(c.clips, clip)
	if i < 0 {
		return 0, false
	}
	return c.clipOffsets[i], true
}

// SetClipOffset overwrites the offset of an already registered clip. It does
// nothing if the clip isn't registered. Keys are not moved, not even if clip
// is the current clip; the new offset takes effect on the next activation.
func (c *Curve) SetClipOffset(clip ClipID, offset float64) bool {
	i := slices.Index(c.clips, clip)
	if i < 0 {
		return false
	}
	c.clipOffsets[i] = offset
	return true
}

// SetCurrentAnimationClip makes clip the curve's current clip, moving all keys
// by the difference between clip's offset and the offset of the previously
// current clip. Tangents move with the keys and missing tangents are
// synthesized. It does nothing and returns false if clip is already current or
// isn't registered with the curve.
func (c *Curve) SetCurrentAnimationClip(clip ClipID) bool {
	if clip == c.currentClip {
		return false
	}
	i := slices.Index(c.clips, clip)
	if i < 0 {
		return false
	}
	delta := c.clipOffsets[i] - c.currentOffset
	c.currentOffset = c.clipOffsets[i]
	c.translate(delta)
	c.currentClip = clip
	c.Ready()
	return true
}

// RestoreCurrentClip records clip as current at offset without moving any
// keys. Loaders use it to restore a curve whose keys were saved in their
// retimed positions.
func (c *Curve) RestoreCurrentClip(clip ClipID, offset float64) bool {
	if !slices.Contains(c.clips, clip) {
		return false
	}
	c.currentClip = clip
	c.currentOffset = offset
	return true
}

// shiftClip moves clip's offset, the current offset and all keys by delta,
// whether or not clip is the current clip.
func (c *Curve) shiftClip(clip ClipID, delta float64) bool {
	i := slices.Index(c.clips, clip)
	if i < 0 {
		return false
	}
	c.clipOffsets[i] += delta
	c.currentOffset += delta
	c.translate(delta)
	c.Ready()
	return true
}

func (c *Curve) unregisterClip(clip ClipID) {
	i := slices.Index(c.clips, clip)
	if i < 0 {
		return
	}
	c.clips = slices.Delete(c.clips, i, i+1)
	c.clipOffsets = slices.Delete(c.clipOffsets, i, i+1)
	if c.currentClip == clip {
		c.currentClip = ClipID{}
	}
}

func (c *Curve) translate(delta float64) {
	if delta == 0 {
		return
	}
	for i := range c.keys {
		c.keys[i] += delta
	}
	for i := range c.inTangents {
		c.inTangents[i] = c.inTangents[i].Translate(delta)
	}
	for i := range c.outTangents {
		c.outTangents[i] = c.outTangents[i].Translate(delta)
	}
}
