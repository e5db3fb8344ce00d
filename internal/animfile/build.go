package animfile

import (
	"fmt"
	"strconv"

	"github.com/spf13/cast"

	"honnef.co/go/anim"
)

// Bundle is a document together with the file-level names of its curves.
type Bundle struct {
	Doc *anim.Document

	curveIDs   map[string]anim.CurveID
	curveNames map[anim.CurveID]string
}

// NewBundle wraps a document. Curves without a name get one when the bundle
// is flattened.
func NewBundle(doc *anim.Document) *Bundle {
	return &Bundle{
		Doc:        doc,
		curveIDs:   make(map[string]anim.CurveID),
		curveNames: make(map[anim.CurveID]string),
	}
}

// NameCurve assigns a file-level name to a curve.
func (b *Bundle) NameCurve(id anim.CurveID, name string) {
	if old, ok := b.curveNames[id]; ok {
		delete(b.curveIDs, old)
	}
	b.curveIDs[name] = id
	b.curveNames[id] = name
}

// CurveByName returns the curve with the given file-level name.
func (b *Bundle) CurveByName(name string) (anim.CurveID, bool) {
	id, ok := b.curveIDs[name]
	if !ok {
		return anim.CurveID{}, false
	}
	if _, ok := b.Doc.Curve(id); !ok {
		return anim.CurveID{}, false
	}
	return id, true
}

// CurveName returns the file-level name of a curve.
func (b *Bundle) CurveName(id anim.CurveID) (string, bool) {
	name, ok := b.curveNames[id]
	return name, ok
}

func floats(field string, vs []any) ([]float64, error) {
	out := make([]float64, len(vs))
	for i, v := range vs {
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		out[i] = f
	}
	return out, nil
}

func points(field string, vs [][]any) ([]anim.Point, error) {
	out := make([]anim.Point, len(vs))
	for i, v := range vs {
		if len(v) != 2 {
			return nil, fmt.Errorf("%s[%d]: want 2 coordinates, got %d", field, i, len(v))
		}
		xy, err := floats(field+"["+strconv.Itoa(i)+"]", v)
		if err != nil {
			return nil, err
		}
		out[i] = anim.Pt(xy[0], xy[1])
	}
	return out, nil
}

func anys(vs []float64) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

// Build creates a document from a decoded file. The returned document has an
// empty dirty set.
func Build(f *File, opts ...anim.Option) (*Bundle, error) {
	d := anim.NewDocument(opts...)
	b := NewBundle(d)

	animated := make(map[string]anim.AnimatedID, len(f.Animated))
	for _, fa := range f.Animated {
		if _, dup := animated[fa.Name]; dup {
			return nil, fmt.Errorf("animated %q defined twice", fa.Name)
		}
		values, err := floats("values", fa.Values)
		if err != nil {
			return nil, fmt.Errorf("animated %q: %w", fa.Name, err)
		}
		animated[fa.Name] = d.NewAnimated(fa.Name, values...)
	}
	resolve := func(r *Ref) (anim.AnimatedID, error) {
		id, ok := animated[r.Animated]
		if !ok {
			return anim.AnimatedID{}, fmt.Errorf("unknown animated %q", r.Animated)
		}
		return id, nil
	}

	// File order, for the second pass over curves below.
	curveIDs := make([]anim.CurveID, len(f.Curves))
	curveNames := make([]string, len(f.Curves))
	for i, fc := range f.Curves {
		name := fc.ID
		if name == "" {
			name = "curve" + strconv.Itoa(i)
		}
		if _, dup := b.curveIDs[name]; dup {
			return nil, fmt.Errorf("curve %q defined twice", name)
		}
		c, err := buildCurve(&fc)
		if err != nil {
			return nil, fmt.Errorf("curve %q: %w", name, err)
		}
		id := d.AddCurve(c)
		b.NameCurve(id, name)
		curveIDs[i], curveNames[i] = id, name

		if fc.Target != nil {
			target, err := resolve(fc.Target)
			if err != nil {
				return nil, fmt.Errorf("curve %q target: %w", name, err)
			}
			if err := d.AttachCurve(target, fc.Target.Component, id); err != nil {
				return nil, fmt.Errorf("curve %q: %w", name, err)
			}
		}
		if fc.Driver != nil {
			driver, err := resolve(fc.Driver)
			if err != nil {
				return nil, fmt.Errorf("curve %q driver: %w", name, err)
			}
			if err := d.SetDriver(id, driver, fc.Driver.Component); err != nil {
				return nil, fmt.Errorf("curve %q: %w", name, err)
			}
		}
	}

	clips := make(map[string]anim.ClipID, len(f.Clips))
	for _, fc := range f.Clips {
		if _, dup := clips[fc.Name]; dup {
			return nil, fmt.Errorf("clip %q defined twice", fc.Name)
		}
		start, err := cast.ToFloat64E(fc.Start)
		if err != nil {
			return nil, fmt.Errorf("clip %q start: %w", fc.Name, err)
		}
		end, err := cast.ToFloat64E(fc.End)
		if err != nil {
			return nil, fmt.Errorf("clip %q end: %w", fc.Name, err)
		}
		clip := d.NewClip(fc.Name, start, end)
		clips[fc.Name] = clip

		for _, curveName := range fc.Curves {
			id, ok := b.curveIDs[curveName]
			if !ok {
				return nil, fmt.Errorf("clip %q: unknown curve %q", fc.Name, curveName)
			}
			if !d.AddClipCurve(clip, id) {
				return nil, fmt.Errorf("clip %q: curve %q listed twice", fc.Name, curveName)
			}
		}
		for curveName, v := range fc.Offsets {
			id, ok := b.curveIDs[curveName]
			if !ok {
				return nil, fmt.Errorf("clip %q offsets: unknown curve %q", fc.Name, curveName)
			}
			offset, err := cast.ToFloat64E(v)
			if err != nil {
				return nil, fmt.Errorf("clip %q offset of %q: %w", fc.Name, curveName, err)
			}
			if !d.SetClipOffset(clip, id, offset) {
				return nil, fmt.Errorf("clip %q offsets: %w: %q", fc.Name, anim.ErrNotRegistered, curveName)
			}
		}
	}

	for i, fc := range f.Curves {
		if fc.CurrentClip == "" {
			continue
		}
		id, name := curveIDs[i], curveNames[i]
		clip, ok := clips[fc.CurrentClip]
		if !ok {
			return nil, fmt.Errorf("curve %q: unknown current clip %q", name, fc.CurrentClip)
		}
		c, _ := d.Curve(id)
		offset, ok := c.ClipOffset(clip)
		if !ok {
			return nil, fmt.Errorf("curve %q: %w: %q", name, anim.ErrNotRegistered, fc.CurrentClip)
		}
		if fc.CurrentOffset != nil {
			var err error
			offset, err = cast.ToFloat64E(fc.CurrentOffset)
			if err != nil {
				return nil, fmt.Errorf("curve %q current_offset: %w", name, err)
			}
		}
		c.RestoreCurrentClip(clip, offset)
	}

	d.CheckClips()
	d.ClearDirty()
	return b, nil
}

func buildCurve(fc *Curve) (*anim.Curve, error) {
	keys, err := floats("keys", fc.Keys)
	if err != nil {
		return nil, err
	}
	values, err := floats("values", fc.Values)
	if err != nil {
		return nil, err
	}
	c := anim.NewCurve()
	c.SetKeys(keys, values)

	if fc.PreInfinity != "" {
		inf, err := anim.ParseInfinity(fc.PreInfinity)
		if err != nil {
			return nil, fmt.Errorf("pre_infinity: %w", err)
		}
		c.SetPreInfinity(inf)
	}
	if fc.PostInfinity != "" {
		inf, err := anim.ParseInfinity(fc.PostInfinity)
		if err != nil {
			return nil, fmt.Errorf("post_infinity: %w", err)
		}
		c.SetPostInfinity(inf)
	}

	if len(fc.Interpolations) > 0 {
		modes := make([]anim.Interpolation, len(fc.Interpolations))
		for i, s := range fc.Interpolations {
			mode, err := anim.ParseInterpolation(s)
			if err != nil {
				return nil, fmt.Errorf("interpolations[%d]: %w", i, err)
			}
			modes[i] = mode
		}
		c.SetInterpolations(modes)
	}

	if len(fc.InTangents) > 0 || len(fc.OutTangents) > 0 {
		in, err := points("in_tangents", fc.InTangents)
		if err != nil {
			return nil, err
		}
		out, err := points("out_tangents", fc.OutTangents)
		if err != nil {
			return nil, err
		}
		c.SetTangents(in, out)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Flatten converts a bundle into its file representation.
func Flatten(b *Bundle) *File {
	d := b.Doc
	f := &File{}

	animatedNames := make(map[anim.AnimatedID]string)
	d.AnimatedValues(func(id anim.AnimatedID, a *anim.Animated) bool {
		animatedNames[id] = a.Name()
		f.Animated = append(f.Animated, Animated{
			Name:   a.Name(),
			Values: anys(a.Values()),
		})
		return true
	})

	clipNames := make(map[anim.ClipID]string)
	d.Clips(func(id anim.ClipID, c *anim.Clip) bool {
		clipNames[id] = c.Name()
		return true
	})

	n := 0
	d.Curves(func(id anim.CurveID, c *anim.Curve) bool {
		name, ok := b.CurveName(id)
		for !ok {
			name = "curve" + strconv.Itoa(n)
			n++
			if _, taken := b.curveIDs[name]; !taken {
				b.NameCurve(id, name)
				ok = true
			}
		}

		fc := Curve{
			ID:           name,
			PreInfinity:  c.PreInfinity().String(),
			PostInfinity: c.PostInfinity().String(),
			Keys:         anys(c.Keys()),
			Values:       anys(c.Values()),
		}
		if target, i, ok := d.Target(id); ok {
			fc.Target = &Ref{Animated: animatedNames[target], Component: i}
		}
		if drv, ok := c.Driver(); ok {
			if dn, ok := animatedNames[drv.Animated]; ok {
				fc.Driver = &Ref{Animated: dn, Component: drv.Index}
			}
		}
		for _, mode := range c.Interpolations() {
			fc.Interpolations = append(fc.Interpolations, mode.String())
		}
		for _, p := range c.InTangents() {
			fc.InTangents = append(fc.InTangents, []any{p.X, p.Y})
		}
		for _, p := range c.OutTangents() {
			fc.OutTangents = append(fc.OutTangents, []any{p.X, p.Y})
		}
		if clip := c.CurrentClip(); !clip.IsZero() {
			fc.CurrentClip = clipNames[clip]
			fc.CurrentOffset = c.CurrentOffset()
		}
		f.Curves = append(f.Curves, fc)
		return true
	})

	d.Clips(func(id anim.ClipID, c *anim.Clip) bool {
		fc := Clip{
			Name:  c.Name(),
			Start: c.Start(),
			End:   c.End(),
		}
		for _, curveID := range c.Curves() {
			name, ok := b.CurveName(curveID)
			if !ok {
				continue
			}
			fc.Curves = append(fc.Curves, name)
			if off, ok := d.ClipOffset(id, curveID); ok && off != -c.Start() {
				if fc.Offsets == nil {
					fc.Offsets = make(map[string]any)
				}
				fc.Offsets[name] = off
			}
		}
		f.Clips = append(f.Clips, fc)
		return true
	})

	return f
}
