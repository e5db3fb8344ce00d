package anim

import (
	"fmt"
	"slices"

	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"
)

// ClipEpsilon is the smallest duration a clip may have without being reported
// as degenerate.
const ClipEpsilon = 1e-4

// Clip is a named time window over a set of curves. Clips don't own their
// curves; the per-curve offsets are stored on the curves.
type Clip struct {
	name   string
	start  float64
	end    float64
	curves []CurveID
}

func (c *Clip) Name() string { return c.name }
func (c *Clip) Start() float64 { return c.start }
func (c *Clip) End() float64 { return c.end }
func (c *Clip) Duration() float64 { return c.end - c.start }
func (c *Clip) Curves() []CurveID { return c.curves }
func (c *Clip) SetName(name string) { c.name = name }

func (c *Clip) removeCurve(id CurveID) {
	if i := slices.Index(c.curves, id); i >= 0 {
		c.curves = slices.Delete(c.curves, i, i+1)
	}
}

// NewClip creates a clip spanning [start, end). Clips shorter than
// [ClipEpsilon] are accepted but reported as advisories.
func (d *Document) NewClip(name string, start, end float64) ClipID {
	id := ClipID(d.clips.insert(&Clip{name: name, start: start, end: end}))
	d.checkClip(id)
	d.MarkDirty(id)
	return id
}

func (d *Document) checkClip(id ClipID) {
	clip, ok := d.Clip(id)
	if !ok {
		return
	}
	if clip.end-clip.start < ClipEpsilon {
		d.advise(id, "clip %q has degenerate duration [%s, %s]",
			clip.name, cast.ToString(clip.start), cast.ToString(clip.end))
	}
}

// CheckClips records an advisory for every clip that has no curves. Clips
// start out empty, so this is meant to run once a document is fully built.
// It returns the number of empty clips.
func (d *Document) CheckClips() int {
	var n int
	d.Clips(func(id ClipID, clip *Clip) bool {
		if len(clip.curves) == 0 {
			d.advise(id, "clip %q has no curves", clip.name)
			n++
		}
		return true
	})
	return n
}

// Clip returns the clip id refers to.
func (d *Document) Clip(id ClipID) (*Clip, bool) {
	return d.clips.get(handle(id))
}

// ClipByName returns the first clip with the given name.
func (d *Document) ClipByName(name string) (ClipID, bool) {
	var found ClipID
	d.clips.each(func(h handle, c *Clip) bool {
		if c.name == name {
			found = ClipID(h)
			return false
		}
		return true
	})
	return found, !found.IsZero()
}

// Clips calls fn for every clip in the document until fn returns false.
func (d *Document) Clips(fn func(id ClipID, c *Clip) bool) {
	d.clips.each(func(h handle, c *Clip) bool {
		return fn(ClipID(h), c)
	})
}

// SetClipRange changes a clip's bounds without touching its curves.
func (d *Document) SetClipRange(id ClipID, start, end float64) error {
	clip, ok := d.Clip(id)
	if !ok {
		return fmt.Errorf("set range of %s: %w", id, ErrStaleHandle)
	}
	clip.start, clip.end = start, end
	d.checkClip(id)
	d.MarkDirty(id)
	return nil
}

// RemoveClip deletes a clip and unregisters it from all of its curves. Curves
// it was current for keep their keys where they are.
func (d *Document) RemoveClip(id ClipID) bool {
	clip, ok := d.Clip(id)
	if !ok {
		return false
	}
	for _, curveID := range clip.curves {
		if c, ok := d.Curve(curveID); ok {
			c.unregisterClip(id)
			d.MarkDirty(curveID)
		}
	}
	d.clips.remove(handle(id))
	return true
}

// AddClipCurve registers a curve with a clip. The curve is placed at offset
// -start, so that the clip's local time 0 maps to the curve's time start. It
// returns false if either handle is stale or the curve is already registered.
func (d *Document) AddClipCurve(clipID ClipID, curveID CurveID) bool {
	clip, ok := d.Clip(clipID)
	if !ok {
		return false
	}
	c, ok := d.Curve(curveID)
	if !ok {
		return false
	}
	if slices.Contains(clip.curves, curveID) {
		return false
	}
	if !c.RegisterAnimationClip(clipID, -clip.start) {
		return false
	}
	clip.curves = append(clip.curves, curveID)
	d.MarkDirty(clipID)
	d.MarkDirty(curveID)
	return true
}

// ClipOffset returns the offset at which a clip places a curve.
func (d *Document) ClipOffset(clipID ClipID, curveID CurveID) (float64, bool) {
	c, ok := d.Curve(curveID)
	if !ok {
		return 0, false
	}
	return c.ClipOffset(clipID)
}

// SetClipOffset overwrites the offset of a curve that is registered with the
// clip. It does nothing if the curve isn't registered.
func (d *Document) SetClipOffset(clipID ClipID, curveID CurveID, offset float64) bool {
	c, ok := d.Curve(curveID)
	if !ok {
		return false
	}
	if !c.SetClipOffset(clipID, offset) {
		return false
	}
	d.MarkDirty(curveID)
	return true
}

// UpdateAnimationCurves moves a clip to start at newStart, keeping its
// duration. Every registered curve moves by the same amount: its offset for
// the clip, its current offset and all of its keys.
func (d *Document) UpdateAnimationCurves(id ClipID, newStart float64) error {
	clip, ok := d.Clip(id)
	if !ok {
		return fmt.Errorf("update curves of %s: %w", id, ErrStaleHandle)
	}
	delta := newStart - clip.start
	clip.start = newStart
	clip.end += delta
	d.MarkDirty(id)

	for _, curveID := range clip.curves {
		c, ok := d.Curve(curveID)
		if !ok {
			continue
		}
		c.shiftClip(id, delta)
		d.MarkDirty(curveID)
	}
	d.logger.WithFields(l.StringField("clip", clip.name), l.IntField("curves", len(clip.curves))).
		Debug("clip moved by ", delta)
	return nil
}

// SetCurrentAnimationClip activates a clip on a curve, retiming the curve's
// keys to the clip's offset. It returns false if nothing changed because the
// clip is already current or not registered with the curve.
func (d *Document) SetCurrentAnimationClip(curveID CurveID, clipID ClipID) bool {
	c, ok := d.Curve(curveID)
	if !ok {
		return false
	}
	if !c.SetCurrentAnimationClip(clipID) {
		return false
	}
	d.MarkDirty(curveID)
	return true
}

// PlayClip activates a clip on all of its curves and returns the number of
// curves that were retimed.
func (d *Document) PlayClip(id ClipID) (int, error) {
	clip, ok := d.Clip(id)
	if !ok {
		return 0, fmt.Errorf("play %s: %w", id, ErrStaleHandle)
	}
	var n int
	for _, curveID := range clip.curves {
		if d.SetCurrentAnimationClip(curveID, id) {
			n++
		}
	}
	d.logger.WithFields(l.StringField("clip", clip.name), l.IntField("retimed", n)).Debug("clip activated")
	return n, nil
}
