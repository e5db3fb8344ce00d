package anim

import (
	"fmt"
	"slices"

	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"
)

// Advisory is a non-fatal data quality problem found while building a
// document, such as a clip without duration.
type Advisory struct {
	Ref     Ref
	Message string
}

func (a Advisory) String() string {
	return fmt.Sprintf("%s: %s", a.Ref, a.Message)
}

// Option configures a [Document].
type Option func(d *Document)

// WithLogger sets the logger a document reports advisories and retiming to.
func WithLogger(logger l.Wrapper) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// Document owns curves, clips and animated values and maintains the relations
// between them. It isn't safe for concurrent use.
type Document struct {
	logger l.Wrapper

	curves   arena[Curve]
	clips    arena[Clip]
	animated arena[Animated]

	dirty      []Ref
	dirtyIndex map[Ref]struct{}
	advisories []Advisory
}

// NewDocument returns an empty document.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		dirtyIndex: make(map[Ref]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = l.NewNopLoggerWrapper()
	}
	d.logger = d.logger.WithFields(l.StringField(l.ClsKey, "anim.Document"))
	return d
}

// MarkDirty records that ref was modified and needs to be written again.
func (d *Document) MarkDirty(ref Ref) {
	if ref == nil || ref.IsZero() {
		return
	}
	if _, ok := d.dirtyIndex[ref]; ok {
		return
	}
	d.dirtyIndex[ref] = struct{}{}
	d.dirty = append(d.dirty, ref)
}

// Dirty returns the objects modified since the last call to ClearDirty, in the
// order they were first modified.
func (d *Document) Dirty() []Ref {
	return d.dirty
}

// IsDirty reports whether ref was modified since the last call to ClearDirty.
func (d *Document) IsDirty(ref Ref) bool {
	_, ok := d.dirtyIndex[ref]
	return ok
}

func (d *Document) ClearDirty() {
	d.dirty = nil
	clear(d.dirtyIndex)
}

// Advisories returns the data quality problems recorded so far.
func (d *Document) Advisories() []Advisory {
	return d.advisories
}

// advise records an advisory unless an identical one is already recorded.
func (d *Document) advise(ref Ref, format string, args ...any) {
	a := Advisory{Ref: ref, Message: fmt.Sprintf(format, args...)}
	if slices.Contains(d.advisories, a) {
		return
	}
	d.advisories = append(d.advisories, a)
	d.logger.WithFields(l.StringField("ref", ref.String())).Warn(a.Message)
}

// AddCurve takes ownership of c and returns its handle.
func (d *Document) AddCurve(c *Curve) CurveID {
	id := CurveID(d.curves.insert(c))
	d.MarkDirty(id)
	return id
}

// Curve returns the curve id refers to.
func (d *Document) Curve(id CurveID) (*Curve, bool) {
	return d.curves.get(handle(id))
}

// Curves calls fn for every curve in the document until fn returns false.
func (d *Document) Curves(fn func(id CurveID, c *Curve) bool) {
	d.curves.each(func(h handle, c *Curve) bool {
		return fn(CurveID(h), c)
	})
}

func (d *Document) CurveCount() int { return d.curves.len() }

// RemoveCurve deletes a curve and detaches it from all clips and animated
// values.
func (d *Document) RemoveCurve(id CurveID) bool {
	c, ok := d.Curve(id)
	if !ok {
		return false
	}
	for _, clipID := range c.clips {
		if clip, ok := d.Clip(clipID); ok {
			clip.removeCurve(id)
			d.MarkDirty(clipID)
		}
	}
	d.animated.each(func(h handle, a *Animated) bool {
		if a.detach(id) {
			d.MarkDirty(AnimatedID(h))
		}
		return true
	})
	d.curves.remove(handle(id))
	return true
}

// Ready readies the curve id refers to and marks it dirty.
func (d *Document) Ready(id CurveID) error {
	c, ok := d.Curve(id)
	if !ok {
		return fmt.Errorf("ready %s: %w", id, ErrStaleHandle)
	}
	c.Ready()
	d.MarkDirty(id)
	return nil
}

// ReadyAll readies every curve of the document.
func (d *Document) ReadyAll() {
	d.Curves(func(id CurveID, c *Curve) bool {
		if c.Ready() {
			d.MarkDirty(id)
		}
		return true
	})
}

// Validate validates every curve and returns the first problem found.
func (d *Document) Validate() error {
	var err error
	d.Curves(func(id CurveID, c *Curve) bool {
		if verr := c.Validate(); verr != nil {
			err = fmt.Errorf("%s: %w", id, verr)
			return false
		}
		return true
	})
	return err
}

// EvaluateCurve evaluates a curve at time t. If the curve has a driver that
// resolves, it is evaluated at the driver's value instead.
func (d *Document) EvaluateCurve(id CurveID, t float64) (float64, error) {
	c, ok := d.Curve(id)
	if !ok {
		return 0, fmt.Errorf("evaluate %s: %w", id, ErrStaleHandle)
	}
	input := t
	if v, ok := d.DriverValue(id); ok {
		input = v
	}
	v, err := c.EvaluateChecked(input)
	if err != nil {
		return 0, fmt.Errorf("evaluate %s at %s: %w", id, cast.ToString(input), err)
	}
	return v, nil
}
