package anim

import (
	"fmt"
	"slices"
)

// Animated is a named value with one or more float components, each of which
// may be animated by curves. It is also what a [Driver] points at.
type Animated struct {
	name   string
	values []float64
	curves [][]CurveID
}

func (a *Animated) Name() string { return a.name }

// Len returns the number of components.
func (a *Animated) Len() int { return len(a.values) }

// Values returns the components' current values. The slice is owned by the
// animated value.
func (a *Animated) Values() []float64 { return a.values }

// Value returns the current value of component i.
func (a *Animated) Value(i int) (float64, bool) {
	if i < 0 || i >= len(a.values) {
		return 0, false
	}
	return a.values[i], true
}

// Curves returns the curves animating component i.
func (a *Animated) Curves(i int) []CurveID {
	if i < 0 || i >= len(a.curves) {
		return nil
	}
	return a.curves[i]
}

// IsAnimated reports whether any component has a curve.
func (a *Animated) IsAnimated() bool {
	for _, cs := range a.curves {
		if len(cs) > 0 {
			return true
		}
	}
	return false
}

func (a *Animated) detach(id CurveID) bool {
	var found bool
	for i, cs := range a.curves {
		if j := slices.Index(cs, id); j >= 0 {
			a.curves[i] = slices.Delete(cs, j, j+1)
			found = true
		}
	}
	return found
}

// NewAnimated creates an animated value whose components start out with the
// given values.
func (d *Document) NewAnimated(name string, values ...float64) AnimatedID {
	a := &Animated{
		name:   name,
		values: slices.Clone(values),
		curves: make([][]CurveID, len(values)),
	}
	id := AnimatedID(d.animated.insert(a))
	d.MarkDirty(id)
	return id
}

// Animated returns the animated value id refers to.
func (d *Document) Animated(id AnimatedID) (*Animated, bool) {
	return d.animated.get(handle(id))
}

// AnimatedByName returns the first animated value with the given name.
func (d *Document) AnimatedByName(name string) (AnimatedID, bool) {
	var found AnimatedID
	d.animated.each(func(h handle, a *Animated) bool {
		if a.name == name {
			found = AnimatedID(h)
			return false
		}
		return true
	})
	return found, !found.IsZero()
}

// AnimatedValues calls fn for every animated value until fn returns false.
func (d *Document) AnimatedValues(fn func(id AnimatedID, a *Animated) bool) {
	d.animated.each(func(h handle, a *Animated) bool {
		return fn(AnimatedID(h), a)
	})
}

// RemoveAnimated deletes an animated value. Curves it drives keep their driver
// handle, which no longer resolves.
func (d *Document) RemoveAnimated(id AnimatedID) bool {
	return d.animated.remove(handle(id))
}

// SetAnimatedValue sets the current value of component i.
func (d *Document) SetAnimatedValue(id AnimatedID, i int, v float64) error {
	a, ok := d.Animated(id)
	if !ok {
		return fmt.Errorf("set value of %s: %w", id, ErrStaleHandle)
	}
	if i < 0 || i >= len(a.values) {
		return fmt.Errorf("set value of %s[%d]: %w", id, i, ErrComponentRange)
	}
	a.values[i] = v
	return nil
}

// AttachCurve makes curve animate component i of an animated value.
func (d *Document) AttachCurve(id AnimatedID, i int, curve CurveID) error {
	a, ok := d.Animated(id)
	if !ok {
		return fmt.Errorf("attach to %s: %w", id, ErrStaleHandle)
	}
	if _, ok := d.Curve(curve); !ok {
		return fmt.Errorf("attach %s: %w", curve, ErrStaleHandle)
	}
	if i < 0 || i >= len(a.values) {
		return fmt.Errorf("attach to %s[%d]: %w", id, i, ErrComponentRange)
	}
	if slices.Contains(a.curves[i], curve) {
		return fmt.Errorf("attach %s to %s[%d]: %w", curve, id, i, ErrAlreadyAttached)
	}
	a.curves[i] = append(a.curves[i], curve)
	d.MarkDirty(id)
	return nil
}

// Target returns the animated value and component a curve is attached to.
func (d *Document) Target(curve CurveID) (AnimatedID, int, bool) {
	var (
		target AnimatedID
		index  int
	)
	d.animated.each(func(h handle, a *Animated) bool {
		for i, cs := range a.curves {
			if slices.Contains(cs, curve) {
				target, index = AnimatedID(h), i
				return false
			}
		}
		return true
	})
	return target, index, !target.IsZero()
}

// SetDriver makes a curve driven by component i of an animated value.
func (d *Document) SetDriver(curve CurveID, driver AnimatedID, i int) error {
	c, ok := d.Curve(curve)
	if !ok {
		return fmt.Errorf("set driver of %s: %w", curve, ErrStaleHandle)
	}
	a, ok := d.Animated(driver)
	if !ok {
		return fmt.Errorf("set driver of %s to %s: %w", curve, driver, ErrStaleHandle)
	}
	if i < 0 || i >= len(a.values) {
		return fmt.Errorf("set driver of %s to %s[%d]: %w", curve, driver, i, ErrComponentRange)
	}
	c.SetDriver(Driver{Animated: driver, Index: i})
	d.MarkDirty(curve)
	return nil
}

// DriverValue resolves a curve's driver to the driving component's current
// value. It reports false if the curve has no driver or the driver no longer
// resolves.
func (d *Document) DriverValue(curve CurveID) (float64, bool) {
	c, ok := d.Curve(curve)
	if !ok {
		return 0, false
	}
	drv, ok := c.Driver()
	if !ok {
		return 0, false
	}
	a, ok := d.Animated(drv.Animated)
	if !ok {
		return 0, false
	}
	return a.Value(drv.Index)
}

// Sample evaluates every animated value at time t and stores the results as
// the values' current components. Each component is set from the first of its
// curves. Values are sampled after the values that drive them, so that driven
// curves see drivers sampled at t, also along chains of drivers. On a cycle of
// drivers, the first value sampled reads its driver's previous sample.
func (d *Document) Sample(t float64) error {
	for _, id := range d.sampleOrder() {
		a, _ := d.Animated(id)
		if err := d.sampleAnimated(a, t); err != nil {
			return err
		}
	}
	return nil
}

// sampleOrder returns all animated values, each after the values that drive
// its curves. Independent values keep their slot order.
func (d *Document) sampleOrder() []AnimatedID {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[AnimatedID]int, d.animated.len())
	order := make([]AnimatedID, 0, d.animated.len())
	var visit func(id AnimatedID, a *Animated)
	visit = func(id AnimatedID, a *Animated) {
		if state[id] != unvisited {
			return
		}
		state[id] = visiting
		for _, drv := range d.drivers(a) {
			if da, ok := d.Animated(drv); ok {
				visit(drv, da)
			}
		}
		state[id] = visited
		order = append(order, id)
	}
	d.animated.each(func(h handle, a *Animated) bool {
		visit(AnimatedID(h), a)
		return true
	})
	return order
}

// drivers returns the animated values that drive a's curves.
func (d *Document) drivers(a *Animated) []AnimatedID {
	var out []AnimatedID
	for _, cs := range a.curves {
		for _, id := range cs {
			c, ok := d.Curve(id)
			if !ok {
				continue
			}
			if drv, ok := c.Driver(); ok {
				out = append(out, drv.Animated)
			}
		}
	}
	return out
}

func (d *Document) sampleAnimated(a *Animated, t float64) error {
	for i, cs := range a.curves {
		if len(cs) == 0 {
			continue
		}
		v, err := d.EvaluateCurve(cs[0], t)
		if err != nil {
			return fmt.Errorf("sample %q[%d]: %w", a.name, i, err)
		}
		a.values[i] = v
	}
	return nil
}
