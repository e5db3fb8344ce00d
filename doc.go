// Package anim provides keyframe animation curves, the clips that retime them,
// and the driver linkage that lets one animated value drive another curve's
// input. It was designed to serve the needs of document loaders and scene
// samplers for COLLADA-style animation data, but it is intended to be general
// enough to be useful for other keyframed formats.
//
// # Curves
//
// A [Curve] stores one scalar channel as parallel slices of keys (inputs),
// values (outputs), Bézier tangents and per-key [Interpolation] modes. Inputs
// outside the key range are handled by the curve's pre- and post-[Infinity]
// policies: constant, linear, cycle, relative cycle and oscillation.
//
// Curves need tangents and interpolation modes before they are evaluated.
// [Curve.Ready] synthesizes whatever is missing, in a single pass, using a
// Catmull-Rom style rule that clamps at the first and last key. Ready is
// idempotent: it never overwrites tangents or modes that are already present.
//
// [Curve.Evaluate] is the hot path. It doesn't allocate and it doesn't fail;
// a curve without keys evaluates to zero. Use [Curve.EvaluateChecked] or
// [Curve.Validate] where malformed data must be reported.
//
// # Documents, clips and drivers
//
// A [Document] owns curves, clips and animated values in arenas and hands out
// generation-checked handles ([CurveID], [ClipID], [AnimatedID]). Handles to
// removed objects resolve to nothing instead of dangling.
//
// A [Clip] is a named time window over a set of curves. Every curve remembers,
// per clip, the offset at which that clip places it. Activating a clip on a
// curve with [Document.SetCurrentAnimationClip] moves the curve's keys by the
// difference between the old and the new offset; moving the clip itself with
// [Document.UpdateAnimationCurves] drags the keys of all curves registered
// with it along.
//
// An [Animated] value is a target with one or more float components, each of
// which may be animated by curves. A curve with a [Driver] is evaluated at the
// driver component's current value rather than at the sampled time.
//
// Mutations that a serializer would care about are recorded in the document's
// dirty set, see [Document.MarkDirty] and [Document.Dirty].
package anim
