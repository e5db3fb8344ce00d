// Package sampler evaluates the curves of a document over a range of times.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/sgostarter/i/l"
	"golang.org/x/sync/errgroup"

	"honnef.co/go/anim"
	"honnef.co/go/anim/internal/animfile"
	"honnef.co/go/anim/internal/store"
)

// MaxSamples limits the number of sample times of a single request.
const MaxSamples = 1 << 20

var ErrBadRange = errors.New("invalid sample range")

// Request selects what to sample.
type Request struct {
	From, To, Step float64
	// At lists explicit sample times. If it is non-empty, the range fields
	// are ignored.
	At []float64
	// Curves names the curves to sample. All curves are sampled if it is
	// empty.
	Curves []string
	// Clip is activated on all of its curves before sampling.
	Clip string
	// Workers bounds the number of curves evaluated concurrently. Zero means
	// GOMAXPROCS.
	Workers int
}

// Result holds Values[curve][time].
type Result struct {
	Times  []float64
	Curves []string
	Values [][]float64
}

// Samples flattens the result, curve by curve.
func (r *Result) Samples() []store.Sample {
	out := make([]store.Sample, 0, len(r.Curves)*len(r.Times))
	for ci, name := range r.Curves {
		for ti, t := range r.Times {
			out = append(out, store.Sample{Curve: name, Time: t, Value: r.Values[ci][ti]})
		}
	}
	return out
}

// Times returns the sample times from, from+step, ... up to and including to.
func Times(from, to, step float64) ([]float64, error) {
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: step %g", ErrBadRange, step)
	}
	if math.IsNaN(from) || math.IsNaN(to) || math.IsInf(from, 0) || math.IsInf(to, 0) || to < from {
		return nil, fmt.Errorf("%w: [%g, %g]", ErrBadRange, from, to)
	}
	n := math.Floor((to-from)/step+1e-9) + 1
	if n > MaxSamples {
		return nil, fmt.Errorf("%w: %g samples exceed %d", ErrBadRange, n, MaxSamples)
	}
	ts := make([]float64, int(n))
	for i := range ts {
		ts[i] = from + float64(i)*step
	}
	return ts, nil
}

// Run samples the bundle's document. For every time, animated values are
// sampled first so that driven curves see their drivers at that time; the
// requested curves are then evaluated concurrently.
func Run(ctx context.Context, b *animfile.Bundle, req Request, logger l.Wrapper) (*Result, error) {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}
	logger = logger.WithFields(l.StringField(l.ClsKey, "sampler"))

	times := req.At
	if len(times) == 0 {
		var err error
		times, err = Times(req.From, req.To, req.Step)
		if err != nil {
			return nil, err
		}
	}
	d := b.Doc

	if req.Clip != "" {
		clip, ok := d.ClipByName(req.Clip)
		if !ok {
			return nil, fmt.Errorf("unknown clip %q", req.Clip)
		}
		n, err := d.PlayClip(clip)
		if err != nil {
			return nil, err
		}
		logger.WithFields(l.StringField("clip", req.Clip), l.IntField("retimed", n)).Info("clip activated")
	}

	var ids []anim.CurveID
	res := &Result{Times: times}
	if len(req.Curves) == 0 {
		d.Curves(func(id anim.CurveID, _ *anim.Curve) bool {
			if name, ok := b.CurveName(id); ok {
				ids = append(ids, id)
				res.Curves = append(res.Curves, name)
			}
			return true
		})
	} else {
		for _, name := range req.Curves {
			id, ok := b.CurveByName(name)
			if !ok {
				return nil, fmt.Errorf("unknown curve %q", name)
			}
			ids = append(ids, id)
			res.Curves = append(res.Curves, name)
		}
	}
	res.Values = make([][]float64, len(ids))
	for i := range res.Values {
		res.Values[i] = make([]float64, len(times))
	}

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	for ti, t := range times {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := d.Sample(t); err != nil {
			return nil, err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for ci, id := range ids {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				v, err := d.EvaluateCurve(id, t)
				if err != nil {
					return fmt.Errorf("curve %q: %w", res.Curves[ci], err)
				}
				res.Values[ci][ti] = v
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	logger.WithFields(l.IntField("curves", len(ids)), l.IntField("times", len(times))).Debug("sampled")
	return res, nil
}
