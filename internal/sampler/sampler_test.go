package sampler

import (
	"context"
	"strings"
	"testing"

	"github.com/sgostarter/i/l"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/anim/internal/animfile"
)

const doc = `
animated:
  - name: time
    values: [0]
  - name: out
    values: [0, 0]
curves:
  - id: clock
    target: {animated: time, component: 0}
    keys: [0, 10]
    values: [0, 1]
    interpolations: [linear, linear]
  - id: driven
    target: {animated: out, component: 0}
    driver: {animated: time, component: 0}
    keys: [0, 1]
    values: [0, 100]
    interpolations: [linear, linear]
  - id: stepped
    target: {animated: out, component: 1}
    keys: [0, 1, 2]
    values: [1, 2, 3]
    interpolations: [step, step, step]
clips:
  - name: late
    start: 5
    end: 7
    curves: [stepped]
    offsets: {stepped: 5}
`

func load(t *testing.T) *animfile.Bundle {
	t.Helper()
	f, err := animfile.ReadFile(strings.NewReader(doc), animfile.FormatYAML)
	require.NoError(t, err)
	b, err := animfile.Build(f)
	require.NoError(t, err)
	return b
}

func TestTimes(t *testing.T) {
	ts, err := Times(0, 1, 0.25)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, ts)

	ts, err = Times(0, 0.3, 0.1)
	require.NoError(t, err)
	assert.Len(t, ts, 4)

	ts, err = Times(2, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, ts)

	for _, bad := range [][3]float64{{0, 1, 0}, {0, 1, -1}, {1, 0, 0.1}, {0, 1e9, 1e-9}} {
		_, err := Times(bad[0], bad[1], bad[2])
		assert.ErrorIs(t, err, ErrBadRange, "%v", bad)
	}
}

func TestRun(t *testing.T) {
	b := load(t)
	res, err := Run(context.Background(), b, Request{From: 0, To: 10, Step: 5, Workers: 2}, l.NewNopLoggerWrapper())
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 5, 10}, res.Times)
	assert.Equal(t, []string{"clock", "driven", "stepped"}, res.Curves)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, res.Values[0], 1e-9)
	// driven follows clock sampled at the same time.
	assert.InDeltaSlice(t, []float64{0, 50, 100}, res.Values[1], 1e-9)
	assert.InDeltaSlice(t, []float64{1, 3, 3}, res.Values[2], 1e-9)

	samples := res.Samples()
	require.Len(t, samples, 9)
	assert.Equal(t, "driven", samples[4].Curve)
	assert.Equal(t, 5.0, samples[4].Time)
	assert.InDelta(t, 50, samples[4].Value, 1e-9)
}

func TestRunClip(t *testing.T) {
	b := load(t)
	res, err := Run(context.Background(), b, Request{From: 4, To: 7, Step: 1, Curves: []string{"stepped"}, Clip: "late"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"stepped"}, res.Curves)
	// The late clip moves the keys to 5, 6, 7.
	assert.InDeltaSlice(t, []float64{1, 1, 2, 3}, res.Values[0], 1e-9)
}

func TestRunAt(t *testing.T) {
	b := load(t)
	res, err := Run(context.Background(), b, Request{At: []float64{10, -1, 2.5}, Curves: []string{"clock"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, -1, 2.5}, res.Times)
	assert.InDeltaSlice(t, []float64{1, 0, 0.25}, res.Values[0], 1e-9)
}

func TestRunErrors(t *testing.T) {
	b := load(t)
	ctx := context.Background()

	_, err := Run(ctx, b, Request{From: 0, To: 1, Step: 1, Curves: []string{"nope"}}, nil)
	assert.ErrorContains(t, err, `unknown curve "nope"`)

	_, err = Run(ctx, b, Request{From: 0, To: 1, Step: 1, Clip: "nope"}, nil)
	assert.ErrorContains(t, err, `unknown clip "nope"`)

	_, err = Run(ctx, b, Request{From: 0, To: 1}, nil)
	assert.ErrorIs(t, err, ErrBadRange)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Run(cancelled, b, Request{From: 0, To: 1, Step: 1}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
