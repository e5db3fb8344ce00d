package animfile

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honnef.co/go/anim"
)

const walkYAML = `
animated:
  - name: time
    values: [0.5]
  - name: position
    values: [0, 0]
curves:
  - id: px
    target: {animated: position, component: 0}
    post_infinity: cycle
    keys: [0, 1, 2]
    values: [0, "10", 0]
    interpolations: [linear, LINEAR, Linear]
  - id: py
    target: {animated: position, component: 1}
    driver: {animated: time, component: 0}
    keys: [0, 1]
    values: [5, 15]
    interpolations: [linear, linear]
clips:
  - name: walk
    start: 0
    end: 2
    curves: [px]
`

func mustBuild(t *testing.T, src string, format Format) *Bundle {
	t.Helper()
	f, err := ReadFile(strings.NewReader(src), format)
	require.NoError(t, err)
	b, err := Build(f)
	require.NoError(t, err)
	return b
}

func evalByName(t *testing.T, b *Bundle, name string, at float64) float64 {
	t.Helper()
	id, ok := b.CurveByName(name)
	require.True(t, ok, "curve %q", name)
	v, err := b.Doc.EvaluateCurve(id, at)
	require.NoError(t, err)
	return v
}

func TestBuild(t *testing.T) {
	b := mustBuild(t, walkYAML, FormatYAML)
	d := b.Doc

	assert.Equal(t, 2, d.CurveCount())
	assert.Empty(t, d.Dirty())
	assert.Empty(t, d.Advisories())

	assert.InDelta(t, 5, evalByName(t, b, "px", 0.5), 1e-9)
	assert.InDelta(t, 5, evalByName(t, b, "px", 2.5), 1e-9)
	// py is driven by time[0] = 0.5, whatever the sample time.
	assert.InDelta(t, 10, evalByName(t, b, "py", 100), 1e-9)

	px, _ := b.CurveByName("px")
	walk, ok := d.ClipByName("walk")
	require.True(t, ok)
	offset, ok := d.ClipOffset(walk, px)
	require.True(t, ok)
	assert.Equal(t, 0.0, offset)

	c, _ := d.Curve(px)
	assert.Equal(t, anim.InfinityCycle, c.PostInfinity())
	assert.Equal(t, anim.InfinityConstant, c.PreInfinity())

	require.NoError(t, d.Sample(3))
	pos, ok := d.AnimatedByName("position")
	require.True(t, ok)
	a, _ := d.Animated(pos)
	assert.InDeltaSlice(t, []float64{10, 10}, a.Values(), 1e-9)
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		is   error
		msg  string
	}{
		{
			name: "unknown interpolation",
			src:  "curves:\n  - id: a\n    keys: [0, 1]\n    values: [0, 1]\n    interpolations: [smooth, linear]\n",
			is:   anim.ErrUnknownMode,
		},
		{
			name: "unknown infinity",
			src:  "curves:\n  - id: a\n    keys: [0]\n    values: [0]\n    pre_infinity: bounce\n",
			is:   anim.ErrUnknownMode,
		},
		{
			name: "length mismatch",
			src:  "curves:\n  - id: a\n    keys: [0, 1]\n    values: [0]\n",
			is:   anim.ErrLengthMismatch,
		},
		{
			name: "unsorted keys",
			src:  "curves:\n  - id: a\n    keys: [1, 0]\n    values: [0, 1]\n",
			is:   anim.ErrUnsortedKeys,
		},
		{
			name: "empty curve",
			src:  "curves:\n  - id: a\n    keys: []\n    values: []\n",
			is:   anim.ErrEmptyCurve,
		},
		{
			name: "not a number",
			src:  "curves:\n  - id: a\n    keys: [zero]\n    values: [0]\n",
			msg:  "keys[0]",
		},
		{
			name: "bad tangent",
			src:  "curves:\n  - id: a\n    keys: [0]\n    values: [0]\n    in_tangents: [[0]]\n    out_tangents: [[0, 1]]\n",
			msg:  "want 2 coordinates",
		},
		{
			name: "duplicate curve",
			src:  "curves:\n  - id: a\n    keys: [0]\n    values: [0]\n  - id: a\n    keys: [0]\n    values: [0]\n",
			msg:  "defined twice",
		},
		{
			name: "unknown target",
			src:  "curves:\n  - id: a\n    target: {animated: nope, component: 0}\n    keys: [0]\n    values: [0]\n",
			msg:  `unknown animated "nope"`,
		},
		{
			name: "component out of range",
			src:  "animated:\n  - name: v\n    values: [0]\ncurves:\n  - id: a\n    target: {animated: v, component: 3}\n    keys: [0]\n    values: [0]\n",
			is:   anim.ErrComponentRange,
		},
		{
			name: "unknown clip curve",
			src:  "clips:\n  - name: c\n    start: 0\n    end: 1\n    curves: [a]\n",
			msg:  `unknown curve "a"`,
		},
		{
			name: "duplicate clip curve",
			src:  "curves:\n  - id: a\n    keys: [0]\n    values: [0]\nclips:\n  - name: c\n    start: 0\n    end: 1\n    curves: [a, a]\n",
			msg:  "listed twice",
		},
		{
			name: "offset of unregistered curve",
			src:  "curves:\n  - id: a\n    keys: [0]\n    values: [0]\nclips:\n  - name: c\n    start: 0\n    end: 1\n    offsets: {a: 2}\n",
			is:   anim.ErrNotRegistered,
		},
		{
			name: "unknown current clip",
			src:  "curves:\n  - id: a\n    keys: [0]\n    values: [0]\n    current_clip: c\n",
			msg:  `unknown current clip "c"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ReadFile(strings.NewReader(tt.src), FormatYAML)
			require.NoError(t, err)
			_, err = Build(f)
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "got %v", err)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestReadFileUnknownField(t *testing.T) {
	_, err := ReadFile(strings.NewReader("curves:\n  - id: a\n    frames: [0]\n"), FormatYAML)
	assert.Error(t, err)

	_, err = ReadFile(strings.NewReader("[[curves]]\nid = \"a\"\nframes = [0]\n"), FormatTOML)
	assert.Error(t, err)

	f, err := ReadFile(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, f.Curves)
}

func TestDegenerateClipAdvisory(t *testing.T) {
	b := mustBuild(t, "clips:\n  - name: blink\n    start: 1\n    end: 1\n", FormatYAML)
	adv := b.Doc.Advisories()
	require.Len(t, adv, 2)
	assert.Contains(t, adv[0].Message, "blink")
	assert.Contains(t, adv[0].Message, "degenerate")
	assert.Contains(t, adv[1].Message, "no curves")
}

func TestEmptyClipAdvisory(t *testing.T) {
	src := `
curves:
  - id: a
    keys: [0, 1]
    values: [0, 1]
clips:
  - name: used
    start: 0
    end: 1
    curves: [a]
  - name: unused
    start: 0
    end: 1
`
	b := mustBuild(t, src, FormatYAML)
	adv := b.Doc.Advisories()
	require.Len(t, adv, 1)
	unused, ok := b.Doc.ClipByName("unused")
	require.True(t, ok)
	assert.Equal(t, anim.Ref(unused), adv[0].Ref)
	assert.Equal(t, `clip "unused" has no curves`, adv[0].Message)
}

const retimedYAML = `
curves:
  - id: a
    keys: [10, 11]
    values: [0, 1]
    in_tangents: [[9.5, 0], [10.5, 1]]
    out_tangents: [[10.5, 0], [11.5, 1]]
    interpolations: [bezier, bezier]
    current_clip: late
    current_offset: "10"
clips:
  - name: early
    start: 0
    end: 1
    curves: [a]
  - name: late
    start: 5
    end: 6
    curves: [a]
    offsets: {a: 10}
`

func TestBuildRestoresCurrentClip(t *testing.T) {
	b := mustBuild(t, retimedYAML, FormatYAML)
	d := b.Doc
	id, _ := b.CurveByName("a")
	c, _ := d.Curve(id)

	late, _ := d.ClipByName("late")
	early, _ := d.ClipByName("early")
	assert.Equal(t, late, c.CurrentClip())
	assert.Equal(t, 10.0, c.CurrentOffset())
	assert.Equal(t, []float64{10, 11}, c.Keys())

	require.True(t, d.SetCurrentAnimationClip(id, early))
	assert.Equal(t, []float64{0, 1}, c.Keys())
	assert.Equal(t, anim.Pt(-0.5, 0), c.InTangents()[0])
}

func TestBuildRestoresCurrentClipUnnamed(t *testing.T) {
	src := `
curves:
  - id: a
    keys: [0, 1]
    values: [0, 1]
  - keys: [5, 6]
    values: [1, 0]
    current_clip: late
clips:
  - name: late
    start: 5
    end: 6
    curves: [a, curve1]
`
	b := mustBuild(t, src, FormatYAML)
	id, ok := b.CurveByName("curve1")
	require.True(t, ok)
	c, _ := b.Doc.Curve(id)
	late, _ := b.Doc.ClipByName("late")
	assert.Equal(t, late, c.CurrentClip())
	assert.Equal(t, -5.0, c.CurrentOffset())
	assert.Equal(t, []float64{5, 6}, c.Keys())

	a, _ := b.CurveByName("a")
	ca, _ := b.Doc.Curve(a)
	assert.True(t, ca.CurrentClip().IsZero())

	f, err := ReadFile(strings.NewReader(strings.Replace(src, "current_clip: late", "current_clip: early", 1)), FormatYAML)
	require.NoError(t, err)
	_, err = Build(f)
	assert.ErrorContains(t, err, `curve "curve1": unknown current clip "early"`)
}

func TestRoundTrip(t *testing.T) {
	for _, src := range []string{walkYAML, retimedYAML} {
		for _, format := range []Format{FormatYAML, FormatTOML} {
			t.Run(format.String(), func(t *testing.T) {
				b1 := mustBuild(t, src, FormatYAML)

				var buf bytes.Buffer
				require.NoError(t, WriteFile(&buf, Flatten(b1), format))
				b2 := mustBuild(t, buf.String(), format)

				assert.Equal(t, b1.Doc.CurveCount(), b2.Doc.CurveCount())
				b1.Doc.Curves(func(id anim.CurveID, c1 *anim.Curve) bool {
					name, ok := b1.CurveName(id)
					require.True(t, ok)
					id2, ok := b2.CurveByName(name)
					require.True(t, ok, "curve %q lost", name)
					c2, _ := b2.Doc.Curve(id2)

					assert.Equal(t, c1.Keys(), c2.Keys())
					assert.Equal(t, c1.Values(), c2.Values())
					assert.Equal(t, c1.Interpolations(), c2.Interpolations())
					assert.Equal(t, c1.InTangents(), c2.InTangents())
					assert.Equal(t, c1.PreInfinity(), c2.PreInfinity())
					assert.Equal(t, c1.PostInfinity(), c2.PostInfinity())
					assert.Equal(t, c1.HasDriver(), c2.HasDriver())
					assert.Equal(t, c1.CurrentOffset(), c2.CurrentOffset())
					assert.Equal(t, len(c1.Clips()), len(c2.Clips()))
					for _, at := range []float64{-1, 0.25, 1.5, 3, 10.5, 12} {
						assert.InDelta(t, evalByName(t, b1, name, at), evalByName(t, b2, name, at), 1e-9)
					}
					return true
				})

				b1.Doc.Clips(func(id anim.ClipID, c1 *anim.Clip) bool {
					id2, ok := b2.Doc.ClipByName(c1.Name())
					require.True(t, ok)
					c2, _ := b2.Doc.Clip(id2)
					assert.Equal(t, c1.Start(), c2.Start())
					assert.Equal(t, c1.End(), c2.End())
					for _, curve := range c1.Curves() {
						name, _ := b1.CurveName(curve)
						curve2, _ := b2.CurveByName(name)
						o1, _ := b1.Doc.ClipOffset(id, curve)
						o2, ok := b2.Doc.ClipOffset(id2, curve2)
						assert.True(t, ok)
						assert.Equal(t, o1, o2)
					}
					return true
				})
			})
		}
	}
}

func TestFlattenNamesUnnamedCurves(t *testing.T) {
	d := anim.NewDocument()
	d.AddCurve(anim.NewCurveFromKeys([]float64{0, 1}, []float64{0, 1}, anim.InterpolationLinear))
	d.AddCurve(anim.NewCurveFromKeys([]float64{0}, []float64{3}, anim.InterpolationStep))
	b := NewBundle(d)

	f := Flatten(b)
	require.Len(t, f.Curves, 2)
	assert.Equal(t, "curve0", f.Curves[0].ID)
	assert.Equal(t, "curve1", f.Curves[1].ID)
	assert.Nil(t, f.Curves[0].Target)
	assert.Equal(t, []string{"LINEAR", "LINEAR"}, f.Curves[0].Interpolations)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	b := mustBuild(t, walkYAML, FormatYAML)
	for _, name := range []string{"walk.yaml", "walk.toml", "nested/walk.yml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, b))
		loaded, err := Load(path)
		require.NoError(t, err)
		assert.InDelta(t, 5, evalByName(t, loaded, "px", 0.5), 1e-9)
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.ErrorIs(t, Save(filepath.Join(dir, "walk.json"), b), ErrUnknownFormat)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"a.yaml", FormatYAML, false},
		{"a.YML", FormatYAML, false},
		{"dir/a.toml", FormatTOML, false},
		{"a.json", 0, true},
		{"a", 0, true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}
