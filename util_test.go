package anim

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Handles have unexported fields but are comparable.
var handleOpts = cmp.Options{
	cmp.Comparer(func(a, b CurveID) bool { return a == b }),
	cmp.Comparer(func(a, b ClipID) bool { return a == b }),
	cmp.Comparer(func(a, b AnimatedID) bool { return a == b }),
}

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, append(opts, handleOpts)...); d != "" {
		t.Error(d)
	}
}

var approx = cmpopts.EquateApprox(0, 1e-9)

var pointComparer = cmp.Comparer(func(p1, p2 Point) bool {
	return p1.Distance(p2) <= 1e-12
})
