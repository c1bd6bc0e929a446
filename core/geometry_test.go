package core

import (
	"math"
	"testing"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: -4, Y: 0.5, Z: 2}

	if got := a.Add(b); got != (Vec3{X: -3, Y: 2.5, Z: 5}) {
		t.Errorf("Add = %#v", got)
	}
	if got := a.Sub(b); got != (Vec3{X: 5, Y: 1.5, Z: 1}) {
		t.Errorf("Sub = %#v", got)
	}
	if got := a.Scale(2); got != (Vec3{X: 2, Y: 4, Z: 6}) {
		t.Errorf("Scale = %#v", got)
	}
	if got := a.Dot(b); got != -4+1+6 {
		t.Errorf("Dot = %v", got)
	}
}

func TestVec3NormAndDistance(t *testing.T) {
	v := Vec3{X: 3, Y: 4, Z: 0}
	if got := v.Norm(); math.Abs(got-5) > 1e-12 {
		t.Errorf("Norm = %v, want 5", got)
	}
	if got := v.DistanceTo(Vec3{X: 3, Y: 4, Z: 12}); math.Abs(got-12) > 1e-12 {
		t.Errorf("DistanceTo = %v, want 12", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{X: 1, Y: 2, Z: 3}).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	for _, v := range []Vec3{
		{X: math.NaN()},
		{Y: math.Inf(1)},
		{Z: math.Inf(-1)},
	} {
		if v.IsFinite() {
			t.Errorf("%#v reported finite", v)
		}
	}
}
