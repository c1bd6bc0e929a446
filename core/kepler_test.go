package core

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeAngleRange(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{3 * math.Pi / 2, -math.Pi / 2},
		{2 * math.Pi, 0},
		{-7.25 * math.Pi, 0.75 * math.Pi},
	}
	for _, c := range cases {
		got := NormalizeAngle(c.in)
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", c.in, got, c.want)
		}
		if got <= -math.Pi || got > math.Pi {
			t.Errorf("NormalizeAngle(%v) = %v outside (-π, π]", c.in, got)
		}
	}
}

func TestNormalizeAngleWrapInvariance(t *testing.T) {
	for _, theta := range []float64{0, 0.5, -2.1, 3.0, math.Pi - 1e-6} {
		want := NormalizeAngle(theta)
		for _, k := range []float64{-3, -1, 1, 2, 10} {
			got := NormalizeAngle(theta + 2*math.Pi*k)
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("NormalizeAngle(%v + 2π·%v) = %v, want %v", theta, k, got, want)
			}
		}
	}
}

func TestSolveKeplerEllipticResidual(t *testing.T) {
	cases := []struct {
		m, e float64
	}{
		{0.1, 0.0167},
		{2.5, 0.0934},
		{-1.2, 0.3},
		{3.0, 0.79},
		{0.05, 0.967}, // Halley-class eccentricity, high-e seed path
		{-2.9, 0.95},
		{17.3, 0.5}, // unwrapped input
	}
	for _, c := range cases {
		eca, iters, err := SolveKepler(c.m, c.e)
		if err != nil {
			t.Fatalf("SolveKepler(%v, %v): %v", c.m, c.e, err)
		}
		if iters > keplerMaxIter {
			t.Fatalf("SolveKepler(%v, %v) reported %d iterations, cap is %d", c.m, c.e, iters, keplerMaxIter)
		}
		m := NormalizeAngle(c.m)
		residual := eca - c.e*math.Sin(eca) - m
		if math.Abs(residual) > 1e-7 {
			t.Errorf("SolveKepler(%v, %v) residual = %v", c.m, c.e, residual)
		}
	}
}

func TestSolveKeplerCircularIsTrivial(t *testing.T) {
	eca, _, err := SolveKepler(1.234, 0)
	if err != nil {
		t.Fatalf("SolveKepler: %v", err)
	}
	if math.Abs(eca-1.234) > 1e-12 {
		t.Fatalf("e=0 should give E = M, got %v", eca)
	}
}

func TestSolveKeplerHyperbolicResidual(t *testing.T) {
	cases := []struct {
		m, e float64
	}{
		{0.5, 1.2},
		{-4.0, 1.5},
		{25.0, 1.05},
		{-0.3, 3.4},
		{100.0, 1.19951},
	}
	for _, c := range cases {
		hca, iters, err := SolveKepler(c.m, c.e)
		if err != nil {
			t.Fatalf("SolveKepler(%v, %v): %v", c.m, c.e, err)
		}
		if iters > keplerMaxIter {
			t.Fatalf("iteration cap exceeded: %d", iters)
		}
		residual := c.e*math.Sinh(hca) - hca - c.m
		if math.Abs(residual) > 1e-6 {
			t.Errorf("SolveKepler(%v, %v) residual = %v", c.m, c.e, residual)
		}
	}
}

func TestSolveKeplerHyperbolicTinyMeanAnomaly(t *testing.T) {
	// The logarithmic seed is singular near M = 0; these must hit the
	// zero-seed special case and converge immediately.
	for _, m := range []float64{0, 1e-12, -1e-12, 5e-9} {
		hca, _, err := SolveKepler(m, 1.3)
		if err != nil {
			t.Fatalf("SolveKepler(%v, 1.3): %v", m, err)
		}
		if math.Abs(hca) > 1e-6 {
			t.Errorf("SolveKepler(%v, 1.3) = %v, want ~0", m, hca)
		}
	}
}

func TestSolveKeplerParabolicRejected(t *testing.T) {
	for _, e := range []float64{1.0, 1.0 + 1e-10, 1.0 - 1e-10} {
		anomaly, iters, err := SolveKepler(0.7, e)
		if !errors.Is(err, ErrParabolicOrbit) {
			t.Fatalf("SolveKepler(0.7, %v) err = %v, want ErrParabolicOrbit", e, err)
		}
		if iters != 0 {
			t.Errorf("parabolic rejection should not iterate, got %d iterations", iters)
		}
		if math.IsNaN(anomaly) {
			t.Errorf("SolveKepler(0.7, %v) returned NaN", e)
		}
	}
}

func TestSolveKeplerNegativeEccentricityRejected(t *testing.T) {
	if _, _, err := SolveKepler(0.5, -0.1); err == nil {
		t.Fatal("negative eccentricity should be rejected")
	}
}

func TestSolveKeplerSignSymmetry(t *testing.T) {
	// f(-M) = -f(M) holds on both branches; the solver should preserve it.
	for _, c := range []struct{ m, e float64 }{{1.1, 0.4}, {2.0, 1.7}} {
		pos, _, err := SolveKepler(c.m, c.e)
		if err != nil {
			t.Fatalf("SolveKepler(%v, %v): %v", c.m, c.e, err)
		}
		neg, _, err := SolveKepler(-c.m, c.e)
		if err != nil {
			t.Fatalf("SolveKepler(%v, %v): %v", -c.m, c.e, err)
		}
		if math.Abs(pos+neg) > 1e-7 {
			t.Errorf("anomaly(%v) = %v, anomaly(%v) = %v; expected odd symmetry", c.m, pos, -c.m, neg)
		}
	}
}
