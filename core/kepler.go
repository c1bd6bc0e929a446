package core

import (
	"errors"
	"math"
)

// Solver tuning. Tolerance is in radians of anomaly; the iteration cap
// bounds worst-case work per call so a degenerate input can never spin.
const (
	keplerTolerance   = 1e-8
	keplerMaxIter     = 100
	derivativeFloor   = 1e-10
	parabolicBand     = 1e-9
	hyperbolicSeedMin = 1e-8
)

var (
	// ErrNoConvergence is returned when Newton-Raphson fails to reach the
	// tolerance within the iteration cap. The affected body is simply
	// unresolvable for that epoch; callers keep its last good state.
	ErrNoConvergence = errors.New("kepler: anomaly iteration did not converge")

	// ErrParabolicOrbit is returned for eccentricity within the parabolic
	// band around 1, where the elliptical and hyperbolic formulations both
	// degenerate.
	ErrParabolicOrbit = errors.New("kepler: eccentricity too close to parabolic")
)

// NormalizeAngle maps any real radian value into (-π, π] by removing the
// nearest multiple of 2π. Output is invariant under adding 2πk to the input.
func NormalizeAngle(angle float64) float64 {
	a := angle - 2*math.Pi*math.Floor(angle/(2*math.Pi))
	if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// SolveKepler solves Kepler's equation for the anomaly matching mean anomaly
// m at eccentricity e, branching on orbit regime: eccentric anomaly E with
// E - e·sinE = m for ellipses, hyperbolic anomaly H with e·sinhH - H = m for
// hyperbolas. It also reports the iteration count for diagnostics.
//
// m may be any real value for the hyperbolic branch; the elliptical branch
// wraps it first so iteration always starts from a bounded residual.
func SolveKepler(m, e float64) (anomaly float64, iterations int, err error) {
	switch {
	case e < 0:
		return 0, 0, ErrNoConvergence
	case math.Abs(e-1) < parabolicBand:
		return 0, 0, ErrParabolicOrbit
	case e < 1:
		return solveElliptic(NormalizeAngle(m), e)
	default:
		return solveHyperbolic(m, e)
	}
}

func solveElliptic(m, e float64) (float64, int, error) {
	// High-eccentricity ellipses converge faster from π than from m.
	eca := m
	if e >= 0.8 {
		eca = math.Pi
		if m < 0 {
			eca = -math.Pi
		}
	}

	for i := 1; i <= keplerMaxIter; i++ {
		f := eca - e*math.Sin(eca) - m
		fp := 1 - e*math.Cos(eca)
		if math.Abs(fp) < derivativeFloor {
			// Near-parabolic pathology; bail out rather than divide.
			return 0, i, ErrNoConvergence
		}
		delta := f / fp
		eca -= delta
		if math.Abs(delta) <= keplerTolerance {
			return eca, i, nil
		}
	}
	return 0, keplerMaxIter, ErrNoConvergence
}

func solveHyperbolic(m, e float64) (float64, int, error) {
	// The logarithmic seed blows up as m → 0, so seed tiny anomalies at
	// zero directly.
	var hca float64
	if math.Abs(m) >= hyperbolicSeedMin {
		hca = math.Log(2*math.Abs(m)/e + 1.8)
		if m < 0 {
			hca = -hca
		}
	}

	for i := 1; i <= keplerMaxIter; i++ {
		f := e*math.Sinh(hca) - hca - m
		fp := e*math.Cosh(hca) - 1
		if math.Abs(fp) < derivativeFloor {
			return 0, i, ErrNoConvergence
		}
		delta := f / fp
		hca -= delta
		if math.Abs(delta) <= keplerTolerance {
			return hca, i, nil
		}
	}
	return 0, keplerMaxIter, ErrNoConvergence
}
