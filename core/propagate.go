package core

import (
	"errors"
	"math"

	"github.com/reversesingularity/phobetron-orbital/model"
)

// GaussK is the Gaussian gravitational constant: the heliocentric mean
// motion, in radians per day, of a body with a 1 AU semi-major axis. Used to
// derive mean motion for bodies whose catalogs carry no explicit mean
// anomaly rate.
const GaussK = 0.01720209895

// denominatorFloor guards the true-anomaly divisions; values this close to
// zero only occur for near-parabolic element sets.
const denominatorFloor = 1e-12

// ErrNonFinite is returned when a propagation produces a NaN or infinite
// component despite passing the earlier guards.
var ErrNonFinite = errors.New("propagate: non-finite position")

// Propagate computes a body's position at the given Julian date from its
// reference-epoch elements: secular drift, mean anomaly advance, the Kepler
// solve, true-anomaly trig, and the 3-1-3 rotation into the shared ecliptic
// frame. It is a pure function of its arguments: no clock, no retained
// state, safe to call concurrently for different bodies.
//
// The orbit regime is classified by eccentricity alone. Failures (parabolic
// band, non-convergence, non-finite output) come back as typed errors; the
// position is never silently garbage.
func Propagate(el model.OrbitalElements, epochJD float64) (Vec3, error) {
	cur := el.AtEpoch(epochJD)

	m := cur.MeanAnomaly
	if el.Rates.MeanAnomaly == 0 {
		// No catalog rate: derive heliocentric mean motion from the
		// semi-major axis via Kepler's third law.
		a := math.Abs(cur.SemiMajorAxis)
		if a < denominatorFloor {
			return Vec3{}, ErrNonFinite
		}
		m = el.MeanAnomaly + GaussK/(a*math.Sqrt(a))*(epochJD-el.EpochJD)
	}

	anomaly, _, err := SolveKepler(m, cur.Eccentricity)
	if err != nil {
		return Vec3{}, err
	}

	r, cosf, sinf, err := trueAnomaly(anomaly, cur.SemiMajorAxis, cur.Eccentricity)
	if err != nil {
		return Vec3{}, err
	}

	pos := rotateToEcliptic(r*cosf, r*sinf, cur.PeriapsisArg, cur.Inclination, cur.AscendingNode)
	if !pos.IsFinite() {
		return Vec3{}, ErrNonFinite
	}
	return pos, nil
}

// PropagateState wraps Propagate with the range-from-origin and epoch stamp
// consumers want per rendered frame.
func PropagateState(el model.OrbitalElements, epochJD float64) (model.PropagatedState, error) {
	pos, err := Propagate(el, epochJD)
	if err != nil {
		return model.PropagatedState{}, err
	}
	return model.PropagatedState{
		Position: model.Position{X: pos.X, Y: pos.Y, Z: pos.Z},
		Range:    pos.Norm(),
		EpochJD:  epochJD,
		Valid:    true,
	}, nil
}

// trueAnomaly converts the solved anomaly into the orbital radius and the
// sine/cosine of the true anomaly, branching on regime like the solver.
func trueAnomaly(anomaly, a, e float64) (r, cosf, sinf float64, err error) {
	if e < 1 {
		cosE := math.Cos(anomaly)
		sinE := math.Sin(anomaly)
		denom := 1 - e*cosE
		if math.Abs(denom) < denominatorFloor {
			return 0, 0, 0, ErrParabolicOrbit
		}
		r = math.Abs(a) * denom
		cosf = (cosE - e) / denom
		sinf = math.Sqrt(1-e*e) * sinE / denom
		return r, cosf, sinf, nil
	}

	coshH := math.Cosh(anomaly)
	sinhH := math.Sinh(anomaly)
	denom := e*coshH - 1
	if math.Abs(denom) < denominatorFloor {
		return 0, 0, 0, ErrParabolicOrbit
	}
	// Hyperbolic sets may carry either sign convention for a; the radius
	// depends only on its magnitude.
	r = math.Abs(a) * denom
	cosf = (e - coshH) / denom
	sinf = math.Sqrt(e*e-1) * sinhH / denom
	return r, cosf, sinf, nil
}

// rotateToEcliptic applies the standard 3-1-3 Euler sequence: argument of
// periapsis about the orbit normal, inclination about the node line, then
// longitude of ascending node about the ecliptic pole.
func rotateToEcliptic(xOrb, yOrb, argPeri, inc, node float64) Vec3 {
	cosw, sinw := math.Cos(argPeri), math.Sin(argPeri)
	cosi, sini := math.Cos(inc), math.Sin(inc)
	cosn, sinn := math.Cos(node), math.Sin(node)

	return Vec3{
		X: (cosn*cosw-sinn*sinw*cosi)*xOrb + (-cosn*sinw-sinn*cosw*cosi)*yOrb,
		Y: (sinn*cosw+cosn*sinw*cosi)*xOrb + (-sinn*sinw+cosn*cosw*cosi)*yOrb,
		Z: sinw*sini*xOrb + cosw*sini*yOrb,
	}
}
