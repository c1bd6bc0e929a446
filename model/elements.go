package model

// OrbitalElements are classical (Keplerian) osculating elements at a
// reference epoch. Angles are radians, distances are in the catalog's
// distance unit (AU for solar-system bodies), and the epoch is a Julian
// date.
//
// The canonical angular convention throughout this module is argument of
// periapsis plus mean anomaly at epoch. Catalogs published in the mean
// longitude / longitude of periapsis convention are converted at the
// loading boundary, never inside the propagator.
type OrbitalElements struct {
	SemiMajorAxis   float64 // a; may be negative for hyperbolic sets
	Eccentricity    float64 // e >= 0; e alone classifies the orbit regime
	Inclination     float64 // i, radians
	AscendingNode   float64 // Ω, radians
	PeriapsisArg    float64 // ω, radians
	MeanAnomaly     float64 // M₀ at EpochJD, radians
	EpochJD         float64 // reference epoch, Julian date

	// Rates are linear secular drifts per Julian century. Zero-valued for
	// minor bodies; major planets carry low-precision multi-century fits.
	Rates ElementRates
}

// ElementRates hold per-Julian-century drift for each element.
type ElementRates struct {
	SemiMajorAxis float64
	Eccentricity  float64
	Inclination   float64
	AscendingNode float64
	PeriapsisArg  float64
	MeanAnomaly   float64
}

// IsZero reports whether every rate is exactly zero, letting the propagator
// skip the secular update for minor bodies.
func (r ElementRates) IsZero() bool {
	return r == ElementRates{}
}

// AtEpoch returns the element values linearly extrapolated to the given
// Julian date. Drift is measured in Julian centuries from the reference
// epoch; for bodies with zero rates the receiver is returned unchanged.
// EpochJD is left untouched so callers can still measure elapsed time from
// the original reference epoch.
func (el OrbitalElements) AtEpoch(jd float64) OrbitalElements {
	if el.Rates.IsZero() {
		return el
	}
	const daysPerCentury = 36525.0
	t := (jd - el.EpochJD) / daysPerCentury

	out := el
	out.SemiMajorAxis += el.Rates.SemiMajorAxis * t
	out.Eccentricity += el.Rates.Eccentricity * t
	out.Inclination += el.Rates.Inclination * t
	out.AscendingNode += el.Rates.AscendingNode * t
	out.PeriapsisArg += el.Rates.PeriapsisArg * t
	out.MeanAnomaly += el.Rates.MeanAnomaly * t
	return out
}
