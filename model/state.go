package model

// Position is a point in the shared right-handed ecliptic Cartesian frame,
// in the catalog's distance unit (AU for solar-system bodies).
type Position struct {
	X float64
	Y float64
	Z float64
}

// PropagatedState is the output of one propagation query. It is a plain
// value: recomputed on every query, never persisted, never mutated in place.
type PropagatedState struct {
	Position Position

	// Range is the distance from the frame origin, kept alongside the
	// position for label scaling and UI distance readouts.
	Range float64

	// EpochJD records the epoch the state was computed for.
	EpochJD float64

	// Valid is false for the zero state and for bodies whose last
	// propagation attempt failed before any state was recorded.
	Valid bool
}
