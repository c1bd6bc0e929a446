package model

// Kind classifies a tracked body. It is carried for consumers (rendering
// size/colour, labels, filtering); the propagation math never branches on it.
type Kind int

const (
	KindUnknown Kind = iota
	KindPlanet
	KindAsteroid
	KindComet
	KindNearEarthObject
	KindInterstellarObject
	KindMoon
)

// String returns the lower-case catalog spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlanet:
		return "planet"
	case KindAsteroid:
		return "asteroid"
	case KindComet:
		return "comet"
	case KindNearEarthObject:
		return "near-earth-object"
	case KindInterstellarObject:
		return "interstellar-object"
	case KindMoon:
		return "moon"
	default:
		return "unknown"
	}
}

// KindFromString parses a catalog kind string. Unrecognised values map to
// KindUnknown rather than failing, so newly discovered object classes do not
// break catalog loading.
func KindFromString(s string) Kind {
	switch s {
	case "planet":
		return KindPlanet
	case "asteroid":
		return KindAsteroid
	case "comet":
		return KindComet
	case "near-earth-object", "neo":
		return KindNearEarthObject
	case "interstellar-object", "interstellar":
		return KindInterstellarObject
	case "moon":
		return KindMoon
	default:
		return KindUnknown
	}
}

// Body is a tracked celestial object: identity, classification, and the
// orbital elements used to propagate it. Elements are immutable for the life
// of a session except for an explicit reload through the registry.
type Body struct {
	ID   string
	Name string
	Kind Kind

	Elements OrbitalElements

	// ParentID is set for moons: the body's own orbit is solved around a
	// zero origin and then translated by the parent's propagated position
	// at the same epoch. Empty for heliocentric bodies.
	ParentID string

	// State is the last successfully propagated state, maintained by the
	// registry. Consumers may fall back to it when a propagation for the
	// current epoch fails.
	State PropagatedState
}
