package core

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/reversesingularity/phobetron-orbital/model"
	"github.com/reversesingularity/phobetron-orbital/registry"
)

// BodyCatalog is a small summary of what was loaded from JSON. It's mainly
// useful for logging or debugging from main().
type BodyCatalog struct {
	BodyIDs []string
}

// internal JSON shapes – keep them unexported so we're free to evolve them.
//
// Published element sets come in two angular conventions: "mean-anomaly"
// (argument of periapsis ω + mean anomaly M₀) and "mean-longitude" (longitude
// of periapsis ϖ = Ω + ω and mean longitude L₀ = ϖ + M₀, the JPL planetary
// table convention). Both are accepted here and converted to the module's
// canonical ω/M₀ form at this boundary — never inside the propagator, where a
// silently mixed convention would produce wrong anomalies.
type bodyCatalogJSON struct {
	Bodies []bodyJSON `json:"bodies"`
}

type bodyJSON struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Kind     string       `json:"kind"`
	ParentID string       `json:"parent_id"`
	Elements elementsJSON `json:"elements"`
}

type elementsJSON struct {
	Convention string `json:"convention"` // "mean-anomaly" (default) | "mean-longitude"

	SemiMajorAxisAU float64 `json:"semi_major_axis_au"`
	Eccentricity    float64 `json:"eccentricity"`
	InclinationDeg  float64 `json:"inclination_deg"`
	NodeDeg         float64 `json:"ascending_node_deg"`

	// Periapsis/anomaly angles; meaning depends on Convention (ω and M₀,
	// or ϖ and L₀).
	PeriapsisDeg float64 `json:"periapsis_deg"`
	AnomalyDeg   float64 `json:"anomaly_deg"`

	EpochJD float64 `json:"epoch_jd"`

	RatesPerCentury *ratesJSON `json:"rates_per_century"` // optional; zero for minor bodies
}

type ratesJSON struct {
	SemiMajorAxisAU float64 `json:"semi_major_axis_au"`
	Eccentricity    float64 `json:"eccentricity"`
	InclinationDeg  float64 `json:"inclination_deg"`
	NodeDeg         float64 `json:"ascending_node_deg"`
	PeriapsisDeg    float64 `json:"periapsis_deg"`
	AnomalyDeg      float64 `json:"anomaly_deg"`
}

// LoadBodyCatalog reads a JSON body catalog from r, populates the registry,
// and returns a summary of what was loaded. Parents are added before their
// moons so the registry's parent check always sees the primary first.
func LoadBodyCatalog(reg *registry.Registry, r io.Reader) (*BodyCatalog, error) {
	if reg == nil {
		return nil, fmt.Errorf("LoadBodyCatalog: registry is nil")
	}

	var payload bodyCatalogJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadBodyCatalog: decode failed: %w", err)
	}

	result := &BodyCatalog{
		BodyIDs: make([]string, 0, len(payload.Bodies)),
	}

	add := func(jb bodyJSON) error {
		if jb.ID == "" {
			return fmt.Errorf("LoadBodyCatalog: body with empty id")
		}
		el, err := elementsFromJSON(jb.Elements)
		if err != nil {
			return fmt.Errorf("LoadBodyCatalog: body %q: %w", jb.ID, err)
		}
		body := &model.Body{
			ID:       jb.ID,
			Name:     jb.Name,
			Kind:     model.KindFromString(jb.Kind),
			ParentID: jb.ParentID,
			Elements: el,
		}
		if err := reg.Add(body); err != nil {
			return fmt.Errorf("LoadBodyCatalog: %w", err)
		}
		result.BodyIDs = append(result.BodyIDs, jb.ID)
		return nil
	}

	// 1) Primaries
	for _, jb := range payload.Bodies {
		if jb.ParentID != "" {
			continue
		}
		if err := add(jb); err != nil {
			return nil, err
		}
	}

	// 2) Moons
	for _, jb := range payload.Bodies {
		if jb.ParentID == "" {
			continue
		}
		if err := add(jb); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func elementsFromJSON(je elementsJSON) (model.OrbitalElements, error) {
	if je.Eccentricity < 0 {
		return model.OrbitalElements{}, fmt.Errorf("negative eccentricity %v", je.Eccentricity)
	}
	if je.EpochJD == 0 {
		return model.OrbitalElements{}, fmt.Errorf("missing epoch_jd")
	}

	deg := math.Pi / 180

	el := model.OrbitalElements{
		SemiMajorAxis: je.SemiMajorAxisAU,
		Eccentricity:  je.Eccentricity,
		Inclination:   je.InclinationDeg * deg,
		AscendingNode: je.NodeDeg * deg,
		PeriapsisArg:  je.PeriapsisDeg * deg,
		MeanAnomaly:   je.AnomalyDeg * deg,
		EpochJD:       je.EpochJD,
	}
	if je.RatesPerCentury != nil {
		el.Rates = model.ElementRates{
			SemiMajorAxis: je.RatesPerCentury.SemiMajorAxisAU,
			Eccentricity:  je.RatesPerCentury.Eccentricity,
			Inclination:   je.RatesPerCentury.InclinationDeg * deg,
			AscendingNode: je.RatesPerCentury.NodeDeg * deg,
			PeriapsisArg:  je.RatesPerCentury.PeriapsisDeg * deg,
			MeanAnomaly:   je.RatesPerCentury.AnomalyDeg * deg,
		}
	}

	switch je.Convention {
	case "", "mean-anomaly":
		// already canonical
	case "mean-longitude":
		// ϖ/L₀ → ω = ϖ − Ω, M₀ = L₀ − ϖ; same linear relation for rates.
		longPeri := el.PeriapsisArg
		meanLong := el.MeanAnomaly
		el.PeriapsisArg = longPeri - el.AscendingNode
		el.MeanAnomaly = meanLong - longPeri

		longPeriDot := el.Rates.PeriapsisArg
		meanLongDot := el.Rates.MeanAnomaly
		el.Rates.PeriapsisArg = longPeriDot - el.Rates.AscendingNode
		el.Rates.MeanAnomaly = meanLongDot - longPeriDot
	default:
		return model.OrbitalElements{}, fmt.Errorf("unknown element convention %q", je.Convention)
	}

	return el, nil
}
