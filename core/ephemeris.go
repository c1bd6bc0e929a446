package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/reversesingularity/phobetron-orbital/internal/logging"
	"github.com/reversesingularity/phobetron-orbital/model"
	"github.com/reversesingularity/phobetron-orbital/registry"
)

// PropagationRecorder receives per-call propagation outcomes. The
// observability collector satisfies this interface so the engine can drive
// metrics without depending on Prometheus directly.
type PropagationRecorder interface {
	RecordPropagation(kind model.Kind, outcome string, elapsed time.Duration)
	SetEpoch(epochJD float64)
	SetBodyCount(n int)
}

// Propagation outcome labels.
const (
	OutcomeOK                = "ok"
	OutcomeNonConvergence    = "non_convergence"
	OutcomeDegenerate        = "degenerate"
	OutcomeNonFinite         = "non_finite"
	OutcomeParentUnavailable = "parent_unavailable"
)

// EngineOptions configure an EphemerisEngine. Zero values are usable: noop
// logging, no metrics, native distance units, sequential propagation.
type EngineOptions struct {
	Log      logging.Logger
	Recorder PropagationRecorder

	// ViewerScale is the single linear factor mapping the catalog's native
	// distance unit into viewer-space units. It belongs to the consumer,
	// not the physics, so it is applied only when states are published.
	ViewerScale float64

	// Parallel fans primary-body propagation out across goroutines. Bodies
	// are independent, so no ordering or locking is needed between them.
	Parallel bool
}

// EphemerisEngine propagates every registry body to the clock's current
// epoch, once per tick. Moons are resolved in a second pass so they can be
// translated by their primary's freshly propagated position — primary and
// moon move together under time scrubbing.
//
// A body whose propagation fails keeps its last good state; the failure is
// logged and counted but never affects any other body.
type EphemerisEngine struct {
	registry *registry.Registry
	log      logging.Logger
	recorder PropagationRecorder
	scale    float64
	parallel bool
}

// NewEphemerisEngine constructs an engine over the given registry.
func NewEphemerisEngine(reg *registry.Registry, opts EngineOptions) *EphemerisEngine {
	log := opts.Log
	if log == nil {
		log = logging.Noop()
	}
	scale := opts.ViewerScale
	if scale == 0 {
		scale = 1
	}
	return &EphemerisEngine{
		registry: reg,
		log:      log,
		recorder: opts.Recorder,
		scale:    scale,
		parallel: opts.Parallel,
	}
}

// Tick propagates all bodies to the given epoch. It returns the number of
// bodies successfully updated this tick.
func (e *EphemerisEngine) Tick(ctx context.Context, epochJD float64) int {
	bodies := e.registry.List()

	if e.recorder != nil {
		e.recorder.SetEpoch(epochJD)
		e.recorder.SetBodyCount(len(bodies))
	}

	var primaries, moons []*model.Body
	for _, b := range bodies {
		if b.ParentID == "" {
			primaries = append(primaries, b)
		} else {
			moons = append(moons, b)
		}
	}

	// Pass 1: primaries. Independent of each other, so they may fan out.
	positions := make(map[string]Vec3, len(primaries))
	var mu sync.Mutex
	updated := 0

	propagateOne := func(b *model.Body) {
		pos, err := e.propagateBody(ctx, b, epochJD)
		if err != nil {
			return
		}
		mu.Lock()
		positions[b.ID] = pos
		updated++
		mu.Unlock()
	}

	if e.parallel {
		var wg sync.WaitGroup
		for _, b := range primaries {
			wg.Add(1)
			go func(b *model.Body) {
				defer wg.Done()
				propagateOne(b)
			}(b)
		}
		wg.Wait()
	} else {
		for _, b := range primaries {
			propagateOne(b)
		}
	}

	// Pass 2: moons, translated by their primary's current position. A moon
	// whose primary failed this tick is held at its last good state too.
	for _, b := range moons {
		parentPos, ok := positions[b.ParentID]
		if !ok {
			e.observe(b, OutcomeParentUnavailable, 0)
			e.log.Debug(ctx, "primary unavailable, holding moon",
				logging.String("body", b.ID),
				logging.String("parent", b.ParentID))
			continue
		}
		start := time.Now()
		pos, err := Propagate(b.Elements, epochJD)
		if err != nil {
			e.observe(b, outcomeForError(err), time.Since(start))
			e.log.Debug(ctx, "propagation failed, holding last state",
				logging.String("body", b.ID),
				logging.String("error", err.Error()))
			continue
		}
		e.observe(b, OutcomeOK, time.Since(start))
		e.publish(b, pos.Add(parentPos), epochJD)
		updated++
	}

	return updated
}

// propagateBody runs one primary through the kernel and publishes its state.
func (e *EphemerisEngine) propagateBody(ctx context.Context, b *model.Body, epochJD float64) (Vec3, error) {
	start := time.Now()
	pos, err := Propagate(b.Elements, epochJD)
	if err != nil {
		e.observe(b, outcomeForError(err), time.Since(start))
		e.log.Debug(ctx, "propagation failed, holding last state",
			logging.String("body", b.ID),
			logging.String("error", err.Error()))
		return Vec3{}, err
	}
	e.observe(b, OutcomeOK, time.Since(start))
	e.publish(b, pos, epochJD)
	return pos, nil
}

// publish scales a native-unit position into viewer space and records it on
// the registry.
func (e *EphemerisEngine) publish(b *model.Body, pos Vec3, epochJD float64) {
	scaled := pos.Scale(e.scale)
	_ = e.registry.UpdateState(b.ID, model.PropagatedState{
		Position: model.Position{X: scaled.X, Y: scaled.Y, Z: scaled.Z},
		Range:    scaled.Norm(),
		EpochJD:  epochJD,
		Valid:    true,
	})
}

func (e *EphemerisEngine) observe(b *model.Body, outcome string, elapsed time.Duration) {
	if e.recorder == nil {
		return
	}
	e.recorder.RecordPropagation(b.Kind, outcome, elapsed)
}

func outcomeForError(err error) string {
	switch {
	case errors.Is(err, ErrNoConvergence):
		return OutcomeNonConvergence
	case errors.Is(err, ErrParabolicOrbit):
		return OutcomeDegenerate
	case errors.Is(err, ErrNonFinite):
		return OutcomeNonFinite
	default:
		return OutcomeNonFinite
	}
}
