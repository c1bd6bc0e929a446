package timectrl

import (
	"sync"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

// SimClock is a read-only view of simulation time. The ephemeris engine and
// any other consumer depend on this abstraction rather than the concrete
// controller, enabling testability with fixed epochs.
type SimClock interface {
	// Now returns the current simulated instant.
	Now() time.Time
	// EpochJD returns the current simulated instant as a Julian date, the
	// scalar epoch the propagation kernel consumes.
	EpochJD() float64
}

// FixedClock is a SimClock pinned to a single instant, for tests and for
// one-shot "position at time T" queries.
type FixedClock time.Time

func (f FixedClock) Now() time.Time   { return time.Time(f) }
func (f FixedClock) EpochJD() float64 { return JulianDate(time.Time(f)) }

// JulianDate converts a time to a Julian date, including the sub-second
// fraction of the day.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	jd := satellite.JDay(year, int(month), day, hour, min, sec)
	return jd + float64(t.Nanosecond())/(86400.0*1e9)
}

// TimeController owns the scrubbable simulated epoch that drives every
// propagation query. Simulation time can run at any rate multiplier —
// zero (paused), negative (rewind), or large (fast-forward, e.g. 100000×) —
// and can jump discontinuously. The propagation kernel itself is pure, so a
// rate change or jump takes effect immediately with nothing to invalidate.
type TimeController struct {
	mu        sync.RWMutex
	startTime time.Time
	tick      time.Duration
	rate      float64

	currentTime time.Time

	listeners []func(time.Time)
}

// NewTimeController constructs a controller starting at start, advancing
// once per wall-clock tick at the given rate multiplier.
func NewTimeController(start time.Time, tick time.Duration, rate float64) *TimeController {
	return &TimeController{
		startTime:   start,
		tick:        tick,
		rate:        rate,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// EpochJD returns the current simulation time as a Julian date. Implements
// SimClock.
func (tc *TimeController) EpochJD() float64 {
	return JulianDate(tc.Now())
}

// Rate returns the current rate multiplier.
func (tc *TimeController) Rate() float64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.rate
}

// SetRate changes the rate multiplier. Zero pauses; negative rewinds.
func (tc *TimeController) SetRate(rate float64) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.rate = rate
}

// SetTime scrubs simulation time to an absolute instant.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// Jump shifts simulation time by a signed offset, e.g. "jump +1 week".
func (tc *TimeController) Jump(d time.Duration) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = tc.currentTime.Add(d)
}

// Reset scrubs simulation time back to the controller's start instant.
func (tc *TimeController) Reset() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = tc.startTime
}

// AddListener registers a callback invoked on every tick with the new
// simulation time. Listeners must be registered before Start.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller for the specified wall-clock duration in a
// separate goroutine, advancing simulation time by tick×rate per wall tick.
// It returns a channel that is closed when the controller finishes. A zero
// duration runs indefinitely and the channel never closes.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		elapsed := time.Duration(0)

		ticker := time.NewTicker(tc.tick)
		defer ticker.Stop()

		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			<-ticker.C
			elapsed += tc.tick

			tc.mu.Lock()
			// Scale the wall tick by the current rate; a paused clock
			// still ticks but accumulates nothing.
			step := time.Duration(float64(tc.tick) * tc.rate)
			tc.currentTime = tc.currentTime.Add(step)
			simTime := tc.currentTime
			tc.mu.Unlock()

			for _, fn := range tc.listeners {
				fn(simTime)
			}
		}
	}()
	return done
}
