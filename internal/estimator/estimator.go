// Package estimator turns sparse, authoritative playback positions into a
// smooth completion ratio that can be sampled on every animation frame.
package estimator

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultDriftThreshold = 0.01

// Sample is the last authoritative measurement together with the velocity
// used to extrapolate from it
type Sample struct {
	// Ratio is the measured completion in [0,1]
	Ratio float64
	// At is the monotonic clock reading of the measurement
	At time.Time
	// Velocity is the ratio gained per poll interval, zero unless playing
	Velocity float64
	Playing  bool
	// Valid is false until the first measurement after construction or Reset
	Valid bool
}

// SampleResult describes how an authoritative sample was applied
type SampleResult struct {
	// Adopted is false when the sample repeated the previous ratio while
	// playing and interpolation simply continued
	Adopted bool
	// Ratio is the measured completion
	Ratio float64
	// Estimate is what Tick would have reported at the moment of the sample
	Estimate float64
	// Drift is Ratio - Estimate for adopted samples
	Drift float64
	// Corrected is set when the drift exceeded the threshold, which happens
	// on seeks, stalls or a source that runs at a different speed
	Corrected bool
}

// Option configures an Estimator
type Option func(*Estimator)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) {
		e.now = now
	}
}

// WithDriftThreshold sets the drift above which a sample counts as a
// correction
func WithDriftThreshold(threshold float64) Option {
	return func(e *Estimator) {
		e.driftThreshold = threshold
	}
}

// Estimator extrapolates playback progress between authoritative samples.
// Samples and ticks may come from different goroutines; the measurement
// fields are always published and read together under one lock.
type Estimator struct {
	logger         *zap.Logger
	pollInterval   time.Duration
	driftThreshold float64
	now            func() time.Time

	mu    sync.Mutex
	state Sample
}

// New creates an estimator whose velocity is expressed per pollInterval
func New(logger *zap.Logger, pollInterval time.Duration, opts ...Option) *Estimator {
	e := &Estimator{
		logger:         logger,
		pollInterval:   pollInterval,
		driftThreshold: defaultDriftThreshold,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnAuthoritativeSample records a ground-truth position report
func (e *Estimator) OnAuthoritativeSample(position, duration time.Duration, playing bool) SampleResult {
	now := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.state
	estimate := e.estimateLocked(now)

	if duration <= 0 {
		// Without a duration there is nothing to estimate against.
		e.state = Sample{At: now, Playing: playing, Valid: true}
		e.logger.Debug("Sample without duration, progress reset",
			zap.Duration("position", position))
		return SampleResult{Adopted: true, Estimate: estimate, Drift: -estimate}
	}

	ratio := clamp(float64(position) / float64(duration))

	if playing && prev.Valid && prev.Playing && ratio == prev.Ratio {
		e.logger.Debug("Source position unchanged, continuing interpolation",
			zap.Float64("ratio", ratio),
			zap.Float64("estimate", estimate))
		return SampleResult{Ratio: ratio, Estimate: estimate}
	}

	var velocity float64
	if playing {
		velocity = float64(e.pollInterval) / float64(duration)
	}

	e.state = Sample{
		Ratio:    ratio,
		At:       now,
		Velocity: velocity,
		Playing:  playing,
		Valid:    true,
	}

	res := SampleResult{Adopted: true, Ratio: ratio, Estimate: estimate}
	if prev.Valid {
		res.Drift = ratio - estimate
		res.Corrected = math.Abs(res.Drift) > e.driftThreshold
	}
	return res
}

// Tick returns the estimated completion ratio at now, clamped to [0,1]
func (e *Estimator) Tick(now time.Time) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.estimateLocked(now)
}

// Reset forgets the current measurement, typically on a track change
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Sample{}
}

// Snapshot returns a copy of the current measurement
func (e *Estimator) Snapshot() Sample {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Estimator) estimateLocked(now time.Time) float64 {
	s := e.state
	if !s.Valid {
		return 0
	}
	if s.Velocity == 0 || e.pollInterval <= 0 {
		return s.Ratio
	}
	elapsed := now.Sub(s.At)
	if elapsed < 0 {
		elapsed = 0
	}
	return clamp(s.Ratio + float64(elapsed)*s.Velocity/float64(e.pollInterval))
}

func clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
