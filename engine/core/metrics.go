package core

import (
	"sync"
	"time"

	"github.com/spaghettifunk/offaxis/engine/containers"
)

const AVG_COUNT int = 30

// Metrics keeps rolling averages of the engine tick rate and of the time
// spent projecting cameras.
type Metrics struct {
	mu sync.Mutex

	tickTimes         *containers.RingQueue[float64]
	solveTimes        *containers.RingQueue[float64]
	ticks             int32
	accumulatedTickMS float64
	tps               float64
	projections       uint64
	failures          uint64
	lastFailure       error
}

// MetricsSnapshot is a consistent copy of the counters.
type MetricsSnapshot struct {
	TPS         float64
	TickMS      float64
	SolveMS     float64
	Projections uint64
	Failures    uint64
	LastFailure error
}

func NewMetrics() *Metrics {
	return &Metrics{
		tickTimes:  containers.NewRingQueue[float64](AVG_COUNT),
		solveTimes: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

// TickUpdate records the duration of one engine tick in seconds.
func (m *Metrics) TickUpdate(tick_elapsed_time float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tick_ms := tick_elapsed_time * 1000.0
	m.tickTimes.Push(tick_ms)

	// Calculate ticks per second.
	m.accumulatedTickMS += tick_ms
	if m.accumulatedTickMS > 1000 {
		m.tps = float64(m.ticks)
		m.accumulatedTickMS -= 1000
		m.ticks = 0
	}

	// Count all ticks.
	m.ticks++
}

// RecordProjection records one camera projection and its outcome.
func (m *Metrics) RecordProjection(d time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.failures++
		m.lastFailure = err
		return
	}
	m.projections++
	m.solveTimes.Push(float64(d.Microseconds()) / 1000.0)
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return MetricsSnapshot{
		TPS:         m.tps,
		TickMS:      average(m.tickTimes),
		SolveMS:     average(m.solveTimes),
		Projections: m.projections,
		Failures:    m.failures,
		LastFailure: m.lastFailure,
	}
}

func average(q *containers.RingQueue[float64]) float64 {
	if q.IsEmpty() {
		return 0
	}
	sum := 0.0
	q.Each(func(v float64) { sum += v })
	return sum / float64(q.Len())
}
