// Package measure collects per-step wall-clock durations across a run.
package measure

import (
	"sync"
	"time"
)

type Metric struct {
	total   int64
	elapsed time.Duration
}

// Measure accumulates step durations keyed by step name, preserving the
// order steps were first seen in.
type Measure struct {
	mu    sync.Mutex
	steps map[string]*Metric
	order []string
}

func New() *Measure {
	return &Measure{steps: make(map[string]*Metric)}
}

// Add records one execution of step.
func (m *Measure) Add(step string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.steps[step]
	if !ok {
		mt = &Metric{}
		m.steps[step] = mt
		m.order = append(m.order, step)
	}
	mt.total++
	mt.elapsed += elapsed
}

// Steps returns step names in first-seen order.
func (m *Measure) Steps() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string{}, m.order...)
}

// AVGDuration returns the mean duration of step across all samples,
// rounded to a readable precision. Zero when the step never ran.
func (m *Measure) AVGDuration(step string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	mt, ok := m.steps[step]
	if !ok || mt.total == 0 {
		return 0
	}

	return round(time.Duration(float64(mt.elapsed) / float64(mt.total)))
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}
