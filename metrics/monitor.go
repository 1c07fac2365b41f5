// Package metrics implements the PerformanceMonitor: a thread-safe set
// of counters and timers for a single PIS sampling session.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// EvaluationMethod tags which code path produced a score draw.
type EvaluationMethod string

const (
	NeuralNetwork EvaluationMethod = "neural_network"
	Cache         EvaluationMethod = "cache"
	Heuristic     EvaluationMethod = "heuristic"
)

// Warner receives warnings the monitor produces about its own inputs
// (unknown evaluation methods, negative timings).
type Warner interface {
	Warn(reason string)
}

// SamplingMetrics is a read-only snapshot of one sampling session.
type SamplingMetrics struct {
	RequestedSamples     int
	ActualSamples        int
	NeuralNetEvaluations int
	CachedEvaluations    int
	HeuristicEvaluations int
	TotalTimeMs          float64
	AvgTimePerSampleMs   float64
	NeuralNetTimeMs      float64
	SamplesPerSecond     float64
}

// Monitor is PerformanceMonitor: idle -> active -> idle. A single
// Monitor is meant to be owned and mutated by the goroutine running one
// sampling session; GetMetrics may safely be called from any goroutine
// while a session is active.
type Monitor struct {
	mu     sync.Mutex
	active atomic.Bool
	warner Warner

	requestedSamples     int
	neuralNetEvaluations int
	cachedEvaluations    int
	heuristicEvaluations int
	neuralNetTimeMs      float64
	startTime            time.Time
	endTime              time.Time
}

// New returns an idle Monitor. w may be nil.
func New(w Warner) *Monitor {
	return &Monitor{warner: w}
}

// StartSampling resets all counters, records the requested sample
// count, and transitions the monitor to active.
func (m *Monitor) StartSampling(requestedSamples int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requestedSamples = requestedSamples
	m.neuralNetEvaluations = 0
	m.cachedEvaluations = 0
	m.heuristicEvaluations = 0
	m.neuralNetTimeMs = 0
	m.startTime = time.Now()
	m.endTime = time.Time{}
	m.active.Store(true)
}

// RecordSample buckets a single evaluation by method and, for
// neural-network evaluations, accumulates elapsed time. Unknown method
// tokens are bucketed as NeuralNetwork and produce a warning. Calls
// while the monitor is not active are ignored.
func (m *Monitor) RecordSample(method EvaluationMethod, elapsedMs float64) {
	if !m.active.Load() {
		return
	}

	if elapsedMs < 0 && m.warner != nil {
		m.warner.Warn("metrics: negative sample timing recorded")
	}

	switch method {
	case NeuralNetwork:
		m.recordNeuralNet(elapsedMs)
	case Cache:
		m.recordCached()
	case Heuristic:
		m.recordHeuristic()
	default:
		if m.warner != nil {
			m.warner.Warn("metrics: unknown evaluation method " + string(method) + ", bucketing as neural_network")
		}
		m.recordNeuralNet(elapsedMs)
	}
}

// RecordNeuralNetEvaluation is a direct helper for callers that already
// know the evaluation came from a fresh neural-network call.
func (m *Monitor) RecordNeuralNetEvaluation(elapsedMs float64) {
	if !m.active.Load() {
		return
	}
	m.recordNeuralNet(elapsedMs)
}

// RecordCachedEvaluation is a direct helper for callers that already
// know the evaluation was served from the backend's cache.
func (m *Monitor) RecordCachedEvaluation() {
	if !m.active.Load() {
		return
	}
	m.recordCached()
}

// RecordHeuristicEvaluation is a direct helper for callers that already
// know the evaluation came from the heuristic fallback.
func (m *Monitor) RecordHeuristicEvaluation() {
	if !m.active.Load() {
		return
	}
	m.recordHeuristic()
}

func (m *Monitor) recordNeuralNet(elapsedMs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.neuralNetEvaluations++
	m.neuralNetTimeMs += elapsedMs
}

func (m *Monitor) recordCached() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cachedEvaluations++
}

func (m *Monitor) recordHeuristic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heuristicEvaluations++
}

// EndSampling finalizes total_time_ms and the derived fields, and
// transitions the monitor back to idle.
func (m *Monitor) EndSampling() {
	m.mu.Lock()
	m.endTime = time.Now()
	m.mu.Unlock()
	m.active.Store(false)
}

// GetMetrics returns a snapshot of the session. If called while the
// monitor is active, the snapshot's total_time_ms reflects elapsed time
// so far, without mutating any state or blocking the active session.
func (m *Monitor) GetMetrics() SamplingMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	end := m.endTime
	if m.active.Load() || end.IsZero() {
		end = time.Now()
	}

	totalTimeMs := float64(end.Sub(m.startTime)) / float64(time.Millisecond)
	if totalTimeMs < 0 {
		totalTimeMs = 0
	}

	actual := m.neuralNetEvaluations + m.cachedEvaluations + m.heuristicEvaluations

	avgTimePerSample := totalTimeMs / float64(max(1, actual))

	const epsilon = 1e-9
	samplesPerSecond := 1000 * float64(actual) / maxFloat(epsilon, totalTimeMs)

	return SamplingMetrics{
		RequestedSamples:     m.requestedSamples,
		ActualSamples:        actual,
		NeuralNetEvaluations: m.neuralNetEvaluations,
		CachedEvaluations:    m.cachedEvaluations,
		HeuristicEvaluations: m.heuristicEvaluations,
		TotalTimeMs:          totalTimeMs,
		AvgTimePerSampleMs:   avgTimePerSample,
		NeuralNetTimeMs:      m.neuralNetTimeMs,
		SamplesPerSecond:     samplesPerSecond,
	}
}

// IsActive reports whether a sampling session is currently in
// progress.
func (m *Monitor) IsActive() bool {
	return m.active.Load()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
