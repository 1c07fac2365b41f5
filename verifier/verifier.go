// Package verifier drives the Controller across test scenarios without
// any engine shell in front of it, validates the resulting metrics
// against a fixed set of predicates, and aggregates the results into a
// machine-readable report.
package verifier

import (
	"context"
	"fmt"
	"math"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/sampler"
)

// ScenarioBounds optionally bounds a scenario's expected wall-clock
// time, used by the timing_reasonable predicate.
type ScenarioBounds struct {
	MinExpectedMs float64
	MaxExpectedMs float64
}

// VerificationResult is the outcome of one end-to-end VerifySampling
// call.
type VerificationResult struct {
	PositionFEN string
	ScenarioName string

	RequestedSamples     int
	ActualSamples        int
	NeuralNetEvaluations int
	CachedEvaluations    int
	HeuristicEvaluations int
	TotalTimeMs          float64
	AvgTimePerSampleMs   float64
	SamplesPerSecond     float64

	SelectedMove string

	BackendAvailable       bool
	SamplingCompleted      bool
	SamplesMatchRequested  bool
	NeuralNetUsed          bool
	TimingReasonable       bool

	Warnings []string
	Errors   []string
}

// Valid reports whether this result passed verification.
func (r VerificationResult) Valid() bool {
	return r.SamplesMatchRequested && r.SamplingCompleted && len(r.Errors) == 0
}

// VerifySampling runs one end-to-end move selection on controller over
// pos and fills a VerificationResult from the Controller's metrics. A
// panic anywhere in the call is recovered and recorded as an error,
// per the Verifier's "a scenario exception never aborts the suite"
// contract.
func VerifySampling(ctx context.Context, controller *sampler.Controller, pos board.Position, limits sampler.SearchLimits, bounds *ScenarioBounds) (result VerificationResult) {
	result.PositionFEN = pos.FEN()

	defer func() {
		if r := recover(); r != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("panic during verification: %v", r))
			result.SamplingCompleted = false
		}
	}()

	cfg := controller.GetConfig()
	legalCount := len(pos.LegalMoves())
	integrityOK := cfg.Samples > 0 && legalCount > 0

	result.BackendAvailable = controller.BackendAvailable()

	selected := controller.SelectMove(ctx, pos, limits)
	if selected != nil {
		result.SelectedMove = selected.UCI()
	}

	snap := controller.GetLastSamplingMetrics()
	result.RequestedSamples = snap.RequestedSamples
	result.ActualSamples = snap.ActualSamples
	result.NeuralNetEvaluations = snap.NeuralNetEvaluations
	result.CachedEvaluations = snap.CachedEvaluations
	result.HeuristicEvaluations = snap.HeuristicEvaluations
	result.TotalTimeMs = snap.TotalTimeMs
	result.AvgTimePerSampleMs = snap.AvgTimePerSampleMs
	result.SamplesPerSecond = snap.SamplesPerSecond

	result.SamplingCompleted = integrityOK
	if !integrityOK {
		result.Errors = append(result.Errors, "integrity gate rejected the request: samples <= 0 or no legal moves")
	}

	if !integrityOK {
		result.SamplesMatchRequested = false
	} else {
		tolerance := math.Max(1, 0.05*float64(snap.RequestedSamples))
		result.SamplesMatchRequested = math.Abs(float64(snap.ActualSamples-snap.RequestedSamples)) <= tolerance
	}

	if result.BackendAvailable {
		result.NeuralNetUsed = snap.NeuralNetEvaluations > 0 || snap.CachedEvaluations > 0
	} else {
		result.NeuralNetUsed = snap.HeuristicEvaluations > 0
	}

	avgReasonable := snap.AvgTimePerSampleMs >= 0.001 && snap.AvgTimePerSampleMs <= 1000
	boundsReasonable := true
	if bounds != nil {
		boundsReasonable = snap.TotalTimeMs >= bounds.MinExpectedMs && snap.TotalTimeMs <= bounds.MaxExpectedMs
	}
	result.TimingReasonable = avgReasonable && boundsReasonable

	result.Warnings = append(result.Warnings, sampleBudgetWarnings(cfg.Samples, legalCount)...)
	if integrityOK && !result.SamplesMatchRequested {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"actual samples %d deviate from requested %d beyond tolerance", snap.ActualSamples, snap.RequestedSamples))
	}
	if !result.BackendAvailable && snap.HeuristicEvaluations > 0 {
		result.Warnings = append(result.Warnings, "neural backend unavailable: evaluations fell back to the heuristic")
	}

	return result
}

// sampleBudgetWarnings mirrors the thresholds Controller.integrityGate
// already warns about internally (see sampler/controller.go), so the
// Verifier surfaces the same oversized-budget conditions to callers
// that only see VerificationResult, not the DebugLogger stream.
func sampleBudgetWarnings(samplesPerMove, legalCount int) []string {
	var warnings []string
	if samplesPerMove > 10000 {
		warnings = append(warnings, fmt.Sprintf("per-move sample count %d exceeds 10000", samplesPerMove))
	}
	if total := samplesPerMove * legalCount; total > 100000 {
		warnings = append(warnings, fmt.Sprintf("total sample count %d exceeds 100000", total))
	}
	return warnings
}
