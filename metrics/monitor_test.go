package metrics

import (
	"testing"
	"time"
)

type collectingWarner struct {
	reasons []string
}

func (c *collectingWarner) Warn(reason string) {
	c.reasons = append(c.reasons, reason)
}

func TestMonitorStateMachine(t *testing.T) {
	m := New(nil)
	if m.IsActive() {
		t.Fatal("new monitor should be idle")
	}

	m.StartSampling(10)
	if !m.IsActive() {
		t.Fatal("monitor should be active after StartSampling")
	}

	m.EndSampling()
	if m.IsActive() {
		t.Fatal("monitor should be idle after EndSampling")
	}
}

func TestMonitorActualSamplesIsSumOfBuckets(t *testing.T) {
	m := New(nil)
	m.StartSampling(6)

	m.RecordNeuralNetEvaluation(1.5)
	m.RecordNeuralNetEvaluation(2.5)
	m.RecordCachedEvaluation()
	m.RecordHeuristicEvaluation()
	m.RecordHeuristicEvaluation()
	m.RecordHeuristicEvaluation()

	m.EndSampling()
	got := m.GetMetrics()

	if got.ActualSamples != got.NeuralNetEvaluations+got.CachedEvaluations+got.HeuristicEvaluations {
		t.Fatalf("actual samples invariant violated: %+v", got)
	}
	if got.ActualSamples != 6 {
		t.Fatalf("expected 6 actual samples, got %d", got.ActualSamples)
	}
	if got.NeuralNetTimeMs != 4.0 {
		t.Fatalf("expected neural net time to accumulate to 4.0ms, got %v", got.NeuralNetTimeMs)
	}
}

func TestMonitorUnknownMethodBucketsAsNeuralNetworkAndWarns(t *testing.T) {
	w := &collectingWarner{}
	m := New(w)
	m.StartSampling(1)
	m.RecordSample("mystery", 3)
	m.EndSampling()

	got := m.GetMetrics()
	if got.NeuralNetEvaluations != 1 {
		t.Fatalf("expected unknown method bucketed as neural_network, got %+v", got)
	}
	if len(w.reasons) != 1 {
		t.Fatalf("expected one warning, got %d", len(w.reasons))
	}
}

func TestMonitorIgnoresOperationsWhileIdle(t *testing.T) {
	m := New(nil)
	m.RecordNeuralNetEvaluation(5)
	got := m.GetMetrics()
	if got.ActualSamples != 0 {
		t.Fatalf("expected no-op while idle, got %+v", got)
	}
}

func TestMonitorLiveSnapshotDoesNotMutateState(t *testing.T) {
	m := New(nil)
	m.StartSampling(2)
	m.RecordHeuristicEvaluation()

	time.Sleep(time.Millisecond)
	live := m.GetMetrics()
	if live.ActualSamples != 1 {
		t.Fatalf("expected live snapshot to show 1 sample, got %d", live.ActualSamples)
	}
	if !m.IsActive() {
		t.Fatal("GetMetrics must not end an active session")
	}

	m.RecordHeuristicEvaluation()
	m.EndSampling()
	final := m.GetMetrics()
	if final.ActualSamples != 2 {
		t.Fatalf("expected 2 samples after session ends, got %d", final.ActualSamples)
	}
}

func TestMonitorDerivedFieldsMatchFormulas(t *testing.T) {
	m := New(nil)
	m.StartSampling(3)
	m.RecordHeuristicEvaluation()
	m.RecordHeuristicEvaluation()
	m.RecordHeuristicEvaluation()
	m.EndSampling()

	got := m.GetMetrics()
	wantAvg := got.TotalTimeMs / float64(max(1, got.ActualSamples))
	if got.AvgTimePerSampleMs != wantAvg {
		t.Fatalf("avg_time_per_sample_ms = %v, want %v", got.AvgTimePerSampleMs, wantAvg)
	}
}
