package softmax

import (
	"math"
	"testing"
)

type recordingWarner struct {
	reasons []string
}

func (r *recordingWarner) Warn(reason string) {
	r.reasons = append(r.reasons, reason)
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}

func TestSoftmaxSumsToOne(t *testing.T) {
	cases := [][]float64{
		{1, 2, 3},
		{-1000, 0, 1000},
		{0.001, 0.002, 0.003, 0.004},
		{5},
	}
	for _, scores := range cases {
		probs := Softmax(scores, 1.0, nil)
		if got := sum(probs); math.Abs(got-1) > 1e-5 {
			t.Errorf("Softmax(%v) sums to %v, want ~1", scores, got)
		}
		for _, p := range probs {
			if p < 0 {
				t.Errorf("Softmax(%v) produced a negative probability %v", scores, p)
			}
		}
	}
}

func TestSoftmaxDegenerateIsExactlyUniform(t *testing.T) {
	probs := Softmax([]float64{5, 5, 5, 5}, 1, nil)
	for _, p := range probs {
		if p != 0.25 {
			t.Errorf("expected exactly 0.25 for identical scores, got %v", p)
		}
	}
}

func TestSoftmaxStrictlyAscendingScoresAreStrictlyAscendingProbabilities(t *testing.T) {
	probs := Softmax([]float64{1, 2, 3, 4}, 1.0, nil)
	for i := 1; i < len(probs); i++ {
		if probs[i] <= probs[i-1] {
			t.Fatalf("expected strictly ascending probabilities, got %v", probs)
		}
	}
}

func TestSoftmaxShiftInvariant(t *testing.T) {
	base := []float64{1, 2, 3}
	shifted := []float64{1001, 1002, 1003}

	p1 := Softmax(base, 1.0, nil)
	p2 := Softmax(shifted, 1.0, nil)

	for i := range p1 {
		if math.Abs(p1[i]-p2[i]) > 1e-9 {
			t.Errorf("softmax not shift invariant at %d: %v vs %v", i, p1[i], p2[i])
		}
	}
}

func TestSoftmaxNonFiniteInputFallsBackToUniform(t *testing.T) {
	w := &recordingWarner{}
	probs := Softmax([]float64{1, math.NaN(), 3}, 1, w)

	want := 1.0 / 3.0
	for _, p := range probs {
		if math.Abs(p-want) > 1e-12 {
			t.Errorf("expected uniform fallback %v, got %v", want, probs)
		}
	}
	if len(w.reasons) != 1 {
		t.Errorf("expected exactly one warning, got %d: %v", len(w.reasons), w.reasons)
	}
}

func TestSoftmaxEmptyInputReturnsEmpty(t *testing.T) {
	probs := Softmax(nil, 1, nil)
	if len(probs) != 0 {
		t.Errorf("expected empty output for empty input, got %v", probs)
	}
}

func TestSoftmaxRejectsOutOfRangeLambda(t *testing.T) {
	for _, lambda := range []float64{0.0009, 10.001, -1} {
		probs := Softmax([]float64{1, 2, 3}, lambda, nil)
		want := 1.0 / 3.0
		for _, p := range probs {
			if math.Abs(p-want) > 1e-12 {
				t.Errorf("lambda=%v: expected uniform fallback, got %v", lambda, probs)
			}
		}
	}
}

func TestSoftmaxDirectExample(t *testing.T) {
	probs := Softmax([]float64{1.0, 2.0, 3.0}, 2.0, nil)
	want := []float64{0.0177, 0.1173, 0.8650}
	for i := range want {
		if math.Abs(probs[i]-want[i]) > 1e-3 {
			t.Errorf("probs[%d] = %v, want ~%v", i, probs[i], want[i])
		}
	}
}

func BenchmarkSoftmax(b *testing.B) {
	scores := make([]float64, 64)
	for i := range scores {
		scores[i] = float64(i) * 0.01
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Softmax(scores, 0.1, nil)
	}
}
