// Package softmax implements PIS's numerically stable,
// temperature-controlled softmax. Clients rely on the exact recipe
// here for reproducibility, so it is implemented directly against
// math rather than through a general-purpose numerics library.
package softmax

import (
	"math"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/utils/floatutils"
)

// MaxLen is the largest score vector Softmax will accept before
// rejecting the input outright (and falling back to uniform).
const MaxLen = 1_000_000

const (
	MinLambda = 0.001
	MaxLambda = 10.0

	clampLo = -700.0
	clampHi = 700.0
)

// Warner receives a single warning string whenever Softmax has to fall
// back to the uniform distribution. The Controller wires this to the
// debug logger; tests may leave it nil.
type Warner interface {
	Warn(reason string)
}

// Softmax computes the temperature-controlled softmax of scores using
// the log-sum-exp recipe:
//
//  1. validate input
//  2. M = max(scores); fall back if M is not finite
//  3. scaled[i] = clamp((scores[i]-M)*lambda, -700, 700)
//  4. S = sum(exp(scaled)); fall back if S <= 0 or non-finite
//  5. L = log(S); fall back if L is not finite
//  6. prob[i] = exp(scaled[i] - L)
//  7. fall back if any prob[i] is not finite
//
// Softmax never panics or returns an error: any failure at any step
// produces the uniform distribution over len(scores) elements (or an
// empty slice for an empty input), and — if w is non-nil — a single
// warning describing why.
func Softmax(scores []float64, lambda float64, w Warner) []float64 {
	n := len(scores)

	if !validInput(scores, lambda) {
		warn(w, "softmax: invalid input, falling back to uniform distribution")
		return uniform(n)
	}

	m := max(scores)
	if !isFinite(m) {
		warn(w, "softmax: non-finite maximum score, falling back to uniform distribution")
		return uniform(n)
	}

	scaled := make([]float64, n)
	for i, s := range scores {
		scaled[i] = floatutils.Clip((s-m)*lambda, clampLo, clampHi)
	}

	var sum float64
	for _, s := range scaled {
		sum += math.Exp(s)
	}
	if sum <= 0 || !isFinite(sum) {
		warn(w, "softmax: non-finite or non-positive normalizer, falling back to uniform distribution")
		return uniform(n)
	}

	logSum := math.Log(sum)
	if !isFinite(logSum) {
		warn(w, "softmax: non-finite log-sum-exp, falling back to uniform distribution")
		return uniform(n)
	}

	probs := make([]float64, n)
	for i, s := range scaled {
		probs[i] = math.Exp(s - logSum)
		if !isFinite(probs[i]) {
			warn(w, "softmax: non-finite probability, falling back to uniform distribution")
			return uniform(n)
		}
	}

	return probs
}

func validInput(scores []float64, lambda float64) bool {
	if len(scores) == 0 {
		return false
	}
	if len(scores) > MaxLen {
		return false
	}
	if lambda < MinLambda || lambda > MaxLambda {
		return false
	}
	return floatutils.AllFinite(scores)
}

func uniform(n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	probs := make([]float64, n)
	p := 1.0 / float64(n)
	for i := range probs {
		probs[i] = p
	}
	return probs
}

func max(scores []float64) float64 {
	m := scores[0]
	for _, s := range scores[1:] {
		if s > m {
			m = s
		}
	}
	return m
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func warn(w Warner, reason string) {
	if w != nil {
		w.Warn(reason)
	}
}
