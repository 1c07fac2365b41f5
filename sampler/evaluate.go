package sampler

import (
	"context"
	"time"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/metrics"
)

// BackendAvailable reports whether the Controller's backend collaborator
// is currently queryable. It is exported for the Verifier's
// neural_net_used predicate.
func (c *Controller) BackendAvailable() bool {
	return c.backendAvailable()
}

// backendAvailable reports whether c.backend can be queried. Both a nil
// handle and a panic from the attribute query route to the heuristic
// path, per the backend-verification contract.
func (c *Controller) backendAvailable() (ok bool) {
	if c.backend == nil {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return c.backend.Available()
}

// evaluateMoveValue scores move m from position pos using the backend's
// value head, reported from the perspective of the side that plays m
// (i.e. negated from the successor position's side-to-move
// perspective). It falls through to the heuristic on any backend
// failure.
func (c *Controller) evaluateMoveValue(ctx context.Context, pos board.Position, m board.Move) (float64, metrics.EvaluationMethod, float64, error) {
	start := time.Now()

	if c.backendAvailable() {
		successor, err := pos.MakeMove(m)
		if err == nil {
			q, cacheHit, err := c.backend.EvaluateValue(ctx, successor)
			if err == nil {
				elapsed := elapsedMs(start)
				method := metrics.NeuralNetwork
				if cacheHit {
					method = metrics.Cache
				}
				c.logger.NeuralNetworkCall(cacheHit, elapsed, "value")
				// q is reported from the successor's side-to-move
				// perspective; flip it back to the perspective of the
				// side that just played m.
				perspective := float64(pos.SideToMove() * successor.SideToMove())
				return q * perspective, method, elapsed, nil
			}
			c.logger.Warn("sampler: value evaluation failed for " + m.UCI() + ", falling back to heuristic: " + err.Error())
		} else {
			c.logger.Warn("sampler: could not play " + m.UCI() + " to evaluate it, falling back to heuristic: " + err.Error())
		}
	}

	score := c.heuristicScore(m)
	return score, metrics.Heuristic, elapsedMs(start), nil
}

// evaluateMovePolicy returns the backend policy head's probability for
// m in pos, falling back to a uniform 1/|legal moves| when the
// backend is unavailable or has no entry for m.
func (c *Controller) evaluateMovePolicy(ctx context.Context, pos board.Position, m board.Move) (float64, metrics.EvaluationMethod, float64, error) {
	start := time.Now()

	if c.backendAvailable() {
		dist, cacheHit, err := c.backend.EvaluatePolicy(ctx, pos)
		if err == nil {
			if p, ok := dist[m.UCI()]; ok {
				elapsed := elapsedMs(start)
				method := metrics.NeuralNetwork
				if cacheHit {
					method = metrics.Cache
				}
				c.logger.NeuralNetworkCall(cacheHit, elapsed, "policy")
				return p, method, elapsed, nil
			}
		} else {
			c.logger.Warn("sampler: policy evaluation failed for " + m.UCI() + ", falling back to uniform: " + err.Error())
		}
	}

	legal := pos.LegalMoves()
	n := len(legal)
	if n == 0 {
		n = 1
	}
	return 1.0 / float64(n), metrics.Heuristic, elapsedMs(start), nil
}

// heuristicScore is the capture-and-center fallback used when no
// neural backend is available: +1.0 for a capture, +0.5 for landing on
// a central square, plus Gaussian noise with mean 0 and standard
// deviation 0.1.
func (c *Controller) heuristicScore(m board.Move) float64 {
	var score float64
	if m.IsCapture() {
		score += 1.0
	}
	if board.IsCentralSquare(m.ToSquare()) {
		score += 0.5
	}
	score += c.noise()
	return score
}

// noise draws from the Controller's own RNG. Each Controller owns an
// independent generator, so concurrent verification sessions running
// one Controller apiece never share RNG state.
func (c *Controller) noise() float64 {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	return c.rng.NormFloat64() * 0.1
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
