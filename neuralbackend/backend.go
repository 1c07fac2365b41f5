// Package neuralbackend declares the contract PIS uses to talk to the
// neural evaluation backend: batched inference and caching of
// evaluations are owned by that collaborator, not by this module.
package neuralbackend

import (
	"context"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board"
)

// Backend is the neural evaluation backend collaborator. Implementations
// must be safe for concurrent use by a single Controller; PIS never
// mutates a Backend.
type Backend interface {
	// Available reports whether the backend is ready to serve
	// evaluations. The Controller must check this, and must route to
	// the heuristic fallback when it returns false.
	Available() bool

	// EvaluateValue returns the value-head Q for pos from the
	// perspective of the side to move in pos, along with whether the
	// result was served from the backend's own cache.
	EvaluateValue(ctx context.Context, pos board.Position) (q float64, cacheHit bool, err error)

	// EvaluatePolicy returns the policy head's distribution over the
	// legal moves of pos, keyed by UCI move string, along with whether
	// the result was served from the backend's own cache.
	EvaluatePolicy(ctx context.Context, pos board.Position) (dist map[string]float64, cacheHit bool, err error)
}
