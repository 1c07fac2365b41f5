// Package sampler implements the Controller: the component that
// orchestrates mode selection, move evaluation, softmax sampling, and
// move selection over a single chess position.
package sampler

import "github.com/BatuhanAcikgoz/lc0-path-integral-method/board"

// SearchLimits carries whatever bounds the caller's tree search is
// operating under. The Controller accepts it at every entry point for
// forward compatibility with a future limits-aware sampling mode, but
// does not currently consult any of its fields.
type SearchLimits struct {
	MaxDepth int
	MaxNodes int64
	MaxTimeMs int64
}

// SampleResult is one move's averaged score and, once Softmax has run,
// its selection probability. It is only fully populated after the
// Controller finishes a selection pass; Probability is the zero value
// until then.
type SampleResult struct {
	Move        board.Move
	Score       float64
	Probability float64
}
