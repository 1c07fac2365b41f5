// Package engine glues the Controller into a host engine's move-request
// path. It owns no sampling logic of its own: it forwards requests to
// a sampler.Controller and translates a selected move into the two
// protocol messages a host engine expects, or does nothing at all so
// the host's own tree search takes over.
package engine

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/sampler"
)

// ThinkingInfo is the thinking-info record published ahead of a best
// move, mirroring the fields a UCI-style engine reports during search.
type ThinkingInfo struct {
	Depth    int
	SelDepth int
	TimeMs   float64
	Nodes    int
	Nps      float64
	PV       []string
	MultiPV  int
}

// BestMove is the terminal record for a move request: the selected
// move and which side played it, using the same ±1 convention as
// board.Side.
type BestMove struct {
	Move   string
	Player int
}

// MessageSink is the host engine's status-line publisher. PIS never
// constructs the wire protocol itself; it only calls this boundary.
type MessageSink interface {
	PublishThinkingInfo(ThinkingInfo)
	PublishBestMove(BestMove)
}

// Adapter wires a Controller into a host engine's move-request path.
type Adapter struct {
	controller *sampler.Controller
	sink       MessageSink
	ops        *zap.SugaredLogger
}

// NewAdapter returns an Adapter over controller, publishing through
// sink. A nil ops logger falls back to a no-op logger.
func NewAdapter(controller *sampler.Controller, sink MessageSink, ops *zap.SugaredLogger) *Adapter {
	if ops == nil {
		ops = zap.NewNop().Sugar()
	}
	return &Adapter{controller: controller, sink: sink, ops: ops}
}

// RequestMove asks the Controller to select a move for pos. It returns
// true when a move was selected and published, false when the
// Controller declined (disabled, integrity gate failure, or no valid
// draws) and the caller should fall back to its default search.
//
// Each request gets its own request id, used only to correlate this
// adapter's own operational log lines — it plays no part in the
// DebugLogger's session contract.
func (a *Adapter) RequestMove(ctx context.Context, pos board.Position, limits sampler.SearchLimits) bool {
	requestID := uuid.NewString()
	a.ops.Infow("engine: move requested", "request_id", requestID, "position_fen", pos.FEN())

	if !a.controller.IsEnabled() {
		a.ops.Infow("engine: controller disabled, deferring to default search", "request_id", requestID)
		return false
	}

	selected := a.controller.SelectMove(ctx, pos, limits)
	if selected == nil {
		a.ops.Infow("engine: controller produced no selection, deferring to default search", "request_id", requestID)
		return false
	}

	snap := a.controller.GetLastSamplingMetrics()

	a.sink.PublishThinkingInfo(ThinkingInfo{
		Depth:    1,
		SelDepth: 1,
		TimeMs:   snap.TotalTimeMs,
		Nodes:    snap.ActualSamples,
		Nps:      snap.SamplesPerSecond,
		PV:       []string{selected.UCI()},
		MultiPV:  1,
	})
	a.sink.PublishBestMove(BestMove{
		Move:   selected.UCI(),
		Player: int(pos.SideToMove()),
	})

	a.ops.Infow("engine: published best move", "request_id", requestID, "move", selected.UCI())
	return true
}
