package engine

import (
	"context"
	"testing"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board/chesslib"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/config"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/sampler"
)

type recordingSink struct {
	infos []ThinkingInfo
	moves []BestMove
}

func (r *recordingSink) PublishThinkingInfo(i ThinkingInfo) { r.infos = append(r.infos, i) }
func (r *recordingSink) PublishBestMove(m BestMove)         { r.moves = append(r.moves, m) }

func TestRequestMovePublishesThinkingInfoThenBestMove(t *testing.T) {
	cfg := config.Default()
	cfg.Samples = 3
	controller := sampler.NewController(cfg, nil, nil)
	sink := &recordingSink{}
	adapter := NewAdapter(controller, sink, nil)

	pos := chesslib.StartingPosition()
	ok := adapter.RequestMove(context.Background(), pos, sampler.SearchLimits{})
	if !ok {
		t.Fatal("expected RequestMove to report a published selection")
	}

	if len(sink.infos) != 1 || len(sink.moves) != 1 {
		t.Fatalf("expected exactly one thinking-info and one best-move message, got %d/%d", len(sink.infos), len(sink.moves))
	}
	if sink.infos[0].PV[0] != sink.moves[0].Move {
		t.Fatalf("thinking-info pv %v does not match published best move %v", sink.infos[0].PV, sink.moves[0].Move)
	}
	if sink.moves[0].Player != 1 {
		t.Fatalf("expected player = 1 (white to move at the start), got %d", sink.moves[0].Player)
	}
}

func TestRequestMoveReturnsFalseWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Samples = 0
	controller := sampler.NewController(cfg, nil, nil)
	sink := &recordingSink{}
	adapter := NewAdapter(controller, sink, nil)

	pos := chesslib.StartingPosition()
	if adapter.RequestMove(context.Background(), pos, sampler.SearchLimits{}) {
		t.Fatal("expected RequestMove to decline when the controller is disabled")
	}
	if len(sink.infos) != 0 || len(sink.moves) != 0 {
		t.Fatal("expected no messages published when declining")
	}
}
