package verifier

import (
	"context"
	"testing"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board/chesslib"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/config"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/neuralbackend"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/sampler"
)

func TestVerifySamplingStandardOpening(t *testing.T) {
	cfg := config.Default()
	cfg.Samples = 5
	cfg.SamplingMode = config.Competitive

	pos, err := chesslib.NewPosition(openingFEN)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	controller := sampler.NewController(cfg, nil, nil)

	result := VerifySampling(context.Background(), controller, pos, sampler.SearchLimits{}, nil)

	if !result.SamplingCompleted {
		t.Fatal("expected sampling_completed = true")
	}
	if result.RequestedSamples != 5*len(pos.LegalMoves()) {
		t.Fatalf("requested_samples = %d, want %d", result.RequestedSamples, 5*len(pos.LegalMoves()))
	}
	if result.TotalTimeMs <= 0 {
		t.Fatal("expected total_time_ms > 0")
	}
	if result.SelectedMove == "" {
		t.Fatal("expected a selected move")
	}
	if !result.SamplesMatchRequested {
		t.Fatalf("expected samples to match requested within tolerance, got %+v", result)
	}
}

func TestVerifySamplingIntegrityViolation(t *testing.T) {
	cfg := config.Default()
	cfg.Samples = 0

	pos := chesslib.StartingPosition()
	controller := sampler.NewController(cfg, nil, nil)

	result := VerifySampling(context.Background(), controller, pos, sampler.SearchLimits{}, nil)

	if result.SamplingCompleted {
		t.Fatal("expected sampling_completed = false for samples=0")
	}
	if result.SelectedMove != "" {
		t.Fatalf("expected no selected move, got %q", result.SelectedMove)
	}
	if len(result.Errors) == 0 {
		t.Fatal("expected an error to be recorded")
	}
	if result.Valid() {
		t.Fatal("expected an invalid result")
	}
}

func TestVerifySamplingNoLegalMoves(t *testing.T) {
	cfg := config.Default()
	cfg.Samples = 3

	pos, err := chesslib.NewPosition(foolsMateFEN)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	controller := sampler.NewController(cfg, nil, nil)

	result := VerifySampling(context.Background(), controller, pos, sampler.SearchLimits{}, nil)
	if result.SamplingCompleted {
		t.Fatal("expected sampling_completed = false with no legal moves")
	}
	if result.SelectedMove != "" {
		t.Fatal("expected no selected move with no legal moves")
	}
}

func TestVerifySamplingNeuralNetUsedWithAvailableBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Samples = 4

	backend := neuralbackend.NewFake(3)
	controller := sampler.NewController(cfg, backend, nil)
	pos := chesslib.StartingPosition()

	result := VerifySampling(context.Background(), controller, pos, sampler.SearchLimits{}, nil)
	if !result.BackendAvailable {
		t.Fatal("expected backend_available = true")
	}
	if !result.NeuralNetUsed {
		t.Fatalf("expected neural_net_used = true, got %+v", result)
	}
}

func TestVerifySamplingHeuristicOnlyWithoutBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Samples = 4
	controller := sampler.NewController(cfg, nil, nil)
	pos := chesslib.StartingPosition()

	result := VerifySampling(context.Background(), controller, pos, sampler.SearchLimits{}, nil)
	if result.BackendAvailable {
		t.Fatal("expected backend_available = false")
	}
	if !result.NeuralNetUsed {
		t.Fatal("expected neural_net_used = true via the heuristic-present rule when no backend is available")
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning noting the backend-unavailable heuristic fallback")
	}
}

func TestVerifySamplingOversizedSampleBudgetWarns(t *testing.T) {
	cfg := config.Default()
	cfg.Samples = 10001 // exceeds the 10000 per-move integrity-gate threshold

	pos, err := chesslib.NewPosition(singleMoveFEN)
	if err != nil {
		t.Fatalf("NewPosition: %v", err)
	}
	controller := sampler.NewController(cfg, nil, nil)

	result := VerifySampling(context.Background(), controller, pos, sampler.SearchLimits{}, nil)
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning about the oversized per-move sample budget")
	}
}
