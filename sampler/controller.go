package sampler

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/config"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/debuglog"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/metrics"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/neuralbackend"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/softmax"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/utils/floatutils"
)

// Controller is PIS: it enumerates legal moves, scores them through the
// configured mode and reward function, applies Softmax, and selects a
// move. A Controller owns its own RNG and PerformanceMonitor, so
// multi-session parallelism is achieved by instantiating one Controller
// per concurrent caller rather than sharing one.
type Controller struct {
	mu  sync.Mutex
	cfg config.Config

	backend neuralbackend.Backend
	monitor *metrics.Monitor
	logger  *debuglog.Logger

	rngMu sync.Mutex
	rng   *xrand.Rand
}

// NewController builds a Controller from cfg. backend may be nil, in
// which case every evaluation routes to the heuristic fallback. A nil
// logger defaults to the process-wide DebugLogger singleton.
func NewController(cfg config.Config, backend neuralbackend.Backend, logger *debuglog.Logger) *Controller {
	if logger == nil {
		logger = debuglog.Get()
	}
	c := &Controller{
		cfg:     cfg,
		backend: backend,
		monitor: metrics.New(logger),
		logger:  logger,
		rng:     xrand.New(xrand.NewSource(entropySeed())),
	}
	c.configureLogger(cfg)
	return c
}

func entropySeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err == nil {
		return binary.LittleEndian.Uint64(buf[:])
	}
	return uint64(time.Now().UnixNano())
}

// GetConfig returns the Controller's current configuration.
func (c *Controller) GetConfig() config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// SetConfig replaces the Controller's configuration wholesale and
// rewires the logger's enablement to match. It never mutates the
// previous Config's fields in place.
func (c *Controller) SetConfig(cfg config.Config) {
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()

	c.configureLogger(cfg)
}

// configureLogger wires the logger's enabled/sink state to cfg. It
// always calls Configure, even when cfg.MetricsFile is "", so clearing
// a previously-set metrics file actually reverts the logger to
// diagnostic-only output instead of leaving the old file sink open.
func (c *Controller) configureLogger(cfg config.Config) {
	c.logger.SetEnabled(cfg.DebugLogging)
	c.logger.Configure(debuglog.Options{
		Enabled:          cfg.DebugLogging,
		DiagnosticOutput: cfg.MetricsFile == "",
		MetricsFile:      cfg.MetricsFile,
	})
}

// UpdateOptions builds a Config from opts and installs it via SetConfig.
func (c *Controller) UpdateOptions(opts config.Options) error {
	cfg, err := config.FromOptions(opts)
	if err != nil {
		return err
	}
	c.SetConfig(cfg)
	return nil
}

// IsEnabled reports whether the current configuration has strictly
// positive lambda and samples (config.Enabled). SelectMove also
// declines a configuration outside the valid ranges (config.IsValid).
func (c *Controller) IsEnabled() bool {
	return c.GetConfig().Enabled()
}

// GetLastSamplingMetrics returns a snapshot of the most recently
// completed (or currently running) sampling session.
func (c *Controller) GetLastSamplingMetrics() metrics.SamplingMetrics {
	return c.monitor.GetMetrics()
}

// ExportPerformanceMetrics writes the last sampling session's metrics
// to path as JSON.
func (c *Controller) ExportPerformanceMetrics(path string) error {
	data, err := json.MarshalIndent(c.monitor.GetMetrics(), "", "  ")
	if err != nil {
		return fmt.Errorf("sampler: marshaling metrics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("sampler: writing metrics to %s: %w", path, err)
	}
	return nil
}

// SelectMove runs a full sampling pass over pos's legal moves and
// returns the selected move, or nil when PIS is disabled, the
// configuration is outside its valid ranges (config.IsValid), the
// integrity gate rejects the request, or every move's draws fail. A
// nil return always means "fall back to the default search" — no
// error ever escapes this boundary.
func (c *Controller) SelectMove(ctx context.Context, pos board.Position, limits SearchLimits) (selected board.Move) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("sampler: recovered from panic in SelectMove", fmt.Errorf("%v", r))
			selected = nil
		}
	}()

	cfg := c.GetConfig()
	if !cfg.Enabled() {
		return nil
	}
	if !cfg.IsValid() {
		c.logger.Error("sampler: configuration out of range, PIS disabled",
			fmt.Errorf("lambda=%v samples=%d", cfg.Lambda, cfg.Samples))
		return nil
	}

	legalMoves := pos.LegalMoves()
	if err := c.integrityGate(cfg, len(legalMoves)); err != nil {
		c.logger.Error("sampler: integrity gate rejected the request", err)
		return nil
	}

	c.logger.StartSession(pos.FEN())
	defer c.logger.EndSession()

	c.monitor.StartSampling(cfg.Samples * len(legalMoves))
	defer c.monitor.EndSampling()

	c.logger.SamplingStart(cfg.Samples, len(legalMoves), cfg.Lambda, string(cfg.SamplingMode), rewardModeField(cfg), pos.FEN())

	results := c.sampleAllMoves(ctx, cfg, pos, legalMoves)
	if len(results) == 0 {
		return nil
	}

	scoreVec := mat.NewVecDense(len(results), nil)
	for i, r := range results {
		scoreVec.SetVec(i, r.Score)
	}
	scores := scoreVec.RawVector().Data
	probs := softmax.Softmax(scores, cfg.Lambda, c.logger)
	c.logger.SoftmaxCalculation(cfg.Lambda, scores, probs)
	for i := range results {
		results[i].Probability = probs[i]
	}

	snapshot := c.monitor.GetMetrics()
	c.logger.SamplingComplete(debuglog.SamplingCompleteData{
		TotalSamples:         snapshot.ActualSamples,
		TotalTimeMs:          snapshot.TotalTimeMs,
		NeuralNetEvaluations: snapshot.NeuralNetEvaluations,
		CachedEvaluations:    snapshot.CachedEvaluations,
		HeuristicEvaluations: snapshot.HeuristicEvaluations,
		AvgTimePerSampleMs:   snapshot.AvgTimePerSampleMs,
	})

	best := results[floatutils.ArgMax(probsOf(results))]
	c.logger.MoveSelection(best.Move.UCI(), best.Probability, best.Score, moveProbabilities(results))

	return best.Move
}

// SelectMoveWithScores is the score-in, move-out variant used when a
// search tree already has per-move scores: it applies Softmax and
// draws a move from the resulting distribution by weighted random
// selection, delegating exploration to PIS rather than always
// returning the argmax.
func (c *Controller) SelectMoveWithScores(legalMoves []board.Move, scores []float64, pos board.Position) (selected board.Move) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("sampler: recovered from panic in SelectMoveWithScores", fmt.Errorf("%v", r))
			selected = nil
		}
	}()

	if len(legalMoves) == 0 || len(legalMoves) != len(scores) {
		return nil
	}

	cfg := c.GetConfig()
	if !cfg.Enabled() {
		return nil
	}

	scoreVec := mat.NewVecDense(len(scores), append([]float64(nil), scores...))
	scores = scoreVec.RawVector().Data
	probs := softmax.Softmax(scores, cfg.Lambda, c.logger)
	c.logger.SoftmaxCalculation(cfg.Lambda, scores, probs)

	idx := c.weightedDraw(probs)

	all := make([]debuglog.MoveProbability, len(legalMoves))
	for i, m := range legalMoves {
		all[i] = debuglog.MoveProbability{Move: m.UCI(), Probability: probs[i]}
	}
	c.logger.MoveSelection(legalMoves[idx].UCI(), probs[idx], scores[idx], all)

	return legalMoves[idx]
}

func (c *Controller) weightedDraw(probs []float64) int {
	c.rngMu.Lock()
	r := c.rng.Float64()
	c.rngMu.Unlock()

	var cum float64
	for i, p := range probs {
		cum += p
		if r <= cum {
			return i
		}
	}
	return len(probs) - 1
}

// integrityGate rejects unsampleable requests outright and warns about
// oversized sample budgets that are still allowed to proceed.
func (c *Controller) integrityGate(cfg config.Config, numLegalMoves int) error {
	if cfg.Samples <= 0 {
		return fmt.Errorf("sampler: samples must be positive, got %d", cfg.Samples)
	}
	if numLegalMoves == 0 {
		return fmt.Errorf("sampler: no legal moves to sample over")
	}
	if cfg.Samples > 10000 {
		c.logger.Warn(fmt.Sprintf("sampler: per-move sample count %d exceeds 10000", cfg.Samples))
	}
	if total := cfg.Samples * numLegalMoves; total > 100000 {
		c.logger.Warn(fmt.Sprintf("sampler: total sample count %d exceeds 100000", total))
	}
	return nil
}

// sampleAllMoves draws cfg.Samples scores for every move in
// legalMoves, averaging the valid draws into one SampleResult per move
// that got at least one. Moves with zero valid draws are dropped.
func (c *Controller) sampleAllMoves(ctx context.Context, cfg config.Config, pos board.Position, legalMoves []board.Move) []SampleResult {
	results := make([]SampleResult, 0, len(legalMoves))
	totalValid := 0

	for _, m := range legalMoves {
		var sum float64
		valid := 0

		for i := 0; i < cfg.Samples; i++ {
			score, method, elapsedMs, err := c.drawScore(ctx, cfg, pos, m)
			if err != nil {
				c.logger.Warn(fmt.Sprintf("sampler: draw %d for %s failed: %v", i+1, m.UCI(), err))
				continue
			}
			if !floatutils.AllFinite([]float64{score}) {
				c.logger.Warn(fmt.Sprintf("sampler: draw %d for %s produced a non-finite score", i+1, m.UCI()))
				continue
			}

			sum += score
			valid++
			c.monitor.RecordSample(method, elapsedMs)
			c.logger.SampleEvaluation(m.UCI(), i+1, score, string(method), elapsedMs)
		}

		if valid < cfg.Samples {
			c.logger.Warn(fmt.Sprintf("sampler: move %s got %d/%d valid samples", m.UCI(), valid, cfg.Samples))
		}
		if valid == 0 {
			continue
		}

		results = append(results, SampleResult{Move: m, Score: sum / float64(valid)})
		totalValid += valid
	}

	if want := cfg.Samples * len(legalMoves); totalValid != want {
		c.logger.Warn(fmt.Sprintf("sampler: total valid samples %d does not match requested %d", totalValid, want))
	}

	return results
}

// drawScore dispatches a single score draw according to the
// configured sampling and reward modes.
func (c *Controller) drawScore(ctx context.Context, cfg config.Config, pos board.Position, m board.Move) (float64, metrics.EvaluationMethod, float64, error) {
	if cfg.SamplingMode == config.Competitive {
		return c.evaluateMoveValue(ctx, pos, m)
	}

	switch cfg.RewardMode {
	case config.RewardPolicy:
		return c.evaluateMovePolicy(ctx, pos, m)
	case config.RewardCPScore:
		return c.evaluateMoveValue(ctx, pos, m)
	default: // hybrid
		p, pm, pe, err := c.evaluateMovePolicy(ctx, pos, m)
		if err != nil {
			return 0, "", 0, err
		}
		q, qm, qe, err := c.evaluateMoveValue(ctx, pos, m)
		if err != nil {
			return 0, "", 0, err
		}
		method := metrics.Heuristic
		if pm == metrics.NeuralNetwork || qm == metrics.NeuralNetwork {
			method = metrics.NeuralNetwork
		} else if pm == metrics.Cache || qm == metrics.Cache {
			method = metrics.Cache
		}
		return p * q, method, pe + qe, nil
	}
}

func rewardModeField(cfg config.Config) string {
	if cfg.SamplingMode != config.QuantumLimit {
		return ""
	}
	return string(cfg.RewardMode)
}

func probsOf(results []SampleResult) []float64 {
	probs := make([]float64, len(results))
	for i, r := range results {
		probs[i] = r.Probability
	}
	return probs
}

func moveProbabilities(results []SampleResult) []debuglog.MoveProbability {
	out := make([]debuglog.MoveProbability, len(results))
	for i, r := range results {
		out[i] = debuglog.MoveProbability{Move: r.Move.UCI(), Probability: r.Probability}
	}
	return out
}
