package verifier

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board/chesslib"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/config"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/neuralbackend"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/sampler"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/utils/progressbar"
)

const (
	openingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	italianFEN = "r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/3P1N2/PPP2PPP/RNBQK2R w KQkq - 0 1"
	foolsMateFEN = "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3"
	singleMoveFEN = "r7/8/8/8/8/8/8/K6r w - - 0 1"
)

// Scenario names one end-to-end verification run: a position, the
// Config to run it under, and an optional backend. Each scenario gets
// its own Controller instance, so scenarios never share sampling
// state even when run concurrently.
type Scenario struct {
	Name    string
	FEN     string
	Config  config.Config
	Backend neuralbackend.Backend
	Bounds  *ScenarioBounds
}

func withSamples(cfg config.Config, samples int) config.Config {
	cfg.Samples = samples
	return cfg
}

func withLambda(cfg config.Config, lambda float64) config.Config {
	cfg.Lambda = lambda
	return cfg
}

func standardScenarios() []Scenario {
	return []Scenario{
		{
			Name:   "standard-opening-competitive",
			FEN:    openingFEN,
			Config: withSamples(config.Default(), 5),
		},
		{
			Name: "standard-italian-quantum-hybrid",
			FEN:  italianFEN,
			Config: func() config.Config {
				cfg := withSamples(config.Default(), 3)
				cfg.SamplingMode = config.QuantumLimit
				cfg.RewardMode = config.RewardHybrid
				return cfg
			}(),
		},
		{
			Name: "standard-extreme-lambda",
			FEN:  openingFEN,
			Config: func() config.Config {
				cfg := withSamples(config.Default(), 1)
				cfg.Lambda = config.MaxLambda
				return cfg
			}(),
		},
	}
}

func performanceScenarios() []Scenario {
	return []Scenario{
		{
			Name:   "performance-50-samples",
			FEN:    openingFEN,
			Config: withSamples(config.Default(), 50),
			Bounds: &ScenarioBounds{MinExpectedMs: 0, MaxExpectedMs: 30000},
		},
		{
			Name:   "performance-500-samples",
			FEN:    openingFEN,
			Config: withSamples(config.Default(), 500),
			Bounds: &ScenarioBounds{MinExpectedMs: 0, MaxExpectedMs: 60000},
		},
		{
			Name:    "performance-with-fake-backend",
			FEN:     italianFEN,
			Config:  withSamples(config.Default(), 200),
			Backend: neuralbackend.NewFake(7),
			Bounds:  &ScenarioBounds{MinExpectedMs: 0, MaxExpectedMs: 60000},
		},
	}
}

func edgeCaseScenarios() []Scenario {
	return []Scenario{
		{Name: "edge-zero-samples", FEN: openingFEN, Config: withSamples(config.Default(), 0)},
		{Name: "edge-single-sample", FEN: openingFEN, Config: withSamples(config.Default(), 1)},
		{Name: "edge-lambda-min", FEN: openingFEN, Config: withLambda(config.Default(), config.MinLambda)},
		{Name: "edge-lambda-max", FEN: openingFEN, Config: withLambda(config.Default(), config.MaxLambda)},
		{Name: "edge-no-legal-moves", FEN: foolsMateFEN, Config: withSamples(config.Default(), 5)},
		{Name: "edge-single-legal-move", FEN: singleMoveFEN, Config: withSamples(config.Default(), 5)},
	}
}

// RunStandardTestSuite exercises common, unremarkable positions and
// configurations.
func RunStandardTestSuite(ctx context.Context) (*ComprehensiveVerificationReport, error) {
	return runSuite(ctx, "standard", standardScenarios())
}

// RunPerformanceTestSuite exercises larger sample budgets to surface
// throughput regressions.
func RunPerformanceTestSuite(ctx context.Context) (*ComprehensiveVerificationReport, error) {
	return runSuite(ctx, "performance", performanceScenarios())
}

// RunEdgeCaseTestSuite exercises boundary and failure conditions:
// zero and one sample per move, minimum and maximum lambda, and positions with
// zero or exactly one legal move.
func RunEdgeCaseTestSuite(ctx context.Context) (*ComprehensiveVerificationReport, error) {
	return runSuite(ctx, "edge-case", edgeCaseScenarios())
}

// RunComprehensiveTest runs every built-in suite, plus one additional
// default-config scenario per FEN in fens.
func RunComprehensiveTest(ctx context.Context, fens []string) (*ComprehensiveVerificationReport, error) {
	return runSuite(ctx, "comprehensive", comprehensiveScenarios(fens))
}

func comprehensiveScenarios(fens []string) []Scenario {
	scenarios := append([]Scenario{}, standardScenarios()...)
	scenarios = append(scenarios, performanceScenarios()...)
	scenarios = append(scenarios, edgeCaseScenarios()...)

	for i, fen := range fens {
		scenarios = append(scenarios, Scenario{
			Name:   fmt.Sprintf("comprehensive-custom-%d", i+1),
			FEN:    fen,
			Config: withSamples(config.Default(), config.DefaultSamples),
		})
	}
	return scenarios
}

// withBackendOverride replaces every scenario's Backend with override,
// used by callers (such as the CLI's --backend flag) that want one
// backend wired across an entire suite rather than the per-scenario
// defaults baked into standardScenarios/performanceScenarios/
// edgeCaseScenarios.
func withBackendOverride(scenarios []Scenario, override neuralbackend.Backend) []Scenario {
	if override == nil {
		return scenarios
	}
	out := make([]Scenario, len(scenarios))
	for i, sc := range scenarios {
		sc.Backend = override
		out[i] = sc
	}
	return out
}

// withConfigOverride applies opts onto every scenario's Config via
// config.ApplyOptions, touching only the fields opts sets explicitly
// and leaving each scenario's other fields — including the
// intentionally fixed boundary values in edgeCaseScenarios, like
// lambda-min/lambda-max — untouched.
func withConfigOverride(scenarios []Scenario, opts config.Options) ([]Scenario, error) {
	out := make([]Scenario, len(scenarios))
	for i, sc := range scenarios {
		cfg, err := config.ApplyOptions(sc.Config, opts)
		if err != nil {
			return nil, fmt.Errorf("verifier: applying config override to scenario %q: %w", sc.Name, err)
		}
		sc.Config = cfg
		out[i] = sc
	}
	return out, nil
}

// RunTestSuiteNamed runs the named built-in suite (standard,
// performance, edge-case, or comprehensive), wiring backend across
// every scenario when backend is non-nil and layering configOverride
// onto every scenario's Config. It is the entry point the verifier CLI
// uses so that --backend/--weights and the Controller-facing flags
// (--lambda, --samples, --reward-mode, --sampling-mode,
// --debug-logging, --metrics-file, --export-format, and --config)
// affect every scenario uniformly.
func RunTestSuiteNamed(ctx context.Context, name string, fens []string, backend neuralbackend.Backend, configOverride config.Options) (*ComprehensiveVerificationReport, error) {
	var scenarios []Scenario
	switch name {
	case "standard":
		scenarios = standardScenarios()
	case "performance":
		scenarios = performanceScenarios()
	case "edge-case":
		scenarios = edgeCaseScenarios()
	case "comprehensive":
		scenarios = comprehensiveScenarios(fens)
	default:
		return nil, fmt.Errorf("verifier: unknown test suite %q", name)
	}

	scenarios, err := withConfigOverride(scenarios, configOverride)
	if err != nil {
		return nil, err
	}
	return runSuite(ctx, name, withBackendOverride(scenarios, backend))
}

// runSuite builds one Controller per scenario and runs every scenario
// concurrently, coordinated with an errgroup so a single scenario's
// failure never aborts the rest.
func runSuite(ctx context.Context, name string, scenarios []Scenario) (*ComprehensiveVerificationReport, error) {
	results := make([]VerificationResult, len(scenarios))
	bar := progressbar.NewManualProgressBar(40, len(scenarios), name)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			result := runScenario(gctx, sc)
			result.ScenarioName = sc.Name

			mu.Lock()
			results[i] = result
			bar.Increment()
			bar.Display()
			mu.Unlock()
			return nil
		})
	}

	// runScenario never returns an error to the group (scenario
	// failures are recorded on the result, not propagated), so Wait
	// returns nil here; a cancelled ctx reaches the scenarios only
	// through gctx and is not reported as a suite error.
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("verifier: suite %q was cancelled: %w", name, err)
	}
	bar.Done()

	return buildReport(name, results), nil
}

func runScenario(ctx context.Context, sc Scenario) (result VerificationResult) {
	defer func() {
		if r := recover(); r != nil {
			result.ScenarioName = sc.Name
			result.PositionFEN = sc.FEN
			result.Errors = append(result.Errors, fmt.Sprintf("panic building scenario %q: %v", sc.Name, r))
		}
	}()

	pos, err := chesslib.NewPosition(sc.FEN)
	if err != nil {
		return VerificationResult{
			PositionFEN: sc.FEN,
			Errors:      []string{fmt.Sprintf("invalid scenario FEN: %v", err)},
		}
	}

	controller := sampler.NewController(sc.Config, sc.Backend, nil)
	return VerifySampling(ctx, controller, pos, sampler.SearchLimits{}, sc.Bounds)
}
