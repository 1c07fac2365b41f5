// Package config implements PIS's typed configuration: parsing from an
// options bag, validation, and defaults. It follows the teacher
// lineage's convention of small closed string-typed variants (see
// experiment.Type, solver.Type) rather than open enums.
package config

import "fmt"

// RewardMode selects how quantum-limit mode scores a move.
type RewardMode string

const (
	RewardPolicy  RewardMode = "policy"
	RewardCPScore RewardMode = "cp_score"
	RewardHybrid  RewardMode = "hybrid"
)

func (r RewardMode) valid() bool {
	switch r {
	case RewardPolicy, RewardCPScore, RewardHybrid:
		return true
	}
	return false
}

// SamplingMode selects the Controller's top-level sampling strategy.
type SamplingMode string

const (
	Competitive  SamplingMode = "competitive"
	QuantumLimit SamplingMode = "quantum_limit"
)

func (m SamplingMode) valid() bool {
	switch m {
	case Competitive, QuantumLimit:
		return true
	}
	return false
}

// ExportFormat selects how the Verifier serializes a report.
type ExportFormat string

const (
	ExportNone ExportFormat = "none"
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportText ExportFormat = "text"
)

func (f ExportFormat) valid() bool {
	switch f {
	case ExportNone, ExportJSON, ExportCSV, ExportText:
		return true
	}
	return false
}

// Bounds on Config's numeric fields, per the Controller-facing option
// table.
const (
	MinLambda  = 0.001
	MaxLambda  = 10.0
	MinSamples = 1
	MaxSamples = 100000

	DefaultLambda       = 0.1
	DefaultSamples      = 50
	DefaultRewardMode   = RewardHybrid
	DefaultSamplingMode = Competitive
)

// Config is PIS's full configuration. It is built once from an options
// bag (FromOptions) or Default(), and replaced wholesale thereafter —
// never mutated field by field — so that a Controller can always swap
// in a fresh Config atomically.
type Config struct {
	Lambda       float64
	Samples      int
	RewardMode   RewardMode
	SamplingMode SamplingMode
	DebugLogging bool
	MetricsFile  string
	ExportFormat ExportFormat
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Lambda:       DefaultLambda,
		Samples:      DefaultSamples,
		RewardMode:   DefaultRewardMode,
		SamplingMode: DefaultSamplingMode,
		DebugLogging: false,
		MetricsFile:  "",
		ExportFormat: ExportNone,
	}
}

// Options is the opaque options bag the Controller-facing option table
// describes: the host engine's option parser populates one of these
// (or an equivalent map) and hands it to FromOptions.
type Options struct {
	PathIntegralLambda      *float64
	PathIntegralSamples     *int
	PathIntegralRewardMode  *string
	PathIntegralMode        *string
	PathIntegralDebugMode   *bool
	PathIntegralMetricsFile *string
	ExportFormat            *string
}

// FromOptions builds a Config from an Options bag, filling in defaults
// for every field the bag leaves nil. FromOptions never returns an
// error for an out-of-range value: it follows the same philosophy as
// the Controller itself — an invalid combination disables PIS rather
// than failing the caller — so validity is instead surfaced through
// IsValid/Enabled on the resulting Config. FromOptions does return an
// error when an enum field names a value outside its closed variant,
// since that is a caller bug rather than a numeric edge case.
func FromOptions(opts Options) (Config, error) {
	return ApplyOptions(Default(), opts)
}

// ApplyOptions merges opts onto an existing cfg field by field, only
// touching the fields opts sets explicitly, and leaves every other
// field of cfg untouched. This is FromOptions' layering primitive: it
// lets a caller override a previously-built Config (e.g. one of the
// Verifier's fixed per-scenario configs) without clobbering fields the
// caller never asked to change.
func ApplyOptions(cfg Config, opts Options) (Config, error) {
	if opts.PathIntegralLambda != nil {
		cfg.Lambda = *opts.PathIntegralLambda
	}
	if opts.PathIntegralSamples != nil {
		cfg.Samples = *opts.PathIntegralSamples
	}
	if opts.PathIntegralRewardMode != nil {
		cfg.RewardMode = RewardMode(*opts.PathIntegralRewardMode)
		if !cfg.RewardMode.valid() {
			return Config{}, fmt.Errorf("config: unknown reward mode %q", *opts.PathIntegralRewardMode)
		}
	}
	if opts.PathIntegralMode != nil {
		cfg.SamplingMode = SamplingMode(*opts.PathIntegralMode)
		if !cfg.SamplingMode.valid() {
			return Config{}, fmt.Errorf("config: unknown sampling mode %q", *opts.PathIntegralMode)
		}
	}
	if opts.PathIntegralDebugMode != nil {
		cfg.DebugLogging = *opts.PathIntegralDebugMode
	}
	if opts.PathIntegralMetricsFile != nil {
		cfg.MetricsFile = *opts.PathIntegralMetricsFile
	}
	if opts.ExportFormat != nil {
		cfg.ExportFormat = ExportFormat(*opts.ExportFormat)
		if !cfg.ExportFormat.valid() {
			return Config{}, fmt.Errorf("config: unknown export format %q", *opts.ExportFormat)
		}
	}

	return cfg, nil
}

// IsValid reports whether Lambda and Samples fall within their
// documented ranges. A Config can be !IsValid() and still be handled
// gracefully: the Controller simply disables itself.
func (c Config) IsValid() bool {
	if c.Lambda < MinLambda || c.Lambda > MaxLambda {
		return false
	}
	if c.Samples < MinSamples || c.Samples > MaxSamples {
		return false
	}
	return true
}

// Enabled reports whether PIS should run at all: both Lambda and
// Samples must be strictly positive. This is intentionally a weaker
// condition than IsValid — e.g. Samples = 200000 is Enabled but not
// IsValid, and the Controller's SelectMove declines such a Config.
func (c Config) Enabled() bool {
	return c.Lambda > 0 && c.Samples > 0
}
