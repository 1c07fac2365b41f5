package config

import "testing"

func TestDefaultIsValidAndEnabled(t *testing.T) {
	cfg := Default()
	if !cfg.IsValid() {
		t.Fatal("default config should be valid")
	}
	if !cfg.Enabled() {
		t.Fatal("default config should be enabled")
	}
}

func TestFromOptionsDefaults(t *testing.T) {
	cfg, err := FromOptions(Options{})
	if err != nil {
		t.Fatalf("FromOptions: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("FromOptions with no overrides should equal Default, got %+v", cfg)
	}
}

func TestFromOptionsOverrides(t *testing.T) {
	lambda := 2.5
	samples := 10
	reward := "policy"
	mode := "quantum_limit"
	debug := true

	cfg, err := FromOptions(Options{
		PathIntegralLambda:     &lambda,
		PathIntegralSamples:    &samples,
		PathIntegralRewardMode: &reward,
		PathIntegralMode:       &mode,
		PathIntegralDebugMode:  &debug,
	})
	if err != nil {
		t.Fatalf("FromOptions: %v", err)
	}

	if cfg.Lambda != lambda || cfg.Samples != samples ||
		cfg.RewardMode != RewardPolicy || cfg.SamplingMode != QuantumLimit ||
		!cfg.DebugLogging {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestApplyOptionsOnlyTouchesExplicitFields(t *testing.T) {
	base := Config{
		Lambda:       0.25,
		Samples:      7,
		RewardMode:   RewardCPScore,
		SamplingMode: QuantumLimit,
		DebugLogging: true,
		MetricsFile:  "base.jsonl",
		ExportFormat: ExportCSV,
	}

	samples := 99
	cfg, err := ApplyOptions(base, Options{PathIntegralSamples: &samples})
	if err != nil {
		t.Fatalf("ApplyOptions: %v", err)
	}

	if cfg.Samples != samples {
		t.Fatalf("cfg.Samples = %d, want %d", cfg.Samples, samples)
	}
	if cfg.Lambda != base.Lambda || cfg.RewardMode != base.RewardMode ||
		cfg.SamplingMode != base.SamplingMode || cfg.DebugLogging != base.DebugLogging ||
		cfg.MetricsFile != base.MetricsFile || cfg.ExportFormat != base.ExportFormat {
		t.Fatalf("ApplyOptions changed an untouched field: got %+v, base %+v", cfg, base)
	}
}

func TestFromOptionsRejectsUnknownEnum(t *testing.T) {
	bogus := "not-a-mode"
	if _, err := FromOptions(Options{PathIntegralMode: &bogus}); err == nil {
		t.Fatal("expected an error for an unknown sampling mode")
	}
}

func TestIsValidBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		valid bool
	}{
		{"lambda at min", Config{Lambda: MinLambda, Samples: 1}, true},
		{"lambda at max", Config{Lambda: MaxLambda, Samples: 1}, true},
		{"lambda below min", Config{Lambda: 0.0009, Samples: 1}, false},
		{"lambda above max", Config{Lambda: 10.001, Samples: 1}, false},
		{"samples at min", Config{Lambda: 1, Samples: MinSamples}, true},
		{"samples at max", Config{Lambda: 1, Samples: MaxSamples}, true},
		{"samples over max", Config{Lambda: 1, Samples: MaxSamples + 1}, false},
		{"samples zero", Config{Lambda: 1, Samples: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestEnabledMatchesLambdaAndSamplesPositive(t *testing.T) {
	cfg := Config{Lambda: 0, Samples: 5}
	if cfg.Enabled() {
		t.Fatal("zero lambda should disable PIS")
	}
	cfg = Config{Lambda: 0.1, Samples: 0}
	if cfg.Enabled() {
		t.Fatal("zero samples should disable PIS")
	}
	cfg = Config{Lambda: 0.1, Samples: 5}
	if !cfg.Enabled() {
		t.Fatal("positive lambda and samples should enable PIS")
	}
}
