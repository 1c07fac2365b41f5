package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/config"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/neuralbackend"
	"github.com/BatuhanAcikgoz/lc0-path-integral-method/verifier"
)

func newTestSuiteCmd(f *flags, v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "test-suite [standard|performance|edge-case|comprehensive]",
		Short: "Run one of PIS's built-in verification suites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			suite := args[0]
			if err := validSuiteName(suite); err != nil {
				return err
			}

			opts, err := resolveOptions(cmd, f, v)
			if err != nil {
				return err
			}
			if _, err := config.FromOptions(opts); err != nil {
				// FromOptions only rejects malformed enum values; numeric
				// out-of-range values are accepted here and the Controller
				// then declines to select a move, per the Config "disable
				// rather than fail" philosophy. This validates opts up front so a typo
				// in an enum flag fails fast instead of silently failing
				// every scenario it's layered onto below.
				return fmt.Errorf("pisverify: %w", err)
			}

			backend, err := resolveBackend(f)
			if err != nil {
				return err
			}

			report, err := verifier.RunTestSuiteNamed(cmd.Context(), suite, splitPositions(f.positions), backend, opts)
			if err != nil {
				return fmt.Errorf("pisverify: %w", err)
			}

			if f.verbose {
				for _, r := range report.Results {
					status := "PASS"
					if !r.Valid() {
						status = "FAIL"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", status, r.ScenarioName)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary)

			if err := exportIfRequested(report, f); err != nil {
				return err
			}

			if !report.OverallSuccess() {
				return fmt.Errorf("pisverify: %d of %d scenarios failed", report.Failed, report.Total)
			}
			return nil
		},
	}
}

// resolveOptions loads configFile (if set) as the base layer via
// Viper, then lets any Cobra flag the caller actually set on the
// command line override it field by field — the "file base, flags
// override" layering.
func resolveOptions(cmd *cobra.Command, f *flags, v *viper.Viper) (config.Options, error) {
	var opts config.Options

	if f.configFile != "" {
		v.SetConfigFile(f.configFile)
		if err := v.ReadInConfig(); err != nil {
			return opts, fmt.Errorf("pisverify: reading config file %s: %w", f.configFile, err)
		}

		if v.IsSet("lambda") {
			lambda := v.GetFloat64("lambda")
			opts.PathIntegralLambda = &lambda
		}
		if v.IsSet("samples") {
			samples := v.GetInt("samples")
			opts.PathIntegralSamples = &samples
		}
		if v.IsSet("reward_mode") {
			mode := v.GetString("reward_mode")
			opts.PathIntegralRewardMode = &mode
		}
		if v.IsSet("sampling_mode") {
			mode := v.GetString("sampling_mode")
			opts.PathIntegralMode = &mode
		}
		if v.IsSet("debug_logging") {
			dbg := v.GetBool("debug_logging")
			opts.PathIntegralDebugMode = &dbg
		}
		if v.IsSet("metrics_file") {
			mf := v.GetString("metrics_file")
			opts.PathIntegralMetricsFile = &mf
		}
		if v.IsSet("export_format") {
			ef := v.GetString("export_format")
			opts.ExportFormat = &ef
		}
	}

	flagSet := cmd.Flags()
	if flagSet.Changed("lambda") {
		opts.PathIntegralLambda = &f.lambda
	}
	if flagSet.Changed("samples") {
		opts.PathIntegralSamples = &f.samples
	}
	if flagSet.Changed("reward-mode") {
		opts.PathIntegralRewardMode = &f.rewardMode
	}
	if flagSet.Changed("sampling-mode") {
		opts.PathIntegralMode = &f.samplingMode
	}
	if flagSet.Changed("debug-logging") {
		opts.PathIntegralDebugMode = &f.debugLogging
	}
	if flagSet.Changed("metrics-file") {
		opts.PathIntegralMetricsFile = &f.metricsFile
	}
	if flagSet.Changed("export-format") {
		opts.ExportFormat = &f.exportFormat
	}

	return opts, nil
}

// resolveBackend returns the evaluation backend named by
// --backend/--weights, or a nil interface for "none" (never a typed
// nil *Fake, so callers can compare the result against nil directly).
// "fake" is the only backend this binary wires to a real
// implementation; any other name is rejected rather than silently
// falling back, since that would hide a typo behind a heuristic-only
// run.
func resolveBackend(f *flags) (neuralbackend.Backend, error) {
	switch f.backend {
	case "", "none":
		return nil, nil
	case "fake":
		seed := uint64(7)
		if f.weights != "" {
			seed = uint64(len(f.weights))
		}
		return neuralbackend.NewFake(seed), nil
	default:
		return nil, fmt.Errorf("pisverify: unknown backend %q (want none or fake)", f.backend)
	}
}

func exportIfRequested(report *verifier.ComprehensiveVerificationReport, f *flags) error {
	format := config.ExportFormat(f.outputFormat)
	switch format {
	case config.ExportJSON, config.ExportCSV, config.ExportText:
	default:
		return fmt.Errorf("pisverify: unknown output-format %q (want text, json, or csv)", f.outputFormat)
	}

	name := f.outputFile
	if name == "" {
		name = report.Name
	}
	name = filepath.Base(name)

	if _, err := verifier.ExportReport(report, f.outputDir, name, format); err != nil {
		return fmt.Errorf("pisverify: %w", err)
	}
	return nil
}
