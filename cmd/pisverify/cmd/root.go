package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flags holds every persistent flag pisverify accepts. It doubles as
// the options bag handed to config.FromOptions once Viper's file layer
// and Cobra's flag layer have both been applied.
type flags struct {
	positions    string
	outputFormat string
	outputFile   string
	outputDir    string

	lambda       float64
	samples      int
	rewardMode   string
	samplingMode string
	debugLogging bool
	metricsFile  string
	exportFormat string

	weights string
	backend string

	verbose    bool
	configFile string
}

func Execute() error {
	f := &flags{}
	v := viper.New()

	root := &cobra.Command{
		Use:   "pisverify",
		Short: "Exercise the path-integral sampler's Controller outside any engine shell",
		Long: `pisverify drives PIS's Controller directly across fixed test scenarios
and reports whether its sampling behaves as documented, without a UCI
engine loop in front of it.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "base configuration file (JSON or YAML), overridden by any flag also set")
	pf.StringVar(&f.positions, "positions", "", "comma-separated FENs added to the comprehensive suite")
	pf.StringVar(&f.outputFormat, "output-format", "text", "report output format: text, json, or csv")
	pf.StringVar(&f.outputFile, "output-file", "", "report file name without extension (default: the suite name)")
	pf.StringVar(&f.outputDir, "output-dir", ".", "directory the report is written into")

	pf.Float64Var(&f.lambda, "lambda", 0, "path-integral lambda for every scenario (when unset, each scenario keeps its own)")
	pf.IntVar(&f.samples, "samples", 0, "samples per legal move for every scenario (when unset, each scenario keeps its own)")
	pf.StringVar(&f.rewardMode, "reward-mode", "", "quantum-limit reward mode: policy, cp_score, or hybrid")
	pf.StringVar(&f.samplingMode, "sampling-mode", "", "sampling mode: competitive or quantum_limit")
	pf.BoolVar(&f.debugLogging, "debug-logging", false, "enable the Controller's debug event log")
	pf.StringVar(&f.metricsFile, "metrics-file", "", "file the Controller's debug event log is appended to")
	pf.StringVar(&f.exportFormat, "export-format", "", "Config's own export_format field: none, json, csv, or text")

	pf.StringVar(&f.weights, "weights", "", "path to backend weights (only honored by backends that support loading them)")
	pf.StringVar(&f.backend, "backend", "none", "evaluation backend: none or fake")

	pf.BoolVarP(&f.verbose, "verbose", "v", false, "print each scenario's result as it completes")

	root.AddCommand(newTestSuiteCmd(f, v))

	return root.Execute()
}

func splitPositions(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	fens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			fens = append(fens, p)
		}
	}
	return fens
}

func validSuiteName(name string) error {
	switch name {
	case "standard", "performance", "edge-case", "comprehensive":
		return nil
	default:
		return fmt.Errorf("pisverify: unknown test-suite %q (want standard, performance, edge-case, or comprehensive)", name)
	}
}
