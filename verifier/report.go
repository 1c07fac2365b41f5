package verifier

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/config"
)

// ComprehensiveVerificationReport aggregates every scenario's
// VerificationResult from one suite run.
type ComprehensiveVerificationReport struct {
	Name        string
	GeneratedAt time.Time
	Results     []VerificationResult

	Total              int
	Passed             int
	Failed             int
	WarningsCount      int
	ErrorsCount        int
	NeuralNetUsedCount int
	HeuristicOnlyCount int

	ThroughputMinPerSec float64
	ThroughputAvgPerSec float64
	ThroughputMaxPerSec float64

	Summary string
}

// OverallSuccess reports whether every scenario in the suite passed
// with no errors — the condition the verifier CLI's exit code follows.
func (r *ComprehensiveVerificationReport) OverallSuccess() bool {
	return r.Failed == 0 && r.ErrorsCount == 0
}

func buildReport(name string, results []VerificationResult) *ComprehensiveVerificationReport {
	report := &ComprehensiveVerificationReport{
		Name:        name,
		GeneratedAt: time.Now().UTC(),
		Results:     results,
		Total:       len(results),
	}

	throughputs := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Valid() {
			report.Passed++
		} else {
			report.Failed++
		}
		report.WarningsCount += len(r.Warnings)
		report.ErrorsCount += len(r.Errors)

		if r.BackendAvailable && r.NeuralNetUsed {
			report.NeuralNetUsedCount++
		} else {
			report.HeuristicOnlyCount++
		}

		if r.SamplesPerSecond > 0 {
			throughputs = append(throughputs, r.SamplesPerSecond)
		}
	}

	if len(throughputs) > 0 {
		report.ThroughputMinPerSec = floats.Min(throughputs)
		report.ThroughputMaxPerSec = floats.Max(throughputs)
		report.ThroughputAvgPerSec = stat.Mean(throughputs, nil)
	}

	report.Summary = renderSummary(report)
	return report
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func renderSummary(r *ComprehensiveVerificationReport) string {
	var b strings.Builder

	fmt.Fprintln(&b, headerStyle.Render(fmt.Sprintf("PIS verification report: %s", r.Name)))
	fmt.Fprintln(&b, dimStyle.Render(r.GeneratedAt.Format(time.RFC3339)))
	fmt.Fprintf(&b, "scenarios: %d  ", r.Total)
	fmt.Fprintf(&b, "%s  %s\n", passStyle.Render(fmt.Sprintf("passed: %d", r.Passed)), failStyle.Render(fmt.Sprintf("failed: %d", r.Failed)))
	fmt.Fprintf(&b, "warnings: %d  errors: %d\n", r.WarningsCount, r.ErrorsCount)
	fmt.Fprintf(&b, "throughput (samples/sec): min=%.1f avg=%.1f max=%.1f\n", r.ThroughputMinPerSec, r.ThroughputAvgPerSec, r.ThroughputMaxPerSec)
	fmt.Fprintf(&b, "neural-net-backed scenarios: %d  heuristic-only: %d\n", r.NeuralNetUsedCount, r.HeuristicOnlyCount)

	if r.OverallSuccess() {
		fmt.Fprintln(&b, passStyle.Render("overall: SUCCESS"))
	} else {
		fmt.Fprintln(&b, failStyle.Render("overall: FAILURE"))
	}

	return b.String()
}

// ExportReport serializes report as text, json, or csv into a file
// named <name>.<ext> inside outputDir, creating outputDir if it does
// not already exist. ExportFormat "none" is a no-op that returns an
// empty path.
func ExportReport(report *ComprehensiveVerificationReport, outputDir, name string, format config.ExportFormat) (string, error) {
	if format == config.ExportNone {
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("verifier: creating output directory %s: %w", outputDir, err)
	}

	var (
		data []byte
		err  error
		ext  string
	)

	switch format {
	case config.ExportJSON:
		data, err = renderJSON(report)
		ext = "json"
	case config.ExportCSV:
		data, err = renderCSV(report)
		ext = "csv"
	case config.ExportText:
		data = []byte(renderText(report))
		ext = "txt"
	default:
		return "", fmt.Errorf("verifier: unknown export format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("verifier: rendering %s report: %w", format, err)
	}

	path := filepath.Join(outputDir, name+"."+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("verifier: writing report to %s: %w", path, err)
	}
	return path, nil
}

type jsonSummary struct {
	Name                string  `json:"name"`
	GeneratedAt         string  `json:"generated_at"`
	Total               int     `json:"total"`
	Passed              int     `json:"passed"`
	Failed              int     `json:"failed"`
	WarningsCount       int     `json:"warnings_count"`
	ErrorsCount         int     `json:"errors_count"`
	ThroughputMinPerSec float64 `json:"throughput_min_samples_per_sec"`
	ThroughputAvgPerSec float64 `json:"throughput_avg_samples_per_sec"`
	ThroughputMaxPerSec float64 `json:"throughput_max_samples_per_sec"`
	NeuralNetUsedCount  int     `json:"neural_net_used_count"`
	HeuristicOnlyCount  int     `json:"heuristic_only_count"`
	OverallSuccess      bool    `json:"overall_success"`
}

type jsonResult struct {
	ScenarioName         string  `json:"scenario_name"`
	PositionFEN          string  `json:"position_fen"`
	RequestedSamples     int     `json:"requested_samples"`
	ActualSamples        int     `json:"actual_samples"`
	TotalTimeMs          float64 `json:"total_time_ms"`
	SamplesPerSecond     float64 `json:"samples_per_second"`
	NeuralNetEvaluations int     `json:"neural_net_evaluations"`
	CachedEvaluations    int     `json:"cached_evaluations"`
	HeuristicEvaluations int     `json:"heuristic_evaluations"`
	SelectedMove         string  `json:"selected_move"`
	IsValid              bool    `json:"is_valid"`
	WarningsCount        int     `json:"warnings_count"`
	ErrorsCount          int     `json:"errors_count"`
}

func renderJSON(report *ComprehensiveVerificationReport) ([]byte, error) {
	summary := jsonSummary{
		Name:                report.Name,
		GeneratedAt:         report.GeneratedAt.Format(time.RFC3339),
		Total:               report.Total,
		Passed:              report.Passed,
		Failed:              report.Failed,
		WarningsCount:       report.WarningsCount,
		ErrorsCount:         report.ErrorsCount,
		ThroughputMinPerSec: report.ThroughputMinPerSec,
		ThroughputAvgPerSec: report.ThroughputAvgPerSec,
		ThroughputMaxPerSec: report.ThroughputMaxPerSec,
		NeuralNetUsedCount:  report.NeuralNetUsedCount,
		HeuristicOnlyCount:  report.HeuristicOnlyCount,
		OverallSuccess:      report.OverallSuccess(),
	}

	results := make([]jsonResult, len(report.Results))
	for i, r := range report.Results {
		results[i] = jsonResult{
			ScenarioName:         r.ScenarioName,
			PositionFEN:          r.PositionFEN,
			RequestedSamples:     r.RequestedSamples,
			ActualSamples:        r.ActualSamples,
			TotalTimeMs:          r.TotalTimeMs,
			SamplesPerSecond:     r.SamplesPerSecond,
			NeuralNetEvaluations: r.NeuralNetEvaluations,
			CachedEvaluations:    r.CachedEvaluations,
			HeuristicEvaluations: r.HeuristicEvaluations,
			SelectedMove:         r.SelectedMove,
			IsValid:              r.Valid(),
			WarningsCount:        len(r.Warnings),
			ErrorsCount:          len(r.Errors),
		}
	}

	return json.MarshalIndent(struct {
		Summary           jsonSummary  `json:"summary"`
		IndividualResults []jsonResult `json:"individual_results"`
	}{summary, results}, "", "  ")
}

func renderCSV(report *ComprehensiveVerificationReport) ([]byte, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	header := []string{
		"Position", "Requested_Samples", "Actual_Samples", "Total_Time_ms",
		"Samples_Per_Second", "Neural_Net_Evaluations", "Cached_Evaluations",
		"Heuristic_Evaluations", "Is_Valid", "Warnings_Count", "Errors_Count",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range report.Results {
		row := []string{
			r.PositionFEN,
			strconv.Itoa(r.RequestedSamples),
			strconv.Itoa(r.ActualSamples),
			strconv.FormatFloat(r.TotalTimeMs, 'f', -1, 64),
			strconv.FormatFloat(r.SamplesPerSecond, 'f', -1, 64),
			strconv.Itoa(r.NeuralNetEvaluations),
			strconv.Itoa(r.CachedEvaluations),
			strconv.Itoa(r.HeuristicEvaluations),
			strconv.FormatBool(r.Valid()),
			strconv.Itoa(len(r.Warnings)),
			strconv.Itoa(len(r.Errors)),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func renderText(report *ComprehensiveVerificationReport) string {
	var b strings.Builder
	b.WriteString(report.Summary)
	b.WriteString("\n")

	for _, r := range report.Results {
		status := passStyle.Render("PASS")
		if !r.Valid() {
			status = failStyle.Render("FAIL")
		}
		fmt.Fprintf(&b, "[%s] %s (%s)\n", status, r.ScenarioName, r.PositionFEN)
		fmt.Fprintf(&b, "  requested=%d actual=%d total_time_ms=%.2f samples_per_sec=%.1f\n",
			r.RequestedSamples, r.ActualSamples, r.TotalTimeMs, r.SamplesPerSecond)
		fmt.Fprintf(&b, "  neural_net=%d cached=%d heuristic=%d selected_move=%q\n",
			r.NeuralNetEvaluations, r.CachedEvaluations, r.HeuristicEvaluations, r.SelectedMove)
		if len(r.Warnings) > 0 {
			fmt.Fprintf(&b, "  warnings: %s\n", strings.Join(r.Warnings, "; "))
		}
		if len(r.Errors) > 0 {
			fmt.Fprintf(&b, "  errors: %s\n", strings.Join(r.Errors, "; "))
		}
	}

	return b.String()
}
