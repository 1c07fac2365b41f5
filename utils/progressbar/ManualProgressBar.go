// Package progressbar implements functionality for printing a scenario
// progress bar to the terminal window while the verifier works through
// a test suite.
package progressbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	filledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suffixStyle = lipgloss.NewStyle().Faint(true)
)

// ManualProgressBar implements progress bar functionality that must be
// manually managed: Display must be called whenever an updated bar
// should be printed.
//
// ManualProgressBar is not safe for concurrent use; the verifier calls
// it from its scenario goroutines while holding its own mutex.
type ManualProgressBar struct {
	width           float64
	maxProgress     float64
	currentProgress float64
	bar             strings.Builder
	startTime       time.Time
	label           string
}

// NewManualProgressBar returns a new ManualProgressBar that is width
// characters wide and reaches 100% after max calls to Increment.
func NewManualProgressBar(width, max int, label string) *ManualProgressBar {
	return &ManualProgressBar{
		width:           float64(width),
		maxProgress:     float64(max),
		currentProgress: 0,
		startTime:       time.Now(),
		label:           label,
	}
}

// Increment advances the internal progress counter by one scenario.
func (p *ManualProgressBar) Increment() {
	if p.currentProgress < p.maxProgress {
		p.currentProgress++
	}
}

// Display renders the current state of the bar to stdout, overwriting
// the previous render.
func (p *ManualProgressBar) Display() {
	p.bar.Reset()
	p.bar.WriteString("|")

	filled := p.currentProgress / p.maxProgress * p.width
	for i := 0.0; i < filled; i++ {
		p.bar.WriteString(filledStyle.Render("█"))
	}
	for i := filled; i < p.width; i++ {
		p.bar.WriteString(emptyStyle.Render("░"))
	}

	suffix := fmt.Sprintf("| %s [%.0f%% | %d/%d | elapsed: %v]",
		p.label,
		p.currentProgress/p.maxProgress*100,
		int(p.currentProgress), int(p.maxProgress),
		time.Since(p.startTime).Truncate(time.Second))

	fmt.Printf("\r%s%s", p.bar.String(), suffixStyle.Render(suffix))
}

// Done finalizes the bar at 100% and moves to the next line.
func (p *ManualProgressBar) Done() {
	p.currentProgress = p.maxProgress
	p.Display()
	fmt.Println()
}
