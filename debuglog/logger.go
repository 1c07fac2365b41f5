// Package debuglog implements the DebugLogger: a process-wide,
// sessioned structured event stream. Debug events must merge across
// Controller instances in a single process without a shared owner,
// hence the singleton; see Init and Get.
//
// The event-stream wire format — one JSON object per line, with the
// exact {"timestamp", "event_type", "data"} envelope — is an external
// contract consumers parse, so it is produced directly with
// encoding/json against a fixed struct rather than through a general
// logging framework's own encoder. The module's own operational
// logging (process lifecycle, CLI diagnostics) is a separate concern
// and uses go.uber.org/zap; see Logger.ops.
package debuglog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// EventType enumerates the kinds of events the logger can emit.
type EventType string

const (
	EventSessionStart      EventType = "session_start"
	EventSessionEnd        EventType = "session_end"
	EventSamplingStart     EventType = "sampling_start"
	EventSampleEvaluation  EventType = "sample_evaluation"
	EventSamplingComplete  EventType = "sampling_complete"
	EventMoveSelection     EventType = "move_selection"
	EventNeuralNetworkCall EventType = "neural_network_call"
	EventSoftmaxCalc       EventType = "softmax_calculation"
	EventInfo              EventType = "info"
	EventWarning           EventType = "warning"
	EventError             EventType = "error"
)

// entry is the exact wire envelope: one JSON object per line.
type entry struct {
	Timestamp string                 `json:"timestamp"`
	EventType EventType              `json:"event_type"`
	Data      map[string]interface{} `json:"data"`
}

// MoveProbability pairs a move with its selection probability, used in
// move_selection's all_probabilities field.
type MoveProbability struct {
	Move        string  `json:"move"`
	Probability float64 `json:"probability"`
}

// Logger is the DebugLogger. A single process-wide instance is reached
// through Get(); Init configures its sinks.
type Logger struct {
	mu sync.Mutex

	enabled    atomic.Bool
	fileOn     atomic.Bool
	diagnosticOn atomic.Bool

	file       *os.File
	diagnostic io.Writer // defaults to os.Stderr

	session *Session

	ops *zap.SugaredLogger
}

var (
	globalMu sync.Mutex
	global   *Logger
)

// Get returns the process-wide Logger, lazily creating a
// disabled-by-default instance if Init has not yet been called. This
// keeps every package that wants to log safe to use even before
// explicit initialization (e.g. in unit tests of unrelated packages).
func Get() *Logger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = newLogger()
	}
	return global
}

// Options configures the logger's sinks and enablement at Init time.
type Options struct {
	Enabled          bool
	DiagnosticOutput bool
	MetricsFile      string // empty: diagnostic channel only
}

// Init (re)configures the process-wide Logger: enablement and output
// sinks. It is the documented entry point for wiring sinks; it is safe
// to call multiple times (e.g. whenever Controller.UpdateOptions
// replaces the Config) and safe to call from any goroutine, including
// while a session is active.
func Init(opts Options) *Logger {
	l := Get()
	l.Configure(opts)
	return l
}

func newLogger() *Logger {
	ops, _ := zap.NewProduction()
	return &Logger{
		diagnostic: os.Stderr,
		ops:        ops.Sugar(),
	}
}

// Configure applies Options to an existing Logger, reopening sinks as
// needed. A file sink failure is reported through the ops logger and
// the diagnostic channel, and the logger falls back to
// diagnostic-only operation.
func (l *Logger) Configure(opts Options) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	l.enabled.Store(opts.Enabled)
	l.diagnosticOn.Store(opts.DiagnosticOutput || opts.MetricsFile == "")

	if opts.MetricsFile != "" {
		f, err := os.OpenFile(opts.MetricsFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			l.fileOn.Store(false)
			l.diagnosticOn.Store(true)
			l.ops.Errorw("debuglog: could not open metrics file, falling back to diagnostic sink",
				"path", opts.MetricsFile, "error", err)
			l.emitLocked(EventError, map[string]interface{}{
				"session_id": l.sessionIDLocked(),
				"message":    fmt.Sprintf("could not open metrics file %q: %v", opts.MetricsFile, err),
			})
			return
		}
		l.file = f
		l.fileOn.Store(true)
	} else {
		l.fileOn.Store(false)
	}
}

// SetEnabled toggles the logger on or off. It is effective immediately,
// including mid-session.
func (l *Logger) SetEnabled(enabled bool) {
	l.enabled.Store(enabled)
}

// Enabled reports whether the logger is currently emitting events.
func (l *Logger) Enabled() bool {
	return l.enabled.Load()
}

// StartSession begins a new DebugSession for positionFEN, implicitly
// ending any session already active, and returns the new session's id.
func (l *Logger) StartSession(positionFEN string) string {
	l.mu.Lock()
	if l.session != nil && l.session.active {
		l.endSessionLocked()
	}

	s := &Session{
		ID:             newSessionID(),
		PositionFEN:    positionFEN,
		StartTimestamp: time.Now().UTC(),
		active:         true,
	}
	l.session = s
	id := s.ID
	l.mu.Unlock()

	if !l.enabled.Load() {
		return id
	}

	l.mu.Lock()
	l.emitLocked(EventSessionStart, map[string]interface{}{
		"session_id":   id,
		"position_fen": positionFEN,
	})
	l.mu.Unlock()

	return id
}

// EndSession ends the currently active session, if any.
func (l *Logger) EndSession() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.endSessionLocked()
}

func (l *Logger) endSessionLocked() {
	if l.session == nil || !l.session.active {
		return
	}
	id := l.session.ID
	l.session.active = false

	if l.enabled.Load() {
		l.emitLocked(EventSessionEnd, map[string]interface{}{
			"session_id": id,
		})
	}
}

func (l *Logger) sessionIDLocked() string {
	if l.session == nil || !l.session.active {
		return noneSessionID
	}
	return l.session.ID
}

// CurrentSessionID returns the active session's id, or "none".
func (l *Logger) CurrentSessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessionIDLocked()
}

// SamplingStart emits a sampling_start event.
func (l *Logger) SamplingStart(requestedSamples, legalMoves int, lambda float64, samplingMode, rewardMode, positionFEN string) {
	if !l.enabled.Load() {
		return
	}
	data := map[string]interface{}{
		"requested_samples": requestedSamples,
		"legal_moves":       legalMoves,
		"lambda":            lambda,
		"sampling_mode":     samplingMode,
		"position_fen":      positionFEN,
	}
	if rewardMode != "" {
		data["reward_mode"] = rewardMode
	}
	l.emit(EventSamplingStart, data)
}

// SampleEvaluation emits a sample_evaluation event.
func (l *Logger) SampleEvaluation(move string, sampleNumber int, score float64, method string, elapsedMs float64) {
	if !l.enabled.Load() {
		return
	}
	l.emit(EventSampleEvaluation, map[string]interface{}{
		"move":                move,
		"sample_number":       sampleNumber,
		"score":               score,
		"evaluation_method":   method,
		"evaluation_time_ms":  elapsedMs,
	})
}

// SamplingCompleteData carries the fields of a sampling_complete event.
type SamplingCompleteData struct {
	TotalSamples         int
	TotalTimeMs          float64
	NeuralNetEvaluations int
	CachedEvaluations    int
	HeuristicEvaluations int
	AvgTimePerSampleMs   float64
}

// SamplingComplete emits a sampling_complete event.
func (l *Logger) SamplingComplete(d SamplingCompleteData) {
	if !l.enabled.Load() {
		return
	}
	l.emit(EventSamplingComplete, map[string]interface{}{
		"total_samples":          d.TotalSamples,
		"total_time_ms":          d.TotalTimeMs,
		"neural_net_evaluations": d.NeuralNetEvaluations,
		"cached_evaluations":     d.CachedEvaluations,
		"heuristic_evaluations":  d.HeuristicEvaluations,
		"avg_time_per_sample_ms": d.AvgTimePerSampleMs,
	})
}

// MoveSelection emits a move_selection event.
func (l *Logger) MoveSelection(selectedMove string, probability, score float64, all []MoveProbability) {
	if !l.enabled.Load() {
		return
	}
	l.emit(EventMoveSelection, map[string]interface{}{
		"selected_move":     selectedMove,
		"probability":       probability,
		"score":             score,
		"all_probabilities": all,
	})
}

// NeuralNetworkCall emits a neural_network_call event.
func (l *Logger) NeuralNetworkCall(cacheHit bool, elapsedMs float64, details string) {
	if !l.enabled.Load() {
		return
	}
	data := map[string]interface{}{
		"cache_hit":          cacheHit,
		"evaluation_time_ms": elapsedMs,
	}
	if details != "" {
		data["details"] = details
	}
	l.emit(EventNeuralNetworkCall, data)
}

// SoftmaxCalculation emits a softmax_calculation event.
func (l *Logger) SoftmaxCalculation(lambda float64, input, output []float64) {
	if !l.enabled.Load() {
		return
	}
	l.emit(EventSoftmaxCalc, map[string]interface{}{
		"lambda":               lambda,
		"input_scores":         input,
		"output_probabilities": output,
	})
}

// Info emits an info event.
func (l *Logger) Info(message string) {
	if !l.enabled.Load() {
		return
	}
	l.emit(EventInfo, map[string]interface{}{"message": message})
}

// Warn emits a warning event. Warn satisfies both softmax.Warner and
// metrics.Warner.
func (l *Logger) Warn(reason string) {
	if !l.enabled.Load() {
		return
	}
	l.emit(EventWarning, map[string]interface{}{"message": reason})
}

// Error emits an error event.
func (l *Logger) Error(context string, err error) {
	if !l.enabled.Load() {
		return
	}
	msg := context
	if err != nil {
		msg = fmt.Sprintf("%s: %v", context, err)
	}
	l.emit(EventError, map[string]interface{}{"message": msg})
}

// emit builds the envelope, attaches the session id, and writes to
// every enabled sink.
func (l *Logger) emit(eventType EventType, data map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emitLocked(eventType, data)
}

func (l *Logger) emitLocked(eventType EventType, data map[string]interface{}) {
	if _, ok := data["session_id"]; !ok {
		data["session_id"] = l.sessionIDLocked()
	}

	e := entry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		EventType: eventType,
		Data:      data,
	}

	line, err := json.Marshal(e)
	if err != nil {
		l.ops.Errorw("debuglog: failed to marshal event", "event_type", eventType, "error", err)
		return
	}
	line = append(line, '\n')

	if l.fileOn.Load() && l.file != nil {
		if _, err := l.file.Write(line); err != nil {
			l.ops.Errorw("debuglog: failed to write to metrics file", "error", err)
			l.fileOn.Store(false)
			l.diagnosticOn.Store(true)
		}
	}
	if l.diagnosticOn.Load() && l.diagnostic != nil {
		l.diagnostic.Write(line)
	}
}

// Close flushes sinks and ends any active session. It is the paired
// teardown for Init.
func (l *Logger) Close() {
	l.EndSession()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	l.ops.Sync()
}
