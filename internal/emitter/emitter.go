// Package emitter implements the Runner's event sink: every stage emits
// structured {key, value} events through a single mutex-guarded writer.
package emitter

import (
	"fmt"
	"sync"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

// Event is one {key, value} entry written to a Sink.
type Event struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Sink consumes one Event at a time. Implementations MUST NOT block for
// long: the emitter holds its lock for the duration of the call.
type Sink interface {
	Consume(Event)
}

// SinkFunc adapts a func into a Sink.
type SinkFunc func(Event)

func (f SinkFunc) Consume(e Event) { f(e) }

// Emitter serializes event emission from possibly many worker
// goroutines down to a single-writer discipline, and mirrors every
// emitted "log" event to a model.Logger.
type Emitter struct {
	mu     sync.Mutex
	sink   Sink
	level  model.LogLevel
	logger model.Logger
}

// New returns an Emitter that writes to sink at the given level,
// forwarding log lines to logger (model.DiscardLogger if nil).
func New(sink Sink, level model.LogLevel, logger model.Logger) *Emitter {
	return &Emitter{
		sink:   sink,
		level:  level,
		logger: model.ValidLoggerOrDefault(logger),
	}
}

// Level returns the emitter's configured log level.
func (e *Emitter) Level() model.LogLevel { return e.level }

// Emit wraps value under key as an Event and hands it to the sink while
// holding the emitter's lock. A panic in the sink is swallowed: emission
// is always best-effort.
func (e *Emitter) Emit(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer func() { recover() }()
	e.sink.Consume(Event{Key: key, Value: value})
}

type logEventValue struct {
	LogLevel string `json:"log_level"`
	Message  string `json:"message"`
}

// logAt emits a "log" event at lvl if the emitter's level allows it,
// and always forwards the message to the underlying model.Logger.
func (e *Emitter) logAt(lvl model.LogLevel, message string) {
	if e.level >= lvl {
		e.Emit("log", logEventValue{LogLevel: lvl.String(), Message: message})
	}
	switch lvl {
	case model.LogLevelWarning, model.LogLevelErr:
		e.logger.Warn(message)
	case model.LogLevelDebug, model.LogLevelDebug2:
		e.logger.Debug(message)
	default:
		e.logger.Info(message)
	}
}

func (e *Emitter) Warn(message string)  { e.logAt(model.LogLevelWarning, message) }
func (e *Emitter) Info(message string)  { e.logAt(model.LogLevelInfo, message) }
func (e *Emitter) Debug(message string) { e.logAt(model.LogLevelDebug, message) }

func (e *Emitter) Warnf(format string, v ...any)   { e.logAt(model.LogLevelWarning, fmt.Sprintf(format, v...)) }
func (e *Emitter) Infof(format string, v ...any)   { e.logAt(model.LogLevelInfo, fmt.Sprintf(format, v...)) }
func (e *Emitter) Debugf(format string, v ...any)  { e.logAt(model.LogLevelDebug, fmt.Sprintf(format, v...)) }
func (e *Emitter) Debug2f(format string, v ...any) { e.logAt(model.LogLevelDebug2, fmt.Sprintf(format, v...)) }

var _ model.Logger = &Emitter{}

// Progress emits a status.progress event and a human-readable log line.
func (e *Emitter) Progress(percentage float64, message string) {
	e.Emit("status.progress", struct {
		Percentage float64 `json:"percentage"`
		Message    string  `json:"message"`
	}{percentage, message})
	e.logger.Infof("[%5.1f%%] %s", percentage*100, message)
}

// Failure emits a failure.<stage> event carrying a structured ErrContext.
func (e *Emitter) Failure(stage, failure string, errCtx *model.ErrContext) {
	e.Emit("failure."+stage, struct {
		Failure             string            `json:"failure"`
		LibraryErrorContext *model.ErrContext `json:"library_error_context,omitempty"`
	}{failure, errCtx})
}
