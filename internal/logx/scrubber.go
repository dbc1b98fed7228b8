// Package logx contains logging helpers layered on top of model.Logger.
package logx

import (
	"fmt"
	"regexp"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

// Scrubbed replaces a scrubbed IP:port endpoint in a log line.
const Scrubbed = "[scrubbed]"

var endpointRegexp = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}:\d+\b`)

func scrub(message string) string {
	return endpointRegexp.ReplaceAllString(message, Scrubbed)
}

// ScrubberLogger wraps a model.Logger and removes IP:port endpoints
// from every message before forwarding it, so verbose HTTP tracing
// never leaks the probe's address into logs.
type ScrubberLogger struct {
	Logger model.Logger
}

var _ model.Logger = &ScrubberLogger{}

func (sl *ScrubberLogger) Debug(message string) {
	sl.Logger.Debug(scrub(message))
}

func (sl *ScrubberLogger) Debugf(format string, v ...interface{}) {
	sl.Logger.Debug(scrub(fmt.Sprintf(format, v...)))
}

func (sl *ScrubberLogger) Info(message string) {
	sl.Logger.Info(scrub(message))
}

func (sl *ScrubberLogger) Infof(format string, v ...interface{}) {
	sl.Logger.Info(scrub(fmt.Sprintf(format, v...)))
}

func (sl *ScrubberLogger) Warn(message string) {
	sl.Logger.Warn(scrub(message))
}

func (sl *ScrubberLogger) Warnf(format string, v ...interface{}) {
	sl.Logger.Warn(scrub(fmt.Sprintf(format, v...)))
}
