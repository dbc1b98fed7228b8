package model

import "sync/atomic"

// LogLevel controls the verbosity of the emitter and its "log" events.
type LogLevel uint32

const (
	LogLevelQuiet LogLevel = iota
	LogLevelErr
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
	LogLevelDebug2
)

// String implements fmt.Stringer so log level names match the wire
// values used in Settings.LogLevel and in "log" events.
func (lvl LogLevel) String() string {
	switch lvl {
	case LogLevelQuiet:
		return "QUIET"
	case LogLevelErr:
		return "ERR"
	case LogLevelWarning:
		return "WARNING"
	case LogLevelInfo:
		return "INFO"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelDebug2:
		return "DEBUG2"
	default:
		return "INFO"
	}
}

// ParseLogLevel maps a settings string onto a LogLevel, defaulting to INFO.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "QUIET":
		return LogLevelQuiet
	case "ERR":
		return LogLevelErr
	case "WARNING":
		return LogLevelWarning
	case "INFO":
		return LogLevelInfo
	case "DEBUG":
		return LogLevelDebug
	case "DEBUG2":
		return LogLevelDebug2
	default:
		return LogLevelInfo
	}
}

// NettestContext accumulates facts about the probe's environment for the
// duration of one run. It is built empty, populated by the Runner's early
// stages, and read-only once the measurement stage starts.
type NettestContext struct {
	Collectors        []EndpointInfo
	TestHelpers        map[string][]EndpointInfo
	ProbeASN           string
	ProbeCC            string
	ProbeIP            string
	ProbeNetworkName   string
	ReportID           string
	ResolverIP         string
}

// NewNettestContext returns a NettestContext carrying the spec-mandated
// defaults used when a lookup is disabled or fails.
func NewNettestContext() *NettestContext {
	return &NettestContext{
		TestHelpers: make(map[string][]EndpointInfo),
		ProbeASN:    DefaultProbeASNString,
		ProbeCC:     DefaultProbeCC,
		ProbeIP:     DefaultProbeIP,
	}
}

// CollectorBaseURL returns the first discovered collector of type HTTPS,
// or the empty string if none was discovered.
func (ctx *NettestContext) CollectorBaseURL() string {
	for _, ep := range ctx.Collectors {
		if ep.Type == EndpointTypeHTTPS {
			return ep.Address
		}
	}
	return ""
}

// BytesInfo holds the two monotonically increasing byte counters shared
// by every I/O operation performed during a run. Safe for concurrent use.
type BytesInfo struct {
	up   atomic.Uint64
	down atomic.Uint64
}

// CountBytesSent adds n to the sent counter.
func (b *BytesInfo) CountBytesSent(n int) {
	if n > 0 {
		b.up.Add(uint64(n))
	}
}

// CountBytesReceived adds n to the received counter.
func (b *BytesInfo) CountBytesReceived(n int) {
	if n > 0 {
		b.down.Add(uint64(n))
	}
}

// BytesUp returns the total bytes sent so far.
func (b *BytesInfo) BytesUp() uint64 { return b.up.Load() }

// BytesDown returns the total bytes received so far.
func (b *BytesInfo) BytesDown() uint64 { return b.down.Load() }

// UploadedKB returns the total bytes sent, expressed in kilobytes.
func (b *BytesInfo) UploadedKB() float64 { return float64(b.BytesUp()) / 1024.0 }

// DownloadedKB returns the total bytes received, expressed in kilobytes.
func (b *BytesInfo) DownloadedKB() float64 { return float64(b.BytesDown()) / 1024.0 }

// ErrContext describes a failure produced by a failable I/O operation.
// NewErrContext sets Code to a nonzero value so that a constructed
// ErrContext never reads as success; the struct's zero value has Code 0.
type ErrContext struct {
	Code           int64  `json:"code"`
	LibraryName    string `json:"library_name"`
	LibraryVersion string `json:"library_version"`
	Reason         string `json:"reason"`
}

// NewErrContext builds an ErrContext for a failure originating in
// libraryName/libraryVersion, describing err in Reason.
func NewErrContext(libraryName, libraryVersion string, err error) *ErrContext {
	return &ErrContext{
		Code:           1,
		LibraryName:    libraryName,
		LibraryVersion: libraryVersion,
		Reason:         err.Error(),
	}
}
