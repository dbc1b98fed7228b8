// Package runner drives one nettest through its full lifecycle:
// bouncer discovery, geolocation, report open, parallel measurement,
// and report close, emitting a structured event at every transition.
package runner

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/measurement-kit/go-libnettest2/internal/emitter"
	"github.com/measurement-kit/go-libnettest2/internal/geoipx"
	"github.com/measurement-kit/go-libnettest2/internal/geolocate"
	"github.com/measurement-kit/go-libnettest2/internal/httpx"
	"github.com/measurement-kit/go-libnettest2/internal/logx"
	"github.com/measurement-kit/go-libnettest2/internal/model"
	"github.com/measurement-kit/go-libnettest2/internal/probeservices"
)

// globalMutex serializes every Runner.Run call process-wide: only one
// nettest run may be in flight at a time.
var globalMutex sync.Mutex

// Runner drives one nettest from queued to ended.
type Runner struct {
	Settings *model.Settings
	Nettest  model.Nettest
	Emitter  *emitter.Emitter

	bytesInfo   model.BytesInfo
	interrupted atomic.Bool
}

// New returns a Runner that will execute nettest under settings,
// emitting events through em.
func New(settings *model.Settings, nettest model.Nettest, em *emitter.Emitter) *Runner {
	return &Runner{
		Settings: settings,
		Nettest:  nettest,
		Emitter:  em,
	}
}

// Interrupt cooperatively stops the dispatcher: workers observe the
// flag between inputs and exit; an in-flight measurement is not
// preempted.
func (r *Runner) Interrupt() {
	r.interrupted.Store(true)
}

// Run executes the full pipeline. Per-stage failures are surfaced only
// as failure.<stage> events: Run itself never fails.
func (r *Runner) Run(ctx context.Context) {
	r.Emitter.Emit("status.queued", struct{}{})

	globalMutex.Lock()
	defer globalMutex.Unlock()

	r.Emitter.Emit("status.started", struct{}{})

	nc := model.NewNettestContext()
	opts := &r.Settings.Options

	scrubbedLogger := &logx.ScrubberLogger{Logger: r.Emitter}

	httpClient := httpx.NewClient(&r.bytesInfo)
	httpClient.Logger = scrubbedLogger

	if !opts.NoBouncer {
		bouncer := probeservices.NewClient(opts.BouncerBaseURL, &r.bytesInfo)
		bouncer.HTTP.Logger = scrubbedLogger
		collectors, helpers, err := bouncer.QueryBouncer(ctx, r.Settings.Name, r.Nettest.TestHelpers(), r.Nettest.Version())
		if err != nil {
			r.Emitter.Warnf("runner: query_bouncer failed: %s", err.Error())
		} else {
			nc.Collectors = collectors
			nc.TestHelpers = helpers
		}
	}
	r.Emitter.Progress(0.1, "contact bouncer")

	r.stageProbeIP(ctx, nc, httpClient)
	r.stageASN(nc)
	r.stageCC(nc)
	r.Emitter.Progress(0.2, "geoip lookup")
	r.Emitter.Emit("status.geoip_lookup", struct {
		ProbeCC          string `json:"probe_cc"`
		ProbeASN         string `json:"probe_asn"`
		ProbeIP          string `json:"probe_ip"`
		ProbeNetworkName string `json:"probe_network_name"`
	}{nc.ProbeCC, nc.ProbeASN, nc.ProbeIP, nc.ProbeNetworkName})

	r.stageResolverIP(ctx, nc)
	r.Emitter.Progress(0.3, "resolver lookup")
	r.Emitter.Emit("status.resolver_lookup", struct {
		ResolverIP string `json:"resolver_ip"`
	}{nc.ResolverIP})

	testStartTime := formatTestTime(time.Now().UTC())

	collectorBaseURL := opts.CollectorBaseURL
	if collectorBaseURL == "" {
		collectorBaseURL = nc.CollectorBaseURL()
	}
	collector := probeservices.NewClient("", &r.bytesInfo)
	collector.HTTP.Logger = scrubbedLogger

	if !opts.NoCollector {
		rt := model.OOAPIReportTemplate{
			DataFormatVersion: model.OOAPIReportDefaultDataFormatVersion,
			Format:            model.OOAPIReportDefaultFormat,
			ProbeASN:          nc.ProbeASN,
			ProbeCC:           nc.ProbeCC,
			SoftwareName:      opts.EngineName,
			SoftwareVersion:   opts.EngineVersion,
			TestName:          r.Nettest.Name(),
			TestStartTime:     testStartTime,
			TestVersion:       r.Nettest.Version(),
		}
		reportID, err := collector.OpenReport(ctx, collectorBaseURL, rt)
		if err != nil {
			r.emitLibraryFailure("report_create", err)
		} else {
			nc.ReportID = reportID
			r.Emitter.Emit("status.report_create", struct {
				ReportID string `json:"report_id"`
			}{reportID})
		}
	}
	r.Emitter.Progress(0.4, "open report")

	inputs := r.prepareInputs()
	r.dispatch(ctx, nc, collector, collectorBaseURL, testStartTime, inputs)
	r.Emitter.Progress(0.9, "measurement complete")

	if err := collector.CloseReport(ctx, collectorBaseURL, nc.ReportID); err != nil {
		r.emitLibraryFailure("report_close", err)
	} else {
		r.Emitter.Emit("status.report_close", struct {
			ReportID string `json:"report_id"`
		}{nc.ReportID})
	}
	r.Emitter.Progress(1.0, "report close")

	r.Emitter.Emit("status.end", struct {
		Failure      string  `json:"failure"`
		DownloadedKB float64 `json:"downloaded_kb"`
		UploadedKB   float64 `json:"uploaded_kb"`
	}{"", r.bytesInfo.DownloadedKB(), r.bytesInfo.UploadedKB()})
}

func (r *Runner) stageProbeIP(ctx context.Context, nc *model.NettestContext, httpClient *httpx.Client) {
	opts := &r.Settings.Options
	if opts.ProbeIP != "" {
		nc.ProbeIP = opts.ProbeIP
		return
	}
	if opts.NoIPLookup {
		return
	}
	ip, errCtx := geolocate.LookupProbeIP(ctx, httpClient)
	if errCtx != nil {
		r.Emitter.Failure("ip_lookup", "library_error", errCtx)
		return
	}
	nc.ProbeIP = ip
}

func (r *Runner) stageASN(nc *model.NettestContext) {
	opts := &r.Settings.Options
	if opts.ProbeASN != "" {
		nc.ProbeASN = opts.ProbeASN
		return
	}
	if opts.NoASNLookup {
		return
	}
	asn, org, err := geoipx.LookupASN(opts.GeoIPASNPath, nc.ProbeIP)
	if err != nil {
		r.Emitter.Failure("asn_lookup", mmdbFailureName(err), model.NewErrContext("geoipx", "", err))
		return
	}
	nc.ProbeASN = formatASN(asn)
	nc.ProbeNetworkName = org
}

func (r *Runner) stageCC(nc *model.NettestContext) {
	opts := &r.Settings.Options
	if opts.ProbeCC != "" {
		nc.ProbeCC = opts.ProbeCC
		return
	}
	if opts.NoCCLookup {
		return
	}
	cc, err := geoipx.LookupCC(opts.GeoIPCountryPath, nc.ProbeIP)
	if err != nil {
		r.Emitter.Failure("cc_lookup", mmdbFailureName(err), model.NewErrContext("geoipx", "", err))
		return
	}
	nc.ProbeCC = cc
}

func (r *Runner) stageResolverIP(ctx context.Context, nc *model.NettestContext) {
	if r.Settings.Options.NoResolverLookup {
		return
	}
	ip, errCtx := geolocate.LookupResolverIP(ctx, &r.bytesInfo)
	if errCtx != nil {
		r.Emitter.Failure("resolver_lookup", "library_error", errCtx)
		return
	}
	nc.ResolverIP = ip
}

func (r *Runner) emitLibraryFailure(stage string, err error) {
	if lerr, ok := err.(*probeservices.LibraryError); ok {
		r.Emitter.Failure(stage, "library_error", lerr.ErrContext)
		return
	}
	if err == probeservices.ErrReportNotOpen {
		r.Emitter.Failure(stage, "report_not_open_error", nil)
		return
	}
	r.Emitter.Failure(stage, "library_error", model.NewErrContext("probeservices", "", err))
}

// prepareInputs builds the list of inputs the dispatcher will iterate
// over, honoring NeedsInput and RandomizeInput.
func (r *Runner) prepareInputs() []string {
	if !r.Nettest.NeedsInput() {
		if len(r.Settings.Inputs) > 0 {
			r.Emitter.Warnf("runner: %s does not need input; ignoring configured inputs", r.Nettest.Name())
		}
		return []string{""}
	}
	if len(r.Settings.Inputs) == 0 {
		r.Emitter.Warnf("runner: %s needs input but none was configured; skipping measurement", r.Nettest.Name())
		return nil
	}
	inputs := append([]string{}, r.Settings.Inputs...)
	if r.Settings.Options.RandomizeInput {
		rand.Shuffle(len(inputs), func(i, j int) {
			inputs[i], inputs[j] = inputs[j], inputs[i]
		})
	}
	return inputs
}

func mmdbFailureName(err error) string {
	switch err {
	case geoipx.ErrNoEntry:
		return "mmdb_enoent"
	case geoipx.ErrNoDataForType:
		return "mmdb_enodatafortype"
	default:
		return "library_error"
	}
}

func formatASN(asn uint) string {
	return "AS" + strconv.FormatUint(uint64(asn), 10)
}

// formatTestTime formats t the way the collector expects: UTC,
// seconds-truncated, "YYYY-MM-DD HH:MM:SS".
func formatTestTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
