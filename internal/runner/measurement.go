package runner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/measurement-kit/go-libnettest2/internal/model"
	"github.com/measurement-kit/go-libnettest2/internal/probeservices"
)

// runOneMeasurement runs the nettest against one input, builds its
// measurement record, and submits it to the collector, emitting the
// full status.measurement_* / measurement event sequence.
func (r *Runner) runOneMeasurement(ctx context.Context, nc *model.NettestContext, collector *probeservices.Client, collectorBaseURL, testStartTime string, idx int, input string) {
	r.Emitter.Emit("status.measurement_start", struct {
		Idx   int    `json:"idx"`
		Input string `json:"input"`
	}{idx, input})

	started := time.Now().UTC()
	testKeys, runErr := r.Nettest.Run(ctx, r.Settings, nc, input, &r.bytesInfo)
	runtime := time.Since(started).Seconds()

	if runErr != nil {
		r.Emitter.Failure("measurement", "generic_error", model.NewErrContext("nettest", r.Nettest.Version(), runErr))
	}

	measurementStartTime := formatTestTime(started)
	m := r.buildMeasurementRecord(nc, testStartTime, measurementStartTime, idx, input, testKeys, runtime)

	data, err := json.Marshal(m)
	if err != nil {
		r.Emitter.Warnf("runner: failed to serialize measurement %d: %s", idx, err.Error())
	} else {
		if err := collector.UpdateReport(ctx, collectorBaseURL, nc.ReportID, string(data)); err != nil {
			r.emitLibraryFailure("measurement_submission", err)
		} else {
			r.Emitter.Emit("status.measurement_submission", struct {
				Idx int `json:"idx"`
			}{idx})
		}
		r.Emitter.Emit("measurement", struct {
			Idx     int    `json:"idx"`
			JSONStr string `json:"json_str"`
		}{idx, string(data)})
	}

	r.Emitter.Emit("status.measurement_done", struct {
		Idx int `json:"idx"`
	}{idx})
}

// testHelperRecord is the wire shape of one entry of the measurement's
// test_helpers object.
type testHelperRecord struct {
	Address string `json:"address"`
	Type    string `json:"type"`
	Front   string `json:"front,omitempty"`
}

// buildMeasurementRecord assembles a model.Measurement for one input,
// gating every save_real_* field on its matching Settings flag.
// testStartTime is the run-wide test_start_time; measurementStartTime is
// captured fresh for this one measurement.
func (r *Runner) buildMeasurementRecord(nc *model.NettestContext, testStartTime, measurementStartTime string, idx int, input string, testKeys any, runtimeSeconds float64) *model.Measurement {
	opts := &r.Settings.Options

	annotations := map[string]string{}
	for k, v := range r.Settings.Annotations {
		annotations[k] = v
	}
	annotations["engine_name"] = opts.EngineName
	annotations["engine_version"] = opts.EngineVersion
	annotations["engine_version_full"] = opts.EngineVersionFull
	annotations["platform"] = opts.Platform
	if opts.SaveRealProbeASN {
		annotations["probe_network_name"] = nc.ProbeNetworkName
	}

	probeASN, probeCC, probeIP := "", "", ""
	if opts.SaveRealProbeASN {
		probeASN = nc.ProbeASN
	}
	if opts.SaveRealProbeCC {
		probeCC = nc.ProbeCC
	}
	if opts.SaveRealProbeIP {
		probeIP = nc.ProbeIP
	}

	resolverIP := ""
	if opts.SaveRealResolverIP {
		resolverIP = nc.ResolverIP
	}

	testHelpers := map[string]any{}
	for name, endpoints := range nc.TestHelpers {
		if len(endpoints) == 0 {
			continue
		}
		ep := endpoints[0]
		rec := testHelperRecord{Address: ep.Address, Type: string(ep.Type), Front: ep.Front}
		testHelpers[name] = rec
	}

	keys := testKeys
	if asMap, ok := asMapStringAny(testKeys); ok {
		if opts.SaveRealResolverIP {
			asMap["client_resolver"] = nc.ResolverIP
		} else {
			asMap["client_resolver"] = ""
		}
		keys = asMap
	}

	return &model.Measurement{
		Annotations:          annotations,
		DataFormatVersion:    model.OOAPIReportDefaultDataFormatVersion,
		ID:                   uuid.New().String(),
		Input:                model.MeasurementTarget(input),
		InputHashes:          []string{},
		MeasurementStartTime: measurementStartTime,
		Options:              []string{},
		ProbeASN:             probeASN,
		ProbeCC:              probeCC,
		ProbeIP:              probeIP,
		ProbeNetworkName:     nc.ProbeNetworkName,
		ReportID:             nc.ReportID,
		ResolverASN:          model.DefaultResolverASNString,
		ResolverIP:           resolverIP,
		ResolverNetworkName:  model.DefaultResolverNetworkName,
		SoftwareName:         opts.SoftwareName,
		SoftwareVersion:      opts.SoftwareVersion,
		TestHelpers:          testHelpers,
		TestKeys:             keys,
		TestName:             r.Nettest.Name(),
		MeasurementRuntime:   runtimeSeconds,
		TestStartTime:        testStartTime,
		TestVersion:          r.Nettest.Version(),
	}
}

// asMapStringAny returns v as a map[string]any if it already is one,
// so the Runner can inject client_resolver without the nettest being
// able to observe or override it beforehand.
func asMapStringAny(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
