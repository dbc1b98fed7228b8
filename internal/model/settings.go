package model

//
// Settings decode, including the numeric-as-boolean backward
// compatibility shim inherited from the nettest runner this package
// descends from.
//

import (
	"encoding/json"
	"fmt"
)

// Settings is the immutable-during-a-run configuration for one Runner
// invocation.
type Settings struct {
	Annotations    map[string]string `json:"annotations,omitempty"`
	Inputs         []string          `json:"inputs,omitempty"`
	InputFilepaths []string          `json:"input_filepaths,omitempty"`
	LogFilepath    string            `json:"log_filepath,omitempty"`
	LogLevel       string            `json:"log_level,omitempty"`
	Name           string            `json:"name"`
	OutputFilepath string            `json:"output_filepath,omitempty"`
	Options        SettingsOptions   `json:"options"`
}

// SettingsOptions is the "options" sub-object of Settings.
type SettingsOptions struct {
	AllEndpoints      bool   `json:"all_endpoints,omitempty"`
	BouncerBaseURL    string `json:"bouncer_base_url,omitempty"`
	CABundlePath      string `json:"ca_bundle_path,omitempty"`
	CollectorBaseURL  string `json:"collector_base_url,omitempty"`
	EngineName        string `json:"engine_name,omitempty"`
	EngineVersion     string `json:"engine_version,omitempty"`
	EngineVersionFull string `json:"engine_version_full,omitempty"`
	GeoIPASNPath      string `json:"geoip_asn_path,omitempty"`
	GeoIPCountryPath  string `json:"geoip_country_path,omitempty"`
	MaxRuntime        uint16 `json:"max_runtime,omitempty"`
	NoASNLookup       bool   `json:"no_asn_lookup,omitempty"`
	NoBouncer         bool   `json:"no_bouncer,omitempty"`
	NoCCLookup        bool   `json:"no_cc_lookup,omitempty"`
	NoCollector       bool   `json:"no_collector,omitempty"`
	NoFileReport      bool   `json:"no_file_report,omitempty"`
	NoIPLookup        bool   `json:"no_ip_lookup,omitempty"`
	NoResolverLookup  bool   `json:"no_resolver_lookup,omitempty"`
	Parallelism       uint8  `json:"parallelism,omitempty"`
	Platform          string `json:"platform,omitempty"`
	Port              uint16 `json:"port,omitempty"`
	ProbeIP           string `json:"probe_ip,omitempty"`
	ProbeASN          string `json:"probe_asn,omitempty"`
	ProbeNetworkName  string `json:"probe_network_name,omitempty"`
	ProbeCC           string `json:"probe_cc,omitempty"`
	RandomizeInput    bool   `json:"randomize_input"`
	SaveRealProbeASN  bool   `json:"save_real_probe_asn"`
	SaveRealProbeIP   bool   `json:"save_real_probe_ip"`
	SaveRealProbeCC   bool   `json:"save_real_probe_cc"`
	SaveRealResolverIP bool  `json:"save_real_resolver_ip"`
	Server            string `json:"server,omitempty"`
	SoftwareName      string `json:"software_name,omitempty"`
	SoftwareVersion   string `json:"software_version,omitempty"`
}

// DefaultBouncerBaseURL is the default bouncer used when Options.BouncerBaseURL is empty.
const DefaultBouncerBaseURL = "https://bouncer.ooni.io"

// DefaultMaxRuntime is the default run budget, in seconds.
const DefaultMaxRuntime = 90

// booleanFields lists, by JSON key within "options", every field that
// parse_settings must accept either as a JSON boolean or (for backward
// compatibility) as a JSON number coerced with value != 0.
var booleanFields = []string{
	"all_endpoints", "no_asn_lookup", "no_bouncer", "no_cc_lookup",
	"no_collector", "no_file_report", "no_ip_lookup", "no_resolver_lookup",
	"randomize_input", "save_real_probe_asn", "save_real_probe_ip",
	"save_real_probe_cc", "save_real_resolver_ip",
}

// ParseSettings decodes raw into a Settings, applying defaults and the
// numeric-as-boolean compatibility shim. It returns one warning string
// per coerced field, matching the deprecation-warning channel this
// backward-compatibility hack has always required.
func ParseSettings(raw []byte) (*Settings, []string, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, nil, fmt.Errorf("model: invalid settings JSON: %w", err)
	}
	if _, ok := probe["name"]; !ok {
		return nil, nil, fmt.Errorf("model: settings missing required field \"name\"")
	}

	settings := &Settings{
		Options: SettingsOptions{
			BouncerBaseURL: DefaultBouncerBaseURL,
			MaxRuntime:     DefaultMaxRuntime,
			RandomizeInput: true,
			SaveRealProbeASN:  true,
			SaveRealProbeCC:   true,
			SaveRealProbeIP:   false,
			SaveRealResolverIP: true,
		},
	}
	if err := json.Unmarshal(raw, settings); err != nil {
		return nil, nil, fmt.Errorf("model: invalid settings JSON: %w", err)
	}

	var optionsRaw map[string]json.RawMessage
	if rawOpts, ok := probe["options"]; ok {
		if err := json.Unmarshal(rawOpts, &optionsRaw); err != nil {
			return nil, nil, fmt.Errorf("model: invalid settings JSON: %w", err)
		}
	}

	var warnings []string
	coerced := map[string]bool{}
	for _, name := range booleanFields {
		value, ok := optionsRaw[name]
		if !ok {
			continue
		}
		var asBool bool
		if err := json.Unmarshal(value, &asBool); err == nil {
			continue // already a proper boolean
		}
		var asNumber float64
		if err := json.Unmarshal(value, &asNumber); err != nil {
			return nil, nil, fmt.Errorf("model: settings.options.%s is neither a boolean nor a number", name)
		}
		warnings = append(warnings, fmt.Sprintf(
			"settings.options.%s was a number (%v); coercing to boolean and treating %v as %v is deprecated",
			name, asNumber, asNumber != 0, asNumber != 0,
		))
		coerced[name] = asNumber != 0
		delete(optionsRaw, name)
	}
	if len(coerced) > 0 {
		rawOpts, _ := json.Marshal(optionsRaw)
		probe["options"] = rawOpts
		raw, _ = json.Marshal(probe)
	}

	settings = &Settings{
		Options: SettingsOptions{
			BouncerBaseURL: DefaultBouncerBaseURL,
			MaxRuntime:     DefaultMaxRuntime,
			RandomizeInput: true,
			SaveRealProbeASN:  true,
			SaveRealProbeCC:   true,
			SaveRealProbeIP:   false,
			SaveRealResolverIP: true,
		},
	}
	if err := json.Unmarshal(raw, settings); err != nil {
		return nil, nil, fmt.Errorf("model: invalid settings JSON: %w", err)
	}
	for name, v := range coerced {
		setBooleanField(&settings.Options, name, v)
	}

	if settings.Options.BouncerBaseURL == "" {
		settings.Options.BouncerBaseURL = DefaultBouncerBaseURL
	}
	if settings.Options.MaxRuntime == 0 {
		settings.Options.MaxRuntime = DefaultMaxRuntime
	}
	return settings, warnings, nil
}

// setBooleanField applies a coerced boolean value onto the named option.
func setBooleanField(o *SettingsOptions, name string, v bool) {
	switch name {
	case "all_endpoints":
		o.AllEndpoints = v
	case "no_asn_lookup":
		o.NoASNLookup = v
	case "no_bouncer":
		o.NoBouncer = v
	case "no_cc_lookup":
		o.NoCCLookup = v
	case "no_collector":
		o.NoCollector = v
	case "no_file_report":
		o.NoFileReport = v
	case "no_ip_lookup":
		o.NoIPLookup = v
	case "no_resolver_lookup":
		o.NoResolverLookup = v
	case "randomize_input":
		o.RandomizeInput = v
	case "save_real_probe_asn":
		o.SaveRealProbeASN = v
	case "save_real_probe_ip":
		o.SaveRealProbeIP = v
	case "save_real_probe_cc":
		o.SaveRealProbeCC = v
	case "save_real_resolver_ip":
		o.SaveRealResolverIP = v
	}
}
