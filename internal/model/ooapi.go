package model

//
// OONI bouncer and collector wire types.
//
// These structures mirror the pre-v2 bouncer/collector API consumed by
// the nettest runner: POST /bouncer/net-tests, POST /report,
// POST /report/<id>, POST /report/<id>/close.
//

// OOAPIService describes a backend service (collector or test helper).
//
// See https://github.com/ooni/spec/blob/master/backends/bk-004-bouncer.md.
type OOAPIService struct {
	// Address is the address of the server.
	Address string `json:"address"`

	// Type is the type of the service ("onion", "cloudfront", "https").
	Type string `json:"type"`

	// Front is the front to use with "cloudfront" type entries.
	Front string `json:"front,omitempty"`
}

const (
	// OOAPIReportDefaultDataFormatVersion is the default data format version.
	OOAPIReportDefaultDataFormatVersion = "0.2.0"

	// OOAPIReportDefaultFormat is the default report format.
	OOAPIReportDefaultFormat = "json"
)

// OOAPIReportTemplate is the template used to open a report.
type OOAPIReportTemplate struct {
	DataFormatVersion string `json:"data_format_version"`
	Format            string `json:"format"`
	ProbeASN          string `json:"probe_asn"`
	ProbeCC           string `json:"probe_cc"`
	SoftwareName      string `json:"software_name"`
	SoftwareVersion   string `json:"software_version"`
	TestName          string `json:"test_name"`
	TestStartTime     string `json:"test_start_time"`
	TestVersion       string `json:"test_version"`
}

// OOAPICollectorOpenResponse is the response to opening a report.
type OOAPICollectorOpenResponse struct {
	BackendVersion   string   `json:"backend_version"`
	ReportID         string   `json:"report_id"`
	SupportedFormats []string `json:"supported_formats"`
}

// OOAPICollectorUpdateRequest is the request body used to submit a
// single measurement to an already-open report.
type OOAPICollectorUpdateRequest struct {
	Format  string `json:"format"`
	Content any    `json:"content"`
}

// OOAPIBouncerNettestDescriptor describes a nettest entry sent to the
// bouncer when querying for collector/test-helper endpoints.
type OOAPIBouncerNettestDescriptor struct {
	InputHashes  []string `json:"input-hashes"`
	Name         string   `json:"name"`
	TestHelpers  []string `json:"test-helpers"`
	Version      string   `json:"version"`
}

// OOAPIBouncerRequest is the body of a POST /bouncer/net-tests request.
type OOAPIBouncerRequest struct {
	NetTests []OOAPIBouncerNettestDescriptor `json:"net-tests"`
}

// OOAPIBouncerResponseEntry is a single entry of a bouncer response.
type OOAPIBouncerResponseEntry struct {
	Collector              string              `json:"collector"`
	CollectorAlternate     []OOAPIService       `json:"collector-alternate"`
	Name                   string              `json:"name"`
	TestHelpers            map[string]string   `json:"test-helpers"`
	TestHelpersAlternate   map[string][]OOAPIService `json:"test-helpers-alternate"`
	Version                string              `json:"version"`
}

// OOAPIBouncerResponse is the body of a POST /bouncer/net-tests response:
// one entry per requested net-test, in request order, wrapped in the
// "net-tests" envelope the bouncer actually returns.
type OOAPIBouncerResponse struct {
	NetTests []OOAPIBouncerResponseEntry `json:"net-tests"`
}
