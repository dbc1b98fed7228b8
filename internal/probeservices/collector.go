package probeservices

//
// collector.go - POST /report, POST /report/<id>, POST /report/<id>/close
//

import (
	"context"
	"errors"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

// ErrReportNotOpen indicates that a submission was attempted with an
// empty report ID.
var ErrReportNotOpen = errors.New("report_not_open_error")

// NewReportTemplate builds the OOAPIReportTemplate used to open a
// report from the fields already populated on m.
func NewReportTemplate(m *model.Measurement) model.OOAPIReportTemplate {
	return model.OOAPIReportTemplate{
		DataFormatVersion: model.OOAPIReportDefaultDataFormatVersion,
		Format:            model.OOAPIReportDefaultFormat,
		ProbeASN:          m.ProbeASN,
		ProbeCC:           m.ProbeCC,
		SoftwareName:      m.SoftwareName,
		SoftwareVersion:   m.SoftwareVersion,
		TestName:          m.TestName,
		TestStartTime:     m.TestStartTime,
		TestVersion:       m.TestVersion,
	}
}

// openReportRequest is the wire body of POST /report: the report
// template plus the always-empty input_hashes list the collector expects.
type openReportRequest struct {
	model.OOAPIReportTemplate
	InputHashes []string `json:"input_hashes"`
}

// OpenReport opens a new report on collectorBaseURL and returns its
// report ID.
func (c *Client) OpenReport(ctx context.Context, collectorBaseURL string, rt model.OOAPIReportTemplate) (string, error) {
	url := withoutFinalSlash(collectorBaseURL) + "/report"
	req := openReportRequest{OOAPIReportTemplate: rt, InputHashes: []string{}}
	var resp model.OOAPICollectorOpenResponse
	if errCtx := c.HTTP.PostJSONValue(ctx, url, req, &resp); errCtx != nil {
		return "", &LibraryError{ErrContext: errCtx}
	}
	return resp.ReportID, nil
}

// UpdateReport submits one serialized measurement to an already-open report.
func (c *Client) UpdateReport(ctx context.Context, collectorBaseURL, reportID, measurementJSON string) error {
	if reportID == "" {
		return ErrReportNotOpen
	}
	url := withoutFinalSlash(collectorBaseURL) + "/report/" + reportID
	req := model.OOAPICollectorUpdateRequest{
		Format:  model.OOAPIReportDefaultFormat,
		Content: measurementJSON,
	}
	if errCtx := c.HTTP.PostJSONValue(ctx, url, req, nil); errCtx != nil {
		return &LibraryError{ErrContext: errCtx}
	}
	return nil
}

// CloseReport closes an already-open report.
func (c *Client) CloseReport(ctx context.Context, collectorBaseURL, reportID string) error {
	if reportID == "" {
		return ErrReportNotOpen
	}
	url := withoutFinalSlash(collectorBaseURL) + "/report/" + reportID + "/close"
	if _, errCtx := c.HTTP.PostJSON(ctx, url, nil); errCtx != nil {
		return &LibraryError{ErrContext: errCtx}
	}
	return nil
}
