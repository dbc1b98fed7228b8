package probeservices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

func TestOpenReportSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/report") {
			t.Fatal("unexpected path", r.URL.Path)
		}
		w.Write([]byte(`{"backend_version":"1.0","report_id":"20260803T000000Z_example","supported_formats":["json"]}`))
	}))
	defer server.Close()

	client := NewClient("", &model.BytesInfo{})
	reportID, err := client.OpenReport(context.Background(), server.URL, model.OOAPIReportTemplate{
		DataFormatVersion: model.OOAPIReportDefaultDataFormatVersion,
		Format:            model.OOAPIReportDefaultFormat,
		TestName:          "example",
	})
	if err != nil {
		t.Fatal(err)
	}
	if reportID != "20260803T000000Z_example" {
		t.Fatal("unexpected report id", reportID)
	}
}

func TestUpdateReportFailsWithoutReportID(t *testing.T) {
	client := NewClient("", &model.BytesInfo{})
	err := client.UpdateReport(context.Background(), "https://example.com", "", `{}`)
	if err != ErrReportNotOpen {
		t.Fatal("expected ErrReportNotOpen, got", err)
	}
}

func TestUpdateReportSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/report/") {
			t.Fatal("unexpected path", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient("", &model.BytesInfo{})
	if err := client.UpdateReport(context.Background(), server.URL, "xxx", `{"a":1}`); err != nil {
		t.Fatal(err)
	}
}

func TestCloseReportFailsWithoutReportID(t *testing.T) {
	client := NewClient("", &model.BytesInfo{})
	err := client.CloseReport(context.Background(), "https://example.com", "")
	if err != ErrReportNotOpen {
		t.Fatal("expected ErrReportNotOpen, got", err)
	}
}

func TestCloseReportSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/close") {
			t.Fatal("unexpected path", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient("", &model.BytesInfo{})
	if err := client.CloseReport(context.Background(), server.URL, "xxx"); err != nil {
		t.Fatal(err)
	}
}

func TestNewReportTemplate(t *testing.T) {
	m := &model.Measurement{
		ProbeASN:        "AS1234",
		ProbeCC:         "IT",
		SoftwareName:    "nettestrunner",
		SoftwareVersion: "0.1.0",
		TestName:        "example",
		TestStartTime:   "2026-08-03 00:00:00",
		TestVersion:     "0.1.0",
	}
	rt := NewReportTemplate(m)
	if rt.DataFormatVersion != model.OOAPIReportDefaultDataFormatVersion {
		t.Fatal("unexpected data format version")
	}
	if rt.ProbeASN != "AS1234" {
		t.Fatal("unexpected probe asn")
	}
}
