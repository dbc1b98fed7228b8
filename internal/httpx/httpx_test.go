package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

func TestPostJSONSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"report_id":"xxx"}`))
	}))
	defer server.Close()

	bytesInfo := &model.BytesInfo{}
	client := NewClient(bytesInfo)

	var output struct {
		ReportID string `json:"report_id"`
	}
	errCtx := client.PostJSONValue(context.Background(), server.URL, map[string]string{"a": "b"}, &output)
	if errCtx != nil {
		t.Fatal(errCtx.Reason)
	}
	if output.ReportID != "xxx" {
		t.Fatal("unexpected report_id", output.ReportID)
	}
	if bytesInfo.BytesUp() == 0 {
		t.Fatal("expected nonzero bytes sent")
	}
	if bytesInfo.BytesDown() == 0 {
		t.Fatal("expected nonzero bytes received")
	}
}

func TestPostJSONFailsOnHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(&model.BytesInfo{})
	_, errCtx := client.PostJSON(context.Background(), server.URL, nil)
	if errCtx == nil {
		t.Fatal("expected an error here")
	}
	if errCtx.LibraryName != "net/http" {
		t.Fatal("unexpected library name", errCtx.LibraryName)
	}
}

func TestGetSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<Ip>1.2.3.4</Ip>"))
	}))
	defer server.Close()

	client := NewClient(&model.BytesInfo{})
	data, errCtx := client.Get(context.Background(), server.URL)
	if errCtx != nil {
		t.Fatal(errCtx.Reason)
	}
	if string(data) != "<Ip>1.2.3.4</Ip>" {
		t.Fatal("unexpected body", string(data))
	}
}
