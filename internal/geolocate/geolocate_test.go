package geolocate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/measurement-kit/go-libnettest2/internal/httpx"
	"github.com/measurement-kit/go-libnettest2/internal/model"
)

func TestXMLExtract(t *testing.T) {
	value, err := xmlExtract("<Ip>  1.2.3.4  </Ip>", "Ip")
	if err != nil {
		t.Fatal(err)
	}
	if value != "1.2.3.4" {
		t.Fatal("unexpected value", value)
	}
}

func TestXMLExtractNoTag(t *testing.T) {
	_, err := xmlExtract("<nothing/>", "Ip")
	if err == nil {
		t.Fatal("expected an error here")
	}
}

func TestLookupProbeIPFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<Result><Ip>203.0.113.5</Ip></Result>"))
	}))
	defer server.Close()

	client := httpx.NewClient(&model.BytesInfo{})
	ip, errCtx := lookupProbeIPFromURL(context.Background(), client, server.URL)
	if errCtx != nil {
		t.Fatal(errCtx.Reason)
	}
	if ip != "203.0.113.5" {
		t.Fatal("unexpected ip", ip)
	}
}

func TestLookupProbeIPFromURLMissingTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<Result/>"))
	}))
	defer server.Close()

	client := httpx.NewClient(&model.BytesInfo{})
	_, errCtx := lookupProbeIPFromURL(context.Background(), client, server.URL)
	if errCtx == nil {
		t.Fatal("expected an error here")
	}
}
