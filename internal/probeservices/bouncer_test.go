package probeservices

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

func TestQueryBouncerParsesEndpoints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"net-tests": [{
			"collector": "httpo://thirteenchars123.onion",
			"collector-alternate": [
				{"address": "https://collector.example.com", "type": "https"},
				{"address": "https://x.cloudfront.net", "type": "cloudfront", "front": "x.cloudfront.net"},
				{"address": "ignored", "type": "onion"}
			],
			"name": "example",
			"test-helpers": {"backend": "httpo://helper.onion"},
			"test-helpers-alternate": {
				"backend": [{"address": "https://helper.example.com", "type": "https"}]
			},
			"version": "0.1.0"
		}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &model.BytesInfo{})
	collectors, helpers, err := client.QueryBouncer(context.Background(), "example", []string{"backend"}, "0.1.0")
	if err != nil {
		t.Fatal(err)
	}

	if len(collectors) != 3 {
		t.Fatalf("expected 3 collectors, got %d", len(collectors))
	}
	if collectors[0].Type != model.EndpointTypeOnion {
		t.Fatal("expected first collector to be onion")
	}
	if collectors[1].Type != model.EndpointTypeHTTPS {
		t.Fatal("expected second collector to be https")
	}
	if collectors[2].Type != model.EndpointTypeCloudfront || collectors[2].Front == "" {
		t.Fatal("expected third collector to be cloudfront with a front")
	}

	backend := helpers["backend"]
	if len(backend) != 2 {
		t.Fatalf("expected 2 backend helpers, got %d", len(backend))
	}
	if backend[0].Type != model.EndpointTypeOnion {
		t.Fatal("expected first backend helper to be onion")
	}
	if backend[1].Type != model.EndpointTypeHTTPS {
		t.Fatal("expected second backend helper to be https")
	}
}

func TestQueryBouncerFailsOnMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &model.BytesInfo{})
	_, _, err := client.QueryBouncer(context.Background(), "example", nil, "0.1.0")
	if err == nil {
		t.Fatal("expected an error here")
	}
}

func TestWithoutFinalSlash(t *testing.T) {
	if withoutFinalSlash("https://x.org///") != "https://x.org" {
		t.Fatal("did not trim trailing slashes")
	}
}
