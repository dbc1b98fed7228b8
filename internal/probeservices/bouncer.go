// Package probeservices implements the bouncer and collector protocol
// clients: discovering collector/test-helper endpoints and opening,
// updating, and closing reports.
package probeservices

//
// bouncer.go - POST /bouncer/net-tests
//

import (
	"context"
	"strings"

	"github.com/measurement-kit/go-libnettest2/internal/httpx"
	"github.com/measurement-kit/go-libnettest2/internal/model"
)

// Client is the bouncer/collector protocol client.
type Client struct {
	// BouncerBaseURL is the bouncer's base URL.
	BouncerBaseURL string

	// HTTP is the underlying HTTP client wrapper.
	HTTP *httpx.Client
}

// NewClient creates a probeservices.Client using bytesInfo for byte
// accounting across every bouncer/collector request it issues.
func NewClient(bouncerBaseURL string, bytesInfo *model.BytesInfo) *Client {
	return &Client{
		BouncerBaseURL: bouncerBaseURL,
		HTTP:           httpx.NewClient(bytesInfo),
	}
}

// withoutFinalSlash trims every trailing "/" from a base URL, mirroring
// the request-composition rule shared by every endpoint this client calls.
func withoutFinalSlash(url string) string {
	return strings.TrimRight(url, "/")
}

// QueryBouncer discovers the collectors and test helpers applicable to
// a named nettest. On a malformed or unreachable response it returns an
// error; the Runner is responsible for logging and continuing without
// discovered endpoints.
func (c *Client) QueryBouncer(ctx context.Context, nettestName string, helperNames []string, nettestVersion string) ([]model.EndpointInfo, map[string][]model.EndpointInfo, error) {
	reqBody := model.OOAPIBouncerRequest{
		NetTests: []model.OOAPIBouncerNettestDescriptor{
			{
				InputHashes: nil,
				Name:        nettestName,
				TestHelpers: helperNames,
				Version:     nettestVersion,
			},
		},
	}

	url := withoutFinalSlash(c.BouncerBaseURL) + "/bouncer/net-tests"
	var respBody model.OOAPIBouncerResponse
	if errCtx := c.HTTP.PostJSONValue(ctx, url, reqBody, &respBody); errCtx != nil {
		return nil, nil, &LibraryError{ErrContext: errCtx}
	}

	var collectors []model.EndpointInfo
	helpers := make(map[string][]model.EndpointInfo)
	for _, entry := range respBody.NetTests {
		if entry.Collector != "" {
			collectors = append(collectors, model.EndpointInfo{
				Type:    model.EndpointTypeOnion,
				Address: entry.Collector,
			})
		}
		for _, alt := range entry.CollectorAlternate {
			if ep := endpointFromAlternate(alt); ep != nil {
				collectors = append(collectors, *ep)
			}
		}
		for name, address := range entry.TestHelpers {
			helpers[name] = append(helpers[name], model.EndpointInfo{
				Type:    model.EndpointTypeOnion,
				Address: address,
			})
		}
		for name, alts := range entry.TestHelpersAlternate {
			for _, alt := range alts {
				if ep := endpointFromAlternate(alt); ep != nil {
					helpers[name] = append(helpers[name], *ep)
				}
			}
		}
	}
	return collectors, helpers, nil
}

// endpointFromAlternate applies the https/cloudfront-only rule used for
// both collector-alternate and test-helpers-alternate entries; any other
// type is silently skipped.
func endpointFromAlternate(svc model.OOAPIService) *model.EndpointInfo {
	switch svc.Type {
	case "https":
		return &model.EndpointInfo{Type: model.EndpointTypeHTTPS, Address: svc.Address}
	case "cloudfront":
		return &model.EndpointInfo{Type: model.EndpointTypeCloudfront, Address: svc.Address, Front: svc.Front}
	default:
		return nil
	}
}

// LibraryError wraps an ErrContext produced by a failed bouncer or
// collector call so callers can still use errors.As/errors.Is while the
// Runner extracts the structured context for event emission.
type LibraryError struct {
	ErrContext *model.ErrContext
}

func (e *LibraryError) Error() string {
	return e.ErrContext.Reason
}
