// Package httpx implements the nettest runner's HTTP client wrapper:
// PostJSON and Get, with a fixed per-request timeout, byte accounting
// for every header and body chunk transferred, and fail-on-HTTP-error
// semantics.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/measurement-kit/go-libnettest2/internal/model"
)

// RequestTimeout is the fixed per-request budget every call enforces.
const RequestTimeout = 5 * time.Second

// DefaultMaxBodySize bounds how much of a response body we will read.
const DefaultMaxBodySize = 1 << 22

// ErrRequestFailed indicates the server returned a status code >= 400.
var ErrRequestFailed = errors.New("httpx: request failed")

// Client is the HTTP client wrapper used by the bouncer client, the
// collector client, and probe-IP/resolver-IP discovery.
type Client struct {
	// HTTPClient is the underlying http client to use.
	HTTPClient *http.Client

	// Logger receives verbose per-line request/response tracing.
	Logger model.Logger

	// Bytes accounts bytes sent/received across every call.
	Bytes *model.BytesInfo
}

// NewClient returns a Client with RequestTimeout applied to the
// underlying http.Client and a discarding logger.
func NewClient(bytesInfo *model.BytesInfo) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: RequestTimeout},
		Logger:     model.DiscardLogger,
		Bytes:      bytesInfo,
	}
}

func (c *Client) countRequest(req *http.Request, body []byte) {
	c.Logger.Debugf("> %s %s", req.Method, req.URL.String())
	c.Bytes.CountBytesSent(len(req.Method))
	c.Bytes.CountBytesSent(len(req.URL.String()))
	for key, values := range req.Header {
		for _, value := range values {
			c.Logger.Debugf("> %s: %s", key, value)
			c.Bytes.CountBytesSent(len(key) + len(": ") + len(value) + len("\r\n"))
		}
	}
	if len(body) > 0 {
		c.Logger.Debugf("data{%d}", len(body))
		c.Bytes.CountBytesSent(len(body))
	}
}

func (c *Client) countResponse(resp *http.Response, body []byte) {
	c.Logger.Debugf("< %s", resp.Status)
	c.Bytes.CountBytesReceived(len(resp.Status))
	for key, values := range resp.Header {
		for _, value := range values {
			c.Logger.Debugf("< %s: %s", key, value)
			c.Bytes.CountBytesReceived(len(key) + len(": ") + len(value) + len("\r\n"))
		}
	}
	c.Logger.Debugf("data{%d}", len(body))
	c.Bytes.CountBytesReceived(len(body))
}

// do performs request with an optional JSON body and returns the raw
// response body, failing on transport error or status >= 400.
func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, *model.ErrContext) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	var reqBody io.Reader
	if len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, model.NewErrContext("net/http", runtime.Version(), err)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	c.countRequest(req, body)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, model.NewErrContext("net/http", runtime.Version(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, DefaultMaxBodySize))
	if err != nil {
		return nil, model.NewErrContext("net/http", runtime.Version(), err)
	}
	c.countResponse(resp, data)

	if resp.StatusCode >= 400 {
		err = fmt.Errorf("%w: %s", ErrRequestFailed, resp.Status)
		return nil, model.NewErrContext("net/http", runtime.Version(), err)
	}
	return data, nil
}

// PostJSON POSTs body (already-marshaled JSON, possibly empty) to url
// and returns the raw response body.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte) ([]byte, *model.ErrContext) {
	return c.do(ctx, http.MethodPost, url, body)
}

// Get performs a GET request against url and returns the raw response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, *model.ErrContext) {
	return c.do(ctx, http.MethodGet, url, nil)
}

// PostJSONValue marshals input, posts it to url, and unmarshals the
// response body into output.
func (c *Client) PostJSONValue(ctx context.Context, url string, input, output any) *model.ErrContext {
	data, err := json.Marshal(input)
	if err != nil {
		return model.NewErrContext("encoding/json", runtime.Version(), err)
	}
	respBody, errCtx := c.PostJSON(ctx, url, data)
	if errCtx != nil {
		return errCtx
	}
	if output == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, output); err != nil {
		return model.NewErrContext("encoding/json", runtime.Version(), err)
	}
	return nil
}
