// Package geolocate discovers the probe's public IP address and the
// public IP address of the resolver it is using, without depending on
// any third-party geolocation service beyond the ones named below.
package geolocate

import (
	"context"
	"errors"
	"net"
	"runtime"
	"strings"

	"github.com/measurement-kit/go-libnettest2/internal/httpx"
	"github.com/measurement-kit/go-libnettest2/internal/model"
)

// ProbeIPLookupURL is queried to discover the probe's public IP.
const ProbeIPLookupURL = "https://geoip.ubuntu.com/lookup"

// ResolverLookupHost is resolved to discover the resolver's public IP.
const ResolverLookupHost = "whoami.akamai.net"

// resolverLookupBytesEstimate is the upper-bound byte estimate credited
// each way for a single UDP DNS exchange.
const resolverLookupBytesEstimate = 512

// LookupProbeIP performs the GET-and-extract dance described for
// lookup_ip against ProbeIPLookupURL. There is no IP syntax validation
// at this layer by design.
func LookupProbeIP(ctx context.Context, client *httpx.Client) (string, *model.ErrContext) {
	return lookupProbeIPFromURL(ctx, client, ProbeIPLookupURL)
}

// lookupProbeIPFromURL fetches url and pulls the text between <Ip> and
// </Ip> out of the response body. Factored out of LookupProbeIP so
// tests can point it at a local server instead of the real service.
func lookupProbeIPFromURL(ctx context.Context, client *httpx.Client, url string) (string, *model.ErrContext) {
	body, errCtx := client.Get(ctx, url)
	if errCtx != nil {
		return "", errCtx
	}
	ip, err := xmlExtract(string(body), "Ip")
	if err != nil {
		return "", model.NewErrContext("geolocate", runtime.Version(), err)
	}
	return ip, nil
}

// xmlExtract pulls the text between <tag> and </tag> out of body,
// trimming whitespace and lowercasing the result.
func xmlExtract(body, tag string) (string, error) {
	open := "<" + tag + ">"
	close := "</" + tag + ">"
	start := strings.Index(body, open)
	if start < 0 {
		return "", errNoSuchTag(tag)
	}
	start += len(open)
	end := strings.Index(body[start:], close)
	if end < 0 {
		return "", errNoSuchTag(tag)
	}
	value := body[start : start+end]
	return strings.ToLower(strings.TrimSpace(value)), nil
}

type errNoSuchTag string

func (e errNoSuchTag) Error() string { return "geolocate: no <" + string(e) + "> tag in response body" }

// LookupResolverIP resolves ResolverLookupHost over IPv4 and returns
// the first address obtained, crediting bytesInfo with the upper-bound
// estimate of one UDP DNS exchange in both directions. It fails if no
// address is obtained.
func LookupResolverIP(ctx context.Context, bytesInfo *model.BytesInfo) (string, *model.ErrContext) {
	bytesInfo.CountBytesSent(resolverLookupBytesEstimate)
	bytesInfo.CountBytesReceived(resolverLookupBytesEstimate)

	addrs, err := net.DefaultResolver.LookupIP(ctx, "ip4", ResolverLookupHost)
	if err != nil {
		return "", model.NewErrContext("net", runtime.Version(), err)
	}
	if len(addrs) == 0 {
		return "", model.NewErrContext("net", runtime.Version(), errNoAddressObtained)
	}
	return addrs[0].String(), nil
}

var errNoAddressObtained = errors.New("geolocate: no address obtained for " + ResolverLookupHost)
