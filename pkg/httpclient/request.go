package httpclient

import (
	"context"
	"crypto/sha1" //nolint:gosec // used as a cache key, not for security
	"encoding/hex"
	"net/http"
	"net/url"
	"slices"

	"github.com/pkg/errors"
)

const (
	userAgentKeyHeader     = "User-Agent"
	acceptKeyHeader        = "Accept"
	authorizationKeyHeader = "Authorization"
	contentTypeJSON        = "application/json"
)

// authHeaders are the headers that change the identity of a response.
var authHeaders = []string{authorizationKeyHeader, "X-Api-Key"}

type BasicAuth struct {
	User     string
	Password string
}

// Request describes a single GET against a provider API.
type Request struct {
	URL       string
	Params    url.Values
	Headers   map[string]string
	BasicAuth *BasicAuth
}

// cacheKey identifies a request by url, normalized params and auth-relevant headers.
func (r Request) cacheKey() string {
	h := sha1.New() //nolint:gosec // see import

	h.Write([]byte(r.URL))
	h.Write([]byte{0})
	h.Write([]byte(normalizeParams(r.Params).Encode()))

	headers := canonicalHeaders(r.Headers)
	for _, name := range authHeaders {
		h.Write([]byte{0})
		h.Write([]byte(name + "=" + headers[name]))
	}

	if r.BasicAuth != nil {
		h.Write([]byte{0})
		h.Write([]byte(r.BasicAuth.User + ":" + r.BasicAuth.Password))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func (r Request) newHTTPRequest(ctx context.Context, userAgent string) (*http.Request, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse request URL %q", r.URL)
	}

	if len(r.Params) > 0 {
		query := u.Query()
		for key, values := range r.Params {
			for _, v := range values {
				query.Add(key, v)
			}
		}

		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create request for %s", r.URL)
	}

	req.Header.Set(userAgentKeyHeader, userAgent)
	req.Header.Set(acceptKeyHeader, contentTypeJSON)

	for name, value := range r.Headers {
		req.Header.Set(name, value)
	}

	if r.BasicAuth != nil {
		req.SetBasicAuth(r.BasicAuth.User, r.BasicAuth.Password)
	}

	return req, nil
}

// normalizeParams returns a copy of params with every value list sorted.
// url.Values.Encode already sorts by key.
func normalizeParams(params url.Values) url.Values {
	normalized := make(url.Values, len(params))

	for key, values := range params {
		sorted := slices.Clone(values)
		slices.Sort(sorted)
		normalized[key] = sorted
	}

	return normalized
}

func canonicalHeaders(headers map[string]string) map[string]string {
	canonical := make(map[string]string, len(headers))
	for name, value := range headers {
		canonical[http.CanonicalHeaderKey(name)] = value
	}

	return canonical
}
