package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const refreshCookieName = "refresh_token"

var (
	// ErrUnauthenticated marks an identity call rejected for a missing or
	// expired server-held credential. Expected for anonymous visitors.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// StatusError is returned for unexpected upstream status codes.
type StatusError struct {
	Service string
	Status  int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s service returned status %d", e.Service, e.Status)
}

// Options configures the shared HTTP plumbing of all remote clients.
type Options struct {
	Timeout    time.Duration
	EnableOTel bool
}

// NewHTTPClient builds the client shared across services. Tracing is wired
// at the transport so every upstream call carries the request span.
func NewHTTPClient(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	var rt http.RoundTripper = http.DefaultTransport
	if opts.EnableOTel {
		rt = otelhttp.NewTransport(rt)
	}
	return &http.Client{Timeout: timeout, Transport: rt}
}

type apiClient struct {
	service string
	base    *url.URL
	http    *http.Client
}

func newAPIClient(service, baseURL string, httpClient *http.Client) (*apiClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s base url: %w", service, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse %s base url: missing scheme or host", service)
	}
	return &apiClient{service: service, base: u, http: httpClient}, nil
}

func (c *apiClient) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	rel := &url.URL{Path: path}
	u := c.base.ResolveReference(rel)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", c.service, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.service, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes the request and decodes a JSON body into out when out is
// non-nil. A 404 is reported as notFound=true with no error so callers can
// translate "returns nothing" into absent records rather than failures.
func (c *apiClient) do(req *http.Request, out any) (notFound bool, err error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s request: %w", c.service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return true, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, fmt.Errorf("%s: %w", c.service, ErrUnauthenticated)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, &StatusError{Service: c.service, Status: resp.StatusCode}
	}
	if out == nil {
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s response: %w", c.service, err)
	}
	return false, nil
}

func refreshCookie(credential string) *http.Cookie {
	return &http.Cookie{Name: refreshCookieName, Value: credential, Path: "/", HttpOnly: true}
}
