package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/osu-server/bancho-gateway/internal/gatewayerr"
)

// ErrUnavailable is returned by every client method when the backend
// responds outside 2xx, or returns a body that cannot be decoded as JSON.
// Per §4.2 the gateway never propagates a raw transport error across the
// handler boundary — callers check for this sentinel with errors.Is. It
// wraps gatewayerr.ErrServiceUnavailable, the §4.13 taxonomy's class for
// exactly this failure.
var ErrUnavailable = fmt.Errorf("backend: service unavailable: %w", gatewayerr.ErrServiceUnavailable)

// NewHTTPClient returns the shared, thread-safe *http.Client every service
// client is built from. Its transport is wrapped with otelhttp so every
// outbound call carries a client span, giving the partial-failure-tolerant
// design something observable without changing any behavior. The
// correlation id is not a span attribute; it travels as the X-Request-ID
// header that requestJSON sets.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// doer is the minimal interface service clients depend on, so tests can
// substitute a fake without standing up a real *http.Client.
type doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// caller bundles the shared HTTP client, a backend base URL, and the
// logger used to report service errors with their correlation id.
type caller struct {
	http    doer
	baseURL string
	log     *slog.Logger
}

func newCaller(c doer, baseURL string, log *slog.Logger) caller {
	return caller{http: c, baseURL: baseURL, log: log}
}

// requestJSON issues method against path+query with an optional JSON body,
// and decodes a 2xx JSON response into out (which may be nil for
// fire-and-forget calls like DELETE). Any non-2xx status, transport error,
// or malformed body collapses to ErrUnavailable, logged with requestID.
func (c caller) requestJSON(ctx context.Context, requestID, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			c.log.Error("backend request marshal failed", "request_id", requestID, "path", path, "err", err)
			return ErrUnavailable
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		c.log.Error("backend request build failed", "request_id", requestID, "path", path, "err", err)
		return ErrUnavailable
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("backend request failed", "request_id", requestID, "method", method, "path", path, "err", err)
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("backend returned non-2xx", "request_id", requestID, "method", method, "path", path, "status", resp.StatusCode)
		return ErrUnavailable
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Warn("backend response decode failed", "request_id", requestID, "method", method, "path", path, "err", err)
		return ErrUnavailable
	}
	return nil
}

// query builds a url.Values set, omitting any key whose value equals its
// "no filter" sentinel. This implements §4.2's "omit, don't serialize
// empty" rule for optional query parameters.
func query(pairs ...queryPair) url.Values {
	v := url.Values{}
	for _, p := range pairs {
		if p.omit {
			continue
		}
		v.Set(p.key, p.value)
	}
	return v
}

type queryPair struct {
	key, value string
	omit       bool
}

func strParam(key, value string) queryPair {
	return queryPair{key: key, value: value, omit: value == ""}
}

func intParam(key string, value int64, noFilter int64) queryPair {
	return queryPair{key: key, value: fmt.Sprintf("%d", value), omit: value == noFilter}
}
