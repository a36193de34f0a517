package identitytoolkit

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/yndnr/isoauth-go/internal/core/domain"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// Transport posts a JSON body and returns the raw 2xx response body.
//
// Implementations classify failures as domain.ErrTransport or
// domain.ErrBackendRejected and never retry.
type Transport interface {
	Post(ctx context.Context, url string, body any) (json.RawMessage, error)
}

// HTTPTransport is the net/http Transport.
type HTTPTransport struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTPTransport creates a transport from cfg. A zero RateLimit
// disables client-side limiting.
func NewHTTPTransport(cfg TransportConfig) *HTTPTransport {
	t := &HTTPTransport{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if t.userAgent == "" {
		t.userAgent = DefaultTransportConfig().UserAgent
	}
	return t
}

// WithHTTPClient replaces the underlying client, e.g. an httptest client.
func (t *HTTPTransport) WithHTTPClient(c *http.Client) *HTTPTransport {
	t.client = c
	return t
}

// WithRootCAs trusts roots instead of the system pool when dialing TLS.
func (t *HTTPTransport) WithRootCAs(roots *x509.CertPool) *HTTPTransport {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.TLSClientConfig = &tls.Config{
		RootCAs:    roots,
		MinVersion: tls.VersionTLS12,
	}
	t.client = &http.Client{Timeout: t.client.Timeout, Transport: base}
	return t
}

// Post implements Transport.
func (t *HTTPTransport) Post(ctx context.Context, url string, body any) (json.RawMessage, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, domain.ErrTransport.WithDetails("rate limit wait").WithCause(err)
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.ErrTransport.WithDetails("marshal request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, domain.ErrTransport.WithDetails("create request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, domain.ErrTransport.WithCause(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.ErrTransport.WithDetails("read response").WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, data)
	}
	if !json.Valid(data) {
		return nil, domain.ErrTransport.WithDetails(fmt.Sprintf("undecodable response (status %d)", resp.StatusCode))
	}
	return json.RawMessage(data), nil
}

// errorPayload is the Google API error envelope.
type errorPayload struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

// decodeError maps a non-2xx response. A response with an error message
// is a rejection; anything else is a transport failure.
func decodeError(status int, data []byte) error {
	var p errorPayload
	if err := json.Unmarshal(data, &p); err == nil && p.Error.Message != "" {
		return domain.ErrBackendRejected.WithDetails(p.Error.Message)
	}
	return domain.ErrTransport.WithDetails(fmt.Sprintf("unexpected status %d", status))
}
