// Package api dispatches authenticated HTTP requests to the claims backend.
// It attaches the stored bearer credential, classifies failures into typed
// errors, and tears the session down when the backend reports the
// credential invalid.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/claimhub/claimctl/internal/credstore"
	"github.com/claimhub/claimctl/internal/model"
)

// Client wraps outbound calls to the claims backend
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      credstore.Store
	limiter    *rate.Limiter
	maxBytes   int64
	timeout    time.Duration

	mu            sync.Mutex
	onInvalidated func()
}

// NewClient creates a dispatcher for the backend at cfg.BaseURL.
// The credential is read from creds fresh on every send.
func NewClient(cfg model.APIConfig, creds credstore.Store) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes == 0 {
		maxBytes = 2_000_000
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy: newProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
		},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		creds:    creds,
		limiter:  limiter,
		maxBytes: maxBytes,
		timeout:  timeout,
	}
}

// OnSessionInvalidated registers the hook invoked after the backend
// rejects an attached credential. The dispatcher erases the credential
// itself; the hook owns everything else (state teardown, navigation).
func (c *Client) OnSessionInvalidated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInvalidated = fn
}

func (c *Client) notifyInvalidated() {
	c.mu.Lock()
	fn := c.onInvalidated
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type requestOptions struct {
	timeout     time.Duration
	contentType string
}

// RequestOption customizes a single request
type RequestOption func(*requestOptions)

// WithTimeout overrides the default request timeout. The upload path
// needs a materially longer deadline than ordinary reads.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// WithContentType sets the request Content-Type header
func WithContentType(ct string) RequestOption {
	return func(o *requestOptions) { o.contentType = ct }
}

// Do sends one request and returns the raw response payload unmodified.
// Failures are classified into *AuthError, *NetworkError or *ServerError;
// nothing is silently swallowed.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, opts ...RequestOption) ([]byte, error) {
	o := requestOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Err: err, Timeout: errors.Is(err, context.DeadlineExceeded)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	switch {
	case o.contentType != "":
		req.Header.Set("Content-Type", o.contentType)
	case body != nil:
		req.Header.Set("Content-Type", "application/json")
	}

	// Read the credential at send time, never cached in the client, so a
	// logout immediately stops future requests from being authenticated.
	token, hadToken := c.creds.Get()
	if hadToken {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Teardown completes before the error reaches the caller. A 401
		// without an attached credential is a plain rejection (e.g. bad
		// login), not an expired session.
		_ = c.creds.Clear()
		if hadToken {
			c.notifyInvalidated()
		}
		return nil, &AuthError{Message: messageFrom(payload), SessionExpired: hadToken}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServerError{Status: resp.StatusCode, Message: messageFrom(payload)}
	}

	return payload, nil
}

// DoJSON sends in as a JSON body (when non-nil) and decodes the response
// into out (when non-nil)
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any, opts ...RequestOption) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	payload, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &ServerError{Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

// UnwrapData strips the {"data": ...} envelope some endpoints wrap
// around their payload. Payloads without the envelope pass through.
func UnwrapData(payload []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err == nil &&
		len(envelope.Data) > 0 && !bytes.Equal(envelope.Data, []byte("null")) {
		return envelope.Data
	}
	return payload
}

func classifyTransportError(err error) error {
	var netErr net.Error
	timeout := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout())
	return &NetworkError{Err: err, Timeout: timeout}
}

// messageFrom extracts the backend's {"message": ...} field, if present
func messageFrom(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Message
}
