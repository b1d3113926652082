// Package transport issues unary and streaming HTTP calls against the remote
// agent service. Every outbound call flows through the expired-credential
// retry wrapper: one specific failure signature (HTTP 401 with a "token has
// expired" detail, thrown or embedded in a success-shaped body) triggers a
// single refresh-and-replay; everything else surfaces unchanged.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/hupe1980/agentbridge/auth"
	"github.com/hupe1980/agentbridge/logging"
)

// Options holds dependency and configuration overrides passed to New().
type Options struct {
	// HTTPClient overrides the default client. The default carries no
	// timeout; streaming responses are governed by the request context.
	HTTPClient *http.Client
	// Tokens supplies bearer credentials. Nil means unauthenticated calls.
	Tokens auth.TokenSource
	// Limiter throttles outbound requests. Defaults to unlimited.
	Limiter *rate.Limiter
	// Logger receives transport diagnostics.
	Logger logging.Logger
	// Headers are attached to every request.
	Headers map[string]string
}

// Caller is the shared HTTP front door for the run engine and the resource
// managers. Safe for concurrent use.
type Caller struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
	limiter *rate.Limiter
	logger  logging.Logger
	headers map[string]string
}

// New constructs a Caller for the service at baseURL with optional overrides.
func New(baseURL string, optFns ...func(o *Options)) *Caller {
	opts := Options{
		HTTPClient: &http.Client{},
		Limiter:    rate.NewLimiter(rate.Inf, 0),
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Caller{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTPClient,
		tokens:  opts.Tokens,
		limiter: opts.Limiter,
		logger:  opts.Logger,
		headers: opts.Headers,
	}
}

// Unary issues a request, decodes a JSON response into out (when non-nil) and
// maps non-2xx statuses to *APIError. Expired-credential failures are retried
// once after a refresh.
func (c *Caller) Unary(ctx context.Context, method, path string, body, out any) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}
	status, respBody, err := c.roundTrip(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return newAPIError(status, respBody)
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("transport: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// do performs one request attempt, reading the full response body. The bearer
// credential is resolved per attempt so a replay after refresh rebuilds the
// Authorization header.
func (c *Caller) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("transport: read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *Caller) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("transport: resolve credential: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("request completed", "method", method, "path", path, "status", resp.StatusCode)
	return resp, nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("transport: encode request body: %w", err)
	}
	return payload, nil
}
