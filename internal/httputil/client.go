// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the JSON GET helper and request pacing shared
// by the upstream API clients.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"

	"github.com/pdiddy/scholar-metrics/internal/observability"
	"github.com/pdiddy/scholar-metrics/pkg/types"
)

// Client issues GET requests and decodes JSON responses. It never retries:
// a non-2xx status or transport failure is returned as *types.UpstreamError
// and the caller decides how to degrade.
type Client struct {
	HTTP      *http.Client
	UserAgent string

	// Limiter, when set, caps the request rate across all upstreams.
	Limiter *rate.Limiter

	// Metrics may be nil.
	Metrics *observability.Metrics
}

// NewClient builds a Client from cfg. The per-request timeout is fixed by
// cfg.Timeout; MaxRPS > 0 installs a limiter with burst 1.
func NewClient(cfg types.HTTPConfig, metrics *observability.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	c := &Client{
		HTTP:      &http.Client{Timeout: timeout},
		UserAgent: cfg.UserAgent,
		Metrics:   metrics,
	}
	if cfg.MaxRPS > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.MaxRPS), 1)
	}
	return c
}

// GetJSON requests base with params and decodes the JSON body into out.
// upstream names the API for errors and metrics.
func (c *Client) GetJSON(ctx context.Context, upstream, base string, params url.Values, out any) error {
	reqURL := base
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", upstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.Metrics.RecordRequest(upstream, "transport_error", time.Since(start).Seconds())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &types.UpstreamError{Upstream: upstream, URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		c.Metrics.RecordRequest(upstream, "http_error", time.Since(start).Seconds())
		return &types.UpstreamError{Upstream: upstream, URL: reqURL, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.Metrics.RecordRequest(upstream, "decode_error", time.Since(start).Seconds())
		return &types.UpstreamError{
			Upstream: upstream,
			URL:      reqURL,
			Err:      fmt.Errorf("parsing response: %w", err),
		}
	}
	c.Metrics.RecordRequest(upstream, "ok", time.Since(start).Seconds())
	return nil
}
