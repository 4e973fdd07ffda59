// Package oracle provides pluggable repair-oracle clients. An oracle proposes
// corrections for quality issues the deterministic repair rules cannot
// resolve; its output is untrusted and re-validated by the caller before
// acceptance. An unreachable oracle degrades to "no repair applied".
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultTimeout = 15 * time.Second

// RepairRequest describes the issues and the offending records.
type RepairRequest struct {
	IssueDescriptions []string        `json:"issue_descriptions"`
	OffendingRecords  json.RawMessage `json:"offending_records"`
}

// RepairResponse carries field-level correction proposals. Keys are logical
// field names; values are the proposed raw values.
type RepairResponse struct {
	ProposedCorrections map[string]string `json:"proposed_corrections"`
}

// Client proposes repairs for quality issues.
type Client interface {
	ProposeRepairs(ctx context.Context, req RepairRequest) (*RepairResponse, error)
}

// Option configures the HTTP client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.timeout = d
	}
}

// WithRateLimit bounds requests per second toward the oracle endpoint.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type httpClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *rate.Limiter
	http    *http.Client
}

// NewHTTPClient creates an oracle client for a generic JSON repair endpoint:
// POST {baseURL}/repair with a RepairRequest body.
func NewHTTPClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: defaultTimeout,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) ProposeRepairs(ctx context.Context, req RepairRequest) (*RepairResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "oracle: rate limit wait")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "oracle: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/repair", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "oracle: build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "oracle: request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, eris.Errorf("oracle: unexpected status %d: %s", resp.StatusCode, string(data))
	}

	var out RepairResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, eris.Wrap(err, "oracle: decode response")
	}
	return &out, nil
}
