// Package upstream talks to the external research and planning services.
// Response bodies are returned as raw bytes so callers can relay them verbatim.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	Service string
	Path    string
	Code    int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s returned %d: %s", e.Service, e.Path, e.Code, e.Body)
}

// checkResp returns a *StatusError if the status is not 2xx. On error it
// includes the upstream body for debugging.
func checkResp(resp *http.Response, service, path string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &StatusError{Service: service, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// Client calls one upstream service over HTTP with a per-call timeout.
type Client struct {
	service    string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

func NewClient(service, baseURL string, timeout time.Duration) *Client {
	return &Client{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// PostJSON sends body as JSON to path and returns the raw response body.
func (c *Client) PostJSON(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: encode: %w", c.service, path, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload))
}

// Get fetches path with the given query and returns the raw response body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.service, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", c.service, path, err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp, c.service, path); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read: %w", c.service, path, err)
	}
	return data, nil
}

// ---------------------------------------------------------------------------
// Research API
// ---------------------------------------------------------------------------

// ResearchClient calls the research API (company lookup, historical financials).
type ResearchClient struct {
	*Client
}

func NewResearchClient(baseURL string, timeout time.Duration) *ResearchClient {
	return &ResearchClient{NewClient("research-api", baseURL, timeout)}
}

// Company calls GET /research/company.
func (c *ResearchClient) Company(ctx context.Context, company string) ([]byte, error) {
	return c.Get(ctx, "/research/company", url.Values{"company": {company}})
}

// Financials calls GET /historical/financials.
func (c *ResearchClient) Financials(ctx context.Context, company string, years int) ([]byte, error) {
	return c.Get(ctx, "/historical/financials", url.Values{
		"company": {company},
		"years":   {strconv.Itoa(years)},
	})
}

// ---------------------------------------------------------------------------
// Planning API
// ---------------------------------------------------------------------------

// PlanClient calls the planning API (account plans, research chat).
type PlanClient struct {
	*Client
}

func NewPlanClient(baseURL string, timeout time.Duration) *PlanClient {
	return &PlanClient{NewClient("plan-api", baseURL, timeout)}
}

// GeneratePlan calls POST /plan/generate. Research is forwarded untouched.
func (c *PlanClient) GeneratePlan(ctx context.Context, company string, research json.RawMessage) ([]byte, error) {
	return c.PostJSON(ctx, "/plan/generate", map[string]any{
		"company":  company,
		"research": research,
	})
}

// Chat calls POST /api/chat.
func (c *PlanClient) Chat(ctx context.Context, company string, research json.RawMessage, question string) ([]byte, error) {
	return c.PostJSON(ctx, "/api/chat", map[string]any{
		"company":  company,
		"research": research,
		"question": question,
	})
}
