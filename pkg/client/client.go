// Package client provides a Go client for the titlechain gateway API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client is a titlechain gateway API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithAPIKey sets the gateway access token sent on every request. Only
// needed when the gateway has GATEWAY_API_KEY set.
func WithAPIKey(key string) Option {
	return func(client *Client) {
		client.apiKey = key
	}
}

// New creates a new titlechain gateway client. The default timeout is
// generous because a registration call blocks until the transaction settles.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Verdict is the engine's structured outcome for one title.
type Verdict struct {
	Approved         bool     `json:"approved"`
	Probability      float64  `json:"probability"`
	ConfidenceBucket string   `json:"confidence_bucket"`
	Reason           string   `json:"reason"`
	SMax             float64  `json:"s_max"`
	TopMatches       []Match  `json:"top_k_matches"`
	Tags             []string `json:"tags,omitempty"`
	Suggestions      []string `json:"suggestions,omitempty"`
	ModelVersion     string   `json:"model_version,omitempty"`
	RulesetVersion   string   `json:"ruleset_version,omitempty"`
	Title            string   `json:"title,omitempty"`
}

// Match is one close existing title.
type Match struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
	Stage string  `json:"stage"`
}

// Attestation is one on-chain registration attempt.
type Attestation struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TitleHash   string `json:"titleHash"`
	TxHash      string `json:"txHash,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// LookupResult is the outcome of a public hash query.
type LookupResult struct {
	QueriedHash  string `json:"queriedHash"`
	IsRegistered bool   `json:"isRegistered"`
}

// HistoryEntry is one journaled verdict.
type HistoryEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Regional    string   `json:"regionalTitle,omitempty"`
	Approved    bool     `json:"approved"`
	Probability float64  `json:"probability"`
	Verdict     *Verdict `json:"verdict"`
	CreatedAt   string   `json:"createdAt"`
}

// History is the gateway's session journal.
type History struct {
	Verdicts     []HistoryEntry `json:"verdicts"`
	Attestations []Attestation  `json:"attestations"`
}

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Verify submits a title pair for verification.
func (c *Client) Verify(ctx context.Context, title, hindiTitle string) (*Verdict, error) {
	body := map[string]string{"title": title}
	if hindiTitle != "" {
		body["hindi_title"] = hindiTitle
	}

	var verdict Verdict
	if err := c.post(ctx, "/api/v1/verify", body, &verdict); err != nil {
		return nil, err
	}
	return &verdict, nil
}

// Register attests the gateway session's current approved verdict on chain
// and blocks until the transaction reaches a terminal state.
func (c *Client) Register(ctx context.Context) (*Attestation, error) {
	var rec Attestation
	if err := c.post(ctx, "/api/v1/attestations", nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Lookup checks whether a title hash is registered on chain.
func (c *Client) Lookup(ctx context.Context, hashText string) (*LookupResult, error) {
	var result LookupResult
	if err := c.get(ctx, "/api/v1/lookup/"+url.PathEscape(hashText), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetHistory fetches the gateway's session journal.
func (c *Client) GetHistory(ctx context.Context, limit int) (*History, error) {
	path := "/api/v1/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	var history History
	if err := c.get(ctx, path, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// Health reports whether the gateway is up.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.parseError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func (c *Client) parseError(resp *http.Response) error {
	var errResp struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error.Code == "" {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return &errResp.Error
}
