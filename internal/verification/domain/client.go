package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/prgi-labs/titlechain/internal/validation"
)

// ErrServerUnreachable wraps transport-level failures talking to the engine.
var ErrServerUnreachable = errors.New("verification server unreachable")

// ServerError is a structured rejection from the verification engine
// (a non-2xx response, with the server's detail message when present).
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("verification failed (status %d)", e.StatusCode)
}

// Client calls the remote scoring engine. Every Verify is an independent
// round trip: the remote registry may change between calls, so results are
// never cached and resubmissions are never deduplicated.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// NewClient creates a verification client for the given engine base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Verify submits a title pair and returns the engine's verdict. A blank
// english title fails before any network call. Failures are terminal; retry
// is a user-initiated resubmission.
func (c *Client) Verify(ctx context.Context, pair TitlePair) (*Verdict, error) {
	if err := validation.ValidateTitle(pair.EnglishTitle); err != nil {
		return nil, err
	}

	payload := TitlePair{
		EnglishTitle:  strings.TrimSpace(pair.EnglishTitle),
		RegionalTitle: strings.TrimSpace(pair.RegionalTitle),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeServerError(resp)
	}

	var verdict Verdict
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		return nil, fmt.Errorf("decoding verdict: %w", err)
	}
	verdict.Title = payload.EnglishTitle

	c.logger.Info("title verified",
		"approved", verdict.Approved,
		"probability", verdict.Probability,
		"bucket", verdict.ConfidenceBucket,
		"duration", time.Since(start).String(),
	)

	return &verdict, nil
}

func decodeServerError(resp *http.Response) error {
	serverErr := &ServerError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return serverErr
	}
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil {
		serverErr.Detail = detail.Detail
	}
	return serverErr
}

// RulesetOutdated reports whether the verdict's ruleset lineage is older than
// the configured minimum. Engine versions look like "v1.4.0 (PRGI
// Guidelines)"; only the leading semver token is compared. Unparseable
// versions are treated as current rather than stale.
func RulesetOutdated(v *Verdict, minVersion string) bool {
	if minVersion == "" || v.RulesetVersion == "" {
		return false
	}
	got := canonicalSemver(v.RulesetVersion)
	want := canonicalSemver(minVersion)
	if got == "" || want == "" {
		return false
	}
	return semver.Compare(got, want) < 0
}

func canonicalSemver(version string) string {
	token, _, _ := strings.Cut(strings.TrimSpace(version), " ")
	if !strings.HasPrefix(token, "v") {
		token = "v" + token
	}
	if !semver.IsValid(token) {
		return ""
	}
	return token
}
