package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attestation "github.com/prgi-labs/titlechain/internal/attestation/domain"
	"github.com/prgi-labs/titlechain/internal/config"
	lookup "github.com/prgi-labs/titlechain/internal/lookup/domain"
	"github.com/prgi-labs/titlechain/internal/orchestrator"
	verification "github.com/prgi-labs/titlechain/internal/verification/domain"
	"github.com/prgi-labs/titlechain/internal/wallet"
)

type fakeVerifier struct {
	verdict *verification.Verdict
	err     error
}

func (f *fakeVerifier) Verify(_ context.Context, pair verification.TitlePair) (*verification.Verdict, error) {
	if f.err != nil {
		return nil, f.err
	}
	v := *f.verdict
	v.Title = pair.EnglishTitle
	return &v, nil
}

type fakeAttester struct{}

func (fakeAttester) Submit(context.Context, *verification.Verdict, *wallet.Session) (*attestation.Record, error) {
	return nil, attestation.ErrWalletRequired
}

func (fakeAttester) Await(_ context.Context, _ *wallet.Session, rec *attestation.Record) *attestation.Record {
	return rec
}

type fakeLooker struct {
	result *lookup.Result
	err    error
}

func (f *fakeLooker) Lookup(_ context.Context, hashText string) (*lookup.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	res := *f.result
	res.QueriedHash = hashText
	return &res, nil
}

func testConfig() *config.Config {
	return &config.Config{
		RateLimit: config.RateLimitConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, verifier orchestrator.Verifier, looker orchestrator.Looker) *Server {
	t.Helper()
	if verifier == nil {
		verifier = &fakeVerifier{verdict: &verification.Verdict{Approved: true}}
	}
	if looker == nil {
		looker = &fakeLooker{result: &lookup.Result{IsRegistered: false}}
	}
	orch := orchestrator.New(verifier, fakeAttester{}, looker, wallet.NewSession(nil, nil), nil, nil)
	return New(cfg, orch, slog.New(slog.DiscardHandler))
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, testConfig(), nil, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServer_VerifyRoute(t *testing.T) {
	s := newTestServer(t, testConfig(), &fakeVerifier{verdict: &verification.Verdict{
		Approved:         true,
		Probability:      92.3,
		ConfidenceBucket: "Likely Acceptable",
	}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", strings.NewReader(`{"title": "The Daily Chronicle"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"approved":true`)
}

func TestServer_AttestationRouteRequiresWallet(t *testing.T) {
	s := newTestServer(t, testConfig(), &fakeVerifier{verdict: &verification.Verdict{Approved: true}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", strings.NewReader(`{"title": "The Daily Chronicle"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/attestations", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "WALLET_REQUIRED")
}

func TestServer_LookupRoute(t *testing.T) {
	s := newTestServer(t, testConfig(), nil, &fakeLooker{result: &lookup.Result{IsRegistered: true}})

	hash := "0x" + strings.Repeat("ab", 32)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup/"+hash, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isRegistered":true`)
}

func TestServer_HistoryWithoutJournal(t *testing.T) {
	s := newTestServer(t, testConfig(), nil, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "verdicts")
	assert.Contains(t, rec.Body.String(), "attestations")
}

func TestServer_APIKeyGatesMutatingRoutes(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKey = "tc_key_secret"
	s := newTestServer(t, cfg, nil, nil)

	// Verify without the token is rejected.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", strings.NewReader(`{"title": "The Daily Chronicle"}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")

	// With the token it goes through.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/verify", strings.NewReader(`{"title": "The Daily Chronicle"}`))
	req.Header.Set("X-API-Key", "tc_key_secret")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Read-only routes stay public.
	hash := "0x" + strings.Repeat("ab", 32)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lookup/"+hash, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RateLimitOnVerify(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, MaxRequests: 1, WindowSeconds: 10}
	s := newTestServer(t, cfg, nil, nil)

	body := `{"title": "The Daily Chronicle"}`
	first := httptest.NewRequest(http.MethodPost, "/api/v1/verify", strings.NewReader(body))
	first.RemoteAddr = "203.0.113.7:1000"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, first)
	require.Equal(t, http.StatusOK, rec.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/verify", strings.NewReader(body))
	second.RemoteAddr = "203.0.113.7:1001"
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, second)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Health stays reachable.
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
