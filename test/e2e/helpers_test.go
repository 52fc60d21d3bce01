//go:build e2e

package e2e

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	attestation "github.com/prgi-labs/titlechain/internal/attestation/domain"
	"github.com/prgi-labs/titlechain/internal/chains"
	"github.com/prgi-labs/titlechain/internal/config"
	lookup "github.com/prgi-labs/titlechain/internal/lookup/domain"
	"github.com/prgi-labs/titlechain/internal/orchestrator"
	"github.com/prgi-labs/titlechain/internal/registry"
	"github.com/prgi-labs/titlechain/internal/server"
	"github.com/prgi-labs/titlechain/internal/storage"
	verification "github.com/prgi-labs/titlechain/internal/verification/domain"
	"github.com/prgi-labs/titlechain/internal/wallet"
	"github.com/prgi-labs/titlechain/internal/wallet/wallettest"
	"github.com/prgi-labs/titlechain/pkg/client"
)

const (
	testAddress     = "0x1111111111111111111111111111111111111111"
	testTxHash      = "0x" + "22222222222222222222222222222222" + "22222222222222222222222222222222"
	sepoliaChainID  = "0xaa36a7"
	registeredWord  = "0x0000000000000000000000000000000000000000000000000000000000000001"
	unregisteredWrd = "0x0000000000000000000000000000000000000000000000000000000000000000"
)

// Harness is the in-process gateway with its fakes.
type Harness struct {
	Gateway  *httptest.Server
	Engine   *httptest.Server
	Provider *wallettest.FakeProvider
	Session  *wallet.Session
	Client   *client.Client
}

// approveTitles lists titles the fake engine approves; everything else is
// rejected as too similar.
var approveTitles = map[string]bool{
	"the daily chronicle": true,
	"gwalior sandesh":     true,
}

// newEngine builds a fake verification engine matching the real wire format.
func newEngine(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/verify" {
			http.NotFound(w, r)
			return
		}

		var req struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Title) == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"detail": "title must not be empty"})
			return
		}

		canonical := strings.ToLower(strings.TrimSpace(req.Title))
		verdict := map[string]any{
			"approved":               approveTitles[canonical],
			"probability":            92.3,
			"confidence_bucket":      "Likely Acceptable",
			"reason":                 "",
			"stages":                 map[string]string{"A": "pass", "B": "pass", "C": "pass"},
			"s_max":                  0.31,
			"top_k_matches":          []any{},
			"model_version":          "paraphrase-multilingual-MiniLM-L12-v2",
			"ruleset_version":        "v1.4.0 (PRGI Guidelines)",
			"inference_time_seconds": 0.05,
		}
		if !approveTitles[canonical] {
			verdict["approved"] = false
			verdict["probability"] = 12.5
			verdict["confidence_bucket"] = "Unlikely"
			verdict["reason"] = "too similar to an existing title"
		}
		json.NewEncoder(w).Encode(verdict)
	}))
}

// newProvider builds a wallet provider with a connected, correctly networked
// account whose transactions confirm immediately.
func newProvider() *wallettest.FakeProvider {
	p := wallettest.New()
	p.Respond("eth_requestAccounts", []string{testAddress})
	p.Respond("eth_accounts", []string{testAddress})
	p.Respond("eth_chainId", sepoliaChainID)
	p.Respond("eth_sendTransaction", testTxHash)
	p.Respond("eth_getTransactionReceipt", map[string]string{"status": "0x1"})
	p.Respond("eth_call", unregisteredWrd)
	return p
}

// startGateway wires the full gateway in-process around the fakes.
func startGateway(t *testing.T, engine *httptest.Server, provider *wallettest.FakeProvider) *Harness {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{
		Verifier: config.VerifierConfig{BaseURL: engine.URL, TimeoutSeconds: 5},
		Registry: config.RegistryConfig{
			ContractAddress: config.DefaultContractAddress,
			ChainID:         sepoliaChainID,
		},
		Logging:   config.LoggingConfig{Level: "error", Format: "text"},
		RateLimit: config.RateLimitConfig{Enabled: false},
	}

	contract, err := registry.NewContract(cfg.Registry.ContractAddress, 10*time.Millisecond, 2*time.Second)
	require.NoError(t, err)

	journal, err := storage.NewJournal(logger)
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })

	session := wallet.NewSession(provider, logger)
	t.Cleanup(func() { session.Close() })

	catalog := chains.DefaultCatalog()
	verifier := verification.NewClient(cfg.Verifier.BaseURL, 5*time.Second, logger)
	attester := attestation.NewService(contract, catalog, cfg.Registry.ChainID, logger)
	lookups := lookup.NewService(contract, session, nil, logger)

	orch := orchestrator.New(verifier, attester, lookups, session, journal, logger)
	gateway := httptest.NewServer(server.New(cfg, orch, logger).Handler())
	t.Cleanup(gateway.Close)

	return &Harness{
		Gateway:  gateway,
		Engine:   engine,
		Provider: provider,
		Session:  session,
		Client:   client.New(gateway.URL),
	}
}

// newHarness builds the default harness: fake engine, connected wallet.
func newHarness(t *testing.T) *Harness {
	t.Helper()
	engine := newEngine(t)
	t.Cleanup(engine.Close)

	provider := newProvider()
	h := startGateway(t, engine, provider)

	require.NoError(t, h.Session.Connect(t.Context()))
	return h
}

// assertAPIError asserts that an error is an APIError with the expected code.
func assertAPIError(t *testing.T, err error, expectedCode string) {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*client.APIError)
	require.True(t, ok, "error should be an APIError, got %T: %v", err, err)
	require.Equal(t, expectedCode, apiErr.Code)
}
