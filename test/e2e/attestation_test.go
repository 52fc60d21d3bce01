//go:build e2e

package e2e

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterApprovedTitle(t *testing.T) {
	h := newHarness(t)

	verdict, err := h.Client.Verify(t.Context(), "The Daily Chronicle", "")
	require.NoError(t, err)
	require.True(t, verdict.Approved)

	rec, err := h.Client.Register(t.Context())
	require.NoError(t, err)

	assert.Equal(t, "confirmed", rec.Status)
	assert.Equal(t, testTxHash, rec.TxHash)
	assert.Equal(t, "The Daily Chronicle", rec.Title)
	assert.NotEmpty(t, rec.TitleHash)
	assert.Contains(t, rec.ExplorerURL, rec.TxHash)

	// Exactly one transaction went out.
	assert.Equal(t, 1, h.Provider.CallCount("eth_sendTransaction"))
}

func TestRegisterWithoutVerdict(t *testing.T) {
	h := newHarness(t)

	_, err := h.Client.Register(t.Context())
	assertAPIError(t, err, "NO_APPROVED_VERDICT")
}

func TestRegisterRejectedTitle(t *testing.T) {
	h := newHarness(t)

	verdict, err := h.Client.Verify(t.Context(), "The Times of India", "")
	require.NoError(t, err)
	require.False(t, verdict.Approved)

	_, err = h.Client.Register(t.Context())
	assertAPIError(t, err, "NO_APPROVED_VERDICT")
	assert.Zero(t, h.Provider.CallCount("eth_sendTransaction"))
}

func TestRegisterWithoutWallet(t *testing.T) {
	engine := newEngine(t)
	h := startGateway(t, engine, newProvider())
	// Session never connects.

	_, err := h.Client.Verify(t.Context(), "The Daily Chronicle", "")
	require.NoError(t, err)

	_, err = h.Client.Register(t.Context())
	assertAPIError(t, err, "WALLET_REQUIRED")
}

func TestRegisterOnWrongNetwork(t *testing.T) {
	engine := newEngine(t)
	provider := newProvider()
	h := startGateway(t, engine, provider)
	require.NoError(t, h.Session.Connect(t.Context()))

	// Wallet drifts to mainnet after connecting.
	provider.Respond("eth_chainId", "0x1")

	_, err := h.Client.Verify(t.Context(), "The Daily Chronicle", "")
	require.NoError(t, err)

	_, err = h.Client.Register(t.Context())
	assertAPIError(t, err, "WRONG_NETWORK")
	assert.Zero(t, h.Provider.CallCount("eth_sendTransaction"))
}

func TestRegisterUserDeclinesSigning(t *testing.T) {
	engine := newEngine(t)
	provider := newProvider()
	provider.Fail("eth_sendTransaction", errors.New("user rejected the request"))
	h := startGateway(t, engine, provider)
	require.NoError(t, h.Session.Connect(t.Context()))

	_, err := h.Client.Verify(t.Context(), "The Daily Chronicle", "")
	require.NoError(t, err)

	_, err = h.Client.Register(t.Context())
	require.Error(t, err)

	// The failed attempt is journaled.
	history, err := h.Client.GetHistory(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, history.Attestations, 1)
	assert.Equal(t, "failed", history.Attestations[0].Status)
}

func TestRegisterLifecycleInHistory(t *testing.T) {
	h := newHarness(t)

	_, err := h.Client.Verify(t.Context(), "The Daily Chronicle", "")
	require.NoError(t, err)
	_, err = h.Client.Register(t.Context())
	require.NoError(t, err)

	history, err := h.Client.GetHistory(t.Context(), 10)
	require.NoError(t, err)

	// One record, upserted through pending to confirmed.
	require.Len(t, history.Attestations, 1)
	assert.Equal(t, "confirmed", history.Attestations[0].Status)
}

func TestNewVerificationResetsAttestation(t *testing.T) {
	h := newHarness(t)

	_, err := h.Client.Verify(t.Context(), "The Daily Chronicle", "")
	require.NoError(t, err)
	_, err = h.Client.Register(t.Context())
	require.NoError(t, err)

	// A fresh verification starts a new session; registering again must
	// re-verify first, not reuse the confirmed verdict.
	_, err = h.Client.Verify(t.Context(), "The Times of India", "")
	require.NoError(t, err)

	_, err = h.Client.Register(t.Context())
	assertAPIError(t, err, "NO_APPROVED_VERDICT")
}
