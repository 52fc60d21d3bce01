//go:build e2e

package e2e

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyApprovedTitle(t *testing.T) {
	h := newHarness(t)

	verdict, err := h.Client.Verify(t.Context(), "The Daily Chronicle", "दैनिक क्रॉनिकल")
	require.NoError(t, err)

	assert.True(t, verdict.Approved)
	assert.Equal(t, "Likely Acceptable", verdict.ConfidenceBucket)
	assert.Equal(t, "v1.4.0 (PRGI Guidelines)", verdict.RulesetVersion)
	assert.Equal(t, "The Daily Chronicle", verdict.Title)
}

func TestVerifyRejectedTitle(t *testing.T) {
	h := newHarness(t)

	verdict, err := h.Client.Verify(t.Context(), "The Times of India", "")
	require.NoError(t, err)

	assert.False(t, verdict.Approved)
	assert.Equal(t, "too similar to an existing title", verdict.Reason)
}

func TestVerifyEmptyTitle(t *testing.T) {
	h := newHarness(t)

	_, err := h.Client.Verify(t.Context(), "   ", "")
	assertAPIError(t, err, "EMPTY_TITLE")
}

func TestVerifyEngineDown(t *testing.T) {
	engine := newEngine(t)
	provider := newProvider()
	h := startGateway(t, engine, provider)

	// Engine goes away after wiring.
	engine.Close()

	_, err := h.Client.Verify(t.Context(), "The Daily Chronicle", "")
	assertAPIError(t, err, "ENGINE_UNREACHABLE")
}

func TestVerifyRecordedInHistory(t *testing.T) {
	h := newHarness(t)

	_, err := h.Client.Verify(t.Context(), "The Daily Chronicle", "")
	require.NoError(t, err)
	_, err = h.Client.Verify(t.Context(), "The Times of India", "")
	require.NoError(t, err)

	history, err := h.Client.GetHistory(t.Context(), 10)
	require.NoError(t, err)

	require.Len(t, history.Verdicts, 2)
	assert.Empty(t, history.Attestations)
}
