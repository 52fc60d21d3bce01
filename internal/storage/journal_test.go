package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attestation "github.com/prgi-labs/titlechain/internal/attestation/domain"
	verification "github.com/prgi-labs/titlechain/internal/verification/domain"
)

func newJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(nil)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_VerdictRoundTrip(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	verdict := &verification.Verdict{
		Approved:         true,
		Probability:      92.3,
		ConfidenceBucket: "Likely Acceptable",
		Title:            "The Daily Chronicle",
	}
	pair := verification.TitlePair{EnglishTitle: "The Daily Chronicle", RegionalTitle: "दैनिक"}
	require.NoError(t, j.RecordVerdict(ctx, pair, verdict))

	entries, err := j.Verdicts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, "The Daily Chronicle", got.Title)
	assert.Equal(t, "दैनिक", got.Regional)
	assert.True(t, got.Approved)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, "Likely Acceptable", got.Verdict.ConfidenceBucket)
}

func TestJournal_AttestationLifecycleUpsert(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	rec := &attestation.Record{
		ID:        "rec-1",
		Title:     "The Daily Chronicle",
		TitleHash: "0xhash",
		Status:    attestation.StatusPending,
		TxHash:    "0xtxhash",
		CreatedAt: "2026-02-26T00:00:00Z",
	}
	require.NoError(t, j.RecordAttestation(ctx, rec))

	// The same record moving to its terminal state replaces the snapshot.
	confirmed := *rec
	confirmed.Status = attestation.StatusConfirmed
	require.NoError(t, j.RecordAttestation(ctx, &confirmed))

	records, err := j.Attestations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, attestation.StatusConfirmed, records[0].Status)
	assert.Equal(t, "0xtxhash", records[0].TxHash)
}

func TestJournal_SeparateAttemptsKept(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	for _, id := range []string{"rec-1", "rec-2"} {
		require.NoError(t, j.RecordAttestation(ctx, &attestation.Record{
			ID:        id,
			Title:     "The Daily Chronicle",
			TitleHash: "0xhash",
			Status:    attestation.StatusFailed,
			CreatedAt: "2026-02-26T00:00:00Z",
		}))
	}

	records, err := j.Attestations(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestJournal_EmptyLists(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	verdicts, err := j.Verdicts(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, verdicts)

	records, err := j.Attestations(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
