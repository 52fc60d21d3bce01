// Package storage keeps the session journal: the verdicts and attestation
// records produced during this process lifetime, so the CLI and gateway can
// show what happened in the current session. The journal is an in-memory
// SQLite database; nothing survives the session, which is a deliberate
// property of the client, not a limitation.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	attestation "github.com/prgi-labs/titlechain/internal/attestation/domain"
	verification "github.com/prgi-labs/titlechain/internal/verification/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS verdicts (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	regional    TEXT NOT NULL DEFAULT '',
	approved    INTEGER NOT NULL,
	probability REAL NOT NULL,
	verdict     TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attestations (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	title_hash   TEXT NOT NULL,
	tx_hash      TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	reason       TEXT NOT NULL DEFAULT '',
	explorer_url TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);
`

// VerdictEntry is one journaled verification outcome.
type VerdictEntry struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Regional    string                `json:"regionalTitle,omitempty"`
	Approved    bool                  `json:"approved"`
	Probability float64               `json:"probability"`
	Verdict     *verification.Verdict `json:"verdict"`
	CreatedAt   string                `json:"createdAt"`
}

// Journal records session activity.
type Journal struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewJournal opens a fresh in-memory journal.
func NewJournal(logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening session journal: %w", err)
	}
	// A single connection keeps the in-memory database alive and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return &Journal{db: db, logger: logger}, nil
}

// Close releases the journal and discards its contents.
func (j *Journal) Close() error {
	return j.db.Close()
}

// RecordVerdict journals one verification outcome.
func (j *Journal) RecordVerdict(ctx context.Context, pair verification.TitlePair, v *verification.Verdict) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding verdict: %w", err)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO verdicts (id, title, regional, approved, probability, verdict, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), v.Title, pair.RegionalTitle, v.Approved, v.Probability,
		string(blob), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording verdict: %w", err)
	}
	return nil
}

// RecordAttestation journals an attestation record, replacing any earlier
// snapshot of the same record as it moves through its lifecycle.
func (j *Journal) RecordAttestation(ctx context.Context, rec *attestation.Record) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO attestations (id, title, title_hash, tx_hash, status, reason, explorer_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			tx_hash = excluded.tx_hash,
			status = excluded.status,
			reason = excluded.reason,
			explorer_url = excluded.explorer_url`,
		rec.ID, rec.Title, rec.TitleHash, rec.TxHash, string(rec.Status),
		rec.Reason, rec.ExplorerURL, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording attestation: %w", err)
	}
	return nil
}

// Verdicts lists journaled verdicts, newest first.
func (j *Journal) Verdicts(ctx context.Context, limit int) ([]VerdictEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, title, regional, approved, probability, verdict, created_at
		 FROM verdicts ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing verdicts: %w", err)
	}
	defer rows.Close()

	var entries []VerdictEntry
	for rows.Next() {
		var e VerdictEntry
		var blob string
		if err := rows.Scan(&e.ID, &e.Title, &e.Regional, &e.Approved, &e.Probability, &blob, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning verdict: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &e.Verdict); err != nil {
			j.logger.Warn("corrupt verdict blob in journal", "id", e.ID, "error", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Attestations lists journaled attestation records, newest first.
func (j *Journal) Attestations(ctx context.Context, limit int) ([]attestation.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, title, title_hash, tx_hash, status, reason, explorer_url, created_at
		 FROM attestations ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing attestations: %w", err)
	}
	defer rows.Close()

	var records []attestation.Record
	for rows.Next() {
		var r attestation.Record
		var status string
		if err := rows.Scan(&r.ID, &r.Title, &r.TitleHash, &r.TxHash, &status, &r.Reason, &r.ExplorerURL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning attestation: %w", err)
		}
		r.Status = attestation.Status(status)
		records = append(records, r)
	}
	return records, rows.Err()
}
