// Package orchestrator owns the user-facing workflow: one verification
// session at a time, the attestation flow hanging off an approved verdict,
// and the independent public lookup. It is the only holder of the current
// title pair, verdict, and attestation record.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	attestation "github.com/prgi-labs/titlechain/internal/attestation/domain"
	lookup "github.com/prgi-labs/titlechain/internal/lookup/domain"
	"github.com/prgi-labs/titlechain/internal/storage"
	verification "github.com/prgi-labs/titlechain/internal/verification/domain"
	"github.com/prgi-labs/titlechain/internal/wallet"
)

// VerificationState is the outer state machine of a verification session.
type VerificationState string

// Verification session states.
const (
	StateIdle               VerificationState = "idle"
	StateVerifying          VerificationState = "verifying"
	StateApproved           VerificationState = "verified_approved"
	StateRejected           VerificationState = "verified_rejected"
	StateVerificationFailed VerificationState = "verification_failed"
)

// AttestationState is the sub-state machine reachable only from an approved
// verdict.
type AttestationState string

// Attestation flow states.
const (
	AttestationIdle      AttestationState = "idle"
	AttestationPending   AttestationState = "pending"
	AttestationConfirmed AttestationState = "confirmed"
	AttestationFailed    AttestationState = "failed"
)

// Orchestrator errors.
var (
	// ErrNoApprovedVerdict means the register action was taken without an
	// approved verdict in the current session.
	ErrNoApprovedVerdict = errors.New("no approved verdict in the current session")
	// ErrAttestationInFlight guards against rapid double-submission while
	// a registration is still awaiting confirmation. Duplicate protection
	// beyond that is the contract's revert.
	ErrAttestationInFlight = errors.New("an attestation is already awaiting confirmation")
)

// Verifier scores a title pair.
type Verifier interface {
	Verify(ctx context.Context, pair verification.TitlePair) (*verification.Verdict, error)
}

// Attester registers an approved verdict on chain in two phases.
type Attester interface {
	Submit(ctx context.Context, verdict *verification.Verdict, session *wallet.Session) (*attestation.Record, error)
	Await(ctx context.Context, session *wallet.Session, rec *attestation.Record) *attestation.Record
}

// Looker answers public hash queries.
type Looker interface {
	Lookup(ctx context.Context, hashText string) (*lookup.Result, error)
}

// Orchestrator drives the verification/attestation/lookup workflows.
type Orchestrator struct {
	verifier Verifier
	attester Attester
	lookups  Looker
	session  *wallet.Session
	journal  *storage.Journal
	logger   *slog.Logger

	mu          sync.Mutex
	verifyState VerificationState
	attestState AttestationState
	verdict     *verification.Verdict
	record      *attestation.Record
	// generation increments on every new verification. Attestation results
	// carry the generation they started under and are dropped if a newer
	// verification has replaced the session in the meantime.
	generation uint64
}

// New creates an orchestrator. journal may be nil to disable session history.
func New(verifier Verifier, attester Attester, lookups Looker, session *wallet.Session, journal *storage.Journal, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		verifier:    verifier,
		attester:    attester,
		lookups:     lookups,
		session:     session,
		journal:     journal,
		logger:      logger,
		verifyState: StateIdle,
		attestState: AttestationIdle,
	}
}

// Session returns the wallet session shared with the services.
func (o *Orchestrator) Session() *wallet.Session {
	return o.session
}

// VerificationState returns the current verification session state.
func (o *Orchestrator) VerificationState() VerificationState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.verifyState
}

// AttestationState returns the current attestation flow state.
func (o *Orchestrator) AttestationState() AttestationState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attestState
}

// Verdict returns the current session's verdict, or nil.
func (o *Orchestrator) Verdict() *verification.Verdict {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.verdict
}

// Record returns the current attestation record, or nil.
func (o *Orchestrator) Record() *attestation.Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.record
}

// Verify runs one verification round trip. Starting a new verification
// discards the previous verdict and any attestation state tied to it,
// whatever state the session was in.
func (o *Orchestrator) Verify(ctx context.Context, pair verification.TitlePair) (*verification.Verdict, error) {
	o.mu.Lock()
	o.generation++
	o.verifyState = StateVerifying
	o.attestState = AttestationIdle
	o.verdict = nil
	o.record = nil
	o.mu.Unlock()

	verdict, err := o.verifier.Verify(ctx, pair)
	if err != nil {
		o.mu.Lock()
		o.verifyState = StateVerificationFailed
		o.mu.Unlock()
		return nil, err
	}

	o.mu.Lock()
	o.verdict = verdict
	if verdict.Approved {
		o.verifyState = StateApproved
	} else {
		o.verifyState = StateRejected
	}
	o.mu.Unlock()

	o.journalVerdict(ctx, pair, verdict)
	return verdict, nil
}

// Register attests the current approved verdict on chain. Only reachable
// from an approved verdict; a rejected or failed verification never exposes
// this action. The record is journaled at the pending stage and again at its
// terminal state, so the two-phase flow stays observable.
func (o *Orchestrator) Register(ctx context.Context) (*attestation.Record, error) {
	o.mu.Lock()
	if o.verifyState != StateApproved || o.verdict == nil {
		o.mu.Unlock()
		return nil, ErrNoApprovedVerdict
	}
	if o.attestState == AttestationPending {
		o.mu.Unlock()
		return nil, ErrAttestationInFlight
	}
	// Claim the pending slot before releasing the lock so a concurrent
	// Register cannot also reach the signer.
	prev := o.attestState
	o.attestState = AttestationPending
	verdict := o.verdict
	gen := o.generation
	o.mu.Unlock()

	rec, err := o.attester.Submit(ctx, verdict, o.session)
	if err != nil {
		o.mu.Lock()
		if o.generation == gen {
			if rec != nil {
				// Submission was attempted and failed; keep the
				// failed attempt visible.
				o.record = rec
				o.attestState = AttestationFailed
			} else {
				// Nothing was submitted; release the claimed slot.
				o.attestState = prev
			}
		}
		o.mu.Unlock()
		if rec != nil {
			o.journalRecord(ctx, rec)
		}
		return rec, err
	}

	o.mu.Lock()
	// A new verification may have started while the signer prompt was
	// open; the fresh session must not inherit this attempt.
	if o.generation == gen {
		o.record = rec
	}
	o.mu.Unlock()
	o.journalRecord(ctx, rec)

	// The confirmation wait survives caller abandonment: an abandoned UI
	// does not cancel an already-submitted transaction.
	done := o.attester.Await(context.WithoutCancel(ctx), o.session, rec)

	o.mu.Lock()
	if o.generation == gen {
		o.record = done
		if done.Status == attestation.StatusConfirmed {
			o.attestState = AttestationConfirmed
		} else {
			o.attestState = AttestationFailed
		}
	}
	o.mu.Unlock()

	o.journalRecord(ctx, done)
	return done, nil
}

// Lookup answers a public hash query. Fully independent of any verification
// session: usable before, during, or after one.
func (o *Orchestrator) Lookup(ctx context.Context, hashText string) (*lookup.Result, error) {
	return o.lookups.Lookup(ctx, hashText)
}

// History returns this session's journaled verdicts and attestations.
func (o *Orchestrator) History(ctx context.Context, limit int) ([]storage.VerdictEntry, []attestation.Record, error) {
	if o.journal == nil {
		return nil, nil, nil
	}
	verdicts, err := o.journal.Verdicts(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	records, err := o.journal.Attestations(ctx, limit)
	if err != nil {
		return nil, nil, err
	}
	return verdicts, records, nil
}

func (o *Orchestrator) journalVerdict(ctx context.Context, pair verification.TitlePair, v *verification.Verdict) {
	if o.journal == nil {
		return
	}
	if err := o.journal.RecordVerdict(context.WithoutCancel(ctx), pair, v); err != nil {
		o.logger.Warn("journaling verdict failed", "error", err)
	}
}

func (o *Orchestrator) journalRecord(ctx context.Context, rec *attestation.Record) {
	if o.journal == nil {
		return
	}
	if err := o.journal.RecordAttestation(context.WithoutCancel(ctx), rec); err != nil {
		o.logger.Warn("journaling attestation failed", "error", err)
	}
}
