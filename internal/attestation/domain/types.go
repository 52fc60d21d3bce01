// Package domain contains the business logic for on-chain attestation of
// approved titles.
package domain

// Status is the lifecycle state of one attestation attempt.
type Status string

// Attestation statuses. A record moves Pending→Confirmed or Pending→Failed
// and is never retried in place; a manual retry creates a fresh record.
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Record is one attestation attempt for a verified title.
type Record struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TitleHash   string `json:"titleHash"`
	TxHash      string `json:"txHash,omitempty"`
	Status      Status `json:"status"`
	Reason      string `json:"reason,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
	CreatedAt   string `json:"createdAt"`
}
