// Package titlehash computes the deterministic on-chain digest of a
// publication title. Registration and lookup must agree bit-for-bit, so the
// normalization here is the single source of truth: lower-case, trim
// surrounding whitespace, UTF-8 encode, Keccak-256. No other normalization
// (punctuation stripping, internal whitespace collapsing) is applied.
package titlehash

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/prgi-labs/titlechain/internal/validation"
)

// Hash returns the Keccak-256 digest of the normalized title.
// Fails with validation.ErrEmptyTitle if the title is blank after trimming.
func Hash(title string) (common.Hash, error) {
	normalized := Normalize(title)
	if normalized == "" {
		return common.Hash{}, validation.ErrEmptyTitle
	}
	return crypto.Keccak256Hash([]byte(normalized)), nil
}

// Normalize applies the canonical title normalization: lower-case plus
// surrounding-whitespace trim.
func Normalize(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
