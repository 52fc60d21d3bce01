// Package validation provides input validation for titlechain.
package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Common validation errors.
var (
	ErrEmptyTitle        = errors.New("title must not be empty")
	ErrTitleTooLong      = errors.New("title exceeds the maximum length of 200 characters")
	ErrInvalidHashFormat = errors.New("invalid hash format: expected 0x-prefixed 32-byte hex (66 characters)")
)

// MaxTitleLength bounds title input before it is sent to the verification
// engine, counted in characters so regional scripts get the full budget.
const MaxTitleLength = 200

// ValidateTitle checks that a proposed title is non-blank after trimming and
// within the length bound.
func ValidateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

// ValidateTitleHash validates the lexical shape of a registered title hash:
// "0x" followed by exactly 64 hex characters.
func ValidateTitleHash(hash string) error {
	if len(hash) != 66 {
		return ErrInvalidHashFormat
	}
	if !strings.HasPrefix(hash, "0x") {
		return ErrInvalidHashFormat
	}
	if !isHex(hash[2:]) {
		return ErrInvalidHashFormat
	}
	return nil
}

// ValidateAddress validates an Ethereum contract address.
func ValidateAddress(addr string) error {
	if len(addr) != 42 {
		return errors.New("invalid address length: must be 42 characters (0x + 40 hex)")
	}
	if !strings.HasPrefix(addr, "0x") {
		return errors.New("invalid address: must start with 0x")
	}
	if !isHex(addr[2:]) {
		return errors.New("invalid address: contains non-hex characters")
	}
	return nil
}

// ValidateChainID validates a hex chain ID as pushed by wallet providers
// (e.g. "0xaa36a7" for Sepolia).
func ValidateChainID(chainID string) error {
	if !strings.HasPrefix(chainID, "0x") || len(chainID) < 3 {
		return errors.New("invalid chain ID: must be 0x-prefixed hex")
	}
	if !isHex(chainID[2:]) {
		return errors.New("invalid chain ID: contains non-hex characters")
	}
	return nil
}

func isHex(s string) bool {
	for _, c := range s {
		isDigit := c >= '0' && c <= '9'
		isLowerHex := c >= 'a' && c <= 'f'
		isUpperHex := c >= 'A' && c <= 'F'
		if !isDigit && !isLowerHex && !isUpperHex {
			return false
		}
	}
	return true
}
