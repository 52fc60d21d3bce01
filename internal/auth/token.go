// Package auth provides the optional gateway access token.
//
// The gateway holds a live wallet session, so any process that can reach it
// can trigger verifications and on-chain transactions. When a token is
// configured, mutating routes require it; read-only routes stay public.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const (
	// TokenPrefix marks gateway access tokens so they are recognizable in
	// configs and logs.
	TokenPrefix = "tc_key_"
	// tokenBytes is the length of the random part of a token.
	tokenBytes = 32
)

// GenerateToken creates a new random gateway access token.
func GenerateToken() (string, error) {
	bytes := make([]byte, tokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(bytes), nil
}

// hashToken collapses a token to a fixed-size digest so the comparison is
// constant time regardless of input length.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Matches reports whether the presented token equals the configured one.
func Matches(configured, presented string) bool {
	a := hashToken(configured)
	b := hashToken(presented)
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
