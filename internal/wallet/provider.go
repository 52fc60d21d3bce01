// Package wallet tracks the session with a user's wallet provider. The
// provider is an injected capability rather than an ambient global, so tests
// can drive connection and event flows deterministically.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
)

// Common wallet errors.
var (
	// ErrProviderUnavailable is returned when no wallet provider is
	// configured for the session.
	ErrProviderUnavailable = errors.New("no wallet provider available")
)

// Provider is the request side of an EIP-1193-style wallet or RPC endpoint.
// Implementations must be safe for concurrent use.
type Provider interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// EventProvider is a Provider that can push account and chain change events.
// The returned unsubscribe func must be idempotent.
type EventProvider interface {
	Provider
	Subscribe(event string, handler func(payload json.RawMessage)) (unsubscribe func(), err error)
}

// Provider events emitted by wallet implementations.
const (
	EventAccountsChanged = "accountsChanged"
	EventChainChanged    = "chainChanged"
)
