package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// State is the connection state of a wallet session.
type State string

// Session states.
const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Session tracks the connection to a wallet provider and reacts to
// provider-pushed account and chain change events. The session itself is the
// only mutator of its state; other components read it.
//
// Invariant: an address is held if and only if the state is connected.
type Session struct {
	mu       sync.Mutex
	provider Provider
	logger   *slog.Logger

	state   State
	address string
	chainID string // last chain id pushed or queried; advisory only

	subscribed bool
	unsubs     []func()
}

// NewSession creates a session in the disconnected state. provider may be nil
// when no wallet is present; read-only flows still work through the fallback
// RPC endpoint.
func NewSession(provider Provider, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		provider: provider,
		logger:   logger,
		state:    StateDisconnected,
	}
}

// HasProvider reports whether a wallet provider is present.
func (s *Session) HasProvider() bool {
	return s.provider != nil
}

// Provider returns the underlying provider, or nil when none is present.
func (s *Session) Provider() Provider {
	return s.provider
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connected reports whether the session is connected.
func (s *Session) Connected() bool {
	return s.State() == StateConnected
}

// Address returns the active account address, or "" when disconnected.
func (s *Session) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// CachedChainID returns the last observed chain id. Chain-mutating callers
// must not trust this value; use LiveChainID before acting.
func (s *Session) CachedChainID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chainID
}

// Connect requests account access from the provider, prompting the user.
// Fails with ErrProviderUnavailable when no provider is present.
func (s *Session) Connect(ctx context.Context) error {
	if s.provider == nil {
		return ErrProviderUnavailable
	}

	s.mu.Lock()
	if s.state == StateConnected {
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnecting
	s.mu.Unlock()

	accounts, err := s.requestAccounts(ctx, "eth_requestAccounts")
	if err != nil {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return fmt.Errorf("connecting wallet: %w", err)
	}
	if len(accounts) == 0 {
		s.mu.Lock()
		s.state = StateDisconnected
		s.mu.Unlock()
		return fmt.Errorf("connecting wallet: provider returned no accounts")
	}

	s.completeConnect(accounts[0])
	s.queryChainID(ctx)
	s.ensureSubscribed()
	return nil
}

// Resume silently adopts an already-granted permission via eth_accounts. It
// never prompts the user; when no permission exists the session simply stays
// disconnected. Errors are logged, not surfaced, so startup is never blocked
// by a misbehaving provider.
func (s *Session) Resume(ctx context.Context) {
	if s.provider == nil {
		return
	}

	accounts, err := s.requestAccounts(ctx, "eth_accounts")
	if err != nil {
		s.logger.Debug("wallet resume probe failed", "error", err)
		return
	}
	if len(accounts) == 0 {
		return
	}

	s.completeConnect(accounts[0])
	s.queryChainID(ctx)
	s.ensureSubscribed()
}

// Disconnect returns the session to the disconnected state. Provider
// subscriptions are kept so a later accountsChanged can be observed; the
// session object remains usable.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDisconnected
	s.address = ""
}

// Close unregisters all provider event listeners.
func (s *Session) Close() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.subscribed = false
	s.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// LiveChainID re-queries the provider's current chain id. Callers performing
// chain-mutating actions must use this instead of CachedChainID: a network
// change event may have invalidated any value captured earlier in the flow.
func (s *Session) LiveChainID(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", ErrProviderUnavailable
	}
	raw, err := s.provider.Request(ctx, "eth_chainId")
	if err != nil {
		return "", fmt.Errorf("querying chain id: %w", err)
	}
	var chainID string
	if err := json.Unmarshal(raw, &chainID); err != nil {
		return "", fmt.Errorf("decoding chain id: %w", err)
	}

	s.mu.Lock()
	s.chainID = chainID
	s.mu.Unlock()
	return chainID, nil
}

func (s *Session) requestAccounts(ctx context.Context, method string) ([]string, error) {
	raw, err := s.provider.Request(ctx, method)
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("decoding accounts: %w", err)
	}
	return accounts, nil
}

func (s *Session) completeConnect(address string) {
	s.mu.Lock()
	s.state = StateConnected
	s.address = address
	s.mu.Unlock()
	s.logger.Info("wallet connected", "address", address)
}

func (s *Session) queryChainID(ctx context.Context) {
	if _, err := s.LiveChainID(ctx); err != nil {
		s.logger.Debug("initial chain id query failed", "error", err)
	}
}

// ensureSubscribed registers the account/chain event handlers exactly once
// per session, keeping listener state deterministic under repeated
// connect/resume cycles.
func (s *Session) ensureSubscribed() {
	events, ok := s.provider.(EventProvider)
	if !ok {
		return
	}

	s.mu.Lock()
	if s.subscribed {
		s.mu.Unlock()
		return
	}
	s.subscribed = true
	s.mu.Unlock()

	if unsub, err := events.Subscribe(EventAccountsChanged, s.handleAccountsChanged); err == nil {
		s.addUnsub(unsub)
	} else {
		s.logger.Warn("subscribing to account changes failed", "error", err)
	}
	if unsub, err := events.Subscribe(EventChainChanged, s.handleChainChanged); err == nil {
		s.addUnsub(unsub)
	} else {
		s.logger.Warn("subscribing to chain changes failed", "error", err)
	}
}

func (s *Session) addUnsub(unsub func()) {
	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsub)
	s.mu.Unlock()
}

func (s *Session) handleAccountsChanged(payload json.RawMessage) {
	var accounts []string
	if err := json.Unmarshal(payload, &accounts); err != nil {
		s.logger.Warn("malformed accountsChanged payload", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(accounts) == 0 {
		s.state = StateDisconnected
		s.address = ""
		s.logger.Info("wallet disconnected by provider")
		return
	}
	s.state = StateConnected
	s.address = accounts[0]
	s.logger.Info("wallet account changed", "address", accounts[0])
}

func (s *Session) handleChainChanged(payload json.RawMessage) {
	var chainID string
	if err := json.Unmarshal(payload, &chainID); err != nil {
		s.logger.Warn("malformed chainChanged payload", "error", err)
		return
	}

	s.mu.Lock()
	s.chainID = chainID
	s.mu.Unlock()
	s.logger.Info("wallet network changed", "chain_id", chainID)
}
