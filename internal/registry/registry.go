// Package registry speaks to the on-chain title registry contract through a
// wallet provider. Only the contract's two public functions are used:
// registerTitle(bytes32) for attestation and isRegistered(bytes32) for
// public lookup. Calldata is packed by hand; two fixed selectors do not
// justify a full ABI layer.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/prgi-labs/titlechain/internal/validation"
	"github.com/prgi-labs/titlechain/internal/wallet"
)

// Errors surfaced by contract interactions.
var (
	// ErrReverted means the transaction was mined but the contract
	// rejected it; for this registry that means the hash was already
	// registered.
	ErrReverted = errors.New("transaction reverted by contract")
	// ErrConfirmTimeout means the receipt never appeared within the
	// configured confirmation window.
	ErrConfirmTimeout = errors.New("timed out waiting for transaction confirmation")
)

var (
	registerSelector     = crypto.Keccak256([]byte("registerTitle(bytes32)"))[:4]
	isRegisteredSelector = crypto.Keccak256([]byte("isRegistered(bytes32)"))[:4]
)

// Contract is a handle to one deployed title registry.
type Contract struct {
	address        common.Address
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// NewContract creates a contract handle for the given address.
func NewContract(address string, pollInterval, confirmTimeout time.Duration) (*Contract, error) {
	if err := validation.ValidateAddress(address); err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if confirmTimeout <= 0 {
		confirmTimeout = 3 * time.Minute
	}
	return &Contract{
		address:        common.HexToAddress(address),
		pollInterval:   pollInterval,
		confirmTimeout: confirmTimeout,
	}, nil
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// RegisterCalldata packs the calldata for registerTitle(titleHash).
func RegisterCalldata(titleHash common.Hash) hexutil.Bytes {
	return packCalldata(registerSelector, titleHash)
}

// IsRegisteredCalldata packs the calldata for isRegistered(titleHash).
func IsRegisteredCalldata(titleHash common.Hash) hexutil.Bytes {
	return packCalldata(isRegisteredSelector, titleHash)
}

func packCalldata(selector []byte, arg common.Hash) hexutil.Bytes {
	data := make([]byte, 0, 4+common.HashLength)
	data = append(data, selector...)
	data = append(data, arg.Bytes()...)
	return data
}

// Register submits a registerTitle transaction from the given account and
// returns the transaction hash. The signer prompt and gas handling belong to
// the provider; this call returns as soon as the transaction is submitted.
func (c *Contract) Register(ctx context.Context, provider wallet.Provider, from string, titleHash common.Hash) (string, error) {
	tx := map[string]any{
		"from": from,
		"to":   c.address.Hex(),
		"data": RegisterCalldata(titleHash).String(),
	}
	raw, err := provider.Request(ctx, "eth_sendTransaction", tx)
	if err != nil {
		return "", err
	}
	var txHash string
	if err := json.Unmarshal(raw, &txHash); err != nil {
		return "", fmt.Errorf("decoding transaction hash: %w", err)
	}
	return txHash, nil
}

// IsRegistered performs a read-only isRegistered call. No signer is needed,
// so any provider works: a wallet or a public RPC endpoint.
func (c *Contract) IsRegistered(ctx context.Context, provider wallet.Provider, titleHash common.Hash) (bool, error) {
	call := map[string]any{
		"to":   c.address.Hex(),
		"data": IsRegisteredCalldata(titleHash).String(),
	}
	raw, err := provider.Request(ctx, "eth_call", call, "latest")
	if err != nil {
		return false, err
	}
	var result string
	if err := json.Unmarshal(raw, &result); err != nil {
		return false, fmt.Errorf("decoding call result: %w", err)
	}
	word, err := hexutil.Decode(result)
	if err != nil {
		return false, fmt.Errorf("decoding call result: %w", err)
	}
	if len(word) == 0 {
		return false, nil
	}
	return word[len(word)-1] == 1, nil
}

type receipt struct {
	Status string `json:"status"`
}

// WaitConfirmation polls for the transaction receipt until the transaction is
// mined, reverts, or the confirmation window closes. A nil error means the
// network accepted the transaction as final.
func (c *Contract) WaitConfirmation(ctx context.Context, provider wallet.Provider, txHash string) error {
	ctx, cancel := context.WithTimeout(ctx, c.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		rcpt, err := c.receipt(ctx, provider, txHash)
		if err != nil {
			return err
		}
		if rcpt != nil {
			if rcpt.Status == "0x1" {
				return nil
			}
			return ErrReverted
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrConfirmTimeout
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// receipt returns nil without error while the transaction is still pending.
func (c *Contract) receipt(ctx context.Context, provider wallet.Provider, txHash string) (*receipt, error) {
	raw, err := provider.Request(ctx, "eth_getTransactionReceipt", txHash)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var rcpt receipt
	if err := json.Unmarshal(raw, &rcpt); err != nil {
		return nil, fmt.Errorf("decoding receipt: %w", err)
	}
	return &rcpt, nil
}
