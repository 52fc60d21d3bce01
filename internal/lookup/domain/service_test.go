package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prgi-labs/titlechain/internal/registry"
	"github.com/prgi-labs/titlechain/internal/validation"
	"github.com/prgi-labs/titlechain/internal/wallet"
	"github.com/prgi-labs/titlechain/internal/wallet/wallettest"
)

const contractAddr = "0x60Ceaa19201e1C6C19b5828b4Dd5C450E6148DF9"

var registeredWord = "0x" + strings.Repeat("0", 63) + "1"

func newContract(t *testing.T) *registry.Contract {
	t.Helper()
	c, err := registry.NewContract(contractAddr, time.Second, time.Minute)
	require.NoError(t, err)
	return c
}

func TestLookup_InvalidFormat_NoNetworkCall(t *testing.T) {
	p := wallettest.New()
	session := wallet.NewSession(p, nil)
	svc := NewService(newContract(t), session, nil, nil)

	for _, input := range []string{"0x123", "not-a-hash", "", "0xabc"} {
		t.Run(input, func(t *testing.T) {
			_, err := svc.Lookup(context.Background(), input)
			assert.ErrorIs(t, err, validation.ErrInvalidHashFormat)
		})
	}
	assert.Zero(t, p.CallCount("eth_call"))
}

func TestLookup_ThroughWalletProvider(t *testing.T) {
	p := wallettest.New()
	p.Respond("eth_call", registeredWord)
	session := wallet.NewSession(p, nil) // present but not connected

	svc := NewService(newContract(t), session, nil, nil)
	res, err := svc.Lookup(context.Background(), "0x"+strings.Repeat("ab", 32))
	require.NoError(t, err)

	assert.True(t, res.IsRegistered)
	assert.Equal(t, 1, p.CallCount("eth_call"))
}

func TestLookup_FallsBackToPublicRPC(t *testing.T) {
	fallback := wallettest.New()
	fallback.Respond("eth_call", "0x"+strings.Repeat("0", 64))

	// No wallet provider at all.
	session := wallet.NewSession(nil, nil)
	svc := NewService(newContract(t), session, fallback, nil)

	res, err := svc.Lookup(context.Background(), "0x"+strings.Repeat("ab", 32))
	require.NoError(t, err)

	assert.False(t, res.IsRegistered)
	assert.Equal(t, 1, fallback.CallCount("eth_call"))
}

func TestLookup_QueryFailure(t *testing.T) {
	p := wallettest.New()
	p.Fail("eth_call", errors.New("connection reset"))
	session := wallet.NewSession(p, nil)

	svc := NewService(newContract(t), session, nil, nil)
	_, err := svc.Lookup(context.Background(), "0x"+strings.Repeat("ab", 32))

	assert.ErrorIs(t, err, ErrLookupFailed)
}

func TestLookup_NoProviderAnywhere(t *testing.T) {
	session := wallet.NewSession(nil, nil)
	svc := NewService(newContract(t), session, nil, nil)

	_, err := svc.Lookup(context.Background(), "0x"+strings.Repeat("ab", 32))
	assert.ErrorIs(t, err, ErrLookupFailed)
}
