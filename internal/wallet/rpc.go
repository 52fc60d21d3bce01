package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// RPCProvider adapts a go-ethereum JSON-RPC client to the Provider interface,
// so the public fallback endpoint and a wallet provider are interchangeable
// for read-only calls. It emits no events.
type RPCProvider struct {
	client *rpc.Client
}

// DialRPC connects to a JSON-RPC endpoint.
func DialRPC(ctx context.Context, url string) (*RPCProvider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing rpc endpoint: %w", err)
	}
	return &RPCProvider{client: client}, nil
}

// Request performs a raw JSON-RPC call.
func (p *RPCProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := p.client.CallContext(ctx, &result, method, params...); err != nil {
		return nil, err
	}
	return result, nil
}

// Close releases the underlying connection.
func (p *RPCProvider) Close() {
	p.client.Close()
}
