// Package wallettest provides an in-memory wallet provider double for tests.
package wallettest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Handler answers one RPC method on the fake provider.
type Handler func(params []any) (any, error)

// FakeProvider implements wallet.EventProvider in memory. Tests register
// per-method handlers and push events synchronously with Emit.
type FakeProvider struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
	subs     map[string]map[int]func(json.RawMessage)
	nextSub  int
}

// New creates an empty fake provider. Unhandled methods return an error.
func New() *FakeProvider {
	return &FakeProvider{
		handlers: make(map[string]Handler),
		calls:    make(map[string]int),
		subs:     make(map[string]map[int]func(json.RawMessage)),
	}
}

// Handle registers the handler for an RPC method.
func (f *FakeProvider) Handle(method string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method] = h
}

// Respond registers a fixed successful response for an RPC method.
func (f *FakeProvider) Respond(method string, result any) {
	f.Handle(method, func([]any) (any, error) { return result, nil })
}

// Fail registers a fixed error for an RPC method.
func (f *FakeProvider) Fail(method string, err error) {
	f.Handle(method, func([]any) (any, error) { return nil, err })
}

// Request dispatches to the registered handler and JSON-encodes its result.
func (f *FakeProvider) Request(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls[method]++
	h, ok := f.handlers[method]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("wallettest: no handler for method %q", method)
	}
	result, err := h(params)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("wallettest: encoding %s result: %w", method, err)
	}
	return raw, nil
}

// Subscribe records an event handler and returns an idempotent unsubscribe.
func (f *FakeProvider) Subscribe(event string, handler func(payload json.RawMessage)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subs[event] == nil {
		f.subs[event] = make(map[int]func(json.RawMessage))
	}
	id := f.nextSub
	f.nextSub++
	f.subs[event][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs[event], id)
			f.mu.Unlock()
		})
	}, nil
}

// Emit synchronously delivers an event payload to all subscribers.
func (f *FakeProvider) Emit(event string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("wallettest: encoding %s payload: %v", event, err))
	}

	f.mu.Lock()
	handlers := make([]func(json.RawMessage), 0, len(f.subs[event]))
	for _, h := range f.subs[event] {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(raw)
	}
}

// CallCount returns how many times a method has been requested.
func (f *FakeProvider) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// SubscriberCount returns the number of live subscriptions for an event.
func (f *FakeProvider) SubscriberCount(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[event])
}
