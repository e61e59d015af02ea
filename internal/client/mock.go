package client

import (
	"context"
	"sync"

	"github.com/dukerupert/addressvalidation/internal/address"
	"github.com/dukerupert/addressvalidation/internal/request"
	"github.com/dukerupert/addressvalidation/internal/validation"
)

// MockResponse is what MockValidator returns when ValidateFunc is unset:
// a complete, confirmed address.
const MockResponse = `{"responseId":"mock-response","result":{"verdict":{"addressComplete":true},"address":{"formattedAddress":"mock address"}}}`

// MockValidator is a test implementation of Validator that also records calls.
type MockValidator struct {
	ValidateFunc        func(ctx context.Context, addr address.Input, opts ValidateOptions) (*validation.Result, error)
	ProvideFeedbackFunc func(ctx context.Context, responseID string, conclusion request.FeedbackConclusion) error
	ClearCacheFunc      func(ctx context.Context) error

	mu    sync.Mutex
	calls []address.Input
}

// NewMockValidator creates a new mock validator for testing.
func NewMockValidator() *MockValidator {
	return &MockValidator{}
}

// Validate delegates to the configured function or returns MockResponse.
func (m *MockValidator) Validate(ctx context.Context, addr address.Input, opts ValidateOptions) (*validation.Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, addr)
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, addr, opts)
	}
	return validation.Parse([]byte(MockResponse))
}

// ProvideFeedback delegates to the configured function or succeeds.
func (m *MockValidator) ProvideFeedback(ctx context.Context, responseID string, conclusion request.FeedbackConclusion) error {
	if m.ProvideFeedbackFunc != nil {
		return m.ProvideFeedbackFunc(ctx, responseID, conclusion)
	}
	return nil
}

// ClearCache delegates to the configured function or succeeds.
func (m *MockValidator) ClearCache(ctx context.Context) error {
	if m.ClearCacheFunc != nil {
		return m.ClearCacheFunc(ctx)
	}
	return nil
}

// Calls returns the addresses passed to Validate so far.
func (m *MockValidator) Calls() []address.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]address.Input(nil), m.calls...)
}
