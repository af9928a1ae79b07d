package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskr-api/internal/store"
)

// MockTransactor implements store.Transactor without a database. By default
// it runs fn with a nil transaction, which the in-memory stores ignore.
type MockTransactor struct {
	RunInTxFn func(ctx context.Context, fn store.TxFn) error

	mu    sync.Mutex
	calls int
}

var _ store.Transactor = (*MockTransactor)(nil)

// RunInTx implements store.Transactor.
func (m *MockTransactor) RunInTx(ctx context.Context, fn store.TxFn) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.RunInTxFn != nil {
		return m.RunInTxFn(ctx, fn)
	}
	return fn(ctx, nil)
}

// Calls returns how many transactions were started.
func (m *MockTransactor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
