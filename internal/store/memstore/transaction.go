package memstore

import (
	"context"
	"sync"

	"github.com/mwelles/retention-api/internal/store"
)

// TxManager is an in-memory implementation of store.TxManager. It has no
// real transactions; it serializes callbacks under a mutex so concurrent
// review submissions cannot interleave reads and writes.
type TxManager struct {
	mu sync.Mutex
}

// NewTxManager creates a new in-memory transaction manager.
func NewTxManager() *TxManager {
	return &TxManager{}
}

var _ store.TxManager = (*TxManager)(nil)

// RunInTransaction executes fn while holding the manager's lock. The
// *sql.Tx passed to fn is always nil; in-memory stores ignore WithTx.
func (m *TxManager) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}
