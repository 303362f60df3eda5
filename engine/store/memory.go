// Package store provides the in-memory Store implementation.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payments-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (the CLI path, and tests)
// =============================================================================

// Memory keeps the two authoritative maps in process memory. Processing is
// single-threaded, but the HTTP surface may read concurrently, so access
// is guarded by a RWMutex.
type Memory struct {
	mu           sync.RWMutex
	accounts     map[engine.ClientID]engine.Account
	transactions map[engine.TxID]engine.StoredTransaction
}

func NewMemory() *Memory {
	return &Memory{
		accounts:     make(map[engine.ClientID]engine.Account),
		transactions: make(map[engine.TxID]engine.StoredTransaction),
	}
}

func (m *Memory) GetOrCreateAccount(_ context.Context, client engine.ClientID) (engine.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[client]
	if !ok {
		acct = engine.NewAccount(client)
		m.accounts[client] = acct
	}
	return acct, nil
}

func (m *Memory) Account(_ context.Context, client engine.ClientID) (engine.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[client]
	return acct, ok, nil
}

func (m *Memory) Accounts(_ context.Context) ([]engine.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.Account, 0, len(m.accounts))
	for _, acct := range m.accounts {
		result = append(result, acct)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Client < result[j].Client })
	return result, nil
}

func (m *Memory) MutateAccount(_ context.Context, client engine.ClientID, fn func(*engine.Account)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[client]
	if !ok {
		return engine.ErrAccountNotFound
	}
	fn(&acct)
	m.accounts[client] = acct
	return nil
}

func (m *Memory) RecordTransaction(_ context.Context, tx engine.StoredTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.transactions[tx.Tx]; exists {
		return engine.ErrDuplicateTransaction
	}
	m.transactions[tx.Tx] = tx
	return nil
}

func (m *Memory) LookupTransaction(_ context.Context, id engine.TxID) (engine.StoredTransaction, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[id]
	return tx, ok, nil
}

func (m *Memory) SetDisputeState(_ context.Context, id engine.TxID, state engine.DisputeState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.transactions[id]
	if !ok {
		return engine.ErrTransactionNotFound
	}
	tx.State = state
	m.transactions[id] = tx
	return nil
}
