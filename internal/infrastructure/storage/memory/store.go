// Package memory provides an in-memory store implementing every repository
// interface. It backs tests and local development without PostgreSQL.
//
// The store has no rollback. The transaction manager instead serializes all
// transactions behind one mutex, which is sound because every engine and
// service validates completely before its first write.
package memory

import (
	"context"
	"sync"

	"almacen/internal/core/id"
	"almacen/internal/core/tx"
	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/catalogs/variant"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/documents/sale"
	"almacen/internal/domain/ledger"
)

// levelKey identifies one (variant, location) quantity. The zero branch id
// is the central location.
type levelKey struct {
	variantID id.ID
	branchID  id.ID
}

// Store holds all repository state.
type Store struct {
	mu sync.RWMutex

	branches  map[id.ID]*branch.Branch
	variants  map[id.ID]*variant.Variant
	levels    map[levelKey]*ledger.StockRecord
	transfers map[id.ID]*ledger.TransferRecord
	purchases map[id.ID]*purchase.Purchase
	sales     map[id.ID]*sale.Sale
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		branches:  make(map[id.ID]*branch.Branch),
		variants:  make(map[id.ID]*variant.Variant),
		levels:    make(map[levelKey]*ledger.StockRecord),
		transfers: make(map[id.ID]*ledger.TransferRecord),
		purchases: make(map[id.ID]*purchase.Purchase),
		sales:     make(map[id.ID]*sale.Sale),
	}
}

// txKey marks a context already inside a transaction.
type txKey struct{}

// TxManager serializes transactions behind a single mutex. Nested calls
// reuse the outer transaction.
type TxManager struct {
	mu sync.Mutex
}

var _ tx.ReadOnlyManager = (*TxManager)(nil)

func NewTxManager() *TxManager {
	return &TxManager{}
}

func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, struct{}{}))
}

func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.RunInTransaction(ctx, fn)
}
