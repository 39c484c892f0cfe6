package memory

import (
	"context"
	"sort"
	"time"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/ledger"
)

// Stock returns the ledger repository view of the store.
func (s *Store) Stock() ledger.Repository { return (*ledgerStore)(s) }

type ledgerStore Store

var _ ledger.Repository = (*ledgerStore)(nil)

func keyFor(variantID id.ID, loc ledger.Location) levelKey {
	return levelKey{variantID: variantID, branchID: loc.BranchID()}
}

func (s *ledgerStore) GetQuantity(ctx context.Context, variantID id.ID, loc ledger.Location) (types.Quantity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.levels[keyFor(variantID, loc)]; ok {
		return rec.Quantity, nil
	}
	return 0, nil
}

// GetQuantityForUpdate relies on the transaction manager's serialization;
// there is no row lock to take. It still creates the missing record so the
// behavior matches the SQL implementation.
func (s *ledgerStore) GetQuantityForUpdate(ctx context.Context, variantID id.ID, loc ledger.Location) (types.Quantity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := keyFor(variantID, loc)
	rec, ok := s.levels[key]
	if !ok {
		rec = &ledger.StockRecord{
			ID:        id.New(),
			VariantID: variantID,
			BranchID:  loc.BranchID(),
			UpdatedAt: time.Now().UTC(),
		}
		s.levels[key] = rec
	}
	return rec.Quantity, nil
}

func (s *ledgerStore) UpsertQuantity(ctx context.Context, variantID id.ID, loc ledger.Location, qty types.Quantity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := keyFor(variantID, loc)
	rec, ok := s.levels[key]
	if !ok {
		rec = &ledger.StockRecord{
			ID:        id.New(),
			VariantID: variantID,
			BranchID:  loc.BranchID(),
		}
		s.levels[key] = rec
	}
	rec.Quantity = qty
	rec.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *ledgerStore) ListByVariant(ctx context.Context, variantID id.ID) ([]*ledger.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ledger.StockRecord
	for key, rec := range s.levels {
		if key.variantID != variantID {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BranchID.String() < out[j].BranchID.String() })
	return out, nil
}

func (s *ledgerStore) ListByBranch(ctx context.Context, loc ledger.Location) ([]*ledger.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	branchID := loc.BranchID()
	var out []*ledger.StockRecord
	for key, rec := range s.levels {
		if key.branchID != branchID {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VariantID.String() < out[j].VariantID.String() })
	return out, nil
}

func (s *ledgerStore) CreateTransfer(ctx context.Context, t *ledger.TransferRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.transfers[t.ID] = &cp
	return nil
}

func (s *ledgerStore) DeleteTransfer(ctx context.Context, transferID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transfers, transferID)
	return nil
}

func (s *ledgerStore) ListTransfersByPurchase(ctx context.Context, purchaseID id.ID) ([]*ledger.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ledger.TransferRecord
	for _, t := range s.transfers {
		if t.PurchaseID == nil || *t.PurchaseID != purchaseID {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VariantID != out[j].VariantID {
			return out[i].VariantID.String() < out[j].VariantID.String()
		}
		return out[i].Destination().BranchID().String() < out[j].Destination().BranchID().String()
	})
	return out, nil
}

func (s *ledgerStore) ListTransfers(ctx context.Context, filter ledger.TransferFilter) ([]*ledger.TransferRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ledger.TransferRecord
	for _, t := range s.transfers {
		if !id.IsNil(filter.VariantID) && t.VariantID != filter.VariantID {
			continue
		}
		if !id.IsNil(filter.BranchID) {
			matches := (t.OriginID != nil && *t.OriginID == filter.BranchID) ||
				(t.DestinationID != nil && *t.DestinationID == filter.BranchID)
			if !matches {
				continue
			}
		}
		if filter.Kind != "" && t.Kind != filter.Kind {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
