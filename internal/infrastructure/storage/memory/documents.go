package memory

import (
	"context"
	"sort"
	"strings"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/documents/sale"
)

// Purchases returns the purchase repository view of the store.
func (s *Store) Purchases() purchase.Repository { return (*purchaseStore)(s) }

// Sales returns the sale repository view of the store.
func (s *Store) Sales() sale.Repository { return (*saleStore)(s) }

type purchaseStore Store

var _ purchase.Repository = (*purchaseStore)(nil)

func clonePurchase(p *purchase.Purchase) *purchase.Purchase {
	cp := *p
	cp.Lines = make([]purchase.Line, len(p.Lines))
	for i, l := range p.Lines {
		cl := l
		cl.Allocations = append([]purchase.Allocation(nil), l.Allocations...)
		cp.Lines[i] = cl
	}
	return &cp
}

func (s *purchaseStore) Create(ctx context.Context, p *purchase.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases[p.ID] = clonePurchase(p)
	return nil
}

func (s *purchaseStore) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.purchases[purchaseID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", purchaseID.String())
	}
	return clonePurchase(p), nil
}

func (s *purchaseStore) Update(ctx context.Context, p *purchase.Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchases[p.ID]; !ok {
		return apperror.NewNotFound("purchase", p.ID.String())
	}
	s.purchases[p.ID] = clonePurchase(p)
	return nil
}

func (s *purchaseStore) Delete(ctx context.Context, purchaseID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchases[purchaseID]; !ok {
		return apperror.NewNotFound("purchase", purchaseID.String())
	}
	delete(s.purchases, purchaseID)
	return nil
}

func (s *purchaseStore) List(ctx context.Context, filter purchase.Filter) ([]*purchase.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*purchase.Purchase
	for _, p := range s.purchases {
		if filter.SupplierName != "" &&
			!strings.Contains(strings.ToLower(p.SupplierName), strings.ToLower(filter.SupplierName)) {
			continue
		}
		if !filter.From.IsZero() && p.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && p.Date.After(filter.To) {
			continue
		}
		out = append(out, clonePurchase(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type saleStore Store

var _ sale.Repository = (*saleStore)(nil)

func cloneSale(s *sale.Sale) *sale.Sale {
	cp := *s
	cp.Lines = append([]sale.Line(nil), s.Lines...)
	return &cp
}

func (s *saleStore) Create(ctx context.Context, doc *sale.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales[doc.ID] = cloneSale(doc)
	return nil
}

func (s *saleStore) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return cloneSale(doc), nil
}

func (s *saleStore) Update(ctx context.Context, doc *sale.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[doc.ID]; !ok {
		return apperror.NewNotFound("sale", doc.ID.String())
	}
	s.sales[doc.ID] = cloneSale(doc)
	return nil
}

func (s *saleStore) Delete(ctx context.Context, saleID id.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sales[saleID]; !ok {
		return apperror.NewNotFound("sale", saleID.String())
	}
	delete(s.sales, saleID)
	return nil
}

func (s *saleStore) List(ctx context.Context, filter sale.Filter) ([]*sale.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*sale.Sale
	for _, doc := range s.sales {
		if !id.IsNil(filter.BranchID) && doc.BranchID != filter.BranchID {
			continue
		}
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && doc.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && doc.Date.After(filter.To) {
			continue
		}
		out = append(out, cloneSale(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
