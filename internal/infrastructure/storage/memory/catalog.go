package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/catalogs/variant"
)

// Branches returns the branch repository view of the store.
func (s *Store) Branches() branch.Repository { return (*branchStore)(s) }

// Variants returns the variant repository view of the store.
func (s *Store) Variants() variant.Repository { return (*variantStore)(s) }

type branchStore Store

var _ branch.Repository = (*branchStore)(nil)

func (s *branchStore) Create(ctx context.Context, b *branch.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.branches[b.ID] = &cp
	return nil
}

func (s *branchStore) GetByID(ctx context.Context, branchID id.ID) (*branch.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.branches[branchID]
	if !ok {
		return nil, apperror.NewNotFound("branch", branchID.String())
	}
	cp := *b
	return &cp, nil
}

func (s *branchStore) Update(ctx context.Context, b *branch.Branch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.branches[b.ID]; !ok {
		return apperror.NewNotFound("branch", b.ID.String())
	}
	cp := *b
	s.branches[b.ID] = &cp
	return nil
}

func (s *branchStore) ListActive(ctx context.Context) ([]*branch.Branch, error) {
	return s.list(true)
}

func (s *branchStore) List(ctx context.Context) ([]*branch.Branch, error) {
	return s.list(false)
}

func (s *branchStore) list(onlyActive bool) ([]*branch.Branch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*branch.Branch
	for _, b := range s.branches {
		if onlyActive && !b.Active {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type variantStore Store

var _ variant.Repository = (*variantStore)(nil)

func (s *variantStore) Create(ctx context.Context, v *variant.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.variants[v.ID] = &cp
	return nil
}

func (s *variantStore) GetByID(ctx context.Context, variantID id.ID) (*variant.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.variants[variantID]
	if !ok {
		return nil, apperror.NewNotFound("variant", variantID.String())
	}
	cp := *v
	return &cp, nil
}

func (s *variantStore) Update(ctx context.Context, v *variant.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.variants[v.ID]; !ok {
		return apperror.NewNotFound("variant", v.ID.String())
	}
	cp := *v
	cp.UpdatedAt = time.Now().UTC()
	s.variants[v.ID] = &cp
	return nil
}

func (s *variantStore) SetLastCost(ctx context.Context, variantID id.ID, cost types.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[variantID]
	if !ok {
		return apperror.NewNotFound("variant", variantID.String())
	}
	v.Cost = cost
	v.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *variantStore) List(ctx context.Context, onlyActive bool) ([]*variant.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*variant.Variant
	for _, v := range s.variants {
		if onlyActive && !v.Active {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sortVariants(out)
	return out, nil
}

func (s *variantStore) Search(ctx context.Context, query string) ([]*variant.Variant, error) {
	q := strings.ToLower(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*variant.Variant
	for _, v := range s.variants {
		if strings.Contains(strings.ToLower(v.ProductName), q) ||
			strings.Contains(strings.ToLower(v.Brand), q) ||
			strings.Contains(strings.ToLower(v.Flavor), q) ||
			strings.Contains(strings.ToLower(v.SKU), q) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sortVariants(out)
	return out, nil
}

func sortVariants(vs []*variant.Variant) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].ProductName != vs[j].ProductName {
			return vs[i].ProductName < vs[j].ProductName
		}
		if vs[i].Flavor != vs[j].Flavor {
			return vs[i].Flavor < vs[j].Flavor
		}
		return vs[i].Size < vs[j].Size
	})
}
