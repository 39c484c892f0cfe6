package variant

import (
	"context"
	"strings"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/pkg/logger"
)

// Service implements variant catalog business logic.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the fields accepted on variant creation.
type CreateInput struct {
	ProductName      string
	Brand            string
	Category         string
	Flavor           string
	Size             string
	SKU              string
	Cost             types.Money
	SalePrice        types.Money
	MinimumThreshold types.Quantity
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Variant, error) {
	v := NewVariant(strings.TrimSpace(in.ProductName), strings.TrimSpace(in.Flavor), strings.TrimSpace(in.Size))
	v.Brand = strings.TrimSpace(in.Brand)
	v.Category = strings.TrimSpace(in.Category)
	v.SKU = strings.TrimSpace(in.SKU)
	v.Cost = in.Cost
	v.SalePrice = in.SalePrice
	v.MinimumThreshold = in.MinimumThreshold

	if err := v.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}

	logger.Info(ctx, "variant created", "variant_id", v.ID, "product", v.ProductName)
	return v, nil
}

func (s *Service) GetByID(ctx context.Context, variantID id.ID) (*Variant, error) {
	return s.repo.GetByID(ctx, variantID)
}

// UpdateInput carries the mutable variant fields. Nil pointers leave the
// current value untouched.
type UpdateInput struct {
	ProductName      *string
	Brand            *string
	Category         *string
	Flavor           *string
	Size             *string
	SKU              *string
	Cost             *types.Money
	SalePrice        *types.Money
	MinimumThreshold *types.Quantity
	Active           *bool
}

func (s *Service) Update(ctx context.Context, variantID id.ID, in UpdateInput) (*Variant, error) {
	v, err := s.repo.GetByID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	if in.ProductName != nil {
		v.ProductName = strings.TrimSpace(*in.ProductName)
	}
	if in.Brand != nil {
		v.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Category != nil {
		v.Category = strings.TrimSpace(*in.Category)
	}
	if in.Flavor != nil {
		v.Flavor = strings.TrimSpace(*in.Flavor)
	}
	if in.Size != nil {
		v.Size = strings.TrimSpace(*in.Size)
	}
	if in.SKU != nil {
		v.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Cost != nil {
		v.Cost = *in.Cost
	}
	if in.SalePrice != nil {
		v.SalePrice = *in.SalePrice
	}
	if in.MinimumThreshold != nil {
		v.MinimumThreshold = *in.MinimumThreshold
	}
	if in.Active != nil {
		v.Active = *in.Active
	}

	if err := v.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}

	logger.Info(ctx, "variant updated", "variant_id", v.ID)
	return v, nil
}

// Deactivate marks a variant inactive. Stock records for it are retained.
func (s *Service) Deactivate(ctx context.Context, variantID id.ID) error {
	active := false
	_, err := s.Update(ctx, variantID, UpdateInput{Active: &active})
	return err
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]*Variant, error) {
	return s.repo.List(ctx, onlyActive)
}

// Search finds variants whose product name, brand, flavor or SKU matches the
// query. Empty queries are rejected to avoid accidental full scans.
func (s *Service) Search(ctx context.Context, query string) ([]*Variant, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.NewValidation("search query is required")
	}
	return s.repo.Search(ctx, query)
}
