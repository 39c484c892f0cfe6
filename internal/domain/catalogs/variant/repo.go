package variant

import (
	"context"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Repository defines the persistence contract for variants.
type Repository interface {
	Create(ctx context.Context, v *Variant) error
	GetByID(ctx context.Context, variantID id.ID) (*Variant, error)
	Update(ctx context.Context, v *Variant) error
	// SetLastCost updates only the cost column. Called from purchase
	// distribution inside the posting transaction.
	SetLastCost(ctx context.Context, variantID id.ID, cost types.Money) error
	List(ctx context.Context, onlyActive bool) ([]*Variant, error)
	Search(ctx context.Context, query string) ([]*Variant, error)
}
