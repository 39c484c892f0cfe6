package purchase

import (
	"context"
	"time"

	"almacen/internal/core/id"
)

// Repository persists purchase documents with their lines and allocations.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)
	// Update replaces the document header and all lines.
	Update(ctx context.Context, p *Purchase) error
	Delete(ctx context.Context, purchaseID id.ID) error
	List(ctx context.Context, filter Filter) ([]*Purchase, error)
}

// Filter narrows purchase listings. Zero-value fields are ignored.
type Filter struct {
	SupplierName string
	From         time.Time
	To           time.Time
	Limit        int
}
