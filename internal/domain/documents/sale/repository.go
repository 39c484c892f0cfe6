package sale

import (
	"context"
	"time"

	"almacen/internal/core/id"
)

// Repository persists sale documents with their lines.
type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	// Update replaces the document header and all lines.
	Update(ctx context.Context, s *Sale) error
	Delete(ctx context.Context, saleID id.ID) error
	List(ctx context.Context, filter Filter) ([]*Sale, error)
}

// Filter narrows sale listings. Zero-value fields are ignored.
type Filter struct {
	BranchID id.ID
	Status   Status
	From     time.Time
	To       time.Time
	Limit    int
}
