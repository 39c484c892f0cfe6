package branch

import (
	"context"

	"almacen/internal/core/id"
)

// Repository defines the interface for Branch persistence.
type Repository interface {
	Create(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, branchID id.ID) (*Branch, error)
	Update(ctx context.Context, b *Branch) error

	// ListActive returns all operating branches ordered by name.
	ListActive(ctx context.Context) ([]*Branch, error)

	// List returns all branches, including deactivated ones.
	List(ctx context.Context) ([]*Branch, error)
}
