// Package branch provides the Branch registry.
// Branches are the retail locations of the chain; the central warehouse is
// not a branch and never appears in this catalog.
package branch

import (
	"context"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
)

// Branch represents a retail location with its own stock pool.
type Branch struct {
	ID   id.ID  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`

	// Active indicates whether the branch is operating. Deactivated branches
	// are excluded from aggregate views but keep their stock rows.
	Active bool `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewBranch creates a new active branch.
func NewBranch(name string) *Branch {
	return &Branch{
		ID:        id.New(),
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks branch invariants.
func (b *Branch) Validate(ctx context.Context) error {
	if b.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
