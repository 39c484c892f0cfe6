package ledger

import (
	"context"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Repository is the persistence contract for stock quantities and transfers.
//
// GetQuantityForUpdate must take a row lock (or the store's equivalent) so
// that concurrent postings against the same (variant, location) serialize.
// Callers are responsible for lock ordering: variants in ascending id order,
// and within a variant central before branches, branches in ascending id
// order.
type Repository interface {
	GetQuantity(ctx context.Context, variantID id.ID, loc Location) (types.Quantity, error)
	GetQuantityForUpdate(ctx context.Context, variantID id.ID, loc Location) (types.Quantity, error)
	// UpsertQuantity sets the absolute quantity for (variant, location),
	// creating the record if missing. Quantity must not be negative.
	UpsertQuantity(ctx context.Context, variantID id.ID, loc Location, qty types.Quantity) error

	ListByVariant(ctx context.Context, variantID id.ID) ([]*StockRecord, error)
	ListByBranch(ctx context.Context, loc Location) ([]*StockRecord, error)

	CreateTransfer(ctx context.Context, t *TransferRecord) error
	DeleteTransfer(ctx context.Context, transferID id.ID) error
	// ListTransfersByPurchase returns the distribution transfers created by
	// the given purchase, ordered by variant id then destination branch id.
	ListTransfersByPurchase(ctx context.Context, purchaseID id.ID) ([]*TransferRecord, error)
	ListTransfers(ctx context.Context, filter TransferFilter) ([]*TransferRecord, error)
}

// TransferFilter narrows transfer history queries. Zero-value fields are
// ignored.
type TransferFilter struct {
	VariantID id.ID
	BranchID  id.ID // matches either origin or destination
	Kind      TransferKind
	Limit     int
}
