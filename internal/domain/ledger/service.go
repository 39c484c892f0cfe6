package ledger

import (
	"context"
	"sort"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/tx"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/branch"
	"almacen/pkg/logger"
)

// BranchDirectory resolves branch ids to registered branches. Lookups for
// unknown ids return a not-found error.
type BranchDirectory interface {
	GetByID(ctx context.Context, branchID id.ID) (*branch.Branch, error)
}

// Service implements stock ledger operations. Transfer and SetAbsolute run
// their own transactions; Add is a building block that expects the caller to
// already be inside one.
type Service struct {
	repo     Repository
	branches BranchDirectory
	txm      tx.Manager
}

func NewService(repo Repository, branches BranchDirectory, txm tx.Manager) *Service {
	return &Service{repo: repo, branches: branches, txm: txm}
}

// ensureBranch rejects locations that name a branch nobody registered. The
// central warehouse always exists.
func (s *Service) ensureBranch(ctx context.Context, loc Location) error {
	if loc.IsCentral() {
		return nil
	}
	_, err := s.branches.GetByID(ctx, loc.BranchID())
	return err
}

// GetQuantity returns the quantity at one location, zero if no record exists.
func (s *Service) GetQuantity(ctx context.Context, variantID id.ID, loc Location) (types.Quantity, error) {
	return s.repo.GetQuantity(ctx, variantID, loc)
}

// VariantBreakdown describes where a variant's stock sits.
type VariantBreakdown struct {
	VariantID id.ID          `json:"variantId"`
	Central   types.Quantity `json:"central"`
	Branches  []BranchStock  `json:"branches"`
	Total     types.Quantity `json:"total"`
}

// BranchStock is one branch's quantity within a breakdown.
type BranchStock struct {
	BranchID id.ID          `json:"branchId"`
	Quantity types.Quantity `json:"quantity"`
}

// Breakdown returns central, per-branch, and total quantities for a variant.
func (s *Service) Breakdown(ctx context.Context, variantID id.ID) (*VariantBreakdown, error) {
	records, err := s.repo.ListByVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}

	bd := &VariantBreakdown{VariantID: variantID}
	for _, r := range records {
		bd.Total += r.Quantity
		if r.Location().IsCentral() {
			bd.Central = r.Quantity
			continue
		}
		bd.Branches = append(bd.Branches, BranchStock{BranchID: r.BranchID, Quantity: r.Quantity})
	}
	sort.Slice(bd.Branches, func(i, j int) bool {
		return bd.Branches[i].BranchID.String() < bd.Branches[j].BranchID.String()
	})
	return bd, nil
}

// ListByBranch returns all stock records at one location.
func (s *Service) ListByBranch(ctx context.Context, loc Location) ([]*StockRecord, error) {
	return s.repo.ListByBranch(ctx, loc)
}

// Add applies a signed delta to (variant, location). A delta that would take
// the quantity below zero fails with an insufficient stock error and leaves
// the record untouched. Must be called inside a transaction when composed
// with other writes.
func (s *Service) Add(ctx context.Context, variantID id.ID, loc Location, delta types.Quantity) (types.Quantity, error) {
	current, err := s.repo.GetQuantityForUpdate(ctx, variantID, loc)
	if err != nil {
		return 0, err
	}
	next := current + delta
	if next < 0 {
		return 0, apperror.NewInsufficientStockAt(variantID.String(), loc.String(), int64(-delta), int64(current))
	}
	if err := s.repo.UpsertQuantity(ctx, variantID, loc, next); err != nil {
		return 0, err
	}
	return next, nil
}

// AddFloored applies a signed delta but clamps the result at zero instead of
// failing. Reserved for reversal paths where recorded history can exceed what
// is physically left after later manual adjustments. Must be called inside a
// transaction when composed with other writes.
func AddFloored(ctx context.Context, repo Repository, variantID id.ID, loc Location, delta types.Quantity) (types.Quantity, error) {
	current, err := repo.GetQuantityForUpdate(ctx, variantID, loc)
	if err != nil {
		return 0, err
	}
	next := current + delta
	if next < 0 {
		next = 0
	}
	if err := repo.UpsertQuantity(ctx, variantID, loc, next); err != nil {
		return 0, err
	}
	return next, nil
}

// SetAbsolute overwrites the quantity at (variant, location) with an exact
// value. This is the manual adjustment operation; it bypasses document flow
// and writes no transfer record.
func (s *Service) SetAbsolute(ctx context.Context, variantID id.ID, loc Location, qty types.Quantity) error {
	if qty.IsNegative() {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("quantity", qty.Int64())
	}
	if err := s.ensureBranch(ctx, loc); err != nil {
		return err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetQuantityForUpdate(ctx, variantID, loc); err != nil {
			return err
		}
		return s.repo.UpsertQuantity(ctx, variantID, loc, qty)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock adjusted",
		"variant_id", variantID, "location", loc.String(), "quantity", qty.Int64())
	return nil
}

// Transfer moves qty of a variant between two distinct locations. Origin and
// destination determine the kind: central to branch is a restock, branch to
// central a return, branch to branch a direct move. The move fails, without
// touching either record, when the origin lacks the quantity.
func (s *Service) Transfer(ctx context.Context, variantID id.ID, origin, destination Location, qty types.Quantity, note string) (*TransferRecord, error) {
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("transfer quantity must be positive").
			WithDetail("quantity", qty.Int64())
	}
	if origin == destination {
		return nil, apperror.NewInvalidTransferTarget("origin and destination are the same location")
	}
	if err := s.ensureBranch(ctx, origin); err != nil {
		return nil, err
	}
	if err := s.ensureBranch(ctx, destination); err != nil {
		return nil, err
	}

	kind := classify(origin, destination)
	t := NewTransfer(variantID, origin, destination, qty, kind)
	t.Note = note

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		first, second := lockOrder(origin, destination)
		if _, err := s.repo.GetQuantityForUpdate(ctx, variantID, first); err != nil {
			return err
		}
		if _, err := s.repo.GetQuantityForUpdate(ctx, variantID, second); err != nil {
			return err
		}

		available, err := s.repo.GetQuantity(ctx, variantID, origin)
		if err != nil {
			return err
		}
		if available < qty {
			return apperror.NewInsufficientStockAt(variantID.String(), origin.String(), qty.Int64(), available.Int64())
		}

		if err := s.repo.UpsertQuantity(ctx, variantID, origin, available-qty); err != nil {
			return err
		}
		destQty, err := s.repo.GetQuantity(ctx, variantID, destination)
		if err != nil {
			return err
		}
		if err := s.repo.UpsertQuantity(ctx, variantID, destination, destQty+qty); err != nil {
			return err
		}
		return s.repo.CreateTransfer(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock transferred",
		"transfer_id", t.ID, "variant_id", variantID, "kind", string(kind),
		"origin", origin.String(), "destination", destination.String(), "quantity", qty.Int64())
	return t, nil
}

// ListTransfers returns transfer history matching the filter.
func (s *Service) ListTransfers(ctx context.Context, filter TransferFilter) ([]*TransferRecord, error) {
	return s.repo.ListTransfers(ctx, filter)
}

func classify(origin, destination Location) TransferKind {
	switch {
	case origin.IsCentral():
		return KindRestock
	case destination.IsCentral():
		return KindReturn
	default:
		return KindBranchToBranch
	}
}

// lockOrder returns the two locations in canonical locking order: central
// first, then branches by ascending id.
func lockOrder(a, b Location) (Location, Location) {
	switch {
	case a.IsCentral():
		return a, b
	case b.IsCentral():
		return b, a
	case a.BranchID().String() < b.BranchID().String():
		return a, b
	default:
		return b, a
	}
}
