package purchase

import (
	"context"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/tx"
	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/documents"
	"almacen/internal/domain/posting"
	"almacen/pkg/logger"
)

// BranchDirectory resolves branch ids to registered branches.
type BranchDirectory interface {
	GetByID(ctx context.Context, branchID id.ID) (*branch.Branch, error)
}

// Service implements purchase document operations. Creation, update and
// deletion each post against the ledger in a single transaction.
type Service struct {
	repo     Repository
	branches BranchDirectory
	engine   *posting.Engine
	txm      tx.Manager
}

func NewService(repo Repository, branches BranchDirectory, engine *posting.Engine, txm tx.Manager) *Service {
	return &Service{repo: repo, branches: branches, engine: engine, txm: txm}
}

// ensureBranches resolves every allocation's branch before posting starts.
func (s *Service) ensureBranches(ctx context.Context, lines []Line) error {
	seen := make(map[id.ID]bool)
	for _, l := range lines {
		for _, a := range l.Allocations {
			if seen[a.BranchID] {
				continue
			}
			seen[a.BranchID] = true
			if _, err := s.branches.GetByID(ctx, a.BranchID); err != nil {
				return err
			}
		}
	}
	return nil
}

// CreateInput carries a new purchase document.
type CreateInput struct {
	SupplierName  string
	InvoiceNumber string
	Date          time.Time
	PaymentMethod documents.PaymentMethod
	Notes         string
	Lines         []Line
}

// Create records a purchase and posts its distribution. Either the document
// and its full stock effect land together or nothing does.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Purchase, error) {
	now := time.Now().UTC()
	p := &Purchase{
		ID:            id.New(),
		SupplierName:  in.SupplierName,
		InvoiceNumber: in.InvoiceNumber,
		Date:          in.Date,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		Lines:         in.Lines,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.Date.IsZero() {
		p.Date = now
	}
	for i := range p.Lines {
		if id.IsNil(p.Lines[i].ID) {
			p.Lines[i].ID = id.New()
		}
	}

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}
	if err := validateDistribution(p.Lines); err != nil {
		return nil, err
	}
	if err := s.ensureBranches(ctx, p.Lines); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.engine.Distribute(ctx, p.ID, p.DistributionLines()); err != nil {
			return err
		}
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase recorded",
		"purchase_id", p.ID, "supplier", p.SupplierName,
		"lines", len(p.Lines), "total", p.Total().String())
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	return s.repo.GetByID(ctx, purchaseID)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Purchase, error) {
	return s.repo.List(ctx, filter)
}

// UpdateInput carries the replacement content for an existing purchase.
// Lines replace the previous lines entirely.
type UpdateInput struct {
	SupplierName  string
	InvoiceNumber string
	Date          time.Time
	PaymentMethod documents.PaymentMethod
	Notes         string
	Lines         []Line
}

// Update rewrites a purchase: the old distribution is reversed and the new
// one posted in the same transaction. The new lines are validated before
// anything is undone so an invalid edit leaves both document and stock
// unchanged.
func (s *Service) Update(ctx context.Context, purchaseID id.ID, in UpdateInput) (*Purchase, error) {
	existing, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, err
	}

	next := &Purchase{
		ID:            existing.ID,
		SupplierName:  in.SupplierName,
		InvoiceNumber: in.InvoiceNumber,
		Date:          in.Date,
		PaymentMethod: in.PaymentMethod,
		Notes:         in.Notes,
		Lines:         in.Lines,
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     time.Now().UTC(),
	}
	if next.Date.IsZero() {
		next.Date = existing.Date
	}
	for i := range next.Lines {
		if id.IsNil(next.Lines[i].ID) {
			next.Lines[i].ID = id.New()
		}
	}

	if err := next.Validate(ctx); err != nil {
		return nil, err
	}
	if err := validateDistribution(next.Lines); err != nil {
		return nil, err
	}
	if err := s.ensureBranches(ctx, next.Lines); err != nil {
		return nil, err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.engine.ReversePurchase(ctx, existing.ID, existing.DistributionLines()); err != nil {
			return err
		}
		if err := s.engine.Distribute(ctx, next.ID, next.DistributionLines()); err != nil {
			return err
		}
		return s.repo.Update(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase updated", "purchase_id", next.ID)
	return next, nil
}

// Delete removes a purchase after reversing its stock effect.
func (s *Service) Delete(ctx context.Context, purchaseID id.ID) error {
	existing, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.engine.ReversePurchase(ctx, existing.ID, existing.DistributionLines()); err != nil {
			return err
		}
		return s.repo.Delete(ctx, existing.ID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase deleted", "purchase_id", existing.ID)
	return nil
}

// validateDistribution rejects lines whose allocations exceed the received
// quantity before any posting starts.
func validateDistribution(lines []Line) error {
	for _, l := range lines {
		if allocated := l.Allocated(); allocated > l.Quantity {
			return apperror.NewOverAllocation(l.VariantID.String(), l.Quantity.Int64(), allocated.Int64())
		}
	}
	return nil
}
