package sale

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

// Service implements sale document operations and the open/confirmed state
// machine.
type Service struct {
	repo     Repository
	branches BranchDirectory
	engine   *posting.Engine
	txm      tx.Manager
}

func NewService(repo Repository, branches BranchDirectory, engine *posting.Engine, txm tx.Manager) *Service {
	return &Service{repo: repo, branches: branches, engine: engine, txm: txm}
}

// CreateInput carries a new sale document. Confirmed true posts the sale
// immediately instead of leaving it open.
type CreateInput struct {
	BranchID      id.ID
	CustomerName  string
	Date          time.Time
	PaymentMethod documents.PaymentMethod
	Notes         string
	Lines         []Line
	Confirmed     bool
}

// Create records a sale. An open sale only stores the document; a confirmed
// one also deducts stock, and a shortage fails the whole creation.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Sale, error) {
	now := time.Now().UTC()
	doc := &Sale{
		ID:            id.New(),
		BranchID:      in.BranchID,
		CustomerName:  in.CustomerName,
		Date:          in.Date,
		PaymentMethod: in.PaymentMethod,
		Status:        StatusOpen,
		Notes:         in.Notes,
		Lines:         in.Lines,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Confirmed {
		doc.Status = StatusConfirmed
	}
	if doc.Date.IsZero() {
		doc.Date = now
	}
	for i := range doc.Lines {
		if id.IsNil(doc.Lines[i].ID) {
			doc.Lines[i].ID = id.New()
		}
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}
	if _, err := s.branches.GetByID(ctx, doc.BranchID); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if doc.Status == StatusConfirmed {
			if err := s.engine.Fulfill(ctx, doc.BranchID, doc.FulfillmentLines()); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", doc.ID, "branch_id", doc.BranchID, "status", string(doc.Status),
		"lines", len(doc.Lines), "total", doc.Total().String())
	return doc, nil
}

func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Sale, error) {
	return s.repo.List(ctx, filter)
}

// UpdateInput carries the replacement content for an open sale. Lines
// replace the previous lines entirely.
type UpdateInput struct {
	CustomerName  string
	Date          time.Time
	PaymentMethod documents.PaymentMethod
	Notes         string
	Lines         []Line
}

// Update rewrites an open sale. Confirmed sales cannot be edited.
func (s *Service) Update(ctx context.Context, saleID id.ID, in UpdateInput) (*Sale, error) {
	existing, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusConfirmed {
		return nil, apperror.NewImmutableState("sale", saleID.String(), "confirmed sales cannot be edited")
	}

	next := &Sale{
		ID:            existing.ID,
		BranchID:      existing.BranchID,
		CustomerName:  in.CustomerName,
		Date:          in.Date,
		PaymentMethod: in.PaymentMethod,
		Status:        StatusOpen,
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
	if err := s.repo.Update(ctx, next); err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale updated", "sale_id", next.ID)
	return next, nil
}

// Confirm transitions an open sale to confirmed and deducts its stock. A
// shortage on any line leaves the sale open and the ledger untouched.
func (s *Service) Confirm(ctx context.Context, saleID id.ID) (*Sale, error) {
	doc, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if doc.Status == StatusConfirmed {
		return nil, apperror.NewImmutableState("sale", saleID.String(), "sale is already confirmed")
	}

	doc.Status = StatusConfirmed
	doc.UpdatedAt = time.Now().UTC()

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.engine.Fulfill(ctx, doc.BranchID, doc.FulfillmentLines()); err != nil {
			return err
		}
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale confirmed", "sale_id", doc.ID, "branch_id", doc.BranchID)
	return doc, nil
}

// Delete removes a sale. Deleting a confirmed sale first credits its full
// quantities back to the selling branch.
func (s *Service) Delete(ctx context.Context, saleID id.ID) error {
	doc, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return err
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if doc.Status == StatusConfirmed {
			if err := s.engine.ReverseSale(ctx, doc.BranchID, doc.FulfillmentLines()); err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, doc.ID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted", "sale_id", doc.ID, "status", string(doc.Status))
	return nil
}
