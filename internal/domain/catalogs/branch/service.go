package branch

import (
	"context"
	"fmt"

	"almacen/internal/core/id"
	"almacen/pkg/logger"
)

// Service provides business operations for the branch registry.
type Service struct {
	repo Repository
}

// NewService creates a new branch service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new branch.
func (s *Service) Create(ctx context.Context, b *Branch) error {
	if err := b.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return fmt.Errorf("create branch: %w", err)
	}

	logger.Info(ctx, "branch created", "id", b.ID, "name", b.Name)
	return nil
}

// GetByID retrieves a branch.
func (s *Service) GetByID(ctx context.Context, branchID id.ID) (*Branch, error) {
	return s.repo.GetByID(ctx, branchID)
}

// Rename changes the branch name.
func (s *Service) Rename(ctx context.Context, branchID id.ID, name string) (*Branch, error) {
	b, err := s.repo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}

	b.Name = name
	if err := b.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update branch: %w", err)
	}

	return b, nil
}

// Deactivate takes a branch out of operation. Its stock rows are kept; they
// simply stop showing up in aggregate views.
func (s *Service) Deactivate(ctx context.Context, branchID id.ID) error {
	b, err := s.repo.GetByID(ctx, branchID)
	if err != nil {
		return err
	}

	b.Active = false
	if err := s.repo.Update(ctx, b); err != nil {
		return fmt.Errorf("deactivate branch: %w", err)
	}

	logger.Info(ctx, "branch deactivated", "id", b.ID, "name", b.Name)
	return nil
}

// ListActive returns all operating branches.
func (s *Service) ListActive(ctx context.Context) ([]*Branch, error) {
	return s.repo.ListActive(ctx)
}

// List returns every branch, deactivated ones included.
func (s *Service) List(ctx context.Context) ([]*Branch, error) {
	return s.repo.List(ctx)
}
