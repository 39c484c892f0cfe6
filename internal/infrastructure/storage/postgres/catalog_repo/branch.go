// Package catalog_repo provides PostgreSQL implementations for the catalog
// repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/infrastructure/storage/postgres"
)

const branchesTable = "branches"

// BranchRepo implements branch.Repository.
type BranchRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

func NewBranchRepo(txm *postgres.TxManager) *BranchRepo {
	return &BranchRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *BranchRepo) Create(ctx context.Context, b *branch.Branch) error {
	q := r.builder.Insert(branchesTable).
		Columns("id", "name", "active", "created_at").
		Values(b.ID, b.Name, b.Active, b.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert branch: %w", err)
	}
	return nil
}

func (r *BranchRepo) GetByID(ctx context.Context, branchID id.ID) (*branch.Branch, error) {
	q := r.builder.Select("id", "name", "active", "created_at").
		From(branchesTable).
		Where(squirrel.Eq{"id": branchID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b branch.Branch
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("branch", branchID.String())
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}

	return &b, nil
}

func (r *BranchRepo) Update(ctx context.Context, b *branch.Branch) error {
	q := r.builder.Update(branchesTable).
		Set("name", b.Name).
		Set("active", b.Active).
		Where(squirrel.Eq{"id": b.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update branch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("branch", b.ID.String())
	}
	return nil
}

func (r *BranchRepo) ListActive(ctx context.Context) ([]*branch.Branch, error) {
	return r.list(ctx, true)
}

func (r *BranchRepo) List(ctx context.Context) ([]*branch.Branch, error) {
	return r.list(ctx, false)
}

func (r *BranchRepo) list(ctx context.Context, onlyActive bool) ([]*branch.Branch, error) {
	q := r.builder.Select("id", "name", "active", "created_at").
		From(branchesTable).
		OrderBy("name")

	if onlyActive {
		q = q.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var branches []*branch.Branch
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &branches, sql, args...); err != nil {
		return nil, fmt.Errorf("select branches: %w", err)
	}

	return branches, nil
}

// Ensure interface compliance.
var _ branch.Repository = (*BranchRepo)(nil)
