// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/ledger"
	"almacen/internal/infrastructure/storage/postgres"
)

const (
	stockLevelsTable    = "stock_levels"
	stockTransfersTable = "stock_transfers"
)

// Repo implements ledger.Repository. Central stock is stored with the
// zero-UUID branch sentinel so every level row has a non-null key.
type Repo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new stock ledger repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func branchKey(loc ledger.Location) id.ID {
	if loc.IsCentral() {
		return id.Nil()
	}
	return loc.BranchID()
}

// GetQuantity returns the current quantity, zero when no row exists.
func (r *Repo) GetQuantity(ctx context.Context, variantID id.ID, loc ledger.Location) (types.Quantity, error) {
	q := r.builder.Select("quantity").
		From(stockLevelsTable).
		Where(squirrel.Eq{
			"variant_id": variantID,
			"branch_id":  branchKey(loc),
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var quantity int64
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &quantity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get quantity: %w", err)
	}

	return types.Quantity(quantity), nil
}

// GetQuantityForUpdate locks the level row and returns its quantity. A
// missing row is created at zero first so there is always a row to lock.
func (r *Repo) GetQuantityForUpdate(ctx context.Context, variantID id.ID, loc ledger.Location) (types.Quantity, error) {
	querier := r.txm.GetQuerier(ctx)
	key := branchKey(loc)

	insertSQL := `
		INSERT INTO stock_levels (id, variant_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (variant_id, branch_id) DO NOTHING
	`
	if _, err := querier.Exec(ctx, insertSQL, id.New(), variantID, key, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("ensure level row: %w", err)
	}

	lockSQL := `
		SELECT quantity
		FROM stock_levels
		WHERE variant_id = $1 AND branch_id = $2
		FOR UPDATE
	`
	var quantity int64
	if err := pgxscan.Get(ctx, querier, &quantity, lockSQL, variantID, key); err != nil {
		return 0, fmt.Errorf("lock level row: %w", err)
	}

	return types.Quantity(quantity), nil
}

// UpsertQuantity sets the absolute quantity for (variant, location).
func (r *Repo) UpsertQuantity(ctx context.Context, variantID id.ID, loc ledger.Location, qty types.Quantity) error {
	sql := `
		INSERT INTO stock_levels (id, variant_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (variant_id, branch_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`
	querier := r.txm.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql, id.New(), variantID, branchKey(loc), qty.Int64(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert quantity: %w", err)
	}
	return nil
}

// ListByVariant returns all level rows for a variant, central first.
func (r *Repo) ListByVariant(ctx context.Context, variantID id.ID) ([]*ledger.StockRecord, error) {
	q := r.builder.Select("id", "variant_id", "branch_id", "quantity", "updated_at").
		From(stockLevelsTable).
		Where(squirrel.Eq{"variant_id": variantID}).
		OrderBy("branch_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []*ledger.StockRecord
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select levels: %w", err)
	}

	return records, nil
}

// ListByBranch returns all level rows at one location.
func (r *Repo) ListByBranch(ctx context.Context, loc ledger.Location) ([]*ledger.StockRecord, error) {
	q := r.builder.Select("id", "variant_id", "branch_id", "quantity", "updated_at").
		From(stockLevelsTable).
		Where(squirrel.Eq{"branch_id": branchKey(loc)}).
		OrderBy("variant_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var records []*ledger.StockRecord
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &records, sql, args...); err != nil {
		return nil, fmt.Errorf("select levels: %w", err)
	}

	return records, nil
}

// CreateTransfer inserts a transfer record.
func (r *Repo) CreateTransfer(ctx context.Context, t *ledger.TransferRecord) error {
	q := r.builder.Insert(stockTransfersTable).
		Columns(
			"id", "variant_id", "origin_branch_id", "destination_branch_id",
			"quantity", "kind", "purchase_id", "note", "created_at",
		).
		Values(
			t.ID, t.VariantID, t.OriginID, t.DestinationID,
			t.Quantity.Int64(), string(t.Kind), t.PurchaseID, t.Note, t.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

// DeleteTransfer removes one transfer record.
func (r *Repo) DeleteTransfer(ctx context.Context, transferID id.ID) error {
	q := r.builder.Delete(stockTransfersTable).
		Where(squirrel.Eq{"id": transferID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete transfer: %w", err)
	}
	return nil
}

// ListTransfersByPurchase returns a purchase's distribution transfers.
func (r *Repo) ListTransfersByPurchase(ctx context.Context, purchaseID id.ID) ([]*ledger.TransferRecord, error) {
	q := r.builder.Select(
		"id", "variant_id", "origin_branch_id", "destination_branch_id",
		"quantity", "kind", "purchase_id", "note", "created_at",
	).From(stockTransfersTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("variant_id", "destination_branch_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var transfers []*ledger.TransferRecord
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &transfers, sql, args...); err != nil {
		return nil, fmt.Errorf("select transfers: %w", err)
	}

	return transfers, nil
}

// ListTransfers returns transfer history matching the filter.
func (r *Repo) ListTransfers(ctx context.Context, filter ledger.TransferFilter) ([]*ledger.TransferRecord, error) {
	q := r.builder.Select(
		"id", "variant_id", "origin_branch_id", "destination_branch_id",
		"quantity", "kind", "purchase_id", "note", "created_at",
	).From(stockTransfersTable)

	if !id.IsNil(filter.VariantID) {
		q = q.Where(squirrel.Eq{"variant_id": filter.VariantID})
	}
	if !id.IsNil(filter.BranchID) {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"origin_branch_id": filter.BranchID},
			squirrel.Eq{"destination_branch_id": filter.BranchID},
		})
	}
	if filter.Kind != "" {
		q = q.Where(squirrel.Eq{"kind": string(filter.Kind)})
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var transfers []*ledger.TransferRecord
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &transfers, sql, args...); err != nil {
		return nil, fmt.Errorf("select transfers: %w", err)
	}

	return transfers, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*Repo)(nil)
