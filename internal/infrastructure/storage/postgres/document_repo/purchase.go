// Package document_repo provides PostgreSQL implementations for the purchase
// and sale document repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable           = "doc_purchases"
	purchaseLinesTable       = "doc_purchase_lines"
	purchaseAllocationsTable = "doc_purchase_allocations"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *PurchaseRepo) Create(ctx context.Context, p *purchase.Purchase) error {
	q := r.builder.Insert(purchasesTable).
		Columns(
			"id", "supplier_name", "invoice_number", "date",
			"payment_method", "notes", "created_at", "updated_at",
		).
		Values(
			p.ID, p.SupplierName, p.InvoiceNumber, p.Date,
			string(p.PaymentMethod), p.Notes, p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}

	return r.saveLines(ctx, p.ID, p.Lines)
}

func (r *PurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*purchase.Purchase, error) {
	q := r.builder.Select(
		"id", "supplier_name", "invoice_number", "date",
		"payment_method", "notes", "created_at", "updated_at",
	).From(purchasesTable).
		Where(squirrel.Eq{"id": purchaseID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p purchase.Purchase
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", purchaseID.String())
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}

	lines, err := r.getLines(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	p.Lines = lines

	return &p, nil
}

func (r *PurchaseRepo) Update(ctx context.Context, p *purchase.Purchase) error {
	q := r.builder.Update(purchasesTable).
		Set("supplier_name", p.SupplierName).
		Set("invoice_number", p.InvoiceNumber).
		Set("date", p.Date).
		Set("payment_method", string(p.PaymentMethod)).
		Set("notes", p.Notes).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase", p.ID.String())
	}

	return r.saveLines(ctx, p.ID, p.Lines)
}

func (r *PurchaseRepo) Delete(ctx context.Context, purchaseID id.ID) error {
	querier := r.txm.GetQuerier(ctx)

	// Allocations cascade from lines via FK; lines cascade from the header.
	sql := "DELETE FROM " + purchasesTable + " WHERE id = $1"
	tag, err := querier.Exec(ctx, sql, purchaseID)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase", purchaseID.String())
	}
	return nil
}

func (r *PurchaseRepo) List(ctx context.Context, filter purchase.Filter) ([]*purchase.Purchase, error) {
	q := r.builder.Select(
		"id", "supplier_name", "invoice_number", "date",
		"payment_method", "notes", "created_at", "updated_at",
	).From(purchasesTable)

	if filter.SupplierName != "" {
		q = q.Where(squirrel.ILike{"supplier_name": "%" + filter.SupplierName + "%"})
	}
	if !filter.From.IsZero() {
		q = q.Where(squirrel.GtOrEq{"date": filter.From})
	}
	if !filter.To.IsZero() {
		q = q.Where(squirrel.LtOrEq{"date": filter.To})
	}

	q = q.OrderBy("date DESC", "created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var purchases []*purchase.Purchase
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &purchases, sql, args...); err != nil {
		return nil, fmt.Errorf("select purchases: %w", err)
	}

	for _, p := range purchases {
		lines, err := r.getLines(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Lines = lines
	}

	return purchases, nil
}

// purchaseLineRow is the flat line projection without allocations.
type purchaseLineRow struct {
	ID        id.ID       `db:"id"`
	VariantID id.ID       `db:"variant_id"`
	Quantity  int64       `db:"quantity"`
	UnitCost  types.Money `db:"unit_cost"`
}

// allocationRow joins allocations to their line.
type allocationRow struct {
	LineID   id.ID `db:"purchase_line_id"`
	BranchID id.ID `db:"branch_id"`
	Quantity int64 `db:"quantity"`
}

func (r *PurchaseRepo) getLines(ctx context.Context, purchaseID id.ID) ([]purchase.Line, error) {
	querier := r.txm.GetQuerier(ctx)

	q := r.builder.Select("id", "variant_id", "quantity", "unit_cost").
		From(purchaseLinesTable).
		Where(squirrel.Eq{"purchase_id": purchaseID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []purchaseLineRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	allocSQL := `
		SELECT a.purchase_line_id, a.branch_id, a.quantity
		FROM doc_purchase_allocations a
		JOIN doc_purchase_lines l ON l.id = a.purchase_line_id
		WHERE l.purchase_id = $1
		ORDER BY a.branch_id
	`
	var allocs []allocationRow
	if err := pgxscan.Select(ctx, querier, &allocs, allocSQL, purchaseID); err != nil {
		return nil, fmt.Errorf("get allocations: %w", err)
	}

	byLine := make(map[id.ID][]purchase.Allocation)
	for _, a := range allocs {
		byLine[a.LineID] = append(byLine[a.LineID], purchase.Allocation{
			BranchID: a.BranchID,
			Quantity: types.Quantity(a.Quantity),
		})
	}

	lines := make([]purchase.Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, purchase.Line{
			ID:          row.ID,
			VariantID:   row.VariantID,
			Quantity:    types.Quantity(row.Quantity),
			UnitCost:    row.UnitCost,
			Allocations: byLine[row.ID],
		})
	}
	return lines, nil
}

// saveLines replaces all lines and allocations (delete existing + insert new).
func (r *PurchaseRepo) saveLines(ctx context.Context, purchaseID id.ID, lines []purchase.Line) error {
	querier := r.txm.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + purchaseLinesTable + " WHERE purchase_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, purchaseID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	lineQ := r.builder.Insert(purchaseLinesTable).
		Columns("id", "purchase_id", "line_no", "variant_id", "quantity", "unit_cost")
	for i, l := range lines {
		lineQ = lineQ.Values(l.ID, purchaseID, i+1, l.VariantID, l.Quantity.Int64(), l.UnitCost)
	}

	sql, args, err := lineQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	allocQ := r.builder.Insert(purchaseAllocationsTable).
		Columns("purchase_line_id", "branch_id", "quantity")
	hasAllocs := false
	for _, l := range lines {
		for _, a := range l.Allocations {
			allocQ = allocQ.Values(l.ID, a.BranchID, a.Quantity.Int64())
			hasAllocs = true
		}
	}
	if !hasAllocs {
		return nil
	}

	sql, args, err = allocQ.ToSql()
	if err != nil {
		return fmt.Errorf("build insert allocations: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert allocations: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ purchase.Repository = (*PurchaseRepo)(nil)
