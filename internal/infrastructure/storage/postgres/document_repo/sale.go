package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/domain/documents/sale"
	"almacen/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *SaleRepo) Create(ctx context.Context, s *sale.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns(
			"id", "branch_id", "customer_name", "date",
			"payment_method", "status", "notes", "created_at", "updated_at",
		).
		Values(
			s.ID, s.BranchID, s.CustomerName, s.Date,
			string(s.PaymentMethod), string(s.Status), s.Notes, s.CreatedAt, s.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	return r.saveLines(ctx, s.ID, s.Lines)
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sale.Sale, error) {
	q := r.builder.Select(
		"id", "branch_id", "customer_name", "date",
		"payment_method", "status", "notes", "created_at", "updated_at",
	).From(salesTable).
		Where(squirrel.Eq{"id": saleID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s sale.Sale
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID.String())
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	lines, err := r.getLines(ctx, saleID)
	if err != nil {
		return nil, err
	}
	s.Lines = lines

	return &s, nil
}

func (r *SaleRepo) Update(ctx context.Context, s *sale.Sale) error {
	q := r.builder.Update(salesTable).
		Set("customer_name", s.CustomerName).
		Set("date", s.Date).
		Set("payment_method", string(s.PaymentMethod)).
		Set("status", string(s.Status)).
		Set("notes", s.Notes).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", s.ID.String())
	}

	return r.saveLines(ctx, s.ID, s.Lines)
}

func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	querier := r.txm.GetQuerier(ctx)

	// Lines cascade from the header.
	sql := "DELETE FROM " + salesTable + " WHERE id = $1"
	tag, err := querier.Exec(ctx, sql, saleID)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return nil
}

func (r *SaleRepo) List(ctx context.Context, filter sale.Filter) ([]*sale.Sale, error) {
	q := r.builder.Select(
		"id", "branch_id", "customer_name", "date",
		"payment_method", "status", "notes", "created_at", "updated_at",
	).From(salesTable)

	if !id.IsNil(filter.BranchID) {
		q = q.Where(squirrel.Eq{"branch_id": filter.BranchID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(filter.Status)})
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

	var sales []*sale.Sale
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sales, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}

	for _, s := range sales {
		lines, err := r.getLines(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		s.Lines = lines
	}

	return sales, nil
}

func (r *SaleRepo) getLines(ctx context.Context, saleID id.ID) ([]sale.Line, error) {
	q := r.builder.Select("id", "variant_id", "quantity", "unit_price").
		From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sale.Line
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// saveLines replaces all lines (delete existing + insert new).
func (r *SaleRepo) saveLines(ctx context.Context, saleID id.ID, lines []sale.Line) error {
	querier := r.txm.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + saleLinesTable + " WHERE sale_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, saleID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.builder.Insert(saleLinesTable).
		Columns("id", "sale_id", "line_no", "variant_id", "quantity", "unit_price")
	for i, l := range lines {
		q = q.Values(l.ID, saleID, i+1, l.VariantID, l.Quantity.Int64(), l.UnitPrice)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ sale.Repository = (*SaleRepo)(nil)
