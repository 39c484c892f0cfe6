package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/variant"
	"almacen/internal/infrastructure/storage/postgres"
)

const variantsTable = "variants"

var variantColumns = []string{
	"id", "product_name", "brand", "category", "flavor", "size", "sku",
	"cost", "sale_price", "minimum_threshold", "active", "created_at", "updated_at",
}

// VariantRepo implements variant.Repository.
type VariantRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

func NewVariantRepo(txm *postgres.TxManager) *VariantRepo {
	return &VariantRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *VariantRepo) Create(ctx context.Context, v *variant.Variant) error {
	q := r.builder.Insert(variantsTable).
		Columns(variantColumns...).
		Values(
			v.ID, v.ProductName, v.Brand, v.Category, v.Flavor, v.Size, v.SKU,
			v.Cost, v.SalePrice, v.MinimumThreshold.Int64(), v.Active, v.CreatedAt, v.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert variant: %w", err)
	}
	return nil
}

func (r *VariantRepo) GetByID(ctx context.Context, variantID id.ID) (*variant.Variant, error) {
	q := r.builder.Select(variantColumns...).
		From(variantsTable).
		Where(squirrel.Eq{"id": variantID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var v variant.Variant
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &v, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("variant", variantID.String())
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}

	return &v, nil
}

func (r *VariantRepo) Update(ctx context.Context, v *variant.Variant) error {
	q := r.builder.Update(variantsTable).
		Set("product_name", v.ProductName).
		Set("brand", v.Brand).
		Set("category", v.Category).
		Set("flavor", v.Flavor).
		Set("size", v.Size).
		Set("sku", v.SKU).
		Set("cost", v.Cost).
		Set("sale_price", v.SalePrice).
		Set("minimum_threshold", v.MinimumThreshold.Int64()).
		Set("active", v.Active).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": v.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("variant", v.ID.String())
	}
	return nil
}

func (r *VariantRepo) SetLastCost(ctx context.Context, variantID id.ID, cost types.Money) error {
	q := r.builder.Update(variantsTable).
		Set("cost", cost).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": variantID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set last cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("variant", variantID.String())
	}
	return nil
}

func (r *VariantRepo) List(ctx context.Context, onlyActive bool) ([]*variant.Variant, error) {
	q := r.builder.Select(variantColumns...).
		From(variantsTable).
		OrderBy("product_name", "flavor", "size")

	if onlyActive {
		q = q.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var variants []*variant.Variant
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &variants, sql, args...); err != nil {
		return nil, fmt.Errorf("select variants: %w", err)
	}

	return variants, nil
}

func (r *VariantRepo) Search(ctx context.Context, query string) ([]*variant.Variant, error) {
	pattern := "%" + query + "%"
	q := r.builder.Select(variantColumns...).
		From(variantsTable).
		Where(squirrel.Or{
			squirrel.ILike{"product_name": pattern},
			squirrel.ILike{"brand": pattern},
			squirrel.ILike{"flavor": pattern},
			squirrel.ILike{"sku": pattern},
		}).
		OrderBy("product_name", "flavor", "size")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var variants []*variant.Variant
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &variants, sql, args...); err != nil {
		return nil, fmt.Errorf("search variants: %w", err)
	}

	return variants, nil
}

// Ensure interface compliance.
var _ variant.Repository = (*VariantRepo)(nil)
