package reports_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/catalogs/variant"
	"almacen/internal/domain/documents"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/documents/sale"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/storage/memory"
)

// mapCache is an in-test cache that records hits and misses.
type mapCache struct {
	data map[string][]byte
	gets int
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	c.gets++
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func seedReportData(t *testing.T, store *memory.Store, when time.Time) (branchA, branchB id.ID) {
	t.Helper()
	ctx := context.Background()

	a := branch.NewBranch("Centro")
	b := branch.NewBranch("Norte")
	require.NoError(t, store.Branches().Create(ctx, a))
	require.NoError(t, store.Branches().Create(ctx, b))

	v := variant.NewVariant("Whey Protein", "chocolate", "2lb")
	require.NoError(t, store.Variants().Create(ctx, v))

	require.NoError(t, store.Purchases().Create(ctx, &purchase.Purchase{
		ID:            id.New(),
		SupplierName:  "Proveedor SA",
		Date:          when,
		PaymentMethod: documents.PaymentBankTransfer,
		Lines: []purchase.Line{{
			ID:        id.New(),
			VariantID: v.ID,
			Quantity:  10,
			UnitCost:  types.MustMoney("20.00"),
		}},
	}))

	newSale := func(branchID id.ID, status sale.Status, qty types.Quantity) *sale.Sale {
		return &sale.Sale{
			ID:            id.New(),
			BranchID:      branchID,
			Date:          when,
			PaymentMethod: documents.PaymentCash,
			Status:        status,
			Lines: []sale.Line{{
				ID:        id.New(),
				VariantID: v.ID,
				Quantity:  qty,
				UnitPrice: types.MustMoney("45.00"),
			}},
		}
	}
	require.NoError(t, store.Sales().Create(ctx, newSale(a.ID, sale.StatusConfirmed, 4)))
	require.NoError(t, store.Sales().Create(ctx, newSale(b.ID, sale.StatusConfirmed, 2)))
	// Open sales must not count toward any report.
	require.NoError(t, store.Sales().Create(ctx, newSale(a.ID, sale.StatusOpen, 50)))

	return a.ID, b.ID
}

func TestPeriodSummary_ComputesGrossMargin(t *testing.T) {
	store := memory.NewStore()
	when := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	seedReportData(t, store, when)

	svc := reports.NewService(store.Reports(), nil, 0)
	from := when.AddDate(0, 0, -7)
	to := when.AddDate(0, 0, 7)

	summary, err := svc.PeriodSummary(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SalesCount)
	assert.True(t, summary.SalesTotal.Equal(types.MustMoney("270.00")))
	assert.Equal(t, 1, summary.PurchasesCount)
	assert.True(t, summary.PurchasesTotal.Equal(types.MustMoney("200.00")))
	assert.True(t, summary.GrossMargin.Equal(types.MustMoney("70.00")))

	require.NotNil(t, summary.TopProduct)
	assert.Equal(t, "Whey Protein", summary.TopProduct.ProductName)
	assert.Equal(t, types.Quantity(6), summary.TopProduct.UnitsSold)
	assert.True(t, summary.TopProduct.Revenue.Equal(types.MustMoney("270.00")))
}

func TestPeriodSummary_OutsideRangeIsEmpty(t *testing.T) {
	store := memory.NewStore()
	when := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	seedReportData(t, store, when)

	svc := reports.NewService(store.Reports(), nil, 0)
	summary, err := svc.PeriodSummary(context.Background(), when.AddDate(0, 1, 0), when.AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.SalesCount)
	assert.True(t, summary.SalesTotal.IsZero())
	assert.Nil(t, summary.TopProduct)
}

func TestPeriodSummary_InvalidRange(t *testing.T) {
	svc := reports.NewService(memory.NewStore().Reports(), nil, 0)
	now := time.Now()

	_, err := svc.PeriodSummary(context.Background(), now, time.Time{})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	_, err = svc.PeriodSummary(context.Background(), now, now.AddDate(0, 0, -1))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestPeriodSummary_SecondCallServedFromCache(t *testing.T) {
	store := memory.NewStore()
	when := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	seedReportData(t, store, when)

	c := newMapCache()
	svc := reports.NewService(store.Reports(), c, time.Minute)
	from := when.AddDate(0, 0, -7)
	to := when.AddDate(0, 0, 7)

	first, err := svc.PeriodSummary(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)

	second, err := svc.PeriodSummary(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, 2, c.gets)
	assert.True(t, first.GrossMargin.Equal(second.GrossMargin))
}

func TestBranchComparison_OrdersBySalesTotal(t *testing.T) {
	store := memory.NewStore()
	when := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	branchA, branchB := seedReportData(t, store, when)

	svc := reports.NewService(store.Reports(), nil, 0)
	rows, err := svc.BranchComparison(context.Background(), when.AddDate(0, 0, -7), when.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, branchA, rows[0].BranchID)
	assert.True(t, rows[0].SalesTotal.Equal(types.MustMoney("180.00")))
	assert.Equal(t, types.Quantity(4), rows[0].UnitsSold)
	assert.True(t, rows[0].AverageTicket.Equal(types.MustMoney("180.00")))
	assert.True(t, rows[0].Share.Equal(types.MustMoney("66.67")))

	assert.Equal(t, branchB, rows[1].BranchID)
	assert.True(t, rows[1].SalesTotal.Equal(types.MustMoney("90.00")))
	assert.True(t, rows[1].AverageTicket.Equal(types.MustMoney("90.00")))
	assert.True(t, rows[1].Share.Equal(types.MustMoney("33.33")))
}

func TestLowStock_NeverCached(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	v := variant.NewVariant("Creatine", "", "300g")
	v.MinimumThreshold = 10
	require.NoError(t, store.Variants().Create(ctx, v))
	require.NoError(t, store.Stock().UpsertQuantity(ctx, v.ID, ledger.Central(), 3))
	require.NoError(t, store.Stock().UpsertQuantity(ctx, v.ID, ledger.AtBranch(id.New()), 2))

	c := newMapCache()
	svc := reports.NewService(store.Reports(), c, time.Minute)

	items, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, types.Quantity(5), items[0].Total)
	assert.Equal(t, types.Quantity(3), items[0].Central)
	assert.Equal(t, 0, c.gets)
	assert.Equal(t, 0, c.sets)

	// Restocking above the threshold drops the item immediately.
	require.NoError(t, store.Stock().UpsertQuantity(ctx, v.ID, ledger.Central(), 20))
	items, err = svc.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
