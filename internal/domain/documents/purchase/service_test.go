package purchase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/catalogs/variant"
	"almacen/internal/domain/documents"
	"almacen/internal/domain/documents/purchase"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/posting"
	"almacen/internal/infrastructure/storage/memory"
)

type purchaseFixture struct {
	store   *memory.Store
	service *purchase.Service
}

func newPurchaseFixture() *purchaseFixture {
	store := memory.NewStore()
	engine := posting.NewEngine(store.Stock(), store.Variants())
	return &purchaseFixture{
		store:   store,
		service: purchase.NewService(store.Purchases(), store.Branches(), engine, memory.NewTxManager()),
	}
}

func (f *purchaseFixture) seedVariant(t *testing.T, name string) id.ID {
	t.Helper()
	v := variant.NewVariant(name, "", "")
	require.NoError(t, f.store.Variants().Create(context.Background(), v))
	return v.ID
}

func (f *purchaseFixture) seedBranch(t *testing.T, name string) id.ID {
	t.Helper()
	b := branch.NewBranch(name)
	require.NoError(t, f.store.Branches().Create(context.Background(), b))
	return b.ID
}

func (f *purchaseFixture) stock(t *testing.T, variantID id.ID, loc ledger.Location) types.Quantity {
	t.Helper()
	qty, err := f.store.Stock().GetQuantity(context.Background(), variantID, loc)
	require.NoError(t, err)
	return qty
}

func purchaseInput(variantID, branchID id.ID) purchase.CreateInput {
	return purchase.CreateInput{
		SupplierName:  "Distribuidora Fitness SA",
		InvoiceNumber: "A-0001",
		PaymentMethod: documents.PaymentBankTransfer,
		Lines: []purchase.Line{{
			VariantID:   variantID,
			Quantity:    30,
			UnitCost:    types.MustMoney("28.50"),
			Allocations: []purchase.Allocation{{BranchID: branchID, Quantity: 12}},
		}},
	}
}

func TestCreatePurchase_PostsDistribution(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchID := f.seedBranch(t, "Norte")

	doc, err := f.service.Create(ctx, purchaseInput(variantID, branchID))
	require.NoError(t, err)
	assert.True(t, doc.Total().Equal(types.MustMoney("855.00")))

	assert.Equal(t, types.Quantity(18), f.stock(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(12), f.stock(t, variantID, ledger.AtBranch(branchID)))

	stored, err := f.service.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Lines, 1)
	require.Len(t, stored.Lines[0].Allocations, 1)
}

func TestCreatePurchase_OverAllocationStoresNothing(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchID := f.seedBranch(t, "Norte")

	in := purchaseInput(variantID, branchID)
	in.Lines[0].Allocations[0].Quantity = 31
	_, err := f.service.Create(ctx, in)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeOverAllocation))

	docs, err := f.service.List(ctx, purchase.Filter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, types.Quantity(0), f.stock(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(0), f.stock(t, variantID, ledger.AtBranch(branchID)))
}

func TestCreatePurchase_UnknownAllocationBranchRejected(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")

	// Allocation to a branch nobody registered.
	phantomID := id.New()
	_, err := f.service.Create(ctx, purchaseInput(variantID, phantomID))
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	docs, err := f.service.List(ctx, purchase.Filter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, types.Quantity(0), f.stock(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(0), f.stock(t, variantID, ledger.AtBranch(phantomID)))
}

func TestUpdatePurchase_ReversesThenReposts(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchID := f.seedBranch(t, "Norte")

	doc, err := f.service.Create(ctx, purchaseInput(variantID, branchID))
	require.NoError(t, err)

	updated, err := f.service.Update(ctx, doc.ID, purchase.UpdateInput{
		SupplierName:  doc.SupplierName,
		InvoiceNumber: doc.InvoiceNumber,
		PaymentMethod: doc.PaymentMethod,
		Lines: []purchase.Line{{
			VariantID:   variantID,
			Quantity:    10,
			UnitCost:    types.MustMoney("27.00"),
			Allocations: []purchase.Allocation{{BranchID: branchID, Quantity: 4}},
		}},
	})
	require.NoError(t, err)
	assert.True(t, updated.Total().Equal(types.MustMoney("270.00")))

	// Old effect fully reversed, new one posted.
	assert.Equal(t, types.Quantity(6), f.stock(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(4), f.stock(t, variantID, ledger.AtBranch(branchID)))

	transfers, err := f.store.Stock().ListTransfersByPurchase(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, types.Quantity(4), transfers[0].Quantity)
}

func TestUpdatePurchase_InvalidEditLeavesEverythingUntouched(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchID := f.seedBranch(t, "Norte")

	doc, err := f.service.Create(ctx, purchaseInput(variantID, branchID))
	require.NoError(t, err)

	_, err = f.service.Update(ctx, doc.ID, purchase.UpdateInput{
		SupplierName:  doc.SupplierName,
		PaymentMethod: doc.PaymentMethod,
		Lines: []purchase.Line{{
			VariantID:   variantID,
			Quantity:    10,
			UnitCost:    types.MustMoney("27.00"),
			Allocations: []purchase.Allocation{{BranchID: branchID, Quantity: 11}},
		}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeOverAllocation))

	assert.Equal(t, types.Quantity(18), f.stock(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(12), f.stock(t, variantID, ledger.AtBranch(branchID)))

	stored, err := f.service.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(30), stored.Lines[0].Quantity)
}

func TestDeletePurchase_ReversesStockEffect(t *testing.T) {
	f := newPurchaseFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchID := f.seedBranch(t, "Norte")

	doc, err := f.service.Create(ctx, purchaseInput(variantID, branchID))
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, doc.ID))

	assert.Equal(t, types.Quantity(0), f.stock(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(0), f.stock(t, variantID, ledger.AtBranch(branchID)))

	_, err = f.service.GetByID(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestPurchaseValidate(t *testing.T) {
	variantID, branchID := id.New(), id.New()

	base := func() *purchase.Purchase {
		return &purchase.Purchase{
			ID:            id.New(),
			SupplierName:  "Proveedor SA",
			PaymentMethod: documents.PaymentCash,
			Lines: []purchase.Line{{
				ID:        id.New(),
				VariantID: variantID,
				Quantity:  5,
				UnitCost:  types.MustMoney("10.00"),
				Allocations: []purchase.Allocation{
					{BranchID: branchID, Quantity: 2},
				},
			}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(p *purchase.Purchase)
		wantErr bool
	}{
		{"valid", func(p *purchase.Purchase) {}, false},
		{"missing supplier", func(p *purchase.Purchase) { p.SupplierName = "" }, true},
		{"bad payment", func(p *purchase.Purchase) { p.PaymentMethod = "barter" }, true},
		{"no lines", func(p *purchase.Purchase) { p.Lines = nil }, true},
		{"zero quantity", func(p *purchase.Purchase) { p.Lines[0].Quantity = 0 }, true},
		{"negative cost", func(p *purchase.Purchase) { p.Lines[0].UnitCost = types.MustMoney("-1") }, true},
		{"nil allocation branch", func(p *purchase.Purchase) { p.Lines[0].Allocations[0].BranchID = id.ID{} }, true},
		{"zero allocation quantity", func(p *purchase.Purchase) { p.Lines[0].Allocations[0].Quantity = 0 }, true},
		{"duplicate allocation branch", func(p *purchase.Purchase) {
			p.Lines[0].Allocations = append(p.Lines[0].Allocations, purchase.Allocation{BranchID: branchID, Quantity: 1})
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base()
			tt.mutate(p)
			err := p.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
