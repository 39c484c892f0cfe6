package sale_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/documents"
	"almacen/internal/domain/documents/sale"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/posting"
	"almacen/internal/infrastructure/storage/memory"
)

type saleFixture struct {
	store   *memory.Store
	service *sale.Service
}

func newSaleFixture() *saleFixture {
	store := memory.NewStore()
	engine := posting.NewEngine(store.Stock(), store.Variants())
	return &saleFixture{
		store:   store,
		service: sale.NewService(store.Sales(), store.Branches(), engine, memory.NewTxManager()),
	}
}

func (f *saleFixture) branch(t *testing.T) id.ID {
	t.Helper()
	b := branch.NewBranch("Norte")
	require.NoError(t, f.store.Branches().Create(context.Background(), b))
	return b.ID
}

func (f *saleFixture) stock(t *testing.T, variantID id.ID, loc ledger.Location) types.Quantity {
	t.Helper()
	qty, err := f.store.Stock().GetQuantity(context.Background(), variantID, loc)
	require.NoError(t, err)
	return qty
}

func saleInput(branchID, variantID id.ID, qty types.Quantity) sale.CreateInput {
	return sale.CreateInput{
		BranchID:      branchID,
		PaymentMethod: documents.PaymentCash,
		Lines: []sale.Line{{
			VariantID: variantID,
			Quantity:  qty,
			UnitPrice: types.MustMoney("45.00"),
		}},
	}
}

func TestCreateOpenSale_DoesNotTouchStock(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	branchID, variantID := f.branch(t), id.New()
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchID), 10))

	doc, err := f.service.Create(ctx, saleInput(branchID, variantID, 4))
	require.NoError(t, err)
	assert.Equal(t, sale.StatusOpen, doc.Status)
	assert.Equal(t, types.Quantity(10), f.stock(t, variantID, ledger.AtBranch(branchID)))
}

func TestCreateConfirmedSale_DeductsImmediately(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	branchID, variantID := f.branch(t), id.New()
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchID), 10))

	in := saleInput(branchID, variantID, 4)
	in.Confirmed = true
	doc, err := f.service.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusConfirmed, doc.Status)
	assert.Equal(t, types.Quantity(6), f.stock(t, variantID, ledger.AtBranch(branchID)))
}

func TestCreateConfirmedSale_ShortageStoresNothing(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	branchID, variantID := f.branch(t), id.New()
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchID), 2))

	in := saleInput(branchID, variantID, 5)
	in.Confirmed = true
	_, err := f.service.Create(ctx, in)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	docs, err := f.service.List(ctx, sale.Filter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, types.Quantity(2), f.stock(t, variantID, ledger.AtBranch(branchID)))
}

func TestCreateSale_UnknownBranchRejected(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	variantID := id.New()
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 10))

	// A branch id nobody registered must not fulfill from central.
	in := saleInput(id.New(), variantID, 5)
	in.Confirmed = true
	_, err := f.service.Create(ctx, in)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	docs, err := f.service.List(ctx, sale.Filter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, types.Quantity(10), f.stock(t, variantID, ledger.Central()))
}

func TestConfirm_DeductsAndFreezes(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	branchID, variantID := f.branch(t), id.New()
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchID), 3))
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 5))

	doc, err := f.service.Create(ctx, saleInput(branchID, variantID, 6))
	require.NoError(t, err)

	confirmed, err := f.service.Confirm(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusConfirmed, confirmed.Status)

	// Branch first, central covers the rest.
	assert.Equal(t, types.Quantity(0), f.stock(t, variantID, ledger.AtBranch(branchID)))
	assert.Equal(t, types.Quantity(2), f.stock(t, variantID, ledger.Central()))

	_, err = f.service.Confirm(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeImmutableState))
}

func TestConfirm_ShortageLeavesSaleOpen(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	branchID, variantID := f.branch(t), id.New()
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchID), 1))

	doc, err := f.service.Create(ctx, saleInput(branchID, variantID, 4))
	require.NoError(t, err)

	_, err = f.service.Confirm(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	stored, err := f.service.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusOpen, stored.Status)
	assert.Equal(t, types.Quantity(1), f.stock(t, variantID, ledger.AtBranch(branchID)))
}

func TestUpdate_OpenSaleReplacesLines(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	branchID, variantID := f.branch(t), id.New()

	doc, err := f.service.Create(ctx, saleInput(branchID, variantID, 2))
	require.NoError(t, err)

	updated, err := f.service.Update(ctx, doc.ID, sale.UpdateInput{
		CustomerName:  "Ana",
		PaymentMethod: documents.PaymentCard,
		Lines: []sale.Line{{
			VariantID: variantID,
			Quantity:  7,
			UnitPrice: types.MustMoney("40.00"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.CustomerName)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, types.Quantity(7), updated.Lines[0].Quantity)
	assert.True(t, updated.Total().Equal(types.MustMoney("280.00")))
}

func TestUpdate_ConfirmedSaleRejected(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	branchID, variantID := f.branch(t), id.New()
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchID), 10))

	in := saleInput(branchID, variantID, 2)
	in.Confirmed = true
	doc, err := f.service.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.service.Update(ctx, doc.ID, sale.UpdateInput{
		PaymentMethod: documents.PaymentCash,
		Lines:         doc.Lines,
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeImmutableState))
}

func TestDelete_ConfirmedSaleCreditsBranch(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	branchID, variantID := f.branch(t), id.New()
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchID), 3))
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 5))

	in := saleInput(branchID, variantID, 6)
	in.Confirmed = true
	doc, err := f.service.Create(ctx, in)
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, doc.ID))

	// The full quantity returns to the branch, including the part central
	// supplied.
	assert.Equal(t, types.Quantity(6), f.stock(t, variantID, ledger.AtBranch(branchID)))
	assert.Equal(t, types.Quantity(2), f.stock(t, variantID, ledger.Central()))

	_, err = f.service.GetByID(ctx, doc.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDelete_OpenSaleLeavesStockAlone(t *testing.T) {
	f := newSaleFixture()
	ctx := context.Background()
	branchID, variantID := f.branch(t), id.New()
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchID), 3))

	doc, err := f.service.Create(ctx, saleInput(branchID, variantID, 2))
	require.NoError(t, err)
	require.NoError(t, f.service.Delete(ctx, doc.ID))

	assert.Equal(t, types.Quantity(3), f.stock(t, variantID, ledger.AtBranch(branchID)))
}

func TestSaleValidate(t *testing.T) {
	branchID, variantID := id.New(), id.New()

	tests := []struct {
		name    string
		mutate  func(s *sale.Sale)
		wantErr bool
	}{
		{"valid", func(s *sale.Sale) {}, false},
		{"missing branch", func(s *sale.Sale) { s.BranchID = id.ID{} }, true},
		{"bad payment", func(s *sale.Sale) { s.PaymentMethod = "crypto" }, true},
		{"no lines", func(s *sale.Sale) { s.Lines = nil }, true},
		{"zero quantity", func(s *sale.Sale) { s.Lines[0].Quantity = 0 }, true},
		{"negative price", func(s *sale.Sale) { s.Lines[0].UnitPrice = types.MustMoney("-1") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &sale.Sale{
				ID:            id.New(),
				BranchID:      branchID,
				PaymentMethod: documents.PaymentCash,
				Status:        sale.StatusOpen,
				Lines: []sale.Line{{
					ID:        id.New(),
					VariantID: variantID,
					Quantity:  2,
					UnitPrice: types.MustMoney("10.00"),
				}},
			}
			tt.mutate(doc)
			err := doc.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
