package posting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/variant"
	"almacen/internal/domain/ledger"
	"almacen/internal/domain/posting"
	"almacen/internal/infrastructure/storage/memory"
)

type engineFixture struct {
	store  *memory.Store
	engine *posting.Engine
}

func newEngineFixture() *engineFixture {
	store := memory.NewStore()
	return &engineFixture{
		store:  store,
		engine: posting.NewEngine(store.Stock(), store.Variants()),
	}
}

func (f *engineFixture) seedVariant(t *testing.T, name string) id.ID {
	t.Helper()
	v := variant.NewVariant(name, "", "")
	require.NoError(t, f.store.Variants().Create(context.Background(), v))
	return v.ID
}

func (f *engineFixture) quantity(t *testing.T, variantID id.ID, loc ledger.Location) types.Quantity {
	t.Helper()
	qty, err := f.store.Stock().GetQuantity(context.Background(), variantID, loc)
	require.NoError(t, err)
	return qty
}

func TestDistribute_SplitsBetweenBranchesAndCentral(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchA, branchB := id.New(), id.New()
	purchaseID := id.New()

	err := f.engine.Distribute(ctx, purchaseID, []posting.PurchaseLine{{
		VariantID: variantID,
		Quantity:  50,
		UnitCost:  types.MustMoney("28.50"),
		Allocations: []posting.Allocation{
			{BranchID: branchA, Quantity: 20},
			{BranchID: branchB, Quantity: 15},
		},
	}})
	require.NoError(t, err)

	assert.Equal(t, types.Quantity(15), f.quantity(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(20), f.quantity(t, variantID, ledger.AtBranch(branchA)))
	assert.Equal(t, types.Quantity(15), f.quantity(t, variantID, ledger.AtBranch(branchB)))

	transfers, err := f.store.Stock().ListTransfersByPurchase(ctx, purchaseID)
	require.NoError(t, err)
	require.Len(t, transfers, 2)
	for _, tr := range transfers {
		assert.Equal(t, ledger.KindDistribution, tr.Kind)
		assert.True(t, tr.Origin().IsCentral())
		require.NotNil(t, tr.PurchaseID)
		assert.Equal(t, purchaseID, *tr.PurchaseID)
	}

	v, err := f.store.Variants().GetByID(ctx, variantID)
	require.NoError(t, err)
	assert.True(t, v.Cost.Equal(types.MustMoney("28.50")))
}

func TestDistribute_FullyAllocatedLeavesCentralEmpty(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Creatine")
	branchA := id.New()

	err := f.engine.Distribute(ctx, id.New(), []posting.PurchaseLine{{
		VariantID:   variantID,
		Quantity:    10,
		UnitCost:    types.MustMoney("12.00"),
		Allocations: []posting.Allocation{{BranchID: branchA, Quantity: 10}},
	}})
	require.NoError(t, err)

	assert.Equal(t, types.Quantity(0), f.quantity(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(10), f.quantity(t, variantID, ledger.AtBranch(branchA)))
}

func TestDistribute_OverAllocationRejectedWithoutMutation(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	okVariant := f.seedVariant(t, "Whey Protein")
	badVariant := f.seedVariant(t, "Creatine")
	branchA := id.New()
	purchaseID := id.New()

	err := f.engine.Distribute(ctx, purchaseID, []posting.PurchaseLine{
		{
			VariantID:   okVariant,
			Quantity:    10,
			UnitCost:    types.MustMoney("28.50"),
			Allocations: []posting.Allocation{{BranchID: branchA, Quantity: 5}},
		},
		{
			VariantID:   badVariant,
			Quantity:    10,
			UnitCost:    types.MustMoney("12.00"),
			Allocations: []posting.Allocation{{BranchID: branchA, Quantity: 11}},
		},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeOverAllocation))

	// Validation happens before the first write, so the valid line must not
	// have landed either.
	assert.Equal(t, types.Quantity(0), f.quantity(t, okVariant, ledger.Central()))
	assert.Equal(t, types.Quantity(0), f.quantity(t, okVariant, ledger.AtBranch(branchA)))

	transfers, err := f.store.Stock().ListTransfersByPurchase(ctx, purchaseID)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestReversePurchase_RestoresPriorState(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchA, branchB := id.New(), id.New()
	purchaseID := id.New()

	lines := []posting.PurchaseLine{{
		VariantID: variantID,
		Quantity:  50,
		UnitCost:  types.MustMoney("28.50"),
		Allocations: []posting.Allocation{
			{BranchID: branchA, Quantity: 20},
			{BranchID: branchB, Quantity: 15},
		},
	}}
	require.NoError(t, f.engine.Distribute(ctx, purchaseID, lines))
	require.NoError(t, f.engine.ReversePurchase(ctx, purchaseID, lines))

	assert.Equal(t, types.Quantity(0), f.quantity(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(0), f.quantity(t, variantID, ledger.AtBranch(branchA)))
	assert.Equal(t, types.Quantity(0), f.quantity(t, variantID, ledger.AtBranch(branchB)))

	transfers, err := f.store.Stock().ListTransfersByPurchase(ctx, purchaseID)
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestReversePurchase_FloorsAtZeroWhenStockAlreadyMoved(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchA := id.New()
	purchaseID := id.New()

	lines := []posting.PurchaseLine{{
		VariantID:   variantID,
		Quantity:    30,
		UnitCost:    types.MustMoney("28.50"),
		Allocations: []posting.Allocation{{BranchID: branchA, Quantity: 20}},
	}}
	require.NoError(t, f.engine.Distribute(ctx, purchaseID, lines))

	// Sales since the purchase left the branch with fewer units than it
	// received and central below the remainder.
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchA), 12))
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 4))

	require.NoError(t, f.engine.ReversePurchase(ctx, purchaseID, lines))

	assert.Equal(t, types.Quantity(0), f.quantity(t, variantID, ledger.AtBranch(branchA)))
	assert.Equal(t, types.Quantity(0), f.quantity(t, variantID, ledger.Central()))
}

func TestReversePurchase_OnlyTouchesItsOwnShare(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchA := id.New()

	first := []posting.PurchaseLine{{
		VariantID:   variantID,
		Quantity:    20,
		UnitCost:    types.MustMoney("28.50"),
		Allocations: []posting.Allocation{{BranchID: branchA, Quantity: 10}},
	}}
	firstID := id.New()
	require.NoError(t, f.engine.Distribute(ctx, firstID, first))

	second := []posting.PurchaseLine{{
		VariantID:   variantID,
		Quantity:    8,
		UnitCost:    types.MustMoney("27.00"),
		Allocations: []posting.Allocation{{BranchID: branchA, Quantity: 3}},
	}}
	require.NoError(t, f.engine.Distribute(ctx, id.New(), second))

	require.NoError(t, f.engine.ReversePurchase(ctx, firstID, first))

	assert.Equal(t, types.Quantity(5), f.quantity(t, variantID, ledger.Central()))
	assert.Equal(t, types.Quantity(3), f.quantity(t, variantID, ledger.AtBranch(branchA)))
}

func TestReverseThenReapply_RestoresIdenticalState(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchA, branchB := id.New(), id.New()
	purchaseID := id.New()

	lines := []posting.PurchaseLine{{
		VariantID: variantID,
		Quantity:  40,
		UnitCost:  types.MustMoney("28.50"),
		Allocations: []posting.Allocation{
			{BranchID: branchA, Quantity: 10},
			{BranchID: branchB, Quantity: 5},
		},
	}}
	require.NoError(t, f.engine.Distribute(ctx, purchaseID, lines))

	central := f.quantity(t, variantID, ledger.Central())
	atA := f.quantity(t, variantID, ledger.AtBranch(branchA))
	atB := f.quantity(t, variantID, ledger.AtBranch(branchB))

	require.NoError(t, f.engine.ReversePurchase(ctx, purchaseID, lines))
	require.NoError(t, f.engine.Distribute(ctx, purchaseID, lines))

	assert.Equal(t, central, f.quantity(t, variantID, ledger.Central()))
	assert.Equal(t, atA, f.quantity(t, variantID, ledger.AtBranch(branchA)))
	assert.Equal(t, atB, f.quantity(t, variantID, ledger.AtBranch(branchB)))

	transfers, err := f.store.Stock().ListTransfersByPurchase(ctx, purchaseID)
	require.NoError(t, err)
	assert.Len(t, transfers, 2)
}

func TestFulfill_DrawsBranchFirstThenCentral(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchA := id.New()
	branchLoc := ledger.AtBranch(branchA)

	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, branchLoc, 5))
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 10))

	err := f.engine.Fulfill(ctx, branchA, []posting.SaleLine{{VariantID: variantID, Quantity: 8}})
	require.NoError(t, err)

	assert.Equal(t, types.Quantity(0), f.quantity(t, variantID, branchLoc))
	assert.Equal(t, types.Quantity(7), f.quantity(t, variantID, ledger.Central()))
}

func TestFulfill_BranchCoversFullyLeavesCentralAlone(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Creatine")
	branchA := id.New()
	branchLoc := ledger.AtBranch(branchA)

	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, branchLoc, 9))
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 4))

	require.NoError(t, f.engine.Fulfill(ctx, branchA, []posting.SaleLine{{VariantID: variantID, Quantity: 6}}))

	assert.Equal(t, types.Quantity(3), f.quantity(t, variantID, branchLoc))
	assert.Equal(t, types.Quantity(4), f.quantity(t, variantID, ledger.Central()))
}

func TestFulfill_AggregatesRepeatedVariantLines(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchA := id.New()
	branchLoc := ledger.AtBranch(branchA)

	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, branchLoc, 3))
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 3))

	err := f.engine.Fulfill(ctx, branchA, []posting.SaleLine{
		{VariantID: variantID, Quantity: 2},
		{VariantID: variantID, Quantity: 2},
		{VariantID: variantID, Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, types.Quantity(0), f.quantity(t, variantID, branchLoc))
	assert.Equal(t, types.Quantity(0), f.quantity(t, variantID, ledger.Central()))
}

func TestFulfill_ShortLineFailsWholeSale(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	okVariant := f.seedVariant(t, "Whey Protein")
	shortVariant := f.seedVariant(t, "Creatine")
	branchA := id.New()
	branchLoc := ledger.AtBranch(branchA)

	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, okVariant, branchLoc, 10))
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, shortVariant, branchLoc, 1))
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, shortVariant, ledger.Central(), 1))

	err := f.engine.Fulfill(ctx, branchA, []posting.SaleLine{
		{VariantID: okVariant, Quantity: 5},
		{VariantID: shortVariant, Quantity: 3},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	// Nothing may have been deducted, the fulfillable line included.
	assert.Equal(t, types.Quantity(10), f.quantity(t, okVariant, branchLoc))
	assert.Equal(t, types.Quantity(1), f.quantity(t, shortVariant, branchLoc))
	assert.Equal(t, types.Quantity(1), f.quantity(t, shortVariant, ledger.Central()))
}

func TestReverseSale_CreditsFullQuantityToBranch(t *testing.T) {
	f := newEngineFixture()
	ctx := context.Background()
	variantID := f.seedVariant(t, "Whey Protein")
	branchA := id.New()
	branchLoc := ledger.AtBranch(branchA)

	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, branchLoc, 5))
	require.NoError(t, f.store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 10))

	lines := []posting.SaleLine{{VariantID: variantID, Quantity: 8}}
	require.NoError(t, f.engine.Fulfill(ctx, branchA, lines))
	require.NoError(t, f.engine.ReverseSale(ctx, branchA, lines))

	// The central portion is not split back out: the returned goods land at
	// the branch.
	assert.Equal(t, types.Quantity(8), f.quantity(t, variantID, branchLoc))
	assert.Equal(t, types.Quantity(7), f.quantity(t, variantID, ledger.Central()))
}
