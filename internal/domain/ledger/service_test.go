package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/branch"
	"almacen/internal/domain/ledger"
	"almacen/internal/infrastructure/storage/memory"
)

func newLedgerService() (*ledger.Service, *memory.Store) {
	store := memory.NewStore()
	return ledger.NewService(store.Stock(), store.Branches(), memory.NewTxManager()), store
}

func registerBranch(t *testing.T, store *memory.Store, name string) id.ID {
	t.Helper()
	b := branch.NewBranch(name)
	require.NoError(t, store.Branches().Create(context.Background(), b))
	return b.ID
}

func TestTransfer_ClassifiesByDirection(t *testing.T) {
	tests := []struct {
		name string
		move func(branchA, branchB id.ID) (ledger.Location, ledger.Location)
		want ledger.TransferKind
	}{
		{"central to branch", func(a, _ id.ID) (ledger.Location, ledger.Location) {
			return ledger.Central(), ledger.AtBranch(a)
		}, ledger.KindRestock},
		{"branch to central", func(a, _ id.ID) (ledger.Location, ledger.Location) {
			return ledger.AtBranch(a), ledger.Central()
		}, ledger.KindReturn},
		{"branch to branch", func(a, b id.ID) (ledger.Location, ledger.Location) {
			return ledger.AtBranch(a), ledger.AtBranch(b)
		}, ledger.KindBranchToBranch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newLedgerService()
			ctx := context.Background()
			variantID := id.New()
			branchA := registerBranch(t, store, "Norte")
			branchB := registerBranch(t, store, "Sur")
			origin, destination := tt.move(branchA, branchB)
			require.NoError(t, store.Stock().UpsertQuantity(ctx, variantID, origin, 10))

			tr, err := svc.Transfer(ctx, variantID, origin, destination, 4, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.Kind)

			originQty, err := svc.GetQuantity(ctx, variantID, origin)
			require.NoError(t, err)
			assert.Equal(t, types.Quantity(6), originQty)

			destQty, err := svc.GetQuantity(ctx, variantID, destination)
			require.NoError(t, err)
			assert.Equal(t, types.Quantity(4), destQty)
		})
	}
}

func TestTransfer_SameLocationRejected(t *testing.T) {
	svc, _ := newLedgerService()
	branchA := id.New()

	_, err := svc.Transfer(context.Background(), id.New(), ledger.AtBranch(branchA), ledger.AtBranch(branchA), 1, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransferTarget))

	_, err = svc.Transfer(context.Background(), id.New(), ledger.Central(), ledger.Central(), 1, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidTransferTarget))
}

func TestTransfer_UnknownBranchRejected(t *testing.T) {
	svc, store := newLedgerService()
	ctx := context.Background()
	variantID := id.New()
	require.NoError(t, store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 10))

	_, err := svc.Transfer(ctx, variantID, ledger.Central(), ledger.AtBranch(id.New()), 4, "")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	central, err := svc.GetQuantity(ctx, variantID, ledger.Central())
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(10), central)

	transfers, err := svc.ListTransfers(ctx, ledger.TransferFilter{VariantID: variantID})
	require.NoError(t, err)
	assert.Empty(t, transfers)
}

func TestTransfer_InsufficientOriginLeavesBothUntouched(t *testing.T) {
	svc, store := newLedgerService()
	ctx := context.Background()
	variantID := id.New()
	branchA := registerBranch(t, store, "Norte")
	require.NoError(t, store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 3))

	_, err := svc.Transfer(ctx, variantID, ledger.Central(), ledger.AtBranch(branchA), 5, "")
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	central, err := svc.GetQuantity(ctx, variantID, ledger.Central())
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(3), central)

	atBranch, err := svc.GetQuantity(ctx, variantID, ledger.AtBranch(branchA))
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), atBranch)
}

func TestTransfer_NonPositiveQuantityRejected(t *testing.T) {
	svc, _ := newLedgerService()

	for _, qty := range []types.Quantity{0, -3} {
		_, err := svc.Transfer(context.Background(), id.New(), ledger.Central(), ledger.AtBranch(id.New()), qty, "")
		require.Error(t, err)
		assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
	}
}

func TestAdd_StrictFailsBelowZero(t *testing.T) {
	svc, store := newLedgerService()
	ctx := context.Background()
	variantID := id.New()
	loc := ledger.AtBranch(id.New())
	require.NoError(t, store.Stock().UpsertQuantity(ctx, variantID, loc, 5))

	next, err := svc.Add(ctx, variantID, loc, -3)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(2), next)

	_, err = svc.Add(ctx, variantID, loc, -4)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInsufficientStock))

	qty, err := svc.GetQuantity(ctx, variantID, loc)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(2), qty)
}

func TestAddFloored_ClampsAtZero(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	variantID := id.New()
	loc := ledger.Central()
	require.NoError(t, store.Stock().UpsertQuantity(ctx, variantID, loc, 5))

	next, err := ledger.AddFloored(ctx, store.Stock(), variantID, loc, -8)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), next)
}

func TestSetAbsolute(t *testing.T) {
	svc, store := newLedgerService()
	ctx := context.Background()
	variantID := id.New()
	loc := ledger.AtBranch(registerBranch(t, store, "Norte"))

	require.NoError(t, svc.SetAbsolute(ctx, variantID, loc, 42))

	qty, err := svc.GetQuantity(ctx, variantID, loc)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(42), qty)

	err = svc.SetAbsolute(ctx, variantID, loc, -1)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestSetAbsolute_UnknownBranchRejected(t *testing.T) {
	svc, _ := newLedgerService()
	ctx := context.Background()
	variantID := id.New()
	phantom := ledger.AtBranch(id.New())

	err := svc.SetAbsolute(ctx, variantID, phantom, 42)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	qty, err := svc.GetQuantity(ctx, variantID, phantom)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), qty)
}

func TestBreakdown(t *testing.T) {
	svc, store := newLedgerService()
	ctx := context.Background()
	variantID := id.New()
	branchA, branchB := id.New(), id.New()

	require.NoError(t, store.Stock().UpsertQuantity(ctx, variantID, ledger.Central(), 12))
	require.NoError(t, store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchA), 5))
	require.NoError(t, store.Stock().UpsertQuantity(ctx, variantID, ledger.AtBranch(branchB), 3))

	bd, err := svc.Breakdown(ctx, variantID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(12), bd.Central)
	assert.Equal(t, types.Quantity(20), bd.Total)
	require.Len(t, bd.Branches, 2)

	var branchTotal types.Quantity
	for _, b := range bd.Branches {
		branchTotal += b.Quantity
	}
	assert.Equal(t, types.Quantity(8), branchTotal)
}

func TestListTransfers_Filters(t *testing.T) {
	svc, store := newLedgerService()
	ctx := context.Background()
	variantA, variantB := id.New(), id.New()
	branchA := registerBranch(t, store, "Norte")
	branchB := registerBranch(t, store, "Sur")

	require.NoError(t, store.Stock().UpsertQuantity(ctx, variantA, ledger.Central(), 20))
	require.NoError(t, store.Stock().UpsertQuantity(ctx, variantB, ledger.Central(), 20))

	_, err := svc.Transfer(ctx, variantA, ledger.Central(), ledger.AtBranch(branchA), 5, "")
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, variantB, ledger.Central(), ledger.AtBranch(branchB), 5, "")
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, variantA, ledger.AtBranch(branchA), ledger.AtBranch(branchB), 2, "")
	require.NoError(t, err)

	byVariant, err := svc.ListTransfers(ctx, ledger.TransferFilter{VariantID: variantA})
	require.NoError(t, err)
	assert.Len(t, byVariant, 2)

	byKind, err := svc.ListTransfers(ctx, ledger.TransferFilter{Kind: ledger.KindBranchToBranch})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, variantA, byKind[0].VariantID)

	byBranch, err := svc.ListTransfers(ctx, ledger.TransferFilter{BranchID: branchB})
	require.NoError(t, err)
	assert.Len(t, byBranch, 2)
}
