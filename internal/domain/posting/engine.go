// Package posting applies document effects to the stock ledger. Every engine
// method expects to run inside a caller-provided transaction and follows a
// strict validate-then-commit discipline: all lines are checked before the
// first quantity changes, so a failed posting leaves the ledger untouched
// even on stores without rollback.
//
// Lock ordering is uniform across all methods: variants in ascending id
// order, and within a variant central before branches, branches in ascending
// id order.
package posting

import (
	"context"
	"sort"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/variant"
	"almacen/internal/domain/ledger"
)

// Allocation routes part of a purchased quantity to one branch.
type Allocation struct {
	BranchID id.ID
	Quantity types.Quantity
}

// PurchaseLine is one received variant with its branch allocations.
type PurchaseLine struct {
	VariantID   id.ID
	Quantity    types.Quantity
	UnitCost    types.Money
	Allocations []Allocation
}

// SaleLine is one sold variant.
type SaleLine struct {
	VariantID id.ID
	Quantity  types.Quantity
}

// Engine posts and reverses documents against the ledger.
type Engine struct {
	stock    ledger.Repository
	variants variant.Repository
}

func NewEngine(stock ledger.Repository, variants variant.Repository) *Engine {
	return &Engine{stock: stock, variants: variants}
}

// variantPlan accumulates the per-variant net effect of a purchase.
type variantPlan struct {
	central  types.Quantity
	branches map[id.ID]types.Quantity
	lastCost types.Money
	costSet  bool
}

// Distribute receives a purchase into stock: each line's allocated portions
// go to their branches and the remainder stays at central. One distribution
// transfer is recorded per allocation, tagged with the purchase id. The last
// unit cost seen for each variant becomes the variant's current cost.
func (e *Engine) Distribute(ctx context.Context, purchaseID id.ID, lines []PurchaseLine) error {
	plans := make(map[id.ID]*variantPlan)
	for _, l := range lines {
		allocated := types.Quantity(0)
		for _, a := range l.Allocations {
			allocated += a.Quantity
		}
		if allocated > l.Quantity {
			return apperror.NewOverAllocation(l.VariantID.String(), l.Quantity.Int64(), allocated.Int64())
		}

		p := plans[l.VariantID]
		if p == nil {
			p = &variantPlan{branches: make(map[id.ID]types.Quantity)}
			plans[l.VariantID] = p
		}
		p.central += l.Quantity - allocated
		for _, a := range l.Allocations {
			p.branches[a.BranchID] += a.Quantity
		}
		p.lastCost = l.UnitCost
		p.costSet = true
	}

	for _, variantID := range sortedVariants(plans) {
		p := plans[variantID]

		central, err := e.stock.GetQuantityForUpdate(ctx, variantID, ledger.Central())
		if err != nil {
			return err
		}
		if err := e.stock.UpsertQuantity(ctx, variantID, ledger.Central(), central+p.central); err != nil {
			return err
		}

		for _, branchID := range sortedBranches(p.branches) {
			loc := ledger.AtBranch(branchID)
			current, err := e.stock.GetQuantityForUpdate(ctx, variantID, loc)
			if err != nil {
				return err
			}
			if err := e.stock.UpsertQuantity(ctx, variantID, loc, current+p.branches[branchID]); err != nil {
				return err
			}
		}

		if p.costSet {
			if err := e.variants.SetLastCost(ctx, variantID, p.lastCost); err != nil {
				return err
			}
		}
	}

	for _, l := range lines {
		for _, a := range l.Allocations {
			t := ledger.NewTransfer(l.VariantID, ledger.Central(), ledger.AtBranch(a.BranchID), a.Quantity, ledger.KindDistribution)
			pid := purchaseID
			t.PurchaseID = &pid
			if err := e.stock.CreateTransfer(ctx, t); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReversePurchase undoes a purchase's stock effect. Branch quantities are
// reduced by the purchase's own distribution transfers and central by the
// remainder that stayed there. Both subtractions floor at zero: stock moved
// or sold since the purchase cannot push a location negative. The
// distribution transfers are deleted.
func (e *Engine) ReversePurchase(ctx context.Context, purchaseID id.ID, lines []PurchaseLine) error {
	transfers, err := e.stock.ListTransfersByPurchase(ctx, purchaseID)
	if err != nil {
		return err
	}

	received := make(map[id.ID]types.Quantity)
	for _, l := range lines {
		received[l.VariantID] += l.Quantity
	}

	byVariant := make(map[id.ID][]*ledger.TransferRecord)
	for _, t := range transfers {
		byVariant[t.VariantID] = append(byVariant[t.VariantID], t)
	}

	variantIDs := make([]id.ID, 0, len(received))
	for variantID := range received {
		variantIDs = append(variantIDs, variantID)
	}
	sort.Slice(variantIDs, func(i, j int) bool {
		return variantIDs[i].String() < variantIDs[j].String()
	})

	for _, variantID := range variantIDs {
		if _, err := e.stock.GetQuantityForUpdate(ctx, variantID, ledger.Central()); err != nil {
			return err
		}

		vts := byVariant[variantID]
		sort.Slice(vts, func(i, j int) bool {
			return vts[i].Destination().BranchID().String() < vts[j].Destination().BranchID().String()
		})

		var distributed types.Quantity
		for _, t := range vts {
			distributed += t.Quantity
			if _, err := ledger.AddFloored(ctx, e.stock, variantID, t.Destination(), -t.Quantity); err != nil {
				return err
			}
			if err := e.stock.DeleteTransfer(ctx, t.ID); err != nil {
				return err
			}
		}

		remainder := received[variantID] - distributed
		if _, err := ledger.AddFloored(ctx, e.stock, variantID, ledger.Central(), -remainder); err != nil {
			return err
		}
	}
	return nil
}

// fulfillStep is the planned draw for one variant of a sale.
type fulfillStep struct {
	variantID   id.ID
	fromBranch  types.Quantity
	fromCentral types.Quantity
	branchNext  types.Quantity
	centralNext types.Quantity
}

// Fulfill deducts a sale's quantities. Each variant draws from the selling
// branch first and falls back to central for the rest. All variants are
// checked against combined availability before any quantity changes, so a
// short line fails the whole sale with nothing deducted.
func (e *Engine) Fulfill(ctx context.Context, branchID id.ID, lines []SaleLine) error {
	demand := make(map[id.ID]types.Quantity)
	for _, l := range lines {
		demand[l.VariantID] += l.Quantity
	}

	variantIDs := make([]id.ID, 0, len(demand))
	for variantID := range demand {
		variantIDs = append(variantIDs, variantID)
	}
	sort.Slice(variantIDs, func(i, j int) bool {
		return variantIDs[i].String() < variantIDs[j].String()
	})

	branchLoc := ledger.AtBranch(branchID)
	steps := make([]fulfillStep, 0, len(variantIDs))
	for _, variantID := range variantIDs {
		need := demand[variantID]

		central, err := e.stock.GetQuantityForUpdate(ctx, variantID, ledger.Central())
		if err != nil {
			return err
		}
		branch, err := e.stock.GetQuantityForUpdate(ctx, variantID, branchLoc)
		if err != nil {
			return err
		}

		if branch+central < need {
			return apperror.NewInsufficientStock(variantID.String(), need.Int64(), branch.Int64(), central.Int64())
		}

		fromBranch := branch
		if need < fromBranch {
			fromBranch = need
		}
		fromCentral := need - fromBranch
		steps = append(steps, fulfillStep{
			variantID:   variantID,
			fromBranch:  fromBranch,
			fromCentral: fromCentral,
			branchNext:  branch - fromBranch,
			centralNext: central - fromCentral,
		})
	}

	for _, st := range steps {
		if st.fromBranch > 0 {
			if err := e.stock.UpsertQuantity(ctx, st.variantID, branchLoc, st.branchNext); err != nil {
				return err
			}
		}
		if st.fromCentral > 0 {
			if err := e.stock.UpsertQuantity(ctx, st.variantID, ledger.Central(), st.centralNext); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReverseSale credits a sale's full quantities back to the selling branch.
// The portion that was drawn from central is not split back out: the branch
// receives everything, mirroring where a returned sale's goods physically
// land.
func (e *Engine) ReverseSale(ctx context.Context, branchID id.ID, lines []SaleLine) error {
	credit := make(map[id.ID]types.Quantity)
	for _, l := range lines {
		credit[l.VariantID] += l.Quantity
	}

	variantIDs := make([]id.ID, 0, len(credit))
	for variantID := range credit {
		variantIDs = append(variantIDs, variantID)
	}
	sort.Slice(variantIDs, func(i, j int) bool {
		return variantIDs[i].String() < variantIDs[j].String()
	})

	loc := ledger.AtBranch(branchID)
	for _, variantID := range variantIDs {
		current, err := e.stock.GetQuantityForUpdate(ctx, variantID, loc)
		if err != nil {
			return err
		}
		if err := e.stock.UpsertQuantity(ctx, variantID, loc, current+credit[variantID]); err != nil {
			return err
		}
	}
	return nil
}

func sortedVariants(plans map[id.ID]*variantPlan) []id.ID {
	ids := make([]id.ID, 0, len(plans))
	for variantID := range plans {
		ids = append(ids, variantID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

func sortedBranches(branches map[id.ID]types.Quantity) []id.ID {
	ids := make([]id.ID, 0, len(branches))
	for branchID := range branches {
		ids = append(ids, branchID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
