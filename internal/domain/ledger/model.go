// Package ledger maintains the per-variant, per-location stock quantities and
// the transfer records describing how purchased units were routed to branches.
package ledger

import (
	"time"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// Location identifies where stock sits. The zero value is the central
// warehouse; any other value names a branch. Central is not a branch row,
// it is a distinguished location of its own.
type Location struct {
	branchID id.ID
}

// Central returns the central warehouse location.
func Central() Location {
	return Location{}
}

// AtBranch returns the location for the given branch.
func AtBranch(branchID id.ID) Location {
	return Location{branchID: branchID}
}

// IsCentral reports whether the location is the central warehouse.
func (l Location) IsCentral() bool {
	return id.IsNil(l.branchID)
}

// BranchID returns the branch identifier, or the nil ID for central.
func (l Location) BranchID() id.ID {
	return l.branchID
}

// String returns "central" or the branch id.
func (l Location) String() string {
	if l.IsCentral() {
		return "central"
	}
	return l.branchID.String()
}

// StockRecord is one (variant, location) quantity. Quantities never go
// negative and records are never deleted, only zeroed.
type StockRecord struct {
	ID        id.ID          `db:"id" json:"id"`
	VariantID id.ID          `db:"variant_id" json:"variantId"`
	BranchID  id.ID          `db:"branch_id" json:"branchId"` // nil ID means central
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// Location returns the record's location.
func (r *StockRecord) Location() Location {
	if id.IsNil(r.BranchID) {
		return Central()
	}
	return AtBranch(r.BranchID)
}

// TransferKind classifies a stock movement between locations.
type TransferKind string

const (
	// KindDistribution moves purchased units from central to a branch as
	// part of recording a purchase. These carry the purchase id and are
	// deleted when the purchase is reversed.
	KindDistribution TransferKind = "distribution"
	// KindRestock moves units from central to a branch outside any
	// purchase.
	KindRestock TransferKind = "restock"
	// KindReturn moves units from a branch back to central.
	KindReturn TransferKind = "return"
	// KindBranchToBranch moves units directly between two branches.
	KindBranchToBranch TransferKind = "branch_to_branch"
)

// Valid reports whether the kind is one of the defined values.
func (k TransferKind) Valid() bool {
	switch k {
	case KindDistribution, KindRestock, KindReturn, KindBranchToBranch:
		return true
	}
	return false
}

// TransferRecord is one completed movement of stock between two locations.
// A nil origin means central; a nil destination means central. Distribution
// transfers additionally reference the purchase that produced them so the
// reversal of a purchase can find exactly the transfers it created.
type TransferRecord struct {
	ID            id.ID          `db:"id" json:"id"`
	VariantID     id.ID          `db:"variant_id" json:"variantId"`
	OriginID      *id.ID         `db:"origin_branch_id" json:"originBranchId"`
	DestinationID *id.ID         `db:"destination_branch_id" json:"destinationBranchId"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	Kind          TransferKind   `db:"kind" json:"kind"`
	PurchaseID    *id.ID         `db:"purchase_id" json:"purchaseId,omitempty"`
	Note          string         `db:"note" json:"note,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

// Origin returns the transfer's origin location.
func (t *TransferRecord) Origin() Location {
	if t.OriginID == nil {
		return Central()
	}
	return AtBranch(*t.OriginID)
}

// Destination returns the transfer's destination location.
func (t *TransferRecord) Destination() Location {
	if t.DestinationID == nil {
		return Central()
	}
	return AtBranch(*t.DestinationID)
}

// NewTransfer builds a transfer record between two locations.
func NewTransfer(variantID id.ID, origin, destination Location, qty types.Quantity, kind TransferKind) *TransferRecord {
	t := &TransferRecord{
		ID:        id.New(),
		VariantID: variantID,
		Quantity:  qty,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if !origin.IsCentral() {
		b := origin.BranchID()
		t.OriginID = &b
	}
	if !destination.IsCentral() {
		b := destination.BranchID()
		t.DestinationID = &b
	}
	return t
}
