// Package documents holds the shared vocabulary of the purchase and sale
// document packages.
package documents

// PaymentMethod is how a purchase was paid or a sale collected.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
)

// Valid reports whether the method is one of the defined values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentCard:
		return true
	}
	return false
}
