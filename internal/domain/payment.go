package domain

import "strings"

// PaymentType is the closed set of payment method kinds.
type PaymentType string

const (
	PaymentTypeCreditCard     PaymentType = "credit_card"
	PaymentTypeBankTransfer   PaymentType = "bank_transfer"
	PaymentTypeEwallet        PaymentType = "ewallet"
	PaymentTypeVirtualAccount PaymentType = "virtual_account"
)

// Valid reports whether the payment type is a known kind.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeCreditCard, PaymentTypeBankTransfer, PaymentTypeEwallet, PaymentTypeVirtualAccount:
		return true
	}
	return false
}

func (t PaymentType) String() string {
	return string(t)
}

// PaymentMethod represents a saved payment instrument in the user's vault.
// Only a masked account reference is ever stored client-side.
type PaymentMethod struct {
	Meta

	Type        PaymentType `json:"type"`
	DisplayName string      `json:"display_name"`
	AccountRef  string      `json:"account_ref"`
	BankName    string      `json:"bank_name,omitempty"`
}

// Clone returns a deep copy for snapshot isolation.
func (p *PaymentMethod) Clone() *PaymentMethod {
	cp := *p
	return &cp
}

// MaskAccountRef reduces a raw account or card number to its masked display
// form, keeping only the last four digits (e.g. "**** **** **** 4242").
// Inputs of four digits or fewer are masked entirely.
func MaskAccountRef(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return "**** " + digits[len(digits)-4:]
}
