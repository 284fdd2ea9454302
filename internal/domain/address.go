package domain

// Address represents a shipping address in the user's address book.
type Address struct {
	Meta

	Label         string `json:"label,omitempty"`
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone,omitempty"`
	Street        string `json:"street"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postal_code"`
}

// Clone returns a deep copy so table snapshots can be handed out without
// exposing internal state to mutation.
func (a *Address) Clone() *Address {
	cp := *a
	return &cp
}
