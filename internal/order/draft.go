package order

import "github.com/xenking/tavola-client/internal/session"

// Draft is the user-editable order metadata collected before submission.
// Name and phone must be non-empty by submit time; the delivery address may
// stay empty for pickup orders.
type Draft struct {
	CustomerName        string
	CustomerPhone       string
	DeliveryAddress     string
	SpecialInstructions string
}

// Prefill copies name and phone from the identity into empty draft fields.
// Values the user already typed are kept.
func (d *Draft) Prefill(id *session.Identity) {
	if id == nil {
		return
	}
	if d.CustomerName == "" {
		d.CustomerName = id.FullName
	}
	if d.CustomerPhone == "" {
		d.CustomerPhone = id.Phone
	}
}

// Reset clears the draft after a successful submission: address and
// instructions are wiped, name and phone come back from the identity.
func (d *Draft) Reset(id *session.Identity) {
	*d = Draft{}
	if id != nil {
		d.CustomerName = id.FullName
		d.CustomerPhone = id.Phone
	}
}
