package models

// BillTransaction is one expense entry of an ephemeral split-bill session.
// Bill transactions have no per-participant paid tracking; the whole bill is
// settled at once when the session ends.
type BillTransaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// Description is the human-readable label (e.g., "Taxi").
	Description string

	// PaidBy is the name of the participant who fronted the money. The payer
	// does not have to appear in Participants.
	PaidBy string

	// Amount is the full amount, split equally among Participants.
	Amount float64

	// Participants are the names sharing this transaction.
	Participants []string

	// Date is the Unix timestamp when the transaction was added.
	Date int64
}
