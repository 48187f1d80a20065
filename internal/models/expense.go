package models

import "fmt"

// Expense kinds. Adjustments are the expenses a redistribution writes back to
// materialize the netted debt set; the ledger treats both kinds the same.
const (
	KindExpense    = "expense"
	KindAdjustment = "adjustment"
)

// Expense represents a shared outcome: an amount fronted by one participant
// and split among a set of participants.
//
// Participants, ToPay and HasPaid are parallel slices: ToPay[i] is the share
// owed by Participants[i] and HasPaid[i] tracks whether that share has been
// settled. The shares sum to Amount. PaidBy does not have to appear in
// Participants; a payer who also owes a share simply lists themselves.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// ProfileID is the profile this expense belongs to.
	ProfileID string

	// Description is the human-readable label (e.g., "Groceries").
	Description string

	// Amount is the full amount fronted by the payer.
	Amount float64

	// PaidBy is the participant key who fronted the money.
	PaidBy string

	// Kind is KindExpense for user-entered outcomes and KindAdjustment for
	// redistribution entries.
	Kind string

	// Participants are the keys sharing this expense, in insertion order.
	Participants []string

	// ToPay holds each participant's share, parallel to Participants.
	ToPay []float64

	// HasPaid holds each participant's settlement flag, parallel to Participants.
	HasPaid []bool

	// CreatedAt is the Unix timestamp when the expense was created. Date-range
	// aggregations filter on it.
	CreatedAt int64
}

// Validate checks the parallel-slice invariant.
func (e *Expense) Validate() error {
	if len(e.Participants) != len(e.ToPay) || len(e.Participants) != len(e.HasPaid) {
		return fmt.Errorf("expense %s: participants/to_pay/has_paid lengths differ (%d/%d/%d)",
			e.ID, len(e.Participants), len(e.ToPay), len(e.HasPaid))
	}
	if e.Amount <= 0 {
		return fmt.Errorf("expense %s: amount must be positive", e.ID)
	}
	return nil
}
