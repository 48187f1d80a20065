package models

// Debt represents a derived, netted amount one participant owes another.
// Amount is always positive; zero or negative net debts are elided, and at
// most one debt exists per ordered (debtor, creditor) pair.
type Debt struct {
	// Debtor is the participant key who owes.
	Debtor string

	// Creditor is the participant key who is owed.
	Creditor string

	// Amount is the net amount owed, rounded to 2 decimal places.
	Amount float64
}
