package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/billyapp/billy/internal/models"
)

// Share is one participant's stake in a ledger entry.
type Share struct {
	Key    string  // participant key
	Amount float64 // amount this participant owes the payer
	Paid   bool    // settled shares are excluded from debt computation
}

// Entry is the minimal view of an expense the ledger needs: who fronted the
// money and who owes what. Profile expenses carry their stored shares and
// paid flags; bill transactions are converted with equal splits and Paid
// always false.
type Entry struct {
	PaidBy string
	Shares []Share
}

// CalculateDebts computes the net pairwise debts arising from entries.
//
// Every unpaid share accumulates as an amount owed from the participant to
// the payer; a participant never owes themselves. Opposite-direction pairs
// are then netted into a single debt in the direction of the larger amount,
// and pairs that net to zero are elided. The result is sorted by debtor then
// creditor, so two calls over the same entries yield identical output.
func CalculateDebts(entries []Entry) []models.Debt {
	owed := make(map[string]map[string]decimal.Decimal)

	for _, entry := range entries {
		if entry.PaidBy == "" {
			continue
		}
		for _, share := range entry.Shares {
			if share.Paid || share.Key == entry.PaidBy {
				continue
			}
			amount := decimal.NewFromFloat(share.Amount)
			if amount.LessThanOrEqual(decimal.Zero) {
				continue
			}
			if owed[share.Key] == nil {
				owed[share.Key] = make(map[string]decimal.Decimal)
			}
			owed[share.Key][entry.PaidBy] = owed[share.Key][entry.PaidBy].Add(amount)
		}
	}

	return netPairs(owed)
}

// netPairs collapses opposite-direction accumulations into single positive
// debts and drops pairs that cancel out.
func netPairs(owed map[string]map[string]decimal.Decimal) []models.Debt {
	var debts []models.Debt
	done := make(map[[2]string]bool)

	for debtor, creditors := range owed {
		for creditor := range creditors {
			pair := [2]string{debtor, creditor}
			if debtor > creditor {
				pair = [2]string{creditor, debtor}
			}
			if done[pair] {
				continue
			}
			done[pair] = true

			net := owed[debtor][creditor].Sub(owed[creditor][debtor]).Round(2)
			switch {
			case net.GreaterThanOrEqual(cent):
				amount, _ := net.Float64()
				debts = append(debts, models.Debt{Debtor: debtor, Creditor: creditor, Amount: amount})
			case net.LessThanOrEqual(cent.Neg()):
				amount, _ := net.Neg().Float64()
				debts = append(debts, models.Debt{Debtor: creditor, Creditor: debtor, Amount: amount})
			}
		}
	}

	sort.Slice(debts, func(i, j int) bool {
		if debts[i].Debtor != debts[j].Debtor {
			return debts[i].Debtor < debts[j].Debtor
		}
		return debts[i].Creditor < debts[j].Creditor
	})
	return debts
}

// Simplify reduces a netted debt set to a minimal settlement set that
// preserves every participant's net balance. Transitive chains collapse:
// if A owes B 10 and B owes C 10, the simplified set is A owes C 10.
//
// Balances are matched greedily, debtors against creditors in key order,
// which keeps the output deterministic.
func Simplify(debts []models.Debt) []models.Debt {
	balance := make(map[string]decimal.Decimal)
	for _, d := range debts {
		amount := decimal.NewFromFloat(d.Amount)
		balance[d.Creditor] = balance[d.Creditor].Add(amount)
		balance[d.Debtor] = balance[d.Debtor].Sub(amount)
	}

	var debtors, creditors []string
	for key, b := range balance {
		switch {
		case b.LessThanOrEqual(cent.Neg()):
			debtors = append(debtors, key)
		case b.GreaterThanOrEqual(cent):
			creditors = append(creditors, key)
		}
	}
	sort.Strings(debtors)
	sort.Strings(creditors)

	var settled []models.Debt
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]
		owes := balance[debtor].Neg()
		owed := balance[creditor]

		amount := decimal.Min(owes, owed)
		if amount.GreaterThanOrEqual(cent) {
			value, _ := amount.Round(2).Float64()
			settled = append(settled, models.Debt{Debtor: debtor, Creditor: creditor, Amount: value})
		}

		balance[debtor] = balance[debtor].Add(amount)
		balance[creditor] = balance[creditor].Sub(amount)

		if balance[debtor].Neg().LessThan(cent) {
			i++
		}
		if balance[creditor].LessThan(cent) {
			j++
		}
	}
	return settled
}

// Nested converts a debt list into the mapping shape the API boundary
// exposes: debtor -> creditor -> amount. An empty list yields an empty,
// non-nil map.
func Nested(debts []models.Debt) map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for _, d := range debts {
		if out[d.Debtor] == nil {
			out[d.Debtor] = make(map[string]float64)
		}
		out[d.Debtor][d.Creditor] = d.Amount
	}
	return out
}

// DebtsToUser returns the debts where key is the creditor.
func DebtsToUser(debts []models.Debt, key string) []models.Debt {
	var out []models.Debt
	for _, d := range debts {
		if d.Creditor == key {
			out = append(out, d)
		}
	}
	return out
}

// DebtsFromUser returns the debts where key is the debtor.
func DebtsFromUser(debts []models.Debt, key string) []models.Debt {
	var out []models.Debt
	for _, d := range debts {
		if d.Debtor == key {
			out = append(out, d)
		}
	}
	return out
}
