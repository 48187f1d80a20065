// Package ledger implements the debt computation core: equal splits,
// pairwise debt netting and settlement simplification. All functions are
// pure; amounts cross the package boundary as float64 but every computation
// runs on decimal values so no cent is lost or fabricated.
package ledger

import "github.com/shopspring/decimal"

var cent = decimal.New(1, -2) // 0.01, the rounding epsilon

// EqualSplit divides amount equally among n participants so that the shares
// sum exactly to amount. When the division leaves a remainder, the earliest
// participant absorbs it.
func EqualSplit(amount float64, n int) []float64 {
	if n <= 0 {
		return nil
	}

	total := decimal.NewFromFloat(amount).Round(2)
	parts := decimal.NewFromInt(int64(n))

	base := total.Div(parts).Truncate(2)
	remainder := total.Sub(base.Mul(parts))

	shares := make([]float64, n)
	shares[0], _ = base.Add(remainder).Float64()
	for i := 1; i < n; i++ {
		shares[i], _ = base.Float64()
	}
	return shares
}
