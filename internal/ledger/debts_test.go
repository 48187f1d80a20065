package ledger

import (
	"math"
	"reflect"
	"testing"

	"github.com/billyapp/billy/internal/models"
)

func entry(paidBy string, shares ...Share) Entry {
	return Entry{PaidBy: paidBy, Shares: shares}
}

func TestCalculateDebts(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		want    []models.Debt
	}{
		{
			name:    "no entries",
			entries: nil,
			want:    nil,
		},
		{
			name: "single expense accumulates toward payer",
			entries: []Entry{
				entry("Ana",
					Share{Key: "Ana", Amount: 30},
					Share{Key: "Bob", Amount: 30},
					Share{Key: "Carl", Amount: 30},
				),
			},
			want: []models.Debt{
				{Debtor: "Bob", Creditor: "Ana", Amount: 30},
				{Debtor: "Carl", Creditor: "Ana", Amount: 30},
			},
		},
		{
			name: "opposite directions net to the larger side",
			entries: []Entry{
				entry("Ana", Share{Key: "Bob", Amount: 30}),
				entry("Bob", Share{Key: "Ana", Amount: 15}),
			},
			want: []models.Debt{
				{Debtor: "Bob", Creditor: "Ana", Amount: 15},
			},
		},
		{
			name: "equal opposite debts are elided entirely",
			entries: []Entry{
				entry("Ana", Share{Key: "Bob", Amount: 20}),
				entry("Bob", Share{Key: "Ana", Amount: 20}),
			},
			want: nil,
		},
		{
			name: "paid shares are excluded",
			entries: []Entry{
				entry("Ana",
					Share{Key: "Bob", Amount: 30, Paid: true},
					Share{Key: "Carl", Amount: 30},
				),
			},
			want: []models.Debt{
				{Debtor: "Carl", Creditor: "Ana", Amount: 30},
			},
		},
		{
			name: "payer owing themselves is skipped",
			entries: []Entry{
				entry("Ana",
					Share{Key: "Ana", Amount: 50},
					Share{Key: "Bob", Amount: 50},
				),
			},
			want: []models.Debt{
				{Debtor: "Bob", Creditor: "Ana", Amount: 50},
			},
		},
		{
			name: "accumulation across expenses with same pair",
			entries: []Entry{
				entry("Ana", Share{Key: "Bob", Amount: 10}),
				entry("Ana", Share{Key: "Bob", Amount: 12.5}),
			},
			want: []models.Debt{
				{Debtor: "Bob", Creditor: "Ana", Amount: 22.5},
			},
		},
		{
			name: "split bill scenario",
			// 90 paid by Ana split 3 ways, then 30 paid by Bob split
			// between Ana and Bob: Ana's 15 nets against Bob's 30.
			entries: []Entry{
				entry("Ana",
					Share{Key: "Ana", Amount: 30},
					Share{Key: "Bob", Amount: 30},
					Share{Key: "Carl", Amount: 30},
				),
				entry("Bob",
					Share{Key: "Ana", Amount: 15},
					Share{Key: "Bob", Amount: 15},
				),
			},
			want: []models.Debt{
				{Debtor: "Bob", Creditor: "Ana", Amount: 15},
				{Debtor: "Carl", Creditor: "Ana", Amount: 30},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDebts(tt.entries)
			assertDebtsEqual(t, got, tt.want)
		})
	}
}

// Two computations over the same entries must yield identical results.
func TestCalculateDebtsDeterministic(t *testing.T) {
	entries := []Entry{
		entry("Ana", Share{Key: "Bob", Amount: 30}, Share{Key: "Carl", Amount: 30}),
		entry("Bob", Share{Key: "Ana", Amount: 15}, Share{Key: "Carl", Amount: 20}),
		entry("Carl", Share{Key: "Ana", Amount: 5}),
	}

	first := CalculateDebts(entries)
	for i := 0; i < 20; i++ {
		if got := CalculateDebts(entries); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: got %v, want %v", i, got, first)
		}
	}
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		name  string
		debts []models.Debt
		want  []models.Debt
	}{
		{
			name:  "empty set stays empty",
			debts: nil,
			want:  nil,
		},
		{
			name: "transitive chain collapses",
			debts: []models.Debt{
				{Debtor: "Ana", Creditor: "Bob", Amount: 10},
				{Debtor: "Bob", Creditor: "Carl", Amount: 10},
			},
			want: []models.Debt{
				{Debtor: "Ana", Creditor: "Carl", Amount: 10},
			},
		},
		{
			name: "already minimal set is preserved",
			debts: []models.Debt{
				{Debtor: "Bob", Creditor: "Ana", Amount: 25},
			},
			want: []models.Debt{
				{Debtor: "Bob", Creditor: "Ana", Amount: 25},
			},
		},
		{
			name: "partial chain leaves remainder with middle party",
			debts: []models.Debt{
				{Debtor: "Ana", Creditor: "Bob", Amount: 10},
				{Debtor: "Bob", Creditor: "Carl", Amount: 4},
			},
			want: []models.Debt{
				{Debtor: "Ana", Creditor: "Bob", Amount: 6},
				{Debtor: "Ana", Creditor: "Carl", Amount: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Simplify(tt.debts)
			assertDebtsEqual(t, got, tt.want)
		})
	}
}

// Simplification must never change any participant's net position.
func TestSimplifyPreservesNetBalances(t *testing.T) {
	debts := []models.Debt{
		{Debtor: "Ana", Creditor: "Bob", Amount: 12.5},
		{Debtor: "Bob", Creditor: "Carl", Amount: 7.25},
		{Debtor: "Carl", Creditor: "Dana", Amount: 7.25},
		{Debtor: "Dana", Creditor: "Ana", Amount: 3},
	}

	before := netBalances(debts)
	after := netBalances(Simplify(debts))

	for key, want := range before {
		if math.Abs(after[key]-want) > 0.001 {
			t.Errorf("net balance of %s changed: %v -> %v", key, want, after[key])
		}
	}
}

func netBalances(debts []models.Debt) map[string]float64 {
	balances := make(map[string]float64)
	for _, d := range debts {
		balances[d.Creditor] += d.Amount
		balances[d.Debtor] -= d.Amount
	}
	return balances
}

func TestNested(t *testing.T) {
	got := Nested([]models.Debt{
		{Debtor: "Bob", Creditor: "Ana", Amount: 15},
		{Debtor: "Carl", Creditor: "Ana", Amount: 30},
	})
	want := map[string]map[string]float64{
		"Bob":  {"Ana": 15},
		"Carl": {"Ana": 30},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Nested = %v, want %v", got, want)
	}

	empty := Nested(nil)
	if empty == nil || len(empty) != 0 {
		t.Errorf("Nested(nil) = %v, want empty non-nil map", empty)
	}
}

func TestDebtFilters(t *testing.T) {
	debts := []models.Debt{
		{Debtor: "Bob", Creditor: "Ana", Amount: 15},
		{Debtor: "Carl", Creditor: "Ana", Amount: 30},
		{Debtor: "Ana", Creditor: "Dana", Amount: 5},
	}

	to := DebtsToUser(debts, "Ana")
	if len(to) != 2 {
		t.Errorf("DebtsToUser(Ana) returned %d debts, want 2", len(to))
	}
	for _, d := range to {
		if d.Creditor != "Ana" {
			t.Errorf("DebtsToUser returned creditor %s", d.Creditor)
		}
	}

	from := DebtsFromUser(debts, "Ana")
	if len(from) != 1 || from[0].Creditor != "Dana" {
		t.Errorf("DebtsFromUser(Ana) = %v, want single debt to Dana", from)
	}

	if got := DebtsToUser(debts, "Nobody"); got != nil {
		t.Errorf("DebtsToUser(Nobody) = %v, want nil", got)
	}
}

func assertDebtsEqual(t *testing.T, got, want []models.Debt) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d debts (%v), want %d (%v)", len(got), got, len(want), want)
	}
	for i := range got {
		if got[i].Debtor != want[i].Debtor || got[i].Creditor != want[i].Creditor {
			t.Errorf("debt[%d] = %s->%s, want %s->%s", i, got[i].Debtor, got[i].Creditor, want[i].Debtor, want[i].Creditor)
		}
		if math.Abs(got[i].Amount-want[i].Amount) > 0.001 {
			t.Errorf("debt[%d] amount = %v, want %v", i, got[i].Amount, want[i].Amount)
		}
	}
}
