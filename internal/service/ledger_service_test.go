package service

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/billyapp/billy/internal/session"
	"github.com/billyapp/billy/internal/storage/sqlite"
)

// setupServices creates a ledger and bill service pair backed by a temp
// SQLite database and a fresh session manager.
func setupServices(t *testing.T) (*LedgerService, *BillService) {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "billy-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	bills := session.NewManager()
	return NewLedgerService(store, bills), NewBillService(bills)
}

func TestProfileDebtFlow(t *testing.T) {
	ledgerSvc, _ := setupServices(t)
	ctx := context.Background()

	profileID, okay := ledgerSvc.CreateProfile(ctx, "Flat", []string{"ana@x.com", "bob@x.com", "carl@x.com"})
	if !okay {
		t.Fatal("CreateProfile failed")
	}

	// Empty scope: no expenses yet means empty results, not failure.
	if debts := ledgerSvc.CalculateDebts(ctx, profileID); len(debts) != 0 {
		t.Errorf("expected empty debt map, got %v", debts)
	}
	if debts := ledgerSvc.GetDebtsToUser(ctx, "ana@x.com", profileID); len(debts) != 0 {
		t.Errorf("expected no debts to user, got %v", debts)
	}

	expenseID, okay := ledgerSvc.AddOutcome(ctx, profileID, "Dinner", 90.0, "ana@x.com",
		[]string{"ana@x.com", "bob@x.com", "carl@x.com"})
	if !okay {
		t.Fatal("AddOutcome failed")
	}

	want := map[string]map[string]float64{
		"bob@x.com":  {"ana@x.com": 30},
		"carl@x.com": {"ana@x.com": 30},
	}
	if got := ledgerSvc.CalculateDebts(ctx, profileID); !reflect.DeepEqual(got, want) {
		t.Errorf("CalculateDebts = %v, want %v", got, want)
	}

	// Netting: a second outcome in the opposite direction reduces Bob's debt.
	if _, okay := ledgerSvc.AddOutcome(ctx, profileID, "Breakfast", 30.0, "bob@x.com",
		[]string{"ana@x.com", "bob@x.com"}); !okay {
		t.Fatal("second AddOutcome failed")
	}
	want["bob@x.com"]["ana@x.com"] = 15
	if got := ledgerSvc.CalculateDebts(ctx, profileID); !reflect.DeepEqual(got, want) {
		t.Errorf("after netting: CalculateDebts = %v, want %v", got, want)
	}

	// MarkAsPaid excludes exactly that share from subsequent computations.
	if !ledgerSvc.MarkAsPaid(ctx, profileID, "carl@x.com", expenseID, true) {
		t.Fatal("MarkAsPaid failed")
	}
	got := ledgerSvc.CalculateDebts(ctx, profileID)
	if _, exists := got["carl@x.com"]; exists {
		t.Errorf("carl's settled share still in debts: %v", got)
	}
	if math.Abs(got["bob@x.com"]["ana@x.com"]-15) > 0.001 {
		t.Errorf("bob's debt changed by carl's settlement: %v", got)
	}

	// Unsetting brings it back.
	if !ledgerSvc.MarkAsPaid(ctx, profileID, "carl@x.com", expenseID, false) {
		t.Fatal("MarkAsPaid(false) failed")
	}
	got = ledgerSvc.CalculateDebts(ctx, profileID)
	if math.Abs(got["carl@x.com"]["ana@x.com"]-30) > 0.001 {
		t.Errorf("carl's debt not restored: %v", got)
	}

	// Aggregate views.
	toAna := ledgerSvc.GetDebtsToUser(ctx, "ana@x.com", profileID)
	if len(toAna) != 2 {
		t.Errorf("GetDebtsToUser(ana) returned %d debts, want 2", len(toAna))
	}
	fromBob := ledgerSvc.GetDebtsFromUser(ctx, "bob@x.com", profileID)
	if len(fromBob) != 1 || fromBob[0].Creditor != "ana@x.com" {
		t.Errorf("GetDebtsFromUser(bob) = %v", fromBob)
	}

	// RemoveOutcome drops the expense from the ledger.
	if !ledgerSvc.RemoveOutcome(ctx, profileID, expenseID) {
		t.Fatal("RemoveOutcome failed")
	}
	got = ledgerSvc.CalculateDebts(ctx, profileID)
	if _, exists := got["carl@x.com"]; exists {
		t.Errorf("removed expense still contributes debts: %v", got)
	}
}

func TestMarkAsPaidFailures(t *testing.T) {
	ledgerSvc, _ := setupServices(t)
	ctx := context.Background()

	profileID, _ := ledgerSvc.CreateProfile(ctx, "Flat", nil)
	expenseID, _ := ledgerSvc.AddOutcome(ctx, profileID, "Dinner", 30.0, "ana@x.com",
		[]string{"ana@x.com", "bob@x.com"})

	if ledgerSvc.MarkAsPaid(ctx, profileID, "nobody@x.com", expenseID, true) {
		t.Error("expected failure for unknown participant")
	}
	if ledgerSvc.MarkAsPaid(ctx, profileID, "bob@x.com", "missing-expense", true) {
		t.Error("expected failure for unknown expense")
	}
	if ledgerSvc.MarkAsPaid(ctx, "missing-profile", "bob@x.com", expenseID, true) {
		t.Error("expected failure for unknown scope")
	}
}

func TestRedistributeDebts(t *testing.T) {
	ledgerSvc, _ := setupServices(t)
	ctx := context.Background()

	profileID, _ := ledgerSvc.CreateProfile(ctx, "Trip", nil)

	// Ana owes Bob 10 and Bob owes Carl 10: redistribution should leave a
	// single direct debt from Ana to Carl.
	ledgerSvc.AddOutcome(ctx, profileID, "Taxi", 10.0, "bob@x.com", []string{"ana@x.com"})
	ledgerSvc.AddOutcome(ctx, profileID, "Coffee", 10.0, "carl@x.com", []string{"bob@x.com"})

	if !ledgerSvc.RedistributeDebts(ctx, profileID) {
		t.Fatal("RedistributeDebts failed")
	}

	want := map[string]map[string]float64{
		"ana@x.com": {"carl@x.com": 10},
	}
	if got := ledgerSvc.CalculateDebts(ctx, profileID); !reflect.DeepEqual(got, want) {
		t.Errorf("after redistribution: CalculateDebts = %v, want %v", got, want)
	}

	// Original expenses remain for audit, fully settled.
	expenses := ledgerSvc.ListOutcomes(ctx, profileID)
	if len(expenses) != 3 {
		t.Fatalf("expected 3 expenses after redistribution, got %d", len(expenses))
	}

	// Redistributing an already-netted ledger is stable.
	if !ledgerSvc.RedistributeDebts(ctx, profileID) {
		t.Fatal("second RedistributeDebts failed")
	}
	if got := ledgerSvc.CalculateDebts(ctx, profileID); !reflect.DeepEqual(got, want) {
		t.Errorf("redistribution not idempotent: %v", got)
	}

	if ledgerSvc.RedistributeDebts(ctx, "missing-profile") {
		t.Error("expected failure for unknown scope")
	}
}

func TestGetTotalToPayForUserInDateRange(t *testing.T) {
	ledgerSvc, _ := setupServices(t)
	ctx := context.Background()

	profileID, _ := ledgerSvc.CreateProfile(ctx, "Flat", nil)
	expenseID, _ := ledgerSvc.AddOutcome(ctx, profileID, "Dinner", 90.0, "ana@x.com",
		[]string{"ana@x.com", "bob@x.com", "carl@x.com"})
	ledgerSvc.AddOutcome(ctx, profileID, "Drinks", 20.0, "bob@x.com",
		[]string{"ana@x.com", "bob@x.com"})

	// Settlement state must not affect the spend aggregate.
	ledgerSvc.MarkAsPaid(ctx, profileID, "ana@x.com", expenseID, true)

	start := time.Now().Add(-24 * time.Hour)
	end := time.Now().Add(24 * time.Hour)
	total := ledgerSvc.GetTotalToPayForUserInDateRange(ctx, "ana@x.com", profileID, start, end)
	if math.Abs(total-40.0) > 0.001 { // 30 + 10
		t.Errorf("total = %v, want 40.0", total)
	}

	// Redistribution rewrites settlement bookkeeping, not spend: the
	// adjustment expenses it creates must not inflate the aggregate.
	if !ledgerSvc.RedistributeDebts(ctx, profileID) {
		t.Fatal("RedistributeDebts failed")
	}
	after := ledgerSvc.GetTotalToPayForUserInDateRange(ctx, "ana@x.com", profileID, start, end)
	if math.Abs(after-total) > 0.001 {
		t.Errorf("total after redistribution = %v, want %v unchanged", after, total)
	}
	bobAfter := ledgerSvc.GetTotalToPayForUserInDateRange(ctx, "bob@x.com", profileID, start, end)
	if math.Abs(bobAfter-40.0) > 0.001 { // 30 + 10, also unchanged
		t.Errorf("bob's total after redistribution = %v, want 40.0", bobAfter)
	}

	// A range before the expenses sums to zero.
	past := ledgerSvc.GetTotalToPayForUserInDateRange(ctx, "ana@x.com", profileID,
		start.Add(-48*time.Hour), start.Add(-24*time.Hour))
	if past != 0 {
		t.Errorf("total outside range = %v, want 0", past)
	}

	// Unknown scope yields zero, not an error.
	if got := ledgerSvc.GetTotalToPayForUserInDateRange(ctx, "ana@x.com", "missing", start, end); got != 0 {
		t.Errorf("unknown scope total = %v, want 0", got)
	}
}

func TestBillSessionFlow(t *testing.T) {
	ledgerSvc, billSvc := setupServices(t)
	ctx := context.Background()

	billID, okay := billSvc.CreateBill(0, []string{"Ana", "Bob", "Carl"})
	if !okay {
		t.Fatal("CreateBill failed")
	}

	// Duplicate participant is rejected and the count is unchanged.
	if billSvc.AddParticipantToBill(billID, "Ana") {
		t.Error("expected duplicate participant to be rejected")
	}
	if got := billSvc.GetBillParticipants(billID); len(got) != 3 {
		t.Errorf("participant count changed: %v", got)
	}

	if !billSvc.AddOutcomeToBill(billID, "Ana", 90.0, "Dinner", []string{"Ana", "Bob", "Carl"}) {
		t.Fatal("AddOutcomeToBill failed")
	}

	want := map[string]map[string]float64{
		"Bob":  {"Ana": 30},
		"Carl": {"Ana": 30},
	}
	if got := ledgerSvc.CalculateDebts(ctx, billID); !reflect.DeepEqual(got, want) {
		t.Errorf("bill debts = %v, want %v", got, want)
	}

	// Second outcome nets Ana's 15 against Bob's 30.
	if !billSvc.AddOutcomeToBill(billID, "Bob", 30.0, "Breakfast", []string{"Ana", "Bob"}) {
		t.Fatal("second AddOutcomeToBill failed")
	}
	want["Bob"]["Ana"] = 15
	if got := ledgerSvc.CalculateDebts(ctx, billID); !reflect.DeepEqual(got, want) {
		t.Errorf("after netting: bill debts = %v, want %v", got, want)
	}

	transactions := billSvc.GetBillTransactions(billID)
	if len(transactions) != 2 || transactions[0].Description != "Dinner" {
		t.Errorf("transactions = %+v, want 2 in insertion order", transactions)
	}

	// Bills have no settlement tracking and cannot be redistributed.
	if ledgerSvc.MarkAsPaid(ctx, billID, "Bob", transactions[0].ID, true) {
		t.Error("MarkAsPaid should fail on a bill scope")
	}
	if ledgerSvc.RedistributeDebts(ctx, billID) {
		t.Error("RedistributeDebts should fail on a bill scope")
	}

	// Teardown: reads after deletion fail cleanly with empty results.
	if !billSvc.DeleteBill(billID) {
		t.Fatal("DeleteBill failed")
	}
	if billSvc.DeleteBill(billID) {
		t.Error("second DeleteBill should fail")
	}
	if got := ledgerSvc.CalculateDebts(ctx, billID); len(got) != 0 {
		t.Errorf("debts after delete = %v, want empty", got)
	}
	if got := billSvc.GetBillTransactions(billID); got != nil {
		t.Errorf("transactions after delete = %v, want nil", got)
	}
}

func TestAddOutcomeValidation(t *testing.T) {
	ledgerSvc, _ := setupServices(t)
	ctx := context.Background()

	profileID, _ := ledgerSvc.CreateProfile(ctx, "Flat", nil)

	if _, okay := ledgerSvc.AddOutcome(ctx, profileID, "x", -5, "ana@x.com", []string{"ana@x.com"}); okay {
		t.Error("expected failure for negative amount")
	}
	if _, okay := ledgerSvc.AddOutcome(ctx, profileID, "x", 10, "", []string{"ana@x.com"}); okay {
		t.Error("expected failure for empty payer")
	}
	if _, okay := ledgerSvc.AddOutcome(ctx, profileID, "x", 10, "ana@x.com", nil); okay {
		t.Error("expected failure for no participants")
	}
	if _, okay := ledgerSvc.AddOutcome(ctx, "missing", "x", 10, "ana@x.com", []string{"ana@x.com"}); okay {
		t.Error("expected failure for unknown profile")
	}

	// Equal split of an odd amount conserves every cent.
	expenseID, okay := ledgerSvc.AddOutcome(ctx, profileID, "Odd", 100.0, "ana@x.com",
		[]string{"ana@x.com", "bob@x.com", "carl@x.com"})
	if !okay {
		t.Fatal("AddOutcome failed")
	}
	var expense *expenseLookup
	for _, e := range ledgerSvc.ListOutcomes(ctx, profileID) {
		if e.ID == expenseID {
			expense = &expenseLookup{toPay: e.ToPay, amount: e.Amount}
		}
	}
	if expense == nil {
		t.Fatal("created expense not listed")
	}
	var sum float64
	for _, share := range expense.toPay {
		sum += share
	}
	if math.Abs(sum-expense.amount) > 0.0001 {
		t.Errorf("shares sum to %v, want %v", sum, expense.amount)
	}
	if math.Abs(expense.toPay[0]-33.34) > 0.001 {
		t.Errorf("earliest participant should absorb the remainder: %v", expense.toPay)
	}
}

type expenseLookup struct {
	toPay  []float64
	amount float64
}
