// Package service implements the data-access API boundary. Reads return
// empty results instead of failing and mutations report success as a
// boolean: callers never need to distinguish "no debts" from "query failed",
// and no error crosses this boundary. Failures are logged here.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billyapp/billy/internal/ledger"
	"github.com/billyapp/billy/internal/metrics"
	"github.com/billyapp/billy/internal/models"
	"github.com/billyapp/billy/internal/session"
	"github.com/billyapp/billy/internal/storage"
)

// LedgerService exposes debt computation and settlement over shared profiles
// and live bill sessions. A scope ID names either a stored profile or an
// ephemeral bill; bills are checked first since they only exist in memory.
type LedgerService struct {
	store storage.Store
	bills *session.Manager
}

// NewLedgerService creates a LedgerService over the given store and bill
// session manager.
func NewLedgerService(store storage.Store, bills *session.Manager) *LedgerService {
	return &LedgerService{store: store, bills: bills}
}

// CreateProfile creates a shared profile and returns its ID.
func (s *LedgerService) CreateProfile(ctx context.Context, name string, members []string) (string, bool) {
	profile := &models.Profile{Name: name, Members: members}
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		slog.Error("CreateProfile failed", "name", name, "error", err)
		return "", false
	}
	slog.Info("profile created", "profile_id", profile.ID, "members", len(members))
	return profile.ID, true
}

// GetProfile retrieves a profile, or nil if the ID is unknown.
func (s *LedgerService) GetProfile(ctx context.Context, profileID string) *models.Profile {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		slog.Warn("GetProfile failed", "profile_id", profileID, "error", err)
		return nil
	}
	return profile
}

// AddOutcome records a shared expense on a profile, splitting the amount
// equally among participants, and returns the new expense ID. The payer need
// not be among the participants.
func (s *LedgerService) AddOutcome(ctx context.Context, profileID, description string, amount float64, paidBy string, participants []string) (string, bool) {
	if amount <= 0 || paidBy == "" || len(participants) == 0 {
		slog.Warn("AddOutcome rejected", "profile_id", profileID, "amount", amount, "participants", len(participants))
		return "", false
	}
	if _, err := s.store.GetProfile(ctx, profileID); err != nil {
		slog.Warn("AddOutcome: unknown profile", "profile_id", profileID, "error", err)
		return "", false
	}

	expense := &models.Expense{
		ProfileID:    profileID,
		Description:  description,
		Amount:       amount,
		PaidBy:       paidBy,
		Kind:         models.KindExpense,
		Participants: participants,
		ToPay:        ledger.EqualSplit(amount, len(participants)),
		HasPaid:      make([]bool, len(participants)),
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddOutcome failed", "profile_id", profileID, "error", err)
		return "", false
	}
	return expense.ID, true
}

// RemoveOutcome deletes one expense from a profile.
func (s *LedgerService) RemoveOutcome(ctx context.Context, profileID, expenseID string) bool {
	if err := s.store.DeleteExpense(ctx, profileID, expenseID); err != nil {
		slog.Warn("RemoveOutcome failed", "profile_id", profileID, "expense_id", expenseID, "error", err)
		return false
	}
	return true
}

// ListOutcomes returns all expenses of a profile, oldest first.
func (s *LedgerService) ListOutcomes(ctx context.Context, profileID string) []*models.Expense {
	expenses, err := s.store.ListExpensesByProfile(ctx, profileID)
	if err != nil {
		slog.Warn("ListOutcomes failed", "profile_id", profileID, "error", err)
		return nil
	}
	return expenses
}

// CalculateDebts computes the netted pairwise debt map for a scope. The
// result is empty for an unknown scope or a scope with no outstanding debts.
func (s *LedgerService) CalculateDebts(ctx context.Context, scopeID string) map[string]map[string]float64 {
	entries, kind, err := s.entries(ctx, scopeID)
	if err != nil {
		slog.Warn("CalculateDebts: scope not resolvable", "scope_id", scopeID, "error", err)
		return map[string]map[string]float64{}
	}
	metrics.DebtCalculations.WithLabelValues(kind).Inc()
	return ledger.Nested(ledger.CalculateDebts(entries))
}

// GetDebtsToUser returns all debts where userKey is the creditor.
func (s *LedgerService) GetDebtsToUser(ctx context.Context, userKey, scopeID string) []models.Debt {
	entries, kind, err := s.entries(ctx, scopeID)
	if err != nil {
		slog.Warn("GetDebtsToUser: scope not resolvable", "scope_id", scopeID, "error", err)
		return nil
	}
	metrics.DebtCalculations.WithLabelValues(kind).Inc()
	return ledger.DebtsToUser(ledger.CalculateDebts(entries), userKey)
}

// GetDebtsFromUser returns all debts where userKey is the debtor.
func (s *LedgerService) GetDebtsFromUser(ctx context.Context, userKey, scopeID string) []models.Debt {
	entries, kind, err := s.entries(ctx, scopeID)
	if err != nil {
		slog.Warn("GetDebtsFromUser: scope not resolvable", "scope_id", scopeID, "error", err)
		return nil
	}
	metrics.DebtCalculations.WithLabelValues(kind).Inc()
	return ledger.DebtsFromUser(ledger.CalculateDebts(entries), userKey)
}

// GetTotalToPayForUserInDateRange sums the user's shares across entries
// created inside [start, end], inclusive, regardless of settlement state.
// This is "my total spend", not outstanding debt.
func (s *LedgerService) GetTotalToPayForUserInDateRange(ctx context.Context, userKey, scopeID string, start, end time.Time) float64 {
	total := decimal.Zero

	if s.bills.Exists(scopeID) {
		_, transactions, err := s.bills.Snapshot(scopeID)
		if err != nil {
			return 0
		}
		for _, txn := range transactions {
			if !inRange(txn.Date, start, end) {
				continue
			}
			shares := ledger.EqualSplit(txn.Amount, len(txn.Participants))
			for i, name := range txn.Participants {
				if name == userKey {
					total = total.Add(decimal.NewFromFloat(shares[i]))
				}
			}
		}
	} else {
		expenses, err := s.store.ListExpensesByProfile(ctx, scopeID)
		if err != nil {
			slog.Warn("GetTotalToPayForUserInDateRange failed", "scope_id", scopeID, "error", err)
			return 0
		}
		for _, expense := range expenses {
			// Adjustments are settlement bookkeeping, not spend; counting
			// them would double the original shares they settled.
			if expense.Kind == models.KindAdjustment {
				continue
			}
			if !inRange(expense.CreatedAt, start, end) {
				continue
			}
			for i, participant := range expense.Participants {
				if participant == userKey {
					total = total.Add(decimal.NewFromFloat(expense.ToPay[i]))
				}
			}
		}
	}

	result, _ := total.Round(2).Float64()
	return result
}

// MarkAsPaid idempotently sets one participant's paid flag on one expense.
// Returns false if the expense is not in the scope or the participant is not
// among its shares. Bill sessions have no settlement tracking, so a bill
// scope always fails.
func (s *LedgerService) MarkAsPaid(ctx context.Context, scopeID, participant, expenseID string, paid bool) bool {
	if s.bills.Exists(scopeID) {
		slog.Warn("MarkAsPaid on bill session rejected", "scope_id", scopeID)
		return false
	}
	if err := s.store.SetSharePaid(ctx, scopeID, expenseID, participant, paid); err != nil {
		slog.Warn("MarkAsPaid failed", "scope_id", scopeID, "expense_id", expenseID, "participant", participant, "error", err)
		return false
	}
	return true
}

// RedistributeDebts nets the profile's outstanding debts down to a minimal
// settlement set and commits it: all previously outstanding shares are marked
// settled and one adjustment expense per netted debt becomes the new ground
// truth. Only profile scopes can be redistributed.
func (s *LedgerService) RedistributeDebts(ctx context.Context, scopeID string) bool {
	if s.bills.Exists(scopeID) {
		slog.Warn("RedistributeDebts on bill session rejected", "scope_id", scopeID)
		return false
	}
	if _, err := s.store.GetProfile(ctx, scopeID); err != nil {
		slog.Warn("RedistributeDebts: unknown profile", "scope_id", scopeID, "error", err)
		return false
	}

	entries, _, err := s.entries(ctx, scopeID)
	if err != nil {
		slog.Error("RedistributeDebts: failed to load entries", "scope_id", scopeID, "error", err)
		return false
	}

	settled := ledger.Simplify(ledger.CalculateDebts(entries))
	adjustments := make([]*models.Expense, 0, len(settled))
	for _, debt := range settled {
		adjustments = append(adjustments, &models.Expense{
			ProfileID:    scopeID,
			Description:  "Debt redistribution",
			Amount:       debt.Amount,
			PaidBy:       debt.Creditor,
			Kind:         models.KindAdjustment,
			Participants: []string{debt.Debtor},
			ToPay:        []float64{debt.Amount},
			HasPaid:      []bool{false},
		})
	}

	if err := s.store.ReplaceOutstanding(ctx, scopeID, adjustments); err != nil {
		slog.Error("RedistributeDebts failed", "scope_id", scopeID, "error", err)
		return false
	}
	metrics.Redistributions.Inc()
	slog.Info("debts redistributed", "scope_id", scopeID, "settlements", len(settled))
	return true
}

// entries resolves a scope ID into ledger entries. Bill sessions contribute
// every transaction with equal splits and no paid tracking; profiles
// contribute their stored shares and flags.
func (s *LedgerService) entries(ctx context.Context, scopeID string) ([]ledger.Entry, string, error) {
	if s.bills.Exists(scopeID) {
		_, transactions, err := s.bills.Snapshot(scopeID)
		if err != nil {
			return nil, "bill", err
		}
		entries := make([]ledger.Entry, 0, len(transactions))
		for _, txn := range transactions {
			shares := ledger.EqualSplit(txn.Amount, len(txn.Participants))
			entry := ledger.Entry{PaidBy: txn.PaidBy}
			for i, name := range txn.Participants {
				entry.Shares = append(entry.Shares, ledger.Share{Key: name, Amount: shares[i]})
			}
			entries = append(entries, entry)
		}
		return entries, "bill", nil
	}

	if _, err := s.store.GetProfile(ctx, scopeID); err != nil {
		return nil, "profile", err
	}
	expenses, err := s.store.ListExpensesByProfile(ctx, scopeID)
	if err != nil {
		return nil, "profile", err
	}
	entries := make([]ledger.Entry, 0, len(expenses))
	for _, expense := range expenses {
		entry := ledger.Entry{PaidBy: expense.PaidBy}
		for i, participant := range expense.Participants {
			entry.Shares = append(entry.Shares, ledger.Share{
				Key:    participant,
				Amount: expense.ToPay[i],
				Paid:   expense.HasPaid[i],
			})
		}
		entries = append(entries, entry)
	}
	return entries, "profile", nil
}

func inRange(unix int64, start, end time.Time) bool {
	return unix >= start.Unix() && unix <= end.Unix()
}
