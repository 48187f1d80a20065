package service

import (
	"log/slog"

	"github.com/billyapp/billy/internal/models"
	"github.com/billyapp/billy/internal/session"
)

// BillService fronts the ephemeral bill session manager with the boolean
// success contract of the data-access boundary.
type BillService struct {
	bills *session.Manager
}

// NewBillService creates a BillService over the given session manager.
func NewBillService(bills *session.Manager) *BillService {
	return &BillService{bills: bills}
}

// CreateBill starts a new splitting session and returns its ID. The initial
// participant list may be empty.
func (s *BillService) CreateBill(initialAmount float64, initialParticipants []string) (string, bool) {
	billID, err := s.bills.CreateBill(initialAmount, initialParticipants)
	if err != nil {
		slog.Warn("CreateBill failed", "error", err)
		return "", false
	}
	return billID, true
}

// DeleteBill tears down a session and all its state.
func (s *BillService) DeleteBill(billID string) bool {
	if err := s.bills.DeleteBill(billID); err != nil {
		slog.Warn("DeleteBill failed", "bill_id", billID, "error", err)
		return false
	}
	return true
}

// AddParticipantToBill appends a participant name. Fails on duplicates
// (case-sensitive) and unknown bills.
func (s *BillService) AddParticipantToBill(billID, name string) bool {
	if err := s.bills.AddParticipant(billID, name); err != nil {
		slog.Warn("AddParticipantToBill failed", "bill_id", billID, "name", name, "error", err)
		return false
	}
	return true
}

// GetBillParticipants returns participant names in insertion order, or an
// empty list for an unknown bill.
func (s *BillService) GetBillParticipants(billID string) []string {
	participants, err := s.bills.Participants(billID)
	if err != nil {
		slog.Warn("GetBillParticipants failed", "bill_id", billID, "error", err)
		return nil
	}
	return participants
}

// AddOutcomeToBill appends a transaction to a session. whoPaid need not be in
// participants; equal-split semantics apply when debts are computed.
func (s *BillService) AddOutcomeToBill(billID, whoPaid string, amount float64, description string, participants []string) bool {
	if _, err := s.bills.AddTransaction(billID, whoPaid, amount, description, participants); err != nil {
		slog.Warn("AddOutcomeToBill failed", "bill_id", billID, "error", err)
		return false
	}
	return true
}

// GetBillTransactions returns the session's transactions in insertion order.
func (s *BillService) GetBillTransactions(billID string) []models.BillTransaction {
	transactions, err := s.bills.Transactions(billID)
	if err != nil {
		slog.Warn("GetBillTransactions failed", "bill_id", billID, "error", err)
		return nil
	}
	return transactions
}
