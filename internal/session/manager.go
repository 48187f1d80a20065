// Package session manages ephemeral split-bill sessions. Bills live only in
// memory: the mobile client creates one per splitting session and tears it
// down when the app backgrounds, so nothing here touches persistent storage.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/billyapp/billy/internal/models"
)

var (
	// ErrBillNotFound is returned when a bill ID does not name a live session.
	ErrBillNotFound = errors.New("bill not found")

	// ErrDuplicateParticipant is returned when a participant name already
	// exists in the bill. Names match case-sensitively.
	ErrDuplicateParticipant = errors.New("participant already in bill")
)

// bill is one ephemeral splitting session. The manager lock guards the bills
// map; each bill carries its own lock so concurrent reads of one bill never
// observe a half-applied mutation.
type bill struct {
	mu            sync.RWMutex
	id            string
	initialAmount float64
	participants  []string
	transactions  []models.BillTransaction
	lastActive    time.Time
}

// Manager owns all live bill sessions.
type Manager struct {
	mu    sync.RWMutex
	bills map[string]*bill

	// onCountChange, when set, receives the number of live bills after every
	// create/delete. Used to feed the active-sessions gauge.
	onCountChange func(int)
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{bills: make(map[string]*bill)}
}

// OnCountChange registers a callback invoked with the live bill count after
// every create and delete. Must be called before the manager is shared.
func (m *Manager) OnCountChange(fn func(int)) {
	m.onCountChange = fn
}

// CreateBill always creates a new bill and returns its ID. The initial
// participant list may be empty. initialAmount is kept for display only; it
// has no payer and never enters debt computation.
func (m *Manager) CreateBill(initialAmount float64, initialParticipants []string) (string, error) {
	seen := make(map[string]bool, len(initialParticipants))
	for _, name := range initialParticipants {
		if name == "" {
			return "", fmt.Errorf("participant name must not be empty")
		}
		if seen[name] {
			return "", fmt.Errorf("%w: %s", ErrDuplicateParticipant, name)
		}
		seen[name] = true
	}

	b := &bill{
		id:            uuid.New().String(),
		initialAmount: initialAmount,
		participants:  append([]string(nil), initialParticipants...),
		lastActive:    time.Now(),
	}

	m.mu.Lock()
	m.bills[b.id] = b
	count := len(m.bills)
	m.mu.Unlock()

	if m.onCountChange != nil {
		m.onCountChange(count)
	}
	slog.Debug("bill session created", "bill_id", b.id, "participants", len(initialParticipants))
	return b.id, nil
}

// DeleteBill tears down a bill and all its transactions and participants.
// Deletion wins over in-flight reads: readers holding a snapshot finish
// against pre-deletion state, later lookups fail cleanly.
func (m *Manager) DeleteBill(billID string) error {
	m.mu.Lock()
	_, ok := m.bills[billID]
	if ok {
		delete(m.bills, billID)
	}
	count := len(m.bills)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrBillNotFound, billID)
	}
	if m.onCountChange != nil {
		m.onCountChange(count)
	}
	slog.Debug("bill session deleted", "bill_id", billID)
	return nil
}

func (m *Manager) get(billID string) (*bill, error) {
	m.mu.RLock()
	b, ok := m.bills[billID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBillNotFound, billID)
	}
	return b, nil
}

// Exists reports whether billID names a live session.
func (m *Manager) Exists(billID string) bool {
	m.mu.RLock()
	_, ok := m.bills[billID]
	m.mu.RUnlock()
	return ok
}

// AddParticipant appends a name to the bill. Duplicate names are rejected,
// not overwritten.
func (m *Manager) AddParticipant(billID, name string) error {
	if name == "" {
		return fmt.Errorf("participant name must not be empty")
	}
	b, err := m.get(billID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.participants {
		if existing == name {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, name)
		}
	}
	b.participants = append(b.participants, name)
	b.lastActive = time.Now()
	return nil
}

// Participants returns the bill's participant names in insertion order.
func (m *Manager) Participants(billID string) ([]string, error) {
	b, err := m.get(billID)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]string(nil), b.participants...), nil
}

// AddTransaction appends an expense entry to the bill. The payer does not
// have to be among the participants sharing the cost.
func (m *Manager) AddTransaction(billID, paidBy string, amount float64, description string, participants []string) (string, error) {
	if paidBy == "" {
		return "", fmt.Errorf("paid_by must not be empty")
	}
	if amount <= 0 {
		return "", fmt.Errorf("amount must be positive")
	}
	if len(participants) == 0 {
		return "", fmt.Errorf("at least one participant required")
	}
	b, err := m.get(billID)
	if err != nil {
		return "", err
	}

	txn := models.BillTransaction{
		ID:           uuid.New().String(),
		Description:  description,
		PaidBy:       paidBy,
		Amount:       amount,
		Participants: append([]string(nil), participants...),
		Date:         time.Now().Unix(),
	}

	b.mu.Lock()
	b.transactions = append(b.transactions, txn)
	b.lastActive = time.Now()
	b.mu.Unlock()
	return txn.ID, nil
}

// Transactions returns the bill's transactions in insertion order. Callers
// that want most-recent-first reverse the slice themselves.
func (m *Manager) Transactions(billID string) ([]models.BillTransaction, error) {
	b, err := m.get(billID)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]models.BillTransaction(nil), b.transactions...), nil
}

// Snapshot returns a consistent copy of the bill's participants and
// transactions, taken under one read lock, for debt computation.
func (m *Manager) Snapshot(billID string) ([]string, []models.BillTransaction, error) {
	b, err := m.get(billID)
	if err != nil {
		return nil, nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	participants := append([]string(nil), b.participants...)
	transactions := append([]models.BillTransaction(nil), b.transactions...)
	return participants, transactions, nil
}

// StartJanitor sweeps bills idle longer than ttl, the server-side analogue
// of teardown on app backgrounding. It returns immediately; the sweep stops
// when ctx is cancelled. A ttl of zero disables sweeping.
func (m *Manager) StartJanitor(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep(ttl)
			}
		}
	}()
}

func (m *Manager) sweep(ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	m.mu.RLock()
	var stale []string
	for id, b := range m.bills {
		b.mu.RLock()
		idle := b.lastActive.Before(cutoff)
		b.mu.RUnlock()
		if idle {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		if err := m.DeleteBill(id); err == nil {
			slog.Info("swept idle bill session", "bill_id", id, "ttl", ttl)
		}
	}
}
