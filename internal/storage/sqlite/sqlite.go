// Package sqlite stores profiles, shared expenses, and their per-participant
// shares in a single SQLite file, the durable half of the ledger (bill
// sessions stay in memory).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go driver, keeps the build CGO-free

	"github.com/billyapp/billy/internal/models"
	"github.com/billyapp/billy/internal/storage"
)

var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at dbPath and brings the
// schema up to date. WAL mode lets debt reads run their snapshot transactions
// while a redistribution commits, and the busy timeout covers the brief
// writer lock instead of surfacing SQLITE_BUSY to callers.
func New(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	// journal_mode returns the resulting mode as a row, so Exec won't do.
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to switch to WAL: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateProfile persists a new profile and its members.
func (s *SQLiteStore) CreateProfile(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.CreatedAt == 0 {
		profile.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO profiles (id, name, created_at) VALUES (?, ?, ?)",
		profile.ID, profile.Name, profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	for _, member := range profile.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO profile_members (profile_id, name) VALUES (?, ?)",
			profile.ID, member,
		)
		if err != nil {
			return fmt.Errorf("failed to insert profile member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by ID, including its members.
func (s *SQLiteStore) GetProfile(ctx context.Context, profileID string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM profiles WHERE id = ?",
		profileID,
	).Scan(&profile.ID, &profile.Name, &profile.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile not found: %s", profileID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM profile_members WHERE profile_id = ? ORDER BY name",
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan profile member: %w", err)
		}
		profile.Members = append(profile.Members, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profile members: %w", err)
	}

	return profile, nil
}
