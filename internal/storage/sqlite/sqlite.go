// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

const activeGroupKey = "active_group_id"

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveGroups replaces the entire persisted collection in one transaction.
// Repeated calls with the same collection are idempotent.
func (s *SQLiteStore) SaveGroups(ctx context.Context, groups []*models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Cascades clear people, expenses and participants.
	if _, err := tx.ExecContext(ctx, "DELETE FROM groups"); err != nil {
		return fmt.Errorf("failed to clear groups: %w", err)
	}

	for pos, group := range groups {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO groups (id, name, description, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			group.ID, group.Name, group.Description, pos, group.CreatedAt.Unix(), group.UpdatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for i := range group.Members {
			member := &group.Members[i]
			_, err = tx.ExecContext(ctx,
				"INSERT INTO people (id, group_id, name, avatar, status, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
				member.ID, group.ID, member.Name, member.Avatar, string(member.Status), i, member.CreatedAt.Unix(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert person: %w", err)
			}
		}

		for i := range group.Expenses {
			expense := &group.Expenses[i]
			_, err = tx.ExecContext(ctx,
				"INSERT INTO expenses (id, group_id, title, amount, payer_id, description, category, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
				expense.ID, group.ID, expense.Title, expense.Amount, expense.PayerID,
				expense.Description, expense.Category, i, expense.CreatedAt.Unix(),
			)
			if err != nil {
				return fmt.Errorf("failed to insert expense: %w", err)
			}

			for j, personID := range expense.Participants {
				_, err = tx.ExecContext(ctx,
					"INSERT INTO expense_participants (expense_id, person_id, position) VALUES (?, ?, ?)",
					expense.ID, personID, j,
				)
				if err != nil {
					return fmt.Errorf("failed to insert expense participant: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadGroups retrieves all groups with their members and expenses, in the
// order they were saved.
func (s *SQLiteStore) LoadGroups(ctx context.Context) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, created_at, updated_at FROM groups ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		var createdAt, updatedAt int64
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		group.CreatedAt = time.Unix(createdAt, 0)
		group.UpdatedAt = time.Unix(updatedAt, 0)
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, group := range groups {
		if group.Members, err = s.loadMembers(ctx, group.ID); err != nil {
			return nil, err
		}
		if group.Expenses, err = s.loadExpenses(ctx, group.ID); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

func (s *SQLiteStore) loadMembers(ctx context.Context, groupID string) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, avatar, status, created_at FROM people WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	var members []models.Person
	for rows.Next() {
		var member models.Person
		var status string
		var createdAt int64
		if err := rows.Scan(&member.ID, &member.Name, &member.Avatar, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		member.Status = models.PersonStatus(status)
		member.CreatedAt = time.Unix(createdAt, 0)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}
	return members, nil
}

func (s *SQLiteStore) loadExpenses(ctx context.Context, groupID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, amount, payer_id, description, category, created_at FROM expenses WHERE group_id = ? ORDER BY position",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var expense models.Expense
		var createdAt int64
		if err := rows.Scan(&expense.ID, &expense.Title, &expense.Amount, &expense.PayerID,
			&expense.Description, &expense.Category, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.CreatedAt = time.Unix(createdAt, 0)
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for i := range expenses {
		participantRows, err := s.db.QueryContext(ctx,
			"SELECT person_id FROM expense_participants WHERE expense_id = ? ORDER BY position",
			expenses[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get expense participants: %w", err)
		}
		for participantRows.Next() {
			var personID string
			if err := participantRows.Scan(&personID); err != nil {
				participantRows.Close()
				return nil, fmt.Errorf("failed to scan expense participant: %w", err)
			}
			expenses[i].Participants = append(expenses[i].Participants, personID)
		}
		if err := participantRows.Err(); err != nil {
			participantRows.Close()
			return nil, fmt.Errorf("failed to iterate expense participants: %w", err)
		}
		participantRows.Close()
	}

	return expenses, nil
}

// SaveActiveGroupID persists the active group identifier.
func (s *SQLiteStore) SaveActiveGroupID(ctx context.Context, groupID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO app_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		activeGroupKey, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to save active group id: %w", err)
	}
	return nil
}

// LoadActiveGroupID retrieves the active group identifier, or "" if none
// was persisted.
func (s *SQLiteStore) LoadActiveGroupID(ctx context.Context) (string, error) {
	var groupID string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM app_state WHERE key = ?", activeGroupKey,
	).Scan(&groupID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load active group id: %w", err)
	}
	return groupID, nil
}

// ClearAll erases all persisted groups and application state.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM groups"); err != nil {
		return fmt.Errorf("failed to clear groups: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM app_state"); err != nil {
		return fmt.Errorf("failed to clear app state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
