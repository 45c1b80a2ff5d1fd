package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// UserIdentity carries the identity fields supplied by a Telegram update.
// Empty strings mean "not provided" and never overwrite stored values.
type UserIdentity struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool
}

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser inserts a user row or refreshes its identity fields.
	// Provided (non-empty) fields overwrite; absent fields keep stored values.
	UpsertUser(ctx context.Context, identity UserIdentity) error

	// UpdateUser runs a read-modify-write cycle on a single user row inside a
	// transaction. The apply callback mutates the loaded record in place; the
	// mutated activity fields are then written back. A missing row is a no-op.
	UpdateUser(ctx context.Context, userID int64, apply func(*User) error) error

	// ListUsers returns a snapshot of all tracked non-bot users in a stable
	// order. Bot rows, including ones written before bot filtering existed,
	// never appear.
	ListUsers(ctx context.Context) ([]User, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// nullString maps "" to NULL so COALESCE keeps the stored value.
func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// UpsertUser inserts a user row or refreshes its identity fields.
func (s *sqlxStore) UpsertUser(ctx context.Context, identity UserIdentity) error {
	if identity.UserID == 0 {
		return fmt.Errorf("cannot upsert user with zero user_id")
	}

	now := time.Now().UTC()
	arg := struct {
		UserID    int64          `db:"user_id"`
		Username  sql.NullString `db:"username"`
		FirstName sql.NullString `db:"first_name"`
		LastName  sql.NullString `db:"last_name"`
		IsBot     bool           `db:"is_bot"`
		Now       time.Time      `db:"now"`
	}{
		UserID:    identity.UserID,
		Username:  nullString(identity.Username),
		FirstName: nullString(identity.FirstName),
		LastName:  nullString(identity.LastName),
		IsBot:     identity.IsBot,
		Now:       now,
	}

	query := `
        INSERT INTO users (user_id, username, first_name, last_name, is_bot, created_at, updated_at)
        VALUES (:user_id, :username, :first_name, :last_name, :is_bot, :now, :now)
        ON CONFLICT(user_id) DO UPDATE SET
            username   = COALESCE(excluded.username, users.username),
            first_name = COALESCE(excluded.first_name, users.first_name),
            last_name  = COALESCE(excluded.last_name, users.last_name),
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.NamedExecContext(ctx, query, arg); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "user_id", identity.UserID, "error", err)
		return fmt.Errorf("failed to upsert user %d: %w", identity.UserID, err)
	}
	return nil
}

// UpdateUser runs a transactional read-modify-write cycle on one user row.
func (s *sqlxStore) UpdateUser(ctx context.Context, userID int64, apply func(*User) error) error {
	if apply == nil {
		return fmt.Errorf("cannot update user with nil apply callback")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for user update", "user_id", userID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			if !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	var user User
	if err := tx.GetContext(ctx, &user, `SELECT * FROM users WHERE user_id = ?`, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Nothing to update; callers that need the row to exist upsert first.
			s.logger.DebugContext(ctx, "UpdateUser on unknown user, skipping", "user_id", userID)
			return nil
		}
		return fmt.Errorf("failed to load user %d for update: %w", userID, err)
	}

	if err := apply(&user); err != nil {
		return fmt.Errorf("failed to apply update to user %d: %w", userID, err)
	}

	normalizeUserTimes(&user)
	user.UpdatedAt = time.Now().UTC()

	query := `
        UPDATE users SET
            last_active             = :last_active,
            inactive_until          = :inactive_until,
            inactive_marked_at      = :inactive_marked_at,
            messages_since_inactive = :messages_since_inactive,
            updated_at              = :updated_at
        WHERE user_id = :user_id;
    `
	if _, err := tx.NamedExecContext(ctx, query, &user); err != nil {
		s.logger.ErrorContext(ctx, "Error writing user update", "user_id", userID, "error", err)
		return fmt.Errorf("failed to write update for user %d: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update for user %d: %w", userID, err)
	}
	return nil
}

// ListUsers returns a snapshot of all tracked non-bot users ordered by user ID.
func (s *sqlxStore) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := s.db.SelectContext(ctx, &users, `SELECT * FROM users WHERE is_bot = 0 ORDER BY user_id ASC`)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// RunSQLMaintenance performs database maintenance tasks.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running SQL maintenance (VACUUM, ANALYZE)")

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("failed to run VACUUM: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE;"); err != nil {
		return fmt.Errorf("failed to run ANALYZE: %w", err)
	}
	return nil
}

// normalizeUserTimes pins every timestamp on the record to UTC before it is
// written. Render code never converts; the store boundary owns the timezone.
func normalizeUserTimes(u *User) {
	if u.LastActive.Valid {
		u.LastActive.Time = u.LastActive.Time.UTC()
	}
	if u.InactiveUntil.Valid {
		u.InactiveUntil.Time = u.InactiveUntil.Time.UTC()
	}
	if u.InactiveMarkedAt.Valid {
		u.InactiveMarkedAt.Time = u.InactiveMarkedAt.Time.UTC()
	}
	u.CreatedAt = u.CreatedAt.UTC()
}
