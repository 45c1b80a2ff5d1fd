// Package activity implements the per-user activity state machine: users move
// between Active and Inactive based on message cadence and elapsed time.
//
// Inactivity is a decaying penalty. A sweep opens a fixed window after a
// threshold of silence; every message the user sends afterwards shaves time
// off the remaining window, and enough messages clear it outright.
package activity

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mpetrov/rollcall/internal/database"
)

// Config holds the state machine thresholds.
type Config struct {
	// InactiveThreshold is the silence needed before the sweep flags a user.
	InactiveThreshold time.Duration
	// InactivePeriod is the length of a freshly opened inactivity window.
	InactivePeriod time.Duration
	// ReducedPerMessage is how much each message shrinks an open window.
	ReducedPerMessage time.Duration
	// MessagesToClear is the message count that clears a window outright.
	MessagesToClear int
}

// Tracker applies activity events and sweep passes to the user store.
// All methods take an explicit evaluation time so transitions are
// deterministic and testable.
type Tracker struct {
	store  database.Store
	cfg    Config
	logger *slog.Logger
}

// NewTracker creates a Tracker backed by the given store.
func NewTracker(store database.Store, cfg Config, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Tracker{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "activity_tracker"),
	}
}

// OnActivity records a message (or other activity) from a user. The record is
// created if absent; bots are skipped entirely. While an inactivity window is
// open, the message counts toward early clearance and shrinks the window.
func (t *Tracker) OnActivity(ctx context.Context, identity database.UserIdentity, now time.Time) error {
	if identity.IsBot {
		t.logger.DebugContext(ctx, "Ignoring activity from bot account", "user_id", identity.UserID)
		return nil
	}

	if err := t.store.UpsertUser(ctx, identity); err != nil {
		return fmt.Errorf("failed to upsert user on activity: %w", err)
	}

	return t.store.UpdateUser(ctx, identity.UserID, func(u *database.User) error {
		u.LastActive.Time = now
		u.LastActive.Valid = true

		if !u.InactiveUntil.Valid {
			// Already active; pending count is only meaningful inside a window.
			u.MessagesSinceInactive = 0
			return nil
		}

		u.MessagesSinceInactive++
		newUntil := u.InactiveUntil.Time.Add(-t.cfg.ReducedPerMessage)

		if u.MessagesSinceInactive >= t.cfg.MessagesToClear || !newUntil.After(now) {
			t.logger.InfoContext(ctx, "User worked off inactivity window",
				"user_id", identity.UserID,
				"messages_since_inactive", u.MessagesSinceInactive)
			clearInactivity(u)
			return nil
		}

		u.InactiveUntil.Time = newUntil
		return nil
	})
}

// OnJoin records a user joining the chat. The record is upserted and the user
// is marked active, but a join is not a penalty-reduction event: an open
// inactivity window is left untouched.
func (t *Tracker) OnJoin(ctx context.Context, identity database.UserIdentity, now time.Time) error {
	if identity.IsBot {
		t.logger.DebugContext(ctx, "Ignoring join of bot account", "user_id", identity.UserID)
		return nil
	}

	if err := t.store.UpsertUser(ctx, identity); err != nil {
		return fmt.Errorf("failed to upsert joining user: %w", err)
	}

	return t.store.UpdateUser(ctx, identity.UserID, func(u *database.User) error {
		u.LastActive.Time = now
		u.LastActive.Valid = true
		return nil
	})
}

// OnLeave records a user leaving the chat. Identity fields are refreshed so
// the departed member still renders by name, but no activity state changes;
// the row stays for history.
func (t *Tracker) OnLeave(ctx context.Context, identity database.UserIdentity) error {
	if identity.IsBot {
		return nil
	}
	if err := t.store.UpsertUser(ctx, identity); err != nil {
		return fmt.Errorf("failed to upsert departing user: %w", err)
	}
	return nil
}

// Sweep flags every user silent for at least InactiveThreshold as inactive,
// opening a window of InactivePeriod. Users already inside a window are left
// alone; only per-message reduction shrinks an open window. Individual
// failures are logged and do not stop the pass.
func (t *Tracker) Sweep(ctx context.Context, now time.Time) error {
	users, err := t.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users for sweep: %w", err)
	}

	flagged := 0
	failed := 0
	for i := range users {
		u := &users[i]
		if !sweepEligible(u, now, t.cfg.InactiveThreshold) {
			continue
		}

		err := t.store.UpdateUser(ctx, u.UserID, func(u *database.User) error {
			// The snapshot may be stale; re-check inside the transaction.
			if !sweepEligible(u, now, t.cfg.InactiveThreshold) {
				return nil
			}
			u.InactiveUntil.Time = now.Add(t.cfg.InactivePeriod)
			u.InactiveUntil.Valid = true
			u.InactiveMarkedAt.Time = now
			u.InactiveMarkedAt.Valid = true
			u.MessagesSinceInactive = 0
			return nil
		})
		if err != nil {
			t.logger.ErrorContext(ctx, "Failed to flag user inactive", "user_id", u.UserID, "error", err)
			failed++
			continue
		}
		flagged++
	}

	if flagged > 0 || failed > 0 {
		t.logger.InfoContext(ctx, "Inactivity sweep finished",
			"scanned", len(users), "flagged", flagged, "failed", failed)
	}
	if failed > 0 {
		return fmt.Errorf("sweep failed for %d of %d users", failed, len(users))
	}
	return nil
}

func sweepEligible(u *database.User, now time.Time, threshold time.Duration) bool {
	if !u.LastActive.Valid || u.InactiveUntil.Valid {
		return false
	}
	return now.Sub(u.LastActive.Time) >= threshold
}

func clearInactivity(u *database.User) {
	u.InactiveUntil = sql.NullTime{}
	u.InactiveMarkedAt = sql.NullTime{}
	u.MessagesSinceInactive = 0
}
