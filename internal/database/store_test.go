package database_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mpetrov/rollcall/internal/database"
)

var storeNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// openStore migrates a fresh database in a temp dir and returns a store on it
// plus the raw handle for assertions the Store interface deliberately hides.
func openStore(t *testing.T) (database.Store, *sqlx.DB) {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "store_test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return database.NewStore(db, log), db
}

func findUser(t *testing.T, store database.Store, userID int64) database.User {
	t.Helper()

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	for _, u := range users {
		if u.UserID == userID {
			return u
		}
	}
	t.Fatalf("user %d not found in snapshot of %d users", userID, len(users))
	return database.User{}
}

func TestPing(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestUpsertUserKeepsStoredIdentity(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()

	full := database.UserIdentity{UserID: 1, Username: "ada", FirstName: "Ada", LastName: "Lovelace"}
	if err := store.UpsertUser(ctx, full); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	// A later update that omits fields must not blank what is stored.
	partial := database.UserIdentity{UserID: 1, FirstName: "Ada"}
	if err := store.UpsertUser(ctx, partial); err != nil {
		t.Fatalf("UpsertUser partial: %v", err)
	}

	u := findUser(t, store, 1)
	if got := u.Username.String; got != "ada" {
		t.Errorf("username after partial upsert = %q, want %q", got, "ada")
	}
	if got := u.LastName.String; got != "Lovelace" {
		t.Errorf("last name after partial upsert = %q, want %q", got, "Lovelace")
	}

	// Provided fields do overwrite.
	renamed := database.UserIdentity{UserID: 1, Username: "countess", FirstName: "Ada"}
	if err := store.UpsertUser(ctx, renamed); err != nil {
		t.Fatalf("UpsertUser rename: %v", err)
	}
	if got := findUser(t, store, 1).Username.String; got != "countess" {
		t.Errorf("username after rename = %q, want %q", got, "countess")
	}
}

func TestUpsertUserRejectsZeroID(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	if err := store.UpsertUser(context.Background(), database.UserIdentity{}); err == nil {
		t.Fatal("UpsertUser accepted a zero user_id")
	}
}

func TestListUsersExcludesBots(t *testing.T) {
	t.Parallel()

	store, db := openStore(t)
	ctx := context.Background()

	if err := store.UpsertUser(ctx, database.UserIdentity{UserID: 1, FirstName: "Ada"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if err := store.UpsertUser(ctx, database.UserIdentity{UserID: 2, Username: "helperbot", IsBot: true}); err != nil {
		t.Fatalf("UpsertUser bot: %v", err)
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].UserID != 1 {
		t.Fatalf("ListUsers returned %+v, want only user 1", users)
	}

	// The bot row exists in the table; it is the read that hides it.
	var botRows int
	if err := db.GetContext(ctx, &botRows, `SELECT COUNT(*) FROM users WHERE is_bot = 1`); err != nil {
		t.Fatalf("counting bot rows: %v", err)
	}
	if botRows != 1 {
		t.Errorf("bot rows stored = %d, want 1", botRows)
	}
}

func TestUpdateUserMissingRowIsNoOp(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)

	called := false
	err := store.UpdateUser(context.Background(), 99, func(*database.User) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateUser on missing row: %v", err)
	}
	if called {
		t.Error("apply callback ran for a row that does not exist")
	}
}

func TestUpdateUserRollsBackOnApplyError(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()

	if err := store.UpsertUser(ctx, database.UserIdentity{UserID: 5, FirstName: "Ada"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	boom := errors.New("boom")
	err := store.UpdateUser(ctx, 5, func(u *database.User) error {
		u.MessagesSinceInactive = 42
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("UpdateUser error = %v, want wrapped apply error", err)
	}
	if got := findUser(t, store, 5).MessagesSinceInactive; got != 0 {
		t.Errorf("messages_since_inactive after failed apply = %d, want 0", got)
	}
}

func TestUpdateUserSerializesConcurrentMutations(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()

	if err := store.UpsertUser(ctx, database.UserIdentity{UserID: 7, Username: "ada"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	until := storeNow.Add(2 * time.Hour)
	err := store.UpdateUser(ctx, 7, func(u *database.User) error {
		u.LastActive = sql.NullTime{Time: storeNow, Valid: true}
		u.InactiveUntil = sql.NullTime{Time: until, Valid: true}
		u.InactiveMarkedAt = sql.NullTime{Time: storeNow, Valid: true}
		return nil
	})
	if err != nil {
		t.Fatalf("seeding window: %v", err)
	}

	// Ten concurrent message-style mutations: each increments the counter and
	// shaves a minute off the window. Lost updates would leave fewer of each.
	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.UpdateUser(ctx, 7, func(u *database.User) error {
				u.MessagesSinceInactive++
				u.InactiveUntil.Time = u.InactiveUntil.Time.Add(-time.Minute)
				return nil
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent UpdateUser: %v", err)
		}
	}

	u := findUser(t, store, 7)
	if u.MessagesSinceInactive != writers {
		t.Errorf("messages_since_inactive = %d, want %d", u.MessagesSinceInactive, writers)
	}
	want := until.Add(-writers * time.Minute)
	if !u.InactiveUntil.Valid || !u.InactiveUntil.Time.Equal(want) {
		t.Errorf("inactive_until = %v, want %v", u.InactiveUntil, want)
	}
}
