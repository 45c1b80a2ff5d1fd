package database_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mpetrov/rollcall/internal/database"
)

func ns(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		user database.User
		want string
	}{
		{
			name: "username preferred",
			user: database.User{UserID: 1, Username: ns("alice"), FirstName: ns("Alice"), LastName: ns("Smith")},
			want: "@alice",
		},
		{
			name: "first name only",
			user: database.User{UserID: 2, FirstName: ns("Bob")},
			want: "Bob",
		},
		{
			name: "first and last name",
			user: database.User{UserID: 3, FirstName: ns("Carol"), LastName: ns("Jones")},
			want: "Carol Jones",
		},
		{
			name: "last name without first name",
			user: database.User{UserID: 4, LastName: ns("Solo")},
			want: "Solo",
		},
		{
			name: "no identity at all",
			user: database.User{UserID: 12345},
			want: "user_12345",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.user.DisplayName(); got != tc.want {
				t.Errorf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUserSortName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		user database.User
		want string
	}{
		{
			name: "username wins",
			user: database.User{UserID: 1, Username: ns("zed"), FirstName: ns("Aaron")},
			want: "zed",
		},
		{
			name: "falls back to first name",
			user: database.User{UserID: 2, FirstName: ns("Aaron")},
			want: "Aaron",
		},
		{
			name: "falls back to user id",
			user: database.User{UserID: 77},
			want: "77",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.user.SortName(); got != tc.want {
				t.Errorf("SortName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUserIsInactiveAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		user database.User
		want bool
	}{
		{
			name: "no window",
			user: database.User{UserID: 1},
			want: false,
		},
		{
			name: "window in force",
			user: database.User{UserID: 2, InactiveUntil: sql.NullTime{Time: now.Add(time.Hour), Valid: true}},
			want: true,
		},
		{
			name: "window elapsed counts as active",
			user: database.User{UserID: 3, InactiveUntil: sql.NullTime{Time: now.Add(-time.Second), Valid: true}},
			want: false,
		},
		{
			name: "window ending exactly now counts as active",
			user: database.User{UserID: 4, InactiveUntil: sql.NullTime{Time: now, Valid: true}},
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.user.IsInactiveAt(now); got != tc.want {
				t.Errorf("IsInactiveAt() = %v, want %v", got, tc.want)
			}
		})
	}
}
