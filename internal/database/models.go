package database

import (
	"database/sql"
	"strconv"
	"time"
)

// User represents one tracked member of the group chat. A row is created the
// first time a non-bot user is observed (message or join) and is never deleted,
// so departed members keep their history.
type User struct {
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Username  sql.NullString `db:"username"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
	IsBot     bool           `db:"is_bot"`

	LastActive sql.NullTime `db:"last_active"`

	// InactiveUntil and InactiveMarkedAt are both set or both null.
	// MessagesSinceInactive only carries meaning while a window is open.
	InactiveUntil         sql.NullTime `db:"inactive_until"`
	InactiveMarkedAt      sql.NullTime `db:"inactive_marked_at"`
	MessagesSinceInactive int          `db:"messages_since_inactive"`
}

// IsInactiveAt reports whether the user counts as inactive at the given
// instant. An inactivity window that has already elapsed counts as active even
// while the stored fields are still set; only the state machine clears them.
func (u *User) IsInactiveAt(t time.Time) bool {
	return u.InactiveUntil.Valid && u.InactiveUntil.Time.After(t)
}

// DisplayName derives the name shown in reports: @username when available,
// otherwise first and last name, otherwise a user_<id> placeholder.
func (u *User) DisplayName() string {
	if u.Username.Valid && u.Username.String != "" {
		return "@" + u.Username.String
	}

	name := ""
	if u.FirstName.Valid {
		name = u.FirstName.String
	}
	if u.LastName.Valid && u.LastName.String != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName.String
	}
	if name != "" {
		return name
	}
	return "user_" + strconv.FormatInt(u.UserID, 10)
}

// SortName returns the case-insensitive key used when sorting a report by
// name: username when present, else first name, else the decimal user ID.
func (u *User) SortName() string {
	if u.Username.Valid && u.Username.String != "" {
		return u.Username.String
	}
	if u.FirstName.Valid && u.FirstName.String != "" {
		return u.FirstName.String
	}
	return strconv.FormatInt(u.UserID, 10)
}
