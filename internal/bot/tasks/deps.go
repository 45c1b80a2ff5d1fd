// Package tasks implements the bot's scheduled background tasks and their
// registration.
package tasks

import (
	"log/slog"

	"github.com/mpetrov/rollcall/internal/activity"
	"github.com/mpetrov/rollcall/internal/config"
	"github.com/mpetrov/rollcall/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	Tracker *activity.Tracker
}
