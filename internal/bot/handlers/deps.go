package handlers

import (
	"log/slog"

	"github.com/mpetrov/rollcall/internal/activity"
	"github.com/mpetrov/rollcall/internal/config"
	"github.com/mpetrov/rollcall/internal/database"
	"github.com/mpetrov/rollcall/internal/report"
)

// HandlerDeps provides dependencies for Telegram command and callback handlers.
type HandlerDeps struct {
	Logger  *slog.Logger
	Config  *config.Config
	Store   database.Store
	Tracker *activity.Tracker
	Reports *report.Builder
}
