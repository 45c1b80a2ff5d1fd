package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mpetrov/rollcall/internal/report"
)

// NewAttendanceHandler returns a handler for the /attendance command.
// It renders the default view: all users, sorted by name, first page.
func NewAttendanceHandler(deps HandlerDeps) bot.HandlerFunc {
	return attendanceHandler{deps}.Handle
}

// attendanceHandler processes the /attendance command using injected dependencies.
type attendanceHandler struct {
	deps HandlerDeps
}

func (h attendanceHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "attendance")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Attendance handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	log.InfoContext(ctx, "Handling /attendance command", "chat_id", chatID, "user_id", update.Message.From.ID)

	res, err := buildReport(ctx, h.deps, report.DefaultParams())
	if err != nil {
		log.ErrorContext(ctx, "Failed to build attendance report", "error", err, "chat_id", chatID)
		sendGeneralError(ctx, b, h.deps, chatID)
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        res.Text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: BuildKeyboard(res),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send attendance report", "error", err, "chat_id", chatID)
	}
}

// buildReport runs a synchronous freshness sweep, snapshots the store, and
// builds the requested view. A sweep failure is logged but does not block the
// report; the snapshot simply reflects the last successful pass.
func buildReport(ctx context.Context, deps HandlerDeps, params report.Params) (report.Result, error) {
	now := time.Now().UTC()

	if err := deps.Tracker.Sweep(ctx, now); err != nil {
		deps.Logger.WarnContext(ctx, "Freshness sweep before report failed", "error", err)
	}

	snapshot, err := deps.Store.ListUsers(ctx)
	if err != nil {
		return report.Result{}, err
	}

	return deps.Reports.Build(snapshot, now, params), nil
}

func sendGeneralError(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID int64) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   deps.Config.Messages.GeneralError,
	})
	if err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send error message", "error", err, "chat_id", chatID)
	}
}
