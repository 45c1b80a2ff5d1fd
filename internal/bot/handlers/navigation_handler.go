package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mpetrov/rollcall/internal/report"
)

// NewNavigationHandler returns the callback-query handler for the report's
// inline keyboard. It decodes the encoded view state, rebuilds the report,
// and edits the displayed message in place.
func NewNavigationHandler(deps HandlerDeps) bot.HandlerFunc {
	return navigationHandler{deps}.Handle
}

// navigationHandler processes report navigation callbacks.
type navigationHandler struct {
	deps HandlerDeps
}

func (h navigationHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "attendance_nav")

	cq := update.CallbackQuery
	if cq == nil {
		log.WarnContext(ctx, "Navigation handler received update without callback query", "update_id", update.ID)
		return
	}

	nav, err := report.DecodeNav(cq.Data)
	if err != nil {
		var decodeErr *report.NavDecodeError
		if errors.As(err, &decodeErr) {
			log.WarnContext(ctx, "Malformed navigation callback", "data", cq.Data, "reason", decodeErr.Reason)
		} else {
			log.ErrorContext(ctx, "Unexpected navigation decode failure", "data", cq.Data, "error", err)
		}
		h.answer(ctx, b, cq.ID, h.deps.Config.Messages.InvalidRequest)
		return
	}

	msg := cq.Message.Message
	if msg == nil {
		// The report message is no longer accessible; nothing to edit.
		log.DebugContext(ctx, "Navigation callback for inaccessible message", "callback_query_id", cq.ID)
		h.answer(ctx, b, cq.ID, "")
		return
	}
	chatID := msg.Chat.ID

	res, err := buildReport(ctx, h.deps, report.Params{Page: nav.Page, Filter: nav.Filter, Sort: nav.Sort})
	if err != nil {
		log.ErrorContext(ctx, "Failed to rebuild report for navigation", "error", err, "chat_id", chatID)
		h.answer(ctx, b, cq.ID, h.deps.Config.Messages.GeneralError)
		return
	}

	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   msg.ID,
		Text:        res.Text,
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: BuildKeyboard(res),
	})
	if err != nil {
		// The transport refused the in-place update; fall back to a new view.
		log.WarnContext(ctx, "Failed to edit report in place, sending new message",
			"error", err, "chat_id", chatID, "message_id", msg.ID)
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        res.Text,
			ParseMode:   models.ParseModeHTML,
			ReplyMarkup: BuildKeyboard(res),
		})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send fallback report message", "error", sendErr, "chat_id", chatID)
		}
	}

	h.answer(ctx, b, cq.ID, "")
}

func (h navigationHandler) answer(ctx context.Context, b *bot.Bot, callbackQueryID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to answer callback query",
			"error", err, "callback_query_id", callbackQueryID)
	}
}
