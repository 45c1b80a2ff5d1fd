// Package handlers contains Telegram bot command, message, and callback
// handlers, along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// GroupOnly creates a middleware that restricts a command to group chats.
// Outside a group it replies with a hint and stops processing.
func GroupOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			if update.Message == nil {
				next(ctx, bot, update)
				return
			}

			chatType := update.Message.Chat.Type
			if chatType == models.ChatTypeGroup || chatType == models.ChatTypeSupergroup {
				next(ctx, bot, update)
				return
			}

			log := deps.Logger.With("middleware", "GroupOnly")
			log.DebugContext(ctx, "Command used outside a group chat",
				"chat_id", update.Message.Chat.ID, "chat_type", chatType)

			_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: update.Message.Chat.ID,
				Text:   deps.Config.Messages.GroupOnly,
			})
			if err != nil {
				log.ErrorContext(ctx, "Failed to send group-only hint", "error", err, "chat_id", update.Message.Chat.ID)
			}
		}
	}
}
