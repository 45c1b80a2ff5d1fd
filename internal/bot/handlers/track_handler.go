package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mpetrov/rollcall/internal/database"
)

// NewTrackHandler returns the default handler that records activity from
// every message the bot sees in a group chat, along with membership changes.
// Commands never reach it; the command handlers consume those first.
func NewTrackHandler(deps HandlerDeps) bot.HandlerFunc {
	return trackHandler{deps}.Handle
}

// trackHandler feeds group events into the activity tracker.
type trackHandler struct {
	deps HandlerDeps
}

func (h trackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "track")

	msg := update.Message
	if msg == nil {
		return
	}

	chatType := msg.Chat.Type
	if chatType != models.ChatTypeGroup && chatType != models.ChatTypeSupergroup {
		return
	}

	now := time.Now().UTC()

	switch {
	case len(msg.NewChatMembers) > 0:
		for i := range msg.NewChatMembers {
			member := &msg.NewChatMembers[i]
			if err := h.deps.Tracker.OnJoin(ctx, identityFromUser(member), now); err != nil {
				log.ErrorContext(ctx, "Failed to record member join",
					"error", err, "chat_id", msg.Chat.ID, "user_id", member.ID)
			}
		}

	case msg.LeftChatMember != nil:
		if err := h.deps.Tracker.OnLeave(ctx, identityFromUser(msg.LeftChatMember)); err != nil {
			log.ErrorContext(ctx, "Failed to record member departure",
				"error", err, "chat_id", msg.Chat.ID, "user_id", msg.LeftChatMember.ID)
		}

	case msg.From != nil:
		if err := h.deps.Tracker.OnActivity(ctx, identityFromUser(msg.From), now); err != nil {
			log.ErrorContext(ctx, "Failed to record user activity",
				"error", err, "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
		}
	}
}

func identityFromUser(u *models.User) database.UserIdentity {
	return database.UserIdentity{
		UserID:    u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsBot:     u.IsBot,
	}
}
