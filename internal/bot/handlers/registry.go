package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/mpetrov/rollcall/internal/report"
)

// RegisteredHandler represents a handler with its match rule and middleware.
// It encapsulates all information needed to register a command or callback.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllHandlers initializes and returns a map of all bot handlers:
// commands plus the report navigation callback. The activity-tracking default
// handler is wired separately through the bot options.
func RegisterAllHandlers(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/attendance"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "attendance",
		Handler:     NewAttendanceHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  []tgbot.Middleware{GroupOnly(deps)},
	}
	handlers["attendance_nav"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     report.NavCallbackPrefix,
		Handler:     NewNavigationHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}

	return handlers
}
