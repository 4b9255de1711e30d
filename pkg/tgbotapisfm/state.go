package tgbotapisfm

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

type HandlerFunc func(bot *Bot, update tgbotapi.Update) error

type Handler struct {
	Handle HandlerFunc
}

// State is one node of a user's conversation.
//
// MessageHandlers are keyed by the lowercased message text or, for commands
// with arguments, by the command word ("/sync"). Global states are checked
// before the user's own state on every update.
type State struct {
	Global           bool
	AtEntranceFunc   *Handler
	CatchAllFunc     *Handler
	MessageHandlers  map[string]Handler
	CallbackHandlers map[string]Handler
}
