package router

import (
	"time"

	tg "github.com/smakfood/smakbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// ConversationHandler receives free-form input while a multi-step flow is
// active for the sender. InProgress must be cheap; it is consulted on every
// incoming message.
type ConversationHandler interface {
	InProgress(c tele.Context) bool
	HandleText(c tele.Context) error
	HandlePhoto(c tele.Context) error
}

// MessageRouteOptions wires free-form message handling.
type MessageRouteOptions struct {
	Conversation ConversationHandler
	// OnContact handles shared phone contacts (profile capture).
	OnContact tele.HandlerFunc
}

// TextRoutes builds routes for non-command updates. Active conversations take
// precedence over the registry text fallback.
func TextRoutes(reg *tg.Registry, opts MessageRouteOptions) []tg.Route {
	onText := func(c tele.Context) error {
		start := time.Now()
		if opts.Conversation != nil && opts.Conversation.InProgress(c) {
			return handleWithSummary(c, "conversation_text", start, func() error {
				return opts.Conversation.HandleText(c)
			})
		}
		if fallback := reg.TextFallback(); fallback != nil {
			return handleWithSummary(c, "text_fallback", start, func() error {
				return fallback(c)
			})
		}
		return nil
	}

	onPhoto := func(c tele.Context) error {
		start := time.Now()
		if opts.Conversation != nil && opts.Conversation.InProgress(c) {
			return handleWithSummary(c, "conversation_photo", start, func() error {
				return opts.Conversation.HandlePhoto(c)
			})
		}
		return nil
	}

	onContact := func(c tele.Context) error {
		start := time.Now()
		if opts.OnContact == nil {
			return nil
		}
		return handleWithSummary(c, "contact", start, func() error {
			return opts.OnContact(c)
		})
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: onText},
		{Endpoint: tele.OnPhoto, Handler: onPhoto},
		{Endpoint: tele.OnContact, Handler: onContact},
	}
}
