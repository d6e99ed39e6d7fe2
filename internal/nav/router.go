package nav

import (
	"log/slog"
	"time"

	"github.com/smakfood/smakbot/core/logger"
	tghelpers "github.com/smakfood/smakbot/core/telegram/helpers"
	"github.com/smakfood/smakbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Predicate decides whether a registered handler wants the decoded token.
type Predicate func(tok Token) bool

// Handler processes a decoded callback token.
type Handler func(c tele.Context, tok Token) error

type route struct {
	name string
	pred Predicate
	fn   Handler
}

// RouterOptions carries localized texts and the per-user language lookup.
type RouterOptions struct {
	UnknownActionText func(lang string) string
	Language          func(c tele.Context) string
}

// Router dispatches callback presses to the first handler whose predicate
// matches, in registration order.
type Router struct {
	routes      []route
	unknownText func(lang string) string
	language    func(c tele.Context) string
}

// NewRouter creates an empty callback router.
func NewRouter(opts RouterOptions) *Router {
	unknown := opts.UnknownActionText
	if unknown == nil {
		unknown = func(string) string { return "Unknown action" }
	}
	lang := opts.Language
	if lang == nil {
		lang = func(tele.Context) string { return "" }
	}
	return &Router{unknownText: unknown, language: lang}
}

// Handle appends a (predicate, handler) pair. Order of registration is the
// order of evaluation.
func (r *Router) Handle(name string, pred Predicate, fn Handler) {
	if pred == nil || fn == nil {
		logger.Warn(logger.Background(), "nav", "router.register.skip",
			slog.String("handler", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	r.routes = append(r.routes, route{name: name, pred: pred, fn: fn})
}

// Routes reports the number of registered handlers, for wiring logs.
func (r *Router) Routes() int { return len(r.routes) }

// Dispatch is the single tele.OnCallback entry point. The payload is decoded
// once; malformed payloads are acknowledged silently, unmatched tokens get a
// localized "unknown action" response.
func (r *Router) Dispatch(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	start := time.Now()
	ctx := tghelpers.BuildContext(c)

	raw := middleware.CallbackPayload(cb)
	tok, err := Decode(raw)
	if err != nil {
		logger.Debug(ctx, "nav", "dispatch.decode.fail",
			slog.String("payload", logger.SanitizeLimit(raw, MaxPayloadLen)),
			slog.String("err", err.Error()),
		)
		return c.Respond()
	}

	if rt, ok := r.match(tok); ok {
		tghelpers.WithHandler(c, rt.name)
		handleErr := rt.fn(c, tok)
		logger.Debug(ctx, "nav", "dispatch.ok",
			slog.String("handler", rt.name),
			slog.String("content_type", tok.Content),
			slog.String("action", tok.Action),
			slog.Int("page", tok.Page),
			slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
		)
		return handleErr
	}

	logger.Warn(ctx, "nav", "dispatch.unmatched",
		slog.String("content_type", tok.Content),
		slog.String("action", tok.Action),
	)
	return c.Respond(&tele.CallbackResponse{Text: r.unknownText(r.language(c))})
}

// match finds the first registered route whose predicate accepts the token.
func (r *Router) match(tok Token) (route, bool) {
	for _, rt := range r.routes {
		if rt.pred(tok) {
			return rt, true
		}
	}
	return route{}, false
}

// Match builds a predicate selecting one content type and, when given, a
// fixed set of actions. No actions means any action of that content type.
func Match(content string, actions ...string) Predicate {
	return func(tok Token) bool {
		if tok.Content != content {
			return false
		}
		if len(actions) == 0 {
			return true
		}
		for _, a := range actions {
			if tok.Action == a {
				return true
			}
		}
		return false
	}
}

// MatchAction builds a predicate selecting an action across content types.
func MatchAction(actions ...string) Predicate {
	return func(tok Token) bool {
		for _, a := range actions {
			if tok.Action == a {
				return true
			}
		}
		return false
	}
}
