package nav

import (
	"context"
	"log/slog"
	"time"

	"github.com/smakfood/smakbot/core/logger"
)

// Messenger is the outbound slice of the chat transport the controller needs.
// Respond answers the pending callback; an empty text is a silent
// acknowledgment. Edit operations must preserve the message identity.
type Messenger interface {
	Respond(text string) error
	EditText(caption string, rows [][]Button) error
	EditMedia(media, caption string, rows [][]Button) error
	Send(media, caption string, rows [][]Button) error
}

// ControllerOptions carries the localized fallback texts the controller
// renders on failures. Both must be non-nil.
type ControllerOptions struct {
	ErrorText func(lang string) string
}

// Controller turns a decoded navigation token into a chat message update.
type Controller struct {
	registry  *Registry
	errorText func(lang string) string
}

// NewController builds a pagination controller over the given registry.
func NewController(registry *Registry, opts ControllerOptions) *Controller {
	errText := opts.ErrorText
	if errText == nil {
		errText = func(string) string { return "Something went wrong. Please try again." }
	}
	return &Controller{registry: registry, errorText: errText}
}

// Navigate resolves the token's content, renders the requested page and
// updates the chat message in place. forceSend sends a fresh message instead,
// used when the original list message no longer exists. Every failure path
// resolves to a user-visible or silent acknowledgment; Navigate never
// propagates resolver or remote errors.
func (ctl *Controller) Navigate(ctx context.Context, m Messenger, token Token, lang string, forceSend bool) error {
	start := time.Now()

	fn, err := ctl.registry.Resolve(token.Content)
	if err != nil {
		logger.Debug(ctx, "nav", "navigate.unknown_content",
			slog.String("content_type", token.Content),
		)
		return m.Respond("")
	}

	view, err := fn(ctx, token.Page, lang, token.Extra)
	if err != nil {
		logger.Warn(ctx, "nav", "navigate.render.fail",
			slog.String("content_type", token.Content),
			slog.Int("page", token.Page),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return m.Respond(ctl.errorText(lang))
	}

	rows := ctl.buildRows(token, view)

	if err := ctl.deliver(m, view, rows, forceSend); err != nil {
		logger.Warn(ctx, "nav", "navigate.deliver.fail",
			slog.String("content_type", token.Content),
			slog.Int("page", token.Page),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return m.Respond("")
	}

	logger.Debug(ctx, "nav", "navigate.ok",
		slog.String("content_type", token.Content),
		slog.Int("page", token.Page),
		slog.Int("pages", view.TotalPages),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	)
	return m.Respond("")
}

// buildRows merges entity item rows with the page-control row. Item rows
// always come first.
func (ctl *Controller) buildRows(token Token, view View) [][]Button {
	rows := make([][]Button, 0, len(view.ItemRows)+1)
	rows = append(rows, view.ItemRows...)

	if view.TotalPages > 1 {
		controls := Window(token.Page, view.TotalPages)
		row := make([]Button, 0, len(controls))
		for _, c := range controls {
			row = append(row, Button{Label: c.Label(), Token: c.Token(token.Content, token.Extra)})
		}
		rows = append(rows, row)
	}
	return rows
}

func (ctl *Controller) deliver(m Messenger, view View, rows [][]Button, forceSend bool) error {
	switch {
	case forceSend:
		return m.Send(view.Media, view.Caption, rows)
	case view.Media != "":
		return m.EditMedia(view.Media, view.Caption, rows)
	default:
		return m.EditText(view.Caption, rows)
	}
}
