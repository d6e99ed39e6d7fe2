package nav

import (
	"context"
	"errors"
	"log/slog"

	"github.com/smakfood/smakbot/core/logger"
)

// ErrNotRegistered reports a content-type lookup miss. Callers treat it as a
// silent acknowledgment, never as a user-visible failure.
var ErrNotRegistered = errors.New("nav: content type not registered")

// Button is a transport-neutral inline button: a label plus the token its
// press dispatches.
type Button struct {
	Label string
	Token Token
}

// View is one rendered page of a navigable resource.
type View struct {
	Caption string
	// Media is a Telegram file id or URL; empty means text-only.
	Media      string
	TotalPages int
	// ItemRows precede the page-control row in the final keyboard.
	ItemRows [][]Button
}

// RenderFunc fetches remote data and produces the view for one page.
type RenderFunc func(ctx context.Context, page int, lang, extra string) (View, error)

// Registry maps content-type tags to render functions. Registration happens
// at startup; lookups are read-only afterwards, so no locking.
type Registry struct {
	renderers map[string]RenderFunc
}

// NewRegistry creates an empty content resolver registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]RenderFunc)}
}

// Register binds a content type to its renderer. Duplicate or invalid
// registrations are skipped with a warning, matching command registration.
func (r *Registry) Register(content string, fn RenderFunc) {
	if r == nil || content == "" || fn == nil {
		logger.Warn(context.Background(), "nav", "resolver.register.skip",
			slog.String("content_type", content),
			slog.String("reason", "invalid"),
		)
		return
	}
	if _, exists := r.renderers[content]; exists {
		logger.Warn(context.Background(), "nav", "resolver.register.duplicate",
			slog.String("content_type", content),
		)
		return
	}
	r.renderers[content] = fn
}

// Resolve returns the renderer for a content type or ErrNotRegistered.
func (r *Registry) Resolve(content string) (RenderFunc, error) {
	if r == nil {
		return nil, ErrNotRegistered
	}
	fn, ok := r.renderers[content]
	if !ok {
		return nil, ErrNotRegistered
	}
	return fn, nil
}

// ContentTypes lists registered tags, used for startup wiring logs.
func (r *Registry) ContentTypes() int {
	if r == nil {
		return 0
	}
	return len(r.renderers)
}
