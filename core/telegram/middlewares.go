package telegram

import (
	"time"

	"github.com/smakfood/smakbot/core/config"
	"github.com/smakfood/smakbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the standard middleware chain applied to every
// route. Order matters: recover wraps everything, rate limiting runs before
// the handler gets to do any work, logging and metrics see the final outcome.
func DefaultMiddlewares(cfg *config.Config) []Middleware {
	exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		exclude[kind] = struct{}{}
	}

	rateLimit := middleware.RateLimitMiddleware(middleware.RateLimitOptions{
		Interval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		Exclude:  exclude,
	})

	return []Middleware{
		middleware.RecoverMiddleware,
		rateLimit,
		middleware.LoggerMiddleware,
		middleware.MessageMetricsMiddleware,
	}
}
