package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/smakfood/smakbot/core/config"
	"github.com/smakfood/smakbot/core/database"
	"github.com/smakfood/smakbot/core/logger"
	tg "github.com/smakfood/smakbot/core/telegram"
	tghelpers "github.com/smakfood/smakbot/core/telegram/helpers"
	"github.com/smakfood/smakbot/core/telegram/router"
	"github.com/smakfood/smakbot/core/telegram/sender"
	"github.com/smakfood/smakbot/internal/catalog"
	"github.com/smakfood/smakbot/internal/i18n"
	"github.com/smakfood/smakbot/internal/metrics"
	"github.com/smakfood/smakbot/internal/nav"
	"github.com/smakfood/smakbot/internal/profile"
	"github.com/smakfood/smakbot/internal/session"
	"github.com/smakfood/smakbot/internal/workflow"

	tele "gopkg.in/telebot.v4"
)

// Content-type tags for every navigable surface.
const (
	ContentAdminCountry = "admin-country"
	ContentAdminKitchen = "admin-kitchen"
	ContentAdminCompany = "admin-company"
	ContentAdminProduct = "admin-product"
	ContentUserCompany  = "user-company"
	ContentUserProduct  = "user-product"
	ContentCart         = "cart"
	ContentWishlist     = "wishlist"
	ContentOrders       = "orders"
	ContentLanguage     = "lang"
)

// Custom callback actions beyond the core set.
const (
	actionSetLanguage = "set"
	actionCartAdd     = "cart-add"
	actionCartDel     = "cart-del"
	actionWishAdd     = "wish-add"
	actionWishDel     = "wish-del"
)

type services struct {
	countries *catalog.Service[catalog.Country]
	kitchens  *catalog.Service[catalog.Kitchen]
	companies *catalog.Service[catalog.Company]
	products  *catalog.Service[catalog.Product]
	cart      *catalog.Service[catalog.CartItem]
	wishlist  *catalog.Service[catalog.WishlistItem]
	orders    *catalog.Service[catalog.Order]
}

// App wires every component of the bot together.
type App struct {
	cfg        *config.Config
	translator *i18n.Translator

	db       *sqlx.DB
	profiles *profile.Store
	sessions session.Store

	svc        services
	resolvers  *nav.Registry
	controller *nav.Controller
	callbacks  *nav.Router
	engine     *workflow.Engine
	commands   *tg.Registry
	dispatcher *sender.Dispatcher

	langCache sync.Map // telegram id -> language code
}

// New builds the application from validated config. The database is migrated
// and all registries are populated before this returns.
func New(cfg *config.Config) (*App, error) {
	translator, err := i18n.Load()
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(cfg.Database); err != nil {
		return nil, fmt.Errorf("app: migrations: %w", err)
	}
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: database: %w", err)
	}

	sessions, err := buildSessions(cfg)
	if err != nil {
		return nil, err
	}

	cache, err := catalog.NewCache(time.Duration(cfg.Catalog.CacheTTLSeconds) * time.Second)
	if err != nil {
		return nil, fmt.Errorf("app: catalog cache: %w", err)
	}
	client := catalog.NewClient(cfg.Catalog)

	a := &App{
		cfg:        cfg,
		translator: translator,
		db:         db,
		profiles:   profile.NewStore(db),
		sessions:   sessions,
		svc: services{
			countries: catalog.NewService[catalog.Country](client, cache, "country", "countries"),
			kitchens:  catalog.NewService[catalog.Kitchen](client, cache, "kitchen", "kitchens"),
			companies: catalog.NewService[catalog.Company](client, cache, "company", "companies"),
			products:  catalog.NewService[catalog.Product](client, cache, "product", "products"),
			cart:      catalog.NewService[catalog.CartItem](client, nil, "cart", "cart-items"),
			wishlist:  catalog.NewService[catalog.WishlistItem](client, nil, "wishlist", "wishlist-items"),
			orders:    catalog.NewService[catalog.Order](client, nil, "order", "orders"),
		},
	}

	a.resolvers = nav.NewRegistry()
	a.registerResolvers()

	a.controller = nav.NewController(a.resolvers, nav.ControllerOptions{
		ErrorText: func(lang string) string { return a.text(lang, "nav.error.generic") },
	})

	a.engine = workflow.New(workflow.Options{
		Store:    a.sessions,
		Nav:      a.controller,
		Language: a.language,
		Text:     a.text,
	})
	a.registerWorkflows()

	a.callbacks = nav.NewRouter(nav.RouterOptions{
		UnknownActionText: func(lang string) string { return a.text(lang, "nav.unknown_action") },
		Language:          a.language,
	})
	a.registerCallbackRoutes()

	a.commands = tg.NewRegistry()
	a.registerCommands()

	a.dispatcher = sender.NewDispatcher(sender.Options{})
	tghelpers.SetDispatcher(a.dispatcher)

	logger.Info(logger.Background(), "app", "wire.complete",
		slog.Int("content_types", a.resolvers.ContentTypes()),
		slog.Int("callback_routes", a.callbacks.Routes()),
	)
	return a, nil
}

func buildSessions(cfg *config.Config) (session.Store, error) {
	ttl := time.Duration(cfg.Sessions.TTLMinutes) * time.Minute
	if cfg.Sessions.Backend == config.SessionsRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Sessions.Redis.Addr,
			Password: cfg.Sessions.Redis.Password,
			DB:       cfg.Sessions.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("app: redis ping: %w", err)
		}
		return session.NewRedisStore(client, ttl), nil
	}
	return session.NewMemoryStore(ttl), nil
}

// Run starts the metrics listener and the bot; it blocks until ctx ends.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := metrics.Serve(ctx, a.cfg.Metrics.Listen); err != nil {
			logger.Error(ctx, "metrics", "listen.fail", slog.String("err", err.Error()))
		}
	}()

	routes := a.buildRoutes()
	err := tg.RunTelegram(ctx, tg.RunOptions{
		Config:      a.cfg,
		Routes:      routes,
		Middlewares: append(tg.DefaultMiddlewares(a.cfg), countUpdates),
		OnStart: func(bot *tele.Bot) {
			tg.InitBotCommands(bot, a.commands)
		},
	})

	a.dispatcher.Close()
	if closeErr := a.db.Close(); closeErr != nil {
		logger.DB.Warn("db.close.fail", slog.String("err", closeErr.Error()))
	}
	return err
}

func (a *App) buildRoutes() []tg.Route {
	routes := router.CommandRoutes(a.commands, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return tghelpers.SendText(c, a.text(a.language(c), "admin.denied"))
		},
	})
	routes = append(routes, router.TextRoutes(a.commands, router.MessageRouteOptions{
		Conversation: a.engine,
		OnContact:    a.handleContact,
	})...)
	routes = append(routes, tg.Route{Endpoint: tele.OnCallback, Handler: a.callbacks.Dispatch})
	return routes
}

// countUpdates feeds the inbound update counter.
func countUpdates(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		kind := "other"
		upd := c.Update()
		switch {
		case upd.Callback != nil:
			kind = "callback"
		case upd.Message != nil:
			kind = "message"
		}
		metrics.CountUpdate(kind)
		return next(c)
	}
}

// text resolves a localized string.
func (a *App) text(lang, key string) string {
	return a.translator.T(lang, key)
}

// language returns the sender's stored language, cached in process to keep
// the per-update cost off the database.
func (a *App) language(c tele.Context) string {
	sndr := c.Sender()
	if sndr == nil {
		return i18n.DefaultLanguage
	}
	if cached, ok := a.langCache.Load(sndr.ID); ok {
		return cached.(string)
	}

	lang, err := a.profiles.Language(tghelpers.BuildContext(c), sndr.ID)
	if err != nil || lang == "" || !a.translator.Has(lang) {
		return i18n.DefaultLanguage
	}
	a.langCache.Store(sndr.ID, lang)
	return lang
}

func (a *App) setLanguage(ctx context.Context, userID int64, lang string) error {
	if !a.translator.Has(lang) {
		lang = i18n.DefaultLanguage
	}
	if err := a.profiles.SetLanguage(ctx, userID, lang); err != nil {
		return err
	}
	a.langCache.Store(userID, lang)
	return nil
}
