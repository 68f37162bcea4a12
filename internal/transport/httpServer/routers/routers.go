package routers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/metrics"
	"github.com/deniskrds/tixplore-app/internal/transport/httpServer/handlers"
	myMiddleware "github.com/deniskrds/tixplore-app/internal/transport/httpServer/middleware"
	"github.com/deniskrds/tixplore-app/internal/utils"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const allowedHeaders = "Content-Type,Authorization"

var (
	errNotFound         = errors.New("Not found.")
	errMethodNotAllowed = errors.New("Method not allowed.")
)

type Router struct {
	log          *slog.Logger
	cfg          config.HttpServerConfig
	eventHandler *handlers.EventHandler
	userHandler  *handlers.UserHandler
	limiter      myMiddleware.Limiter
	metrics      *metrics.Metrics
}

// NewRouter собирает таблицу маршрутов. limiter == nil отключает ограничение частоты.
func NewRouter(
	log *slog.Logger,
	cfg config.HttpServerConfig,
	eventHandler *handlers.EventHandler,
	userHandler *handlers.UserHandler,
	limiter myMiddleware.Limiter,
	m *metrics.Metrics,
) *Router {
	return &Router{
		log:          log,
		cfg:          cfg,
		eventHandler: eventHandler,
		userHandler:  userHandler,
		limiter:      limiter,
		metrics:      m,
	}
}

func (r *Router) Mount(mux *chi.Mux) {
	origins := r.cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux.Use(middleware.RequestID)
	if r.cfg.TrustProxyHeaders {
		mux.Use(middleware.RealIP)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))
	mux.Use(myMiddleware.AllowHeaders(allowedHeaders))
	mux.Use(myMiddleware.NewLogger(r.log, r.metrics))
	mux.Use(myMiddleware.Recoverer(r.log))

	mux.NotFound(r.notFound)
	mux.MethodNotAllowed(r.methodNotAllowed)

	mux.Method(http.MethodGet, "/metrics", r.metrics.Handler())

	mux.Group(func(mux chi.Router) {
		if r.limiter != nil {
			mux.Use(myMiddleware.RateLimit(r.limiter, r.log, r.metrics))
		}

		mux.Get("/", r.eventHandler.Index)
		mux.Get("/ping", r.eventHandler.Ping)
		mux.Get("/get-events", r.eventHandler.GetEvents)
		mux.Get("/favorites", r.eventHandler.GetFavorites)
		mux.Post("/set-favorite", r.eventHandler.SetFavorite)
		mux.Get("/login", r.userHandler.Login)
		mux.Get("/register", r.userHandler.Register)
	})
}

func (r *Router) notFound(w http.ResponseWriter, _ *http.Request) {
	if err := utils.Err(w, http.StatusNotFound, errNotFound); err != nil {
		r.log.Error("error sending http response", sl.Err(err))
	}
}

func (r *Router) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	if err := utils.Err(w, http.StatusMethodNotAllowed, errMethodNotAllowed); err != nil {
		r.log.Error("error sending http response", sl.Err(err))
	}
}
