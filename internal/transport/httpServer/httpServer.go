package httpServer

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/transport/httpServer/routers"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	"github.com/go-chi/chi/v5"
)

type HttpServer struct {
	log    *slog.Logger
	server *http.Server
}

func NewHttpServer(log *slog.Logger, router *routers.Router, cfg *config.Config) *HttpServer {
	mux := chi.NewRouter()
	router.Mount(mux)

	return &HttpServer{
		log: log,
		server: &http.Server{
			Addr:         net.JoinHostPort(cfg.HttpServer.Address, cfg.HttpServer.Port),
			Handler:      mux,
			ReadTimeout:  cfg.HttpServer.Timeout,
			WriteTimeout: cfg.HttpServer.Timeout,
			IdleTimeout:  cfg.HttpServer.IdleTimeout,
		},
	}
}

// Listen блокируется до остановки сервера.
func (s *HttpServer) Listen() {
	op := "httpServer.Listen()"
	log := s.log.With(slog.String("op", op))

	log.Info("http server started", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server stopped", sl.Err(err))
	}
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
