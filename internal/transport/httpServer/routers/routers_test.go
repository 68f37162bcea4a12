package routers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/metrics"
	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/transport/httpServer/handlers"
	myMiddleware "github.com/deniskrds/tixplore-app/internal/transport/httpServer/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEvents struct{}

func (stubEvents) ListEvents(context.Context, string, string) ([]domain.EventWithSources, error) {
	return nil, domain.ErrNoEvents
}

func (stubEvents) ListFavorites(context.Context) ([]domain.EventWithSources, error) {
	return nil, nil
}

func (stubEvents) SetFavorite(context.Context, int64, bool) error { return nil }

type stubUsers struct{}

func (stubUsers) Register(context.Context, string, string, string) (domain.User, error) {
	return domain.User{}, nil
}

func (stubUsers) Login(context.Context, string, string) (domain.User, error) {
	return domain.User{}, nil
}

func newTestMux(limiter myMiddleware.Limiter) *chi.Mux {
	return newTestMuxWithConfig(config.HttpServerConfig{}, limiter)
}

func newTestMuxWithConfig(cfg config.HttpServerConfig, limiter myMiddleware.Limiter) *chi.Mux {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := NewRouter(
		log,
		cfg,
		handlers.NewEventHandler(log, stubEvents{}),
		handlers.NewUserHandler(log, stubUsers{}),
		limiter,
		metrics.New(),
	)
	mux := chi.NewRouter()
	r.Mount(mux)
	return mux
}

func do(mux http.Handler, method, target string) *httptest.ResponseRecorder {
	return doWithHeaders(mux, method, target, nil)
}

func doWithHeaders(mux http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = "192.0.2.1:5000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	mux := newTestMux(nil)

	rec := do(mux, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Hello, World!"}`, rec.Body.String())
	assert.Equal(t, "Content-Type,Authorization", rec.Header().Get("Access-Control-Allow-Headers"))

	rec = do(mux, http.MethodGet, "/ping")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PONG", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(mux, http.MethodGet, "/get-events?category=normal").Code)
	assert.Equal(t, http.StatusOK, do(mux, http.MethodGet, "/favorites").Code)
	assert.Equal(t, http.StatusOK, do(mux, http.MethodPost, "/set-favorite?event_id=1&favorite=true").Code)
	assert.Equal(t, http.StatusOK, do(mux, http.MethodGet, "/login?email=a&password=b").Code)
	assert.Equal(t, http.StatusOK, do(mux, http.MethodGet, "/register?email=a&password=b").Code)

	rec = do(mux, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tixplore_http_requests_total{method="GET",route="/ping",status="200"} 1`)
}

func TestRateLimitedRoutes(t *testing.T) {
	mux := newTestMux(myMiddleware.NewMemoryLimiter(10, 5*time.Second))

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, do(mux, http.MethodGet, "/ping").Code, "request %d", i+1)
	}

	assert.Equal(t, http.StatusTooManyRequests, do(mux, http.MethodGet, "/favorites").Code)
	assert.Equal(t, http.StatusOK, do(mux, http.MethodGet, "/metrics").Code, "metrics are not rate limited")
}

func TestUnknownRoutesUseErrorEnvelope(t *testing.T) {
	mux := newTestMux(nil)

	rec := do(mux, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"is_success":false,"message":"Not found."}`, rec.Body.String())

	rec = do(mux, http.MethodGet, "/set-favorite?event_id=1&favorite=true")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"is_success":false,"message":"Method not allowed."}`, rec.Body.String())
}

func TestRateLimitIgnoresForwardedHeadersByDefault(t *testing.T) {
	mux := newTestMux(myMiddleware.NewMemoryLimiter(10, 5*time.Second))

	allowed := 0
	for i := 0; i < 50; i++ {
		rec := doWithHeaders(mux, http.MethodGet, "/ping", map[string]string{
			"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i),
			"X-Real-IP":       fmt.Sprintf("10.0.1.%d", i),
		})
		if rec.Code == http.StatusOK {
			allowed++
		}
	}

	assert.Equal(t, 10, allowed, "one peer is limited whatever it puts in the headers")
}

func TestRateLimitTrustsProxyHeadersWhenConfigured(t *testing.T) {
	mux := newTestMuxWithConfig(
		config.HttpServerConfig{TrustProxyHeaders: true},
		myMiddleware.NewMemoryLimiter(10, 5*time.Second),
	)

	for i := 0; i < 20; i++ {
		rec := doWithHeaders(mux, http.MethodGet, "/ping", map[string]string{
			"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i),
		})
		require.Equal(t, http.StatusOK, rec.Code, "client %d behind the proxy", i)
	}
}
