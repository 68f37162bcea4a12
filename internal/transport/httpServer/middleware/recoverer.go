package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/deniskrds/tixplore-app/internal/utils"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

var errInternal = errors.New("Internal server error.")

// Recoverer перехватывает панику в хэндлере и отвечает 500 в общем формате ошибок.
// http.ErrAbortHandler пробрасывается дальше, net/http обрабатывает его сам.
func Recoverer(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				log.Error("panic recovered",
					slog.Any("panic", rvr),
					slog.String("request_id", chiMiddleware.GetReqID(r.Context())),
					slog.String("stack", string(debug.Stack())),
				)

				if err := utils.Err(w, http.StatusInternalServerError, errInternal); err != nil {
					log.Error("error sending http response", sl.Err(err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
