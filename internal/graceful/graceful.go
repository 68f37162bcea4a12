package graceful

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"
)

// Operation — функция остановки одного сервиса.
type Operation func(ctx context.Context) error

// GracefulShutdown ждёт сигнал завершения или отмену ctx, затем параллельно выполняет ops.
// Возвращённый канал закрывается, когда все операции завершились.
// Если за timeout операции не успели, процесс завершается с кодом 1.
func GracefulShutdown(ctx context.Context, timeout time.Duration, ops map[string]Operation, log *slog.Logger) <-chan struct{} {
	wait := make(chan struct{})

	go func() {
		s := make(chan os.Signal, 1)
		signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(s)

		select {
		case sig := <-s:
			log.Info("shutting down", slog.String("signal", sig.String()))
		case <-ctx.Done():
			log.Info("shutting down", slog.String("reason", "context done"))
		}

		timeoutFunc := time.AfterFunc(timeout, func() {
			log.Error("timeout elapsed, force exit", slog.Duration("timeout", timeout))
			os.Exit(1)
		})
		defer timeoutFunc.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var wg sync.WaitGroup

		for key, op := range ops {
			wg.Add(1)
			go func() {
				defer wg.Done()

				log.Info("cleaning up", slog.String("service", key))
				if err := op(shutdownCtx); err != nil {
					log.Error("clean up failed", slog.String("service", key), sl.Err(err))
					return
				}
				log.Info("was shutdown gracefully", slog.String("service", key))
			}()
		}

		wg.Wait()

		close(wait)
	}()

	return wait
}
