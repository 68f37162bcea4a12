package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deniskrds/tixplore-app/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Repository — доступ к postgres. Схема таблиц создаётся вне приложения.
type Repository struct {
	log *slog.Logger
	DB  *sqlx.DB
}

// New открывает пул соединений и проверяет доступность базы.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*Repository, error) {
	op := "repository.New()"
	log = log.With(slog.String("op", op))

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DBConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db.SetMaxOpenConns(cfg.DBConfig.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DBConfig.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConfig.ConnMaxLifetime)

	log.Info("connected to postgres",
		slog.String("host", cfg.DBConfig.Host),
		slog.String("db", cfg.DBConfig.Name),
	)

	return NewWithDB(log, db), nil
}

func NewWithDB(log *slog.Logger, db *sqlx.DB) *Repository {
	return &Repository{
		log: log,
		DB:  db,
	}
}

// Shutdown закрывает пул соединений.
func (r *Repository) Shutdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit repository: %w", ctx.Err())
	default:
		return r.DB.Close()
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern превращает пользовательский текст в шаблон ILIKE "содержит".
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
