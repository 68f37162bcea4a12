package handlers

import (
	"context"

	"github.com/deniskrds/tixplore-app/internal/models/domain"
)

// EventService — интерфейс для работы с событиями из хэндлеров.
type EventService interface {
	ListEvents(ctx context.Context, category, searchText string) ([]domain.EventWithSources, error)
	ListFavorites(ctx context.Context) ([]domain.EventWithSources, error)
	SetFavorite(ctx context.Context, id int64, favorite bool) error
}

type UserService interface {
	Register(ctx context.Context, email, password, name string) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
}
