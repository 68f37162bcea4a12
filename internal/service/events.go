package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/models/domain"
)

type EventRepository interface {
	FindEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error)
	FindTicketSources(ctx context.Context, eventIDs []int64) (map[int64][]domain.TicketSource, error)
	SetFavorite(ctx context.Context, id int64, favorite bool) error
}

// EventService — выборка событий по категориям и работа с избранным.
type EventService struct {
	log        *slog.Logger
	categories config.CategoryMap
	repository EventRepository
}

func NewEventService(log *slog.Logger, cfg *config.Config, repository EventRepository) *EventService {
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = config.DefaultCategories()
	}

	return &EventService{
		log:        log,
		categories: categories,
		repository: repository,
	}
}

// Genres возвращает подстроки жанров для категории. Для "normal" фильтра нет (nil).
// Категория сравнивается как есть, без приведения регистра.
func (s *EventService) Genres(category string) ([]string, error) {
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}

	if category == domain.CategoryNormal {
		return nil, nil
	}

	genres, ok := s.categories[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}

	return genres, nil
}

// ListEvents — события категории, по возможности отфильтрованные по тексту.
// При пустом результате возвращает domain.ErrNoEvents.
func (s *EventService) ListEvents(ctx context.Context, category, searchText string) ([]domain.EventWithSources, error) {
	op := "EventService.ListEvents()"

	genres, err := s.Genres(category)
	if err != nil {
		return nil, err
	}

	events, err := s.find(ctx, domain.EventFilter{
		Genres:     genres,
		SearchText: searchText,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(events) == 0 {
		return nil, domain.ErrNoEvents
	}

	return events, nil
}

// ListFavorites — избранные события. Пустой список не ошибка.
func (s *EventService) ListFavorites(ctx context.Context) ([]domain.EventWithSources, error) {
	op := "EventService.ListFavorites()"

	events, err := s.find(ctx, domain.EventFilter{OnlyFavorite: true})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}

func (s *EventService) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	op := "EventService.SetFavorite()"

	if err := s.repository.SetFavorite(ctx, id, favorite); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("favorite changed",
		slog.String("op", op),
		slog.Int64("eventId", id),
		slog.Bool("favorite", favorite),
	)

	return nil
}

// ParseFavorite — true только для "true" в любом регистре.
func ParseFavorite(value string) bool {
	return strings.EqualFold(value, "true")
}

func (s *EventService) find(ctx context.Context, filter domain.EventFilter) ([]domain.EventWithSources, error) {
	events, err := s.repository.FindEvents(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	sources, err := s.repository.FindTicketSources(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.EventWithSources, 0, len(events))
	for _, e := range events {
		result = append(result, domain.EventWithSources{
			Event:         e,
			TicketSources: sources[e.ID],
		})
	}

	return result, nil
}
