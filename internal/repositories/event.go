package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/models/repositories"
)

const eventColumns = `id, name, type, genre, location, time, image_url, description, director, "cast",
	duration, rating, favorite, is_active, created_at, updated_at`

func (r *Repository) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	op := "repository.CreateEvent()"

	repoEvent, err := mapEventToRepo(event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	insertQuery := `INSERT INTO events (
		name, type, genre, location, time, image_url, description, director, "cast",
		duration, rating, favorite, is_active, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12, TRUE, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	RETURNING id, is_active, created_at, updated_at`

	err = r.DB.QueryRowxContext(ctx, insertQuery,
		repoEvent.Name,
		repoEvent.Type,
		repoEvent.Genre,
		repoEvent.Location,
		repoEvent.Time,
		repoEvent.ImageURL,
		repoEvent.Description,
		repoEvent.Director,
		string(repoEvent.Cast),
		repoEvent.Duration,
		repoEvent.Rating,
		repoEvent.Favorite,
	).Scan(&event.ID, &event.Active, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

// FindEventByName ищет первое событие с точным совпадением названия.
func (r *Repository) FindEventByName(ctx context.Context, name string) (domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE name = $1 ORDER BY id LIMIT 1`
	return r.getEvent(ctx, "repository.FindEventByName()", query, name)
}

// FindEventByKey ищет событие по названию, площадке и дате.
func (r *Repository) FindEventByKey(ctx context.Context, name, location, date string) (domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events
	          WHERE name = $1 AND location = $2 AND time = $3 ORDER BY id LIMIT 1`
	return r.getEvent(ctx, "repository.FindEventByKey()", query, name, location, date)
}

func (r *Repository) getEvent(ctx context.Context, op string, query string, args ...any) (domain.Event, error) {
	var repoEvent repositories.Event

	err := r.DB.GetContext(ctx, &repoEvent, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return mapEventToDomain(repoEvent)
}

// UpdateEvent перезаписывает все поля события, кроме флага избранного.
func (r *Repository) UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	op := "repository.UpdateEvent()"

	repoEvent, err := mapEventToRepo(event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	updateQuery := `UPDATE events SET
		name = $1, type = $2, genre = $3, location = $4, time = $5, image_url = $6,
		description = $7, director = $8, "cast" = $9::jsonb, duration = $10, rating = $11,
		updated_at = CURRENT_TIMESTAMP
		WHERE id = $12
		RETURNING favorite, is_active, created_at, updated_at`

	err = r.DB.QueryRowxContext(ctx, updateQuery,
		repoEvent.Name,
		repoEvent.Type,
		repoEvent.Genre,
		repoEvent.Location,
		repoEvent.Time,
		repoEvent.ImageURL,
		repoEvent.Description,
		repoEvent.Director,
		string(repoEvent.Cast),
		repoEvent.Duration,
		repoEvent.Rating,
		event.ID,
	).Scan(&event.Favorite, &event.Active, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

// SetFavorite меняет флаг избранного. Для несуществующего id возвращает domain.ErrEventNotFound.
func (r *Repository) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	op := "repository.SetFavorite()"

	result, err := r.DB.ExecContext(ctx,
		`UPDATE events SET favorite = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		favorite, id,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: error checking rows affected: %w", op, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: event with id %d: %w", op, id, domain.ErrEventNotFound)
	}

	return nil
}

// FindEvents возвращает события по фильтру, упорядоченные по id.
func (r *Repository) FindEvents(ctx context.Context, filter domain.EventFilter) ([]domain.Event, error) {
	op := "repository.FindEvents()"

	var (
		conditions []string
		args       []any
	)

	if len(filter.Genres) > 0 {
		genreConditions := make([]string, 0, len(filter.Genres))
		for _, genre := range filter.Genres {
			args = append(args, containsPattern(genre))
			genreConditions = append(genreConditions, fmt.Sprintf("genre ILIKE $%d", len(args)))
		}
		conditions = append(conditions, "("+strings.Join(genreConditions, " OR ")+")")
	}

	if filter.SearchText != "" {
		args = append(args, containsPattern(filter.SearchText))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	if filter.OnlyFavorite {
		conditions = append(conditions, "favorite = TRUE")
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY id ASC`

	var repoEvents []repositories.Event
	if err := r.DB.SelectContext(ctx, &repoEvents, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]domain.Event, 0, len(repoEvents))
	for _, e := range repoEvents {
		event, err := mapEventToDomain(e)
		if err != nil {
			return nil, fmt.Errorf("%s: event %d: %w", op, e.ID, err)
		}
		result = append(result, event)
	}

	return result, nil
}

func mapEventToRepo(e domain.Event) (repositories.Event, error) {
	cast := e.Cast
	if cast == nil {
		cast = []string{}
	}
	castJSON, err := json.Marshal(cast)
	if err != nil {
		return repositories.Event{}, fmt.Errorf("marshal cast: %w", err)
	}

	return repositories.Event{
		BaseModel: repositories.BaseModel{
			ID: e.ID,
		},
		Name:        e.Name,
		Type:        e.Type,
		Genre:       strings.Join(e.Genre, ","),
		Location:    e.Location,
		Time:        e.Time,
		ImageURL:    sql.NullString{String: e.ImageURL, Valid: e.ImageURL != ""},
		Description: e.Description,
		Director:    e.Director,
		Cast:        castJSON,
		Duration:    e.Duration,
		Rating:      e.Rating,
		Favorite:    e.Favorite,
	}, nil
}

func mapEventToDomain(e repositories.Event) (domain.Event, error) {
	cast := []string{}
	if len(e.Cast) > 0 {
		if err := json.Unmarshal(e.Cast, &cast); err != nil {
			return domain.Event{}, fmt.Errorf("unmarshal cast: %w", err)
		}
	}

	var genre []string
	if e.Genre != "" {
		genre = strings.Split(e.Genre, ",")
	}

	return domain.Event{
		ID:          e.ID,
		Name:        e.Name,
		Type:        e.Type,
		Genre:       genre,
		Location:    e.Location,
		Time:        e.Time,
		ImageURL:    e.ImageURL.String,
		Description: e.Description,
		Director:    e.Director,
		Cast:        cast,
		Duration:    e.Duration,
		Rating:      e.Rating,
		Favorite:    e.Favorite,
		Active:      e.IsActive,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}, nil
}
