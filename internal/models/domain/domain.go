package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketNotFound     = errors.New("ticket source not found")
	ErrNoEvents           = errors.New("no events found")
	ErrCategoryRequired   = errors.New("category is not specified")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("email or password is wrong")
)

// CategoryNormal — категория, при которой фильтр по жанрам не применяется.
const CategoryNormal = "normal"

// PlaceholderImage отдаётся клиенту, если у события нет картинки.
const PlaceholderImage = "/api/placeholder/800/400"

// Event - каноническое событие, собранное с одного или нескольких сайтов продавцов.
type Event struct {
	ID          int64
	Name        string
	Type        string
	Genre       []string
	Location    string
	Time        string
	ImageURL    string
	Description string
	Director    string
	Cast        []string
	Duration    string
	Rating      float64
	Favorite    bool
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TicketSource - вариант покупки билета у конкретного продавца.
type TicketSource struct {
	ID      int64
	EventID int64
	Name    string
	Price   float64
	URL     string
}

// EventWithSources — событие вместе со всеми вариантами покупки.
type EventWithSources struct {
	Event
	TicketSources []TicketSource
}

type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Active       bool
	CreatedAt    time.Time
}

// EventFilter — условия выборки событий.
// Genres объединяются через OR, текст ищется в названии или описании, группы объединяются через AND.
type EventFilter struct {
	Genres       []string
	SearchText   string
	OnlyFavorite bool
}

// UpsertPolicy определяет, как сохраняются события конкретного продавца.
type UpsertPolicy int

const (
	// PolicyAppendSources — поиск события по имени, вариант покупки добавляется всегда.
	PolicyAppendSources UpsertPolicy = iota
	// PolicyGetOrCreate — событие обновляется целиком, варианты покупки ищутся по (event, name).
	PolicyGetOrCreate
)

func (p UpsertPolicy) String() string {
	switch p {
	case PolicyAppendSources:
		return "append"
	case PolicyGetOrCreate:
		return "get_or_create"
	default:
		return "unknown"
	}
}

// ScrapeReport — итог одного прогона скрапера по продавцу.
type ScrapeReport struct {
	RequestID uuid.UUID
	Vendor    string
	Seen      int
	Created   int
	Updated   int
	Failed    int
	StartedAt time.Time
	Duration  time.Duration
	Err       error
}
