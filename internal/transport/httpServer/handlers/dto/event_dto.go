package dto

import (
	"strconv"
	"strings"

	"github.com/deniskrds/tixplore-app/internal/models/domain"
)

// Response — успешный ответ со списком событий. Пустой список отдаётся как [].
type Response struct {
	IsSuccess bool            `json:"is_success"`
	Data      []EventResponse `json:"data"`
}

type StatusResponse struct {
	IsSuccess bool `json:"is_success"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TicketSiteResponse struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	URL   string  `json:"url"`
}

// EventResponse — DTO события в том виде, который ждёт клиентское приложение.
type EventResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Type        string               `json:"type"`
	Genre       []string             `json:"genre"`
	Location    string               `json:"location"`
	Time        string               `json:"time"`
	ImageURL    string               `json:"imageUrl"`
	Description string               `json:"description"`
	Director    string               `json:"director"`
	Cast        []string             `json:"cast"`
	Duration    string               `json:"duration"`
	Rating      float64              `json:"rating"`
	TicketSites []TicketSiteResponse `json:"ticket_sites"`
	IsFavorite  bool                 `json:"isFavorite"`
}

// MapDomainToEventResponse конвертирует событие с вариантами покупки в EventResponse.
// Время обрезается до даты, пустая картинка заменяется заглушкой.
func MapDomainToEventResponse(e domain.EventWithSources) EventResponse {
	date, _, _ := strings.Cut(e.Time, "T")

	imageURL := e.ImageURL
	if imageURL == "" {
		imageURL = domain.PlaceholderImage
	}

	genre := make([]string, 0, len(e.Genre))
	genre = append(genre, e.Genre...)

	cast := make([]string, 0, len(e.Cast))
	cast = append(cast, e.Cast...)

	sites := make([]TicketSiteResponse, 0, len(e.TicketSources))
	for _, s := range e.TicketSources {
		sites = append(sites, TicketSiteResponse{
			Name:  s.Name,
			Price: s.Price,
			URL:   s.URL,
		})
	}

	return EventResponse{
		ID:          strconv.FormatInt(e.ID, 10),
		Name:        e.Name,
		Type:        e.Type,
		Genre:       genre,
		Location:    e.Location,
		Time:        date,
		ImageURL:    imageURL,
		Description: e.Description,
		Director:    e.Director,
		Cast:        cast,
		Duration:    e.Duration,
		Rating:      e.Rating,
		TicketSites: sites,
		IsFavorite:  e.Favorite,
	}
}

// MapDomainToEventResponseList конвертирует слайс доменных моделей в слайс DTO.
func MapDomainToEventResponseList(events []domain.EventWithSources) []EventResponse {
	result := make([]EventResponse, len(events))
	for i, e := range events {
		result[i] = MapDomainToEventResponse(e)
	}
	return result
}
