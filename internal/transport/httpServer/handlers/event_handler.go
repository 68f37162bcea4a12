package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/service"
	"github.com/deniskrds/tixplore-app/internal/transport/httpServer/handlers/dto"
	"github.com/deniskrds/tixplore-app/internal/utils"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"
)

// Тексты ошибок уходят клиенту как есть, приложение показывает их пользователю.
var (
	errCategoryRequired = errors.New("Category is not specified.")
	errInvalidCategory  = errors.New("Invalid category.")
	errNoEvents         = errors.New("No movies found for this category.")
	errFetchEvents      = errors.New("An error occurred while fetching movies.")
	errFavoriteParams   = errors.New("Event ID or is_favorite is not provided.")
	errInvalidEventID   = errors.New("Event ID must be an integer.")
	errSetFavorite      = errors.New("An error occurred while setting favorite.")
)

type EventHandler struct {
	service EventService
	log     *slog.Logger
}

func NewEventHandler(log *slog.Logger, service EventService) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log,
	}
}

// Index обрабатывает GET /
func (h *EventHandler) Index(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.EventHandler.Index()"
	log := h.log.With(slog.String("op", op))

	if err := utils.Json(w, http.StatusOK, dto.MessageResponse{Message: "Hello, World!"}); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

// Ping обрабатывает GET /ping
func (h *EventHandler) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("PONG"))
}

// GetEvents обрабатывает GET /get-events?category=...&search_text=...
// Пустой результат отдаётся как 404.
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.EventHandler.GetEvents()"
	log := h.log.With(slog.String("op", op))

	query := r.URL.Query()
	category := query.Get("category")
	searchText := query.Get("search_text")

	events, err := h.service.ListEvents(r.Context(), category, searchText)
	switch {
	case errors.Is(err, domain.ErrCategoryRequired):
		respondError(log, err, errCategoryRequired, w, http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrInvalidCategory):
		respondError(log, err, errInvalidCategory, w, http.StatusBadRequest)
		return
	case errors.Is(err, domain.ErrNoEvents):
		respondError(log, err, errNoEvents, w, http.StatusNotFound)
		return
	case err != nil:
		respondError(log, fmt.Errorf("failed to get events: %w", err), errFetchEvents, w, http.StatusInternalServerError)
		return
	}

	response := dto.Response{IsSuccess: true, Data: dto.MapDomainToEventResponseList(events)}

	if err := utils.Json(w, http.StatusOK, response); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

// GetFavorites обрабатывает GET /favorites
func (h *EventHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.EventHandler.GetFavorites()"
	log := h.log.With(slog.String("op", op))

	events, err := h.service.ListFavorites(r.Context())
	if err != nil {
		respondError(log, fmt.Errorf("failed to get favorites: %w", err), errFetchEvents, w, http.StatusInternalServerError)
		return
	}

	response := dto.Response{IsSuccess: true, Data: dto.MapDomainToEventResponseList(events)}

	if err := utils.Json(w, http.StatusOK, response); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

// SetFavorite обрабатывает POST /set-favorite?event_id=...&favorite=...
// favorite=true без учёта регистра отмечает событие, любое другое значение снимает отметку.
func (h *EventHandler) SetFavorite(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.EventHandler.SetFavorite()"
	log := h.log.With(slog.String("op", op))

	query := r.URL.Query()
	if !query.Has("event_id") || !query.Has("favorite") {
		respondError(log, fmt.Errorf("missing event_id or favorite"), errFavoriteParams, w, http.StatusBadRequest)
		return
	}

	eventID, err := strconv.ParseInt(query.Get("event_id"), 10, 64)
	if err != nil {
		respondError(log, fmt.Errorf("invalid event_id: %w", err), errInvalidEventID, w, http.StatusBadRequest)
		return
	}

	favorite := service.ParseFavorite(query.Get("favorite"))

	log.Info("setting favorite",
		slog.Int64("eventID", eventID),
		slog.Bool("favorite", favorite),
	)

	if err := h.service.SetFavorite(r.Context(), eventID, favorite); err != nil {
		respondError(log, fmt.Errorf("failed to set favorite: %w", err), errSetFavorite, w, http.StatusInternalServerError)
		return
	}

	if err := utils.Json(w, http.StatusOK, dto.StatusResponse{IsSuccess: true}); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

// respondError пишет причину в лог, а клиенту отдаёт только публичное сообщение.
func respondError(log *slog.Logger, cause, public error, w http.ResponseWriter, status int) {
	if status >= http.StatusInternalServerError {
		log.Error("handler error", sl.Err(cause))
	} else {
		log.Debug("bad request", sl.Err(cause))
	}
	if httpErr := utils.Err(w, status, public); httpErr != nil {
		log.Error("error sending http response", sl.Err(httpErr))
	}
}
