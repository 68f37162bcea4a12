package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/transport/httpServer/handlers/dto"
	"github.com/deniskrds/tixplore-app/internal/utils"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"
)

var (
	errLoginParams       = errors.New("Unknown error occurred.")
	errWrongCredentials  = errors.New("Email or Password is wrong.")
	errRegisterParams    = errors.New("Email or Password is not provided.")
	errUserExists        = errors.New("User already exists.")
	errRegistrationError = errors.New("An error occurred while registering user.")
)

type UserHandler struct {
	service UserService
	log     *slog.Logger
}

func NewUserHandler(log *slog.Logger, service UserService) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// Login обрабатывает GET /login?email=...&password=...
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.UserHandler.Login()"
	log := h.log.With(slog.String("op", op))

	query := r.URL.Query()
	if !query.Has("email") || !query.Has("password") {
		respondError(log, fmt.Errorf("missing email or password"), errLoginParams, w, http.StatusBadRequest)
		return
	}

	_, err := h.service.Login(r.Context(), query.Get("email"), query.Get("password"))
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		respondError(log, err, errWrongCredentials, w, http.StatusBadRequest)
		return
	case err != nil:
		respondError(log, fmt.Errorf("failed to login: %w", err), errLoginParams, w, http.StatusInternalServerError)
		return
	}

	if err := utils.Json(w, http.StatusOK, dto.StatusResponse{IsSuccess: true}); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

// Register обрабатывает GET /register?email=...&password=...&name=...
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.UserHandler.Register()"
	log := h.log.With(slog.String("op", op))

	query := r.URL.Query()
	if !query.Has("email") || !query.Has("password") {
		respondError(log, fmt.Errorf("missing email or password"), errRegisterParams, w, http.StatusBadRequest)
		return
	}

	_, err := h.service.Register(r.Context(), query.Get("email"), query.Get("password"), query.Get("name"))
	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		respondError(log, err, errUserExists, w, http.StatusBadRequest)
		return
	case err != nil:
		respondError(log, fmt.Errorf("failed to register: %w", err), errRegistrationError, w, http.StatusInternalServerError)
		return
	}

	if err := utils.Json(w, http.StatusOK, dto.StatusResponse{IsSuccess: true}); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}
