package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse — тело любого ответа с ошибкой.
type ErrorResponse struct {
	IsSuccess bool   `json:"is_success"`
	Message   string `json:"message"`
}

func Json(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// Err отправляет текст err клиенту как есть. Внутренние причины сюда передавать нельзя.
func Err(w http.ResponseWriter, status int, err error) error {
	return Json(w, status, ErrorResponse{IsSuccess: false, Message: err.Error()})
}
