package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/budgetkeeper/internal/server/authctx"
	"github.com/iudanet/budgetkeeper/internal/server/services"
	"github.com/iudanet/budgetkeeper/pkg/api"
)

// maxBodyBytes ограничение размера тела JSON запроса
const maxBodyBytes = 1 << 20

// responder общие методы ответа для всех handler'ов
type responder struct {
	logger *slog.Logger
}

// sendJSON отправляет JSON ответ
func (h responder) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func (h responder) sendError(w http.ResponseWriter, code, message string, statusCode int) {
	h.sendJSON(w, api.ErrorResponse{Error: code, Message: message}, statusCode)
}

// sendServiceError переводит ошибку сервиса в HTTP ответ.
// Внутренние ошибки логируются, клиент получает общее сообщение.
func (h responder) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrExportNotConfigured) {
		h.sendError(w, "unavailable", err.Error(), http.StatusServiceUnavailable)
		return
	}

	var se *services.Error
	if !errors.As(err, &se) || se.Kind == services.KindInternal {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		h.sendError(w, "internal", "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendError(w, se.Kind.String(), se.Message, statusForKind(se.Kind))
}

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON читает тело запроса; при ошибке сам отвечает 400
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "failed to decode request body", slog.Any("error", err))
		h.sendError(w, "validation", "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// identity возвращает вызывающего; без него отвечает 401
func (h responder) identity(w http.ResponseWriter, r *http.Request) (*authctx.Identity, bool) {
	id, ok := authctx.FromContext(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "identity not found in context")
		h.sendError(w, "unauthorized", "authentication required", http.StatusUnauthorized)
		return nil, false
	}
	return id, true
}

// pathID разбирает числовой параметр {id} из пути; при ошибке отвечает 400
func (h responder) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.sendError(w, "validation", fmt.Sprintf("invalid id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// parseDate принимает RFC3339 или YYYY-MM-DD (полночь UTC)
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// queryInt читает целый параметр запроса; пустое значение дает def
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: must be an integer", name)
	}
	return v, nil
}
