package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/access"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/internal/session"
	"github.com/BuzzLyutic/habit-tracker/pkg/respond"
)

// errorStatus переводит ошибку сервисного слоя в HTTP-статус и сообщение для клиента.
// На неизвестные ошибки отдаем 500 без подробностей.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid email or password."
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusBadRequest, "Email already registered."
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusBadRequest, "Invalid or expired link."
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repo.ErrorConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	code, msg := errorStatus(err)
	if code == http.StatusInternalServerError {
		logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	}
	respond.Error(w, r, code, msg)
}

// idParam reads a numeric URL parameter. A malformed id cannot name any row,
// so it is reported as not found.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, repo.ErrorNotFound
	}
	return id, nil
}

// isJSON reports whether the request body is JSON rather than a form.
func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}
