package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/BuzzLyutic/habit-tracker/internal/access"
	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/internal/session"
)

func withUser(r *http.Request, u model.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userKey, u))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestRequireUser(t *testing.T) {
	t.Run("anonymous gets 401", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireUser(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lists", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "authentication required")
	})

	t.Run("user passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodGet, "/lists", nil), model.User{ID: 1})
		RequireUser(okHandler()).ServeHTTP(w, r)

		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}

func TestRequireBrowserUser(t *testing.T) {
	t.Run("anonymous is redirected to login", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireBrowserUser(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("user passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := withUser(httptest.NewRequest(http.MethodGet, "/dashboard", nil), model.User{ID: 1})
		RequireBrowserUser(okHandler()).ServeHTTP(w, r)

		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
	}{
		{repo.ErrorNotFound, http.StatusNotFound},
		{fmt.Errorf("load list: %w", repo.ErrorNotFound), http.StatusNotFound},
		{access.ErrForbidden, http.StatusForbidden},
		{session.ErrNoSession, http.StatusUnauthorized},
		{service.ErrInvalidCredentials, http.StatusBadRequest},
		{service.ErrDuplicateEmail, http.StatusBadRequest},
		{service.ErrInvalidToken, http.StatusBadRequest},
		{fmt.Errorf("%w: title is required", service.ErrValidation), http.StatusBadRequest},
		{repo.ErrorConflict, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, msg := errorStatus(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, msg)
		})
	}

	_, msg := errorStatus(errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal error", msg, "internal details are not exposed")
}

func TestIDParam(t *testing.T) {
	for raw, ok := range map[string]bool{"42": true, "0": false, "-3": false, "abc": false} {
		t.Run(raw, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", raw)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

			id, err := idParam(r, "id")
			if ok {
				assert.NoError(t, err)
				assert.Equal(t, int64(42), id)
			} else {
				assert.ErrorIs(t, err, repo.ErrorNotFound)
			}
		})
	}
}
