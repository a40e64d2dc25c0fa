package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/internal/session"
	"github.com/BuzzLyutic/habit-tracker/pkg/respond"
)

type ctxKey int

const userKey ctxKey = iota

// Authenticator issues sessions and resolves the session token of a request into a user.
type Authenticator struct {
	sessions session.Store
	auth     *service.AuthService
	ttl      time.Duration
	secure   bool
	logger   *zap.Logger
}

func NewAuthenticator(sessions session.Store, auth *service.AuthService, ttl time.Duration, secure bool, logger *zap.Logger) *Authenticator {
	return &Authenticator{sessions: sessions, auth: auth, ttl: ttl, secure: secure, logger: logger}
}

// Start открывает сессию для userID и выставляет cookie. Токен возвращается
// для клиентов, которые передают его в заголовке Authorization.
func (a *Authenticator) Start(w http.ResponseWriter, r *http.Request, userID int64) (string, error) {
	token, err := a.sessions.Create(r.Context(), userID)
	if err != nil {
		return "", err
	}
	session.SetCookie(w, token, a.ttl, a.secure)
	return token, nil
}

// End удаляет сессию запроса, если она есть, и стирает cookie.
func (a *Authenticator) End(w http.ResponseWriter, r *http.Request) {
	if token, ok := session.Token(r); ok {
		if err := a.sessions.Delete(r.Context(), token); err != nil {
			a.logger.Warn("delete session", zap.Error(err))
		}
	}
	session.ClearCookie(w)
}

// Load кладет пользователя в контекст, если у запроса есть живая сессия.
// Запрос без сессии проходит дальше анонимно.
func (a *Authenticator) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := session.Token(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := a.sessions.UserID(r.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrNoSession) {
				a.logger.Error("session lookup", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.auth.User(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, repo.ErrorNotFound) {
				a.logger.Error("session user lookup", zap.Int64("user_id", userID), zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// RequireUser отвечает 401 на запросы без сессии (JSON-маршруты)
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentUser(r); !ok {
			respond.Error(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireBrowserUser перенаправляет на страницу входа (HTML-маршруты)
func RequireBrowserUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := currentUser(r); !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) (model.User, bool) {
	u, ok := r.Context().Value(userKey).(model.User)
	return u, ok
}
