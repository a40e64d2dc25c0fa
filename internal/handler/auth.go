package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/access"
	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/pkg/respond"
)

// AuthHandler serves login, logout and profile lookups for the mobile client.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *Authenticator
	logger   *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, sessions *Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	token, err := h.sessions.Start(w, r, user.ID)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.End(w, r)
	respond.NoContent(w)
}

// User отдает профиль самому пользователю или администратору
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if id != u.ID && !u.IsAdmin {
		h.handleErrors(w, r, access.ErrForbidden)
		return
	}

	user, err := h.auth.User(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, user)
}

func (h *AuthHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}
