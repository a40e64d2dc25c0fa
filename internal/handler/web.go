package handler

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/access"
	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/internal/web"
)

// Заглушки метрик для админ-панели, пока аналитика не считается по данным
var adminMetrics = web.AdminMetrics{
	DAU:               123,
	TasksCompletedDay: 45,
	FourWeekRetention: 32.5,
}

// WebHandler serves the HTML pages.
type WebHandler struct {
	auth     *service.AuthService
	tasks    *service.TaskService
	lists    *service.ListService
	sessions *Authenticator
	render   *web.Renderer
	adminKey string
	logger   *zap.Logger
}

func NewWebHandler(auth *service.AuthService, tasks *service.TaskService, lists *service.ListService,
	sessions *Authenticator, render *web.Renderer, adminKey string, logger *zap.Logger) *WebHandler {
	return &WebHandler{
		auth:     auth,
		tasks:    tasks,
		lists:    lists,
		sessions: sessions,
		render:   render,
		adminKey: adminKey,
		logger:   logger,
	}
}

// page заполняет общие поля страницы
func page(r *http.Request, title string) web.Page {
	p := web.Page{Title: title}
	if u, ok := currentUser(r); ok {
		p.User = &u
	}
	return p
}

func (h *WebHandler) Landing(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, web.LandingPage, page(r, ""))
}

func (h *WebHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, web.RegisterPage, page(r, "Register"))
}

func (h *WebHandler) Register(w http.ResponseWriter, r *http.Request) {
	email, password := r.PostFormValue("email"), r.PostFormValue("password")

	user, err := h.auth.Register(r.Context(), email, password)
	if err != nil {
		h.formError(w, r, web.RegisterPage, "Register", email, err)
		return
	}

	if _, err := h.sessions.Start(w, r, user.ID); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *WebHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, web.LoginPage, page(r, "Log in"))
}

func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	email, password := r.PostFormValue("email"), r.PostFormValue("password")

	user, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		h.formError(w, r, web.LoginPage, "Log in", email, err)
		return
	}

	if _, err := h.sessions.Start(w, r, user.ID); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.End(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *WebHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	tasks, err := h.tasks.ListForUser(r.Context(), u)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	lists, err := h.lists.ListForUser(r.Context(), u)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	p := page(r, "Dashboard")
	p.Tasks = tasks
	p.Lists = lists
	h.render.Render(w, http.StatusOK, web.DashboardPage, p)
}

func (h *WebHandler) CreateTaskForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, web.CreateTaskPage, page(r, "New task"))
}

func (h *WebHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	_, err := h.tasks.Create(r.Context(), u, model.Task{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
	}, "")
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			p := page(r, "New task")
			_, p.Error = errorStatus(err)
			h.render.Render(w, http.StatusBadRequest, web.CreateTaskPage, p)
			return
		}
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (h *WebHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if _, err := h.tasks.Complete(r.Context(), u, id); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Admin открывается администратору или по ключу ?admin_key=
func (h *WebHandler) Admin(w http.ResponseWriter, r *http.Request) {
	if !h.validAdminKey(r.URL.Query().Get("admin_key")) {
		u, ok := currentUser(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if !u.IsAdmin {
			h.logger.Warn("admin page refused", zap.Int64("user_id", u.ID))
			h.renderError(w, r, access.ErrForbidden)
			return
		}
	}

	stats, err := h.tasks.GetStats(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	p := page(r, "Admin")
	p.Stats = stats
	p.Metrics = adminMetrics
	h.render.Render(w, http.StatusOK, web.AdminPage, p)
}

func (h *WebHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Verify(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	p := page(r, "Email confirmed")
	p.Message = user.Email + " is confirmed."
	h.render.Render(w, http.StatusOK, web.VerifyPage, p)
}

func (h *WebHandler) validAdminKey(key string) bool {
	if h.adminKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.adminKey)) == 1
}

// formError повторно показывает форму с сообщением об ошибке
func (h *WebHandler) formError(w http.ResponseWriter, r *http.Request, name, title, email string, err error) {
	code, msg := errorStatus(err)
	if code == http.StatusInternalServerError {
		h.renderError(w, r, err)
		return
	}
	p := page(r, title)
	p.Error = msg
	p.Email = email
	h.render.Render(w, code, name, p)
}

func (h *WebHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := errorStatus(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "Something went wrong."
	}
	h.render.Render(w, code, web.ErrorPage, page(r, msg))
}
