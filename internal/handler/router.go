package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/collab"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/internal/session"
	"github.com/BuzzLyutic/habit-tracker/internal/web"
	"github.com/BuzzLyutic/habit-tracker/pkg/respond"
)

// Deps: все, что нужно роутеру
type Deps struct {
	Auth     *service.AuthService
	Tasks    *service.TaskService
	Lists    *service.ListService
	Sessions session.Store
	Hub      *collab.Hub
	Renderer *web.Renderer

	SessionTTL   time.Duration
	SecureCookie bool
	AdminKey     string
	BaseURL      string

	Logger *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	authn := NewAuthenticator(d.Sessions, d.Auth, d.SessionTTL, d.SecureCookie, d.Logger)

	webH := NewWebHandler(d.Auth, d.Tasks, d.Lists, authn, d.Renderer, d.AdminKey, d.Logger)
	listH := NewListHandler(d.Lists, d.Logger)
	taskH := NewTaskHandler(d.Tasks, d.Logger)
	authH := NewAuthHandler(d.Auth, authn, d.Logger)
	collabH := NewCollabHandler(d.Lists, d.Hub, d.Logger)
	publicH := NewPublicHandler(d.Tasks, d.BaseURL, d.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authn.Load)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// HTML
	r.Get("/", webH.Landing)
	r.Get("/register", webH.RegisterForm)
	r.Post("/register", webH.Register)
	r.Get("/login", webH.LoginForm)
	r.Post("/login", webH.Login)
	r.Get("/logout", webH.Logout)
	r.Get("/verify", webH.Verify)
	r.Get("/admin", webH.Admin)

	r.Group(func(r chi.Router) {
		r.Use(RequireBrowserUser)
		r.Get("/dashboard", webH.Dashboard)
		r.Get("/create_task", webH.CreateTaskForm)
		r.Post("/create_task", webH.CreateTask)
		r.Get("/complete_task/{id}", webH.CompleteTask)
	})

	// JSON
	r.Route("/lists", func(r chi.Router) {
		r.Use(RequireUser)
		r.Get("/", listH.List)
		r.Post("/", listH.Create)
		r.Get("/{id}", listH.Get)
		r.Put("/{id}", listH.Update)
		r.Delete("/{id}", listH.Delete)
		r.Post("/{id}/share", listH.Share)
		r.Post("/{id}/tasks", listH.AddTask)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authH.Login)
		r.Post("/logout", authH.Logout)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Get("/tasks", taskH.List)
			r.Post("/tasks", taskH.Create)
			r.Get("/tasks/{id}", taskH.Get)
			r.Patch("/tasks/{id}", taskH.Complete)
			r.Get("/tasks/{id}/payload", taskH.Payload)
			r.Get("/lists", listH.List)
			r.Get("/users/{id}", authH.User)
		})
	})

	r.With(RequireUser).Get("/ws/list/{list_id}", collabH.Connect)

	r.Get("/analytics/dau", publicH.DAU)
	r.Get("/analytics/tasks_per_day", publicH.TasksPerDay)
	r.Get("/analytics/retention", publicH.Retention)
	r.Get("/referral/{user_id}", publicH.Referral)
	r.Post("/sync_tasks", publicH.SyncTasks)

	return r
}
