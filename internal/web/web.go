// Package web renders the server-side HTML pages.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
)

const (
	LandingPage    = "landing.html"
	RegisterPage   = "register.html"
	LoginPage      = "login.html"
	DashboardPage  = "dashboard.html"
	CreateTaskPage = "create_task.html"
	AdminPage      = "admin.html"
	VerifyPage     = "verify.html"
	ErrorPage      = "error.html"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Page holds everything a template may read. Unused fields stay zero.
type Page struct {
	Title   string
	User    *model.User
	Error   string
	Message string
	Email   string

	Tasks []model.Task
	Lists []model.TaskList

	Stats   repo.Stats
	Metrics AdminMetrics
}

// AdminMetrics are placeholder figures shown on the admin dashboard next to real counts.
type AdminMetrics struct {
	DAU               int
	TasksCompletedDay int
	FourWeekRetention float64
}

type Renderer struct {
	tmpl   *template.Template
	logger *zap.Logger
}

func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	tmpl, err := template.New("").Option("missingkey=error").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, logger: logger}, nil
}

// Render executes the named page into a buffer first so a template error
// never leaves a half-written response behind.
func (r *Renderer) Render(w http.ResponseWriter, code int, name string, page Page) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, page); err != nil {
		r.logger.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Debug("write page", zap.String("template", name), zap.Error(err))
	}
}
