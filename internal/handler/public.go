package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/pkg/respond"
)

const maxSyncBody = 1 << 20

// PublicHandler serves the endpoints that need no session: analytics stubs,
// referral links and offline sync.
type PublicHandler struct {
	tasks   *service.TaskService
	baseURL string
	logger  *zap.Logger
}

func NewPublicHandler(tasks *service.TaskService, baseURL string, logger *zap.Logger) *PublicHandler {
	return &PublicHandler{
		tasks:   tasks,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Аналитика пока не считается, эндпоинты отдают заглушки

func (h *PublicHandler) DAU(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, map[string]string{"message": "DAU Analytics"})
}

func (h *PublicHandler) TasksPerDay(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, map[string]string{"message": "Tasks per Day Analytics"})
}

func (h *PublicHandler) Retention(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, map[string]string{"message": "4-Week Retention Analytics"})
}

func (h *PublicHandler) Referral(w http.ResponseWriter, r *http.Request) {
	userID, err := idParam(r, "user_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	code := uuid.NewString()[:8]
	respond.JSON(w, r, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Referral for user %d", userID),
		"link":    fmt.Sprintf("%s/referral?user_id=%d&code=%s", h.baseURL, userID, code),
	})
}

// SyncTasks принимает пакет задач, сохраненных клиентом офлайн
func (h *PublicHandler) SyncTasks(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSyncBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respond.Error(w, r, http.StatusBadRequest, "unreadable body")
		return
	}

	n, err := h.tasks.Sync(r.Context(), body)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]interface{}{"status": "success", "received": n})
}
