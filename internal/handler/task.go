package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/repo"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/pkg/respond"
)

// TaskHandler serves the JSON task API used by the mobile client.
type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), u, model.Task{
		Title:       req.Title,
		Description: req.Description,
	}, idempKey)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	tasks, err := h.service.ListForUser(r.Context(), u)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	respond.JSON(w, r, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := h.service.Get(r.Context(), u, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// Complete: PATCH /api/tasks/{id}. Задачу можно только отметить выполненной.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := h.service.Complete(r.Context(), u, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// Payload returns the copy of the task stored in IPFS.
func (h *TaskHandler) Payload(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	payload, err := h.service.Payload(r.Context(), u, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if payload == nil {
		h.handleErrors(w, r, repo.ErrorNotFound)
		return
	}
	respond.JSON(w, r, http.StatusOK, payload)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}
