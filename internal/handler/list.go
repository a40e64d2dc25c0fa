package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/model"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
	"github.com/BuzzLyutic/habit-tracker/pkg/respond"
)

// ListHandler serves /lists. Bodies may be JSON or an HTML form.
type ListHandler struct {
	service *service.ListService
	logger  *zap.Logger
}

func NewListHandler(srv *service.ListService, logger *zap.Logger) *ListHandler {
	return &ListHandler{
		service: srv,
		logger:  logger,
	}
}

type listRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type shareRequest struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// bind читает тело запроса в dst из JSON или из полей формы
func bind(r *http.Request, dst interface{}) error {
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return fmt.Errorf("%w: invalid json", service.ErrValidation)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("%w: invalid form", service.ErrValidation)
	}
	switch v := dst.(type) {
	case *listRequest:
		v.Name, v.Description = r.PostForm.Get("name"), r.PostForm.Get("description")
	case *shareRequest:
		v.Email, v.Role = r.PostForm.Get("email"), model.Role(r.PostForm.Get("role"))
	case *taskRequest:
		v.Title, v.Description = r.PostForm.Get("title"), r.PostForm.Get("description")
	}
	return nil
}

func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	lists, err := h.service.ListForUser(r.Context(), u)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if lists == nil {
		lists = []model.TaskList{}
	}
	respond.JSON(w, r, http.StatusOK, map[string]interface{}{"lists": lists})
}

func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	var req listRequest
	if err := bind(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	list, err := h.service.Create(r.Context(), u, req.Name, req.Description)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/lists/%d", list.ID))
	respond.JSON(w, r, http.StatusCreated, list)
}

func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	detail, err := h.service.Get(r.Context(), u, id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if detail.Tasks == nil {
		detail.Tasks = []model.Task{}
	}
	respond.JSON(w, r, http.StatusOK, detail)
}

func (h *ListHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	var req listRequest
	if err := bind(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	list, err := h.service.Update(r.Context(), u, id, req.Name, req.Description)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, list)
}

func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), u, id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *ListHandler) Share(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	var req shareRequest
	if err := bind(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	share, err := h.service.Share(r.Context(), u, id, req.Email, req.Role)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, share)
}

func (h *ListHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	id, err := idParam(r, "id")
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	var req taskRequest
	if err := bind(r, &req); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := h.service.AddTask(r.Context(), u, id, req.Title, req.Description)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *ListHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}
