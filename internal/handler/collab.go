package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/habit-tracker/internal/access"
	"github.com/BuzzLyutic/habit-tracker/internal/collab"
	"github.com/BuzzLyutic/habit-tracker/internal/service"
)

// CollabHandler opens the per-list collaboration channel.
type CollabHandler struct {
	lists  *service.ListService
	hub    *collab.Hub
	logger *zap.Logger
}

func NewCollabHandler(lists *service.ListService, hub *collab.Hub, logger *zap.Logger) *CollabHandler {
	return &CollabHandler{lists: lists, hub: hub, logger: logger}
}

// Connect: WS /ws/list/{list_id}. Подключиться может только тот, кому виден список;
// проверка делается до апгрейда, чтобы отказ пришел обычным HTTP-ответом.
func (h *CollabHandler) Connect(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r)

	listID, err := idParam(r, "list_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.lists.Authorize(r.Context(), u, listID, access.View); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	collab.Upgrade(w, r, h.hub, listID, h.logger)
}
