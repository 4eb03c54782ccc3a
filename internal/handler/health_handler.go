package handler

import (
	"net/http"

	"notes-sync-server/internal/service"
	"notes-sync-server/pkg/response"
)

type HealthHandler struct {
	store *service.NoteStore
}

func NewHealthHandler(store *service.NoteStore) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"service":     "notes-sync-server",
		"store_state": h.store.State(),
		"notes":       len(h.store.Notes()),
	})
}
