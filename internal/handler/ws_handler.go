package handler

import (
	"encoding/json"
	"net/http"

	"notes-sync-server/internal/service"
	"notes-sync-server/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type WebSocketHandler struct {
	manager  *websocket.Manager
	store    *service.NoteStore
	upgrader ws.Upgrader
	logger   logrus.FieldLogger
}

func NewWebSocketHandler(manager *websocket.Manager, store *service.NoteStore, readBuffer, writeBuffer int, logger logrus.FieldLogger) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		store:   store,
		logger:  logger,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBuffer,
			WriteBufferSize: writeBuffer,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection subscribes the caller to note list reloads, starting with
// a snapshot of the current list.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("failed to upgrade connection")
		return
	}

	client := websocket.NewClient(uuid.New().String(), conn, h.manager)

	// queued before registering: the manager closes Send on rejection
	if snapshot, err := websocket.NewNotesMessage(websocket.TypeNotesSnapshot, h.store.Notes()); err == nil {
		if data, err := json.Marshal(snapshot); err == nil {
			client.Send <- data
		}
	}

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
