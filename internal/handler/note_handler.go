package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"notes-sync-server/internal/domain"
	"notes-sync-server/internal/service"
	"notes-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type NoteHandler struct {
	store    *service.NoteStore
	validate *validator.Validate
}

func NewNoteHandler(store *service.NoteStore) *NoteHandler {
	return &NoteHandler{
		store:    store,
		validate: validator.New(),
	}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "true" || h.store.State() == domain.StoreUninitialized {
		if _, err := h.store.FetchAll(r.Context()); err != nil {
			response.BadGateway(w, "Failed to load notes")
			return
		}
	}

	response.JSON(w, http.StatusOK, h.store.Notes())
}

func (h *NoteHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.FetchAll(r.Context())
	if err != nil {
		response.BadGateway(w, "Failed to load notes")
		return
	}

	response.JSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.resolve(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err, "Failed to load note")
		return
	}

	response.JSON(w, http.StatusOK, note)
}

func (h *NoteHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	var req domain.UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, titleError(err).Error())
		return
	}

	note, err := h.resolve(r.Context(), noteID)
	if err != nil {
		writeStoreError(w, err, "Failed to load note")
		return
	}

	if err := h.store.UpdateTitle(r.Context(), note, req.Title); err != nil {
		writeStoreError(w, err, "Failed to update note")
		return
	}

	updated, ok := h.store.Find(note.Identifier())
	if !ok {
		updated = note
		updated.Title = req.Title
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]

	note, err := h.resolve(r.Context(), noteID)
	if err != nil {
		writeStoreError(w, err, "Failed to load note")
		return
	}

	if err := h.store.Delete(r.Context(), note.ID); err != nil {
		writeStoreError(w, err, "Failed to delete note")
		return
	}

	response.Message(w, "Note deleted successfully")
}

// resolve looks id up in the in-memory list first and falls back to the
// collection, so a note is reachable even when the last reload failed.
func (h *NoteHandler) resolve(ctx context.Context, id string) (domain.Note, error) {
	if note, ok := h.store.Find(id); ok {
		return note, nil
	}
	return h.store.Get(ctx, id)
}

func titleError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			if fe.Tag() == "max" {
				return domain.ErrTitleTooLong
			}
		}
	}
	return domain.ErrEmptyTitle
}

func writeStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrMissingIdentifier):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrEmptyTitle), errors.Is(err, domain.ErrTitleTooLong):
		response.BadRequest(w, err.Error())
	case service.IsNotFound(err):
		response.NotFound(w, "Note not found")
	default:
		response.BadGateway(w, fallback)
	}
}
