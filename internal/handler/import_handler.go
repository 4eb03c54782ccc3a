package handler

import (
	"net/http"

	"notes-sync-server/internal/service"
	"notes-sync-server/internal/webclient"
	"notes-sync-server/pkg/response"
)

type ImportHandler struct {
	bootstrap *service.BootstrapService
}

func NewImportHandler(bootstrap *service.BootstrapService) *ImportHandler {
	return &ImportHandler{bootstrap: bootstrap}
}

func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	report, err := h.bootstrap.EnsureImported(r.Context())
	if err != nil {
		if kind := webclient.KindOf(err); kind != "" {
			response.BadGateway(w, "Notes API request failed: "+string(kind))
			return
		}
		response.InternalError(w, "Import failed")
		return
	}

	if report == nil {
		response.Message(w, "Notes already imported")
		return
	}

	response.JSON(w, http.StatusOK, report)
}

func (h *ImportHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.bootstrap.Status(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to read sync flag")
		return
	}

	response.JSON(w, http.StatusOK, status)
}
