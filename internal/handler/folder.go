package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"medialib/internal/domain/services"
	"medialib/internal/httputil"
	"medialib/internal/service/library"
)

// FolderHandler handles folder mutation requests
type FolderHandler struct {
	folderService services.FolderService
	store         *library.FolderStore
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, store *library.FolderStore, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		store:         store,
		logger:        logger,
	}
}

// HealthCheck reports liveness and whether the first fetch has landed
// GET /health
func (h *FolderHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	state := h.store.State()
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"time":    time.Now(),
		"fetched": state.FetchCount >= 0,
		"folders": len(state.Items),
	})
}

// GetState returns a snapshot of the folder store
// GET /api/folders
func (h *FolderHandler) GetState(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.store.State())
}

// FetchFolders reloads folders from the document store
// POST /api/folders/fetch
func (h *FolderHandler) FetchFolders(w http.ResponseWriter, r *http.Request) {
	if err := h.folderService.FetchFolders(detached(r)); err != nil {
		handleError(w, err, "")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.store.State())
}

// CreateFolder creates a new folder
// POST /api/folders
// Returns 201 if created, 409 if a sibling already has the name
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := h.folderService.CreateFolder(detached(r), &req)
	if err != nil {
		handleError(w, err, "")
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// RenameFolder renames a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req services.RenameFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.FolderID = id

	folder, err := h.folderService.RenameFolder(detached(r), &req)
	if err != nil {
		handleError(w, err, id)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

type moveFolderBody struct {
	ParentID      httputil.OptionalString `json:"parent_id"`
	CloseDialogID string                  `json:"close_dialog_id,omitempty"`
}

// MoveFolder re-parents a folder. parent_id is required; null moves to root.
// POST /api/folders/{id}/move
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body moveFolderBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !body.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "parent_id is required (null moves to root)")
		return
	}

	folder, err := h.folderService.MoveFolder(detached(r), &services.MoveFolderRequest{
		FolderID:      id,
		ParentID:      body.ParentID.Value,
		CloseDialogID: body.CloseDialogID,
	})
	if err != nil {
		handleError(w, err, id)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder (must have no assets and no subfolders)
// DELETE /api/folders/{id}?close_dialog_id=...
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.folderService.DeleteFolder(detached(r), &services.DeleteFolderRequest{
		FolderID:      id,
		CloseDialogID: r.URL.Query().Get("close_dialog_id"),
	})
	if err != nil {
		handleError(w, err, id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type pickedBody struct {
	Picked bool `json:"picked"`
}

// SetPicked marks a folder as picked for a bulk action
// PUT /api/folders/{id}/picked
func (h *FolderHandler) SetPicked(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body pickedBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	item, ok := h.store.Item(id)
	if !ok {
		httputil.RespondProblem(w, folderNotFound(id))
		return
	}
	h.store.SetPicked(id, body.Picked)
	item.Picked = body.Picked

	httputil.RespondJSON(w, http.StatusOK, item)
}

// ClearError drops the error stored on a folder
// DELETE /api/folders/{id}/error
func (h *FolderHandler) ClearError(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.store.Item(id); !ok {
		httputil.RespondProblem(w, folderNotFound(id))
		return
	}
	h.store.ClearError(id)
	w.WriteHeader(http.StatusNoContent)
}

// detached keeps request values but drops cancellation: a protocol that has
// started runs to its terminal event even if the client goes away.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func folderNotFound(id string) httputil.ProblemDetail {
	problem := httputil.NewProblem(http.StatusNotFound, "folder "+id+" not found")
	problem.FolderID = id
	return problem
}
