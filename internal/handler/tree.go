package handler

import (
	"log/slog"
	"net/http"

	"medialib/internal/domain/models"
	"medialib/internal/httputil"
	"medialib/internal/service/library"
)

// TreeHandler serves the derived tree views and tree UI state
type TreeHandler struct {
	store  *library.FolderStore
	logger *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(store *library.FolderStore, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		store:  store,
		logger: logger,
	}
}

// GetTree returns the flattened rows of the expanded tree
// GET /api/folders/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.store.Tree())
}

// Expand opens a folder in the tree
// POST /api/folders/{id}/expand
func (h *TreeHandler) Expand(w http.ResponseWriter, r *http.Request) {
	h.store.Expand(r.PathValue("id"))
	httputil.RespondJSON(w, http.StatusOK, h.store.Tree())
}

// Collapse closes a folder in the tree
// POST /api/folders/{id}/collapse
func (h *TreeHandler) Collapse(w http.ResponseWriter, r *http.Request) {
	h.store.Collapse(r.PathValue("id"))
	httputil.RespondJSON(w, http.StatusOK, h.store.Tree())
}

// Toggle flips a folder's expansion
// POST /api/folders/{id}/toggle
func (h *TreeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.store.ToggleExpanded(r.PathValue("id"))
	httputil.RespondJSON(w, http.StatusOK, h.store.Tree())
}

// GetBreadcrumbs returns the root-first trail to a folder
// GET /api/folders/{id}/breadcrumbs
func (h *TreeHandler) GetBreadcrumbs(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, nonNil(h.store.Breadcrumbs(r.PathValue("id"))))
}

// GetMoveTargets returns every folder the given folder may be moved into
// GET /api/folders/{id}/move-targets
func (h *TreeHandler) GetMoveTargets(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := h.store.Item(id); !ok {
		httputil.RespondProblem(w, folderNotFound(id))
		return
	}
	httputil.RespondJSON(w, http.StatusOK, h.store.MoveTargets(id))
}

// GetOptions returns the indented picker options
// GET /api/folders/options
func (h *TreeHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	options := h.store.SelectOptions()
	if options == nil {
		options = []models.SelectOption{}
	}
	httputil.RespondJSON(w, http.StatusOK, options)
}

// GetOption returns the picker option of one folder
// GET /api/folders/{id}/option
func (h *TreeHandler) GetOption(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	option := h.store.SelectOption(id)
	if option == nil {
		httputil.RespondProblem(w, folderNotFound(id))
		return
	}
	httputil.RespondJSON(w, http.StatusOK, option)
}

type currentFolderResponse struct {
	FolderID    string              `json:"folder_id"`
	Breadcrumbs []models.FolderItem `json:"breadcrumbs"`
	Children    []models.FolderItem `json:"children"`
}

// GetCurrent returns the current folder with its trail and children
// GET /api/folders/current
func (h *TreeHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.current())
}

type setCurrentBody struct {
	FolderID string `json:"folder_id"`
}

// SetCurrent navigates to a folder or to one of the sentinel ids
// PUT /api/folders/current
func (h *TreeHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	var body setCurrentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if body.FolderID != "" && !models.IsSentinelID(body.FolderID) {
		if _, ok := h.store.Item(body.FolderID); !ok {
			httputil.RespondProblem(w, folderNotFound(body.FolderID))
			return
		}
	}

	h.store.SetCurrentFolder(body.FolderID)
	httputil.RespondJSON(w, http.StatusOK, h.current())
}

func (h *TreeHandler) current() currentFolderResponse {
	return currentFolderResponse{
		FolderID:    h.store.CurrentFolderID(),
		Breadcrumbs: nonNil(h.store.CurrentBreadcrumbs()),
		Children:    nonNil(h.store.ChildFolders()),
	}
}

// nonNil keeps empty lists encoding as [] rather than null
func nonNil(items []models.FolderItem) []models.FolderItem {
	if items == nil {
		return []models.FolderItem{}
	}
	return items
}
