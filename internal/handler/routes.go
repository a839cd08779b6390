package handler

import "net/http"

// RegisterRoutes mounts the folder API on mux (Go 1.22+ patterns)
func RegisterRoutes(mux *http.ServeMux, folders *FolderHandler, tree *TreeHandler, events *EventsHandler) {
	mux.HandleFunc("GET /health", folders.HealthCheck)

	// Store and mutations
	mux.HandleFunc("GET /api/folders", folders.GetState)
	mux.HandleFunc("POST /api/folders", folders.CreateFolder)
	mux.HandleFunc("POST /api/folders/fetch", folders.FetchFolders)
	mux.HandleFunc("PATCH /api/folders/{id}", folders.RenameFolder)
	mux.HandleFunc("POST /api/folders/{id}/move", folders.MoveFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", folders.DeleteFolder)
	mux.HandleFunc("PUT /api/folders/{id}/picked", folders.SetPicked)
	mux.HandleFunc("DELETE /api/folders/{id}/error", folders.ClearError)

	// Derived views and tree state
	mux.HandleFunc("GET /api/folders/tree", tree.GetTree)
	mux.HandleFunc("GET /api/folders/options", tree.GetOptions)
	mux.HandleFunc("GET /api/folders/current", tree.GetCurrent)
	mux.HandleFunc("PUT /api/folders/current", tree.SetCurrent)
	mux.HandleFunc("POST /api/folders/{id}/expand", tree.Expand)
	mux.HandleFunc("POST /api/folders/{id}/collapse", tree.Collapse)
	mux.HandleFunc("POST /api/folders/{id}/toggle", tree.Toggle)
	mux.HandleFunc("GET /api/folders/{id}/breadcrumbs", tree.GetBreadcrumbs)
	mux.HandleFunc("GET /api/folders/{id}/move-targets", tree.GetMoveTargets)
	mux.HandleFunc("GET /api/folders/{id}/option", tree.GetOption)

	if events != nil {
		mux.HandleFunc("GET /api/folders/events", events.Stream)
	}
}
