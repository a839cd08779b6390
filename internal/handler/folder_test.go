package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"medialib/internal/domain"
	"medialib/internal/domain/models"
	"medialib/internal/domain/services"
	"medialib/internal/httputil"
	"medialib/internal/service/library"
)

// stubFolderService records requests and returns canned results.
type stubFolderService struct {
	err error

	lastMove   *services.MoveFolderRequest
	lastRename *services.RenameFolderRequest
	lastDelete *services.DeleteFolderRequest

	// ctxErr is ctx.Err() as seen by the last mutation call
	ctxErr error
}

func (s *stubFolderService) FetchFolders(ctx context.Context) error { return s.err }

func (s *stubFolderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Folder{ID: "new", Name: req.Name, ParentID: req.ParentID}, nil
}

func (s *stubFolderService) RenameFolder(ctx context.Context, req *services.RenameFolderRequest) (*models.Folder, error) {
	s.lastRename = req
	s.ctxErr = ctx.Err()
	if s.err != nil {
		return nil, s.err
	}
	return &models.Folder{ID: req.FolderID, Name: req.Name}, nil
}

func (s *stubFolderService) MoveFolder(ctx context.Context, req *services.MoveFolderRequest) (*models.Folder, error) {
	s.lastMove = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Folder{ID: req.FolderID, ParentID: req.ParentID}, nil
}

func (s *stubFolderService) DeleteFolder(ctx context.Context, req *services.DeleteFolderRequest) error {
	s.lastDelete = req
	s.ctxErr = ctx.Err()
	return s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parent(id string) *string { return &id }

func newTestMux(svc services.FolderService, store *library.FolderStore) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterRoutes(mux,
		NewFolderHandler(svc, store, discardLogger()),
		NewTreeHandler(store, discardLogger()),
		nil,
	)
	return mux
}

func do(t *testing.T, mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) httputil.ProblemDetail {
	t.Helper()
	var problem httputil.ProblemDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decode problem: %v (body %q)", err, rec.Body.String())
	}
	return problem
}

func TestCreateFolder_Handler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"created", `{"name":"Photos"}`, nil, http.StatusCreated},
		{"bad json", `{"name":`, nil, http.StatusBadRequest},
		{"unknown field", `{"name":"x","color":"red"}`, nil, http.StatusBadRequest},
		{"conflict", `{"name":"Photos"}`, &domain.ConflictError{Message: "a folder with this name already exists in this location"}, http.StatusConflict},
		{"validation", `{"name":""}`, &domain.ValidationError{Message: "name: folder name is required."}, http.StatusBadRequest},
		{"remote failure", `{"name":"x"}`, &domain.RemoteError{Message: "unavailable", Status: http.StatusBadGateway}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&stubFolderService{err: tt.err}, library.NewFolderStore())
			rec := do(t, mux, http.MethodPost, "/api/folders", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestDeleteFolder_NonEmpty(t *testing.T) {
	svc := &stubFolderService{err: &domain.NonEmptyFolderError{FolderID: "a", Kind: domain.NonEmptyAssets, Count: 2}}
	mux := newTestMux(svc, library.NewFolderStore())

	rec := do(t, mux, http.MethodDelete, "/api/folders/a?close_dialog_id=confirm", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	problem := decodeProblem(t, rec)
	if problem.Detail != "cannot delete folder with 2 asset(s)" {
		t.Errorf("Detail = %q", problem.Detail)
	}
	if problem.FolderID != "a" {
		t.Errorf("FolderID = %q, want a", problem.FolderID)
	}
	if svc.lastDelete == nil || svc.lastDelete.CloseDialogID != "confirm" {
		t.Errorf("delete request = %+v, want close dialog id confirm", svc.lastDelete)
	}
}

func TestDeleteFolder_NoContent(t *testing.T) {
	mux := newTestMux(&stubFolderService{}, library.NewFolderStore())

	rec := do(t, mux, http.MethodDelete, "/api/folders/a", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestMutations_IgnoreClientCancel(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"delete", http.MethodDelete, "/api/folders/a", "", http.StatusNoContent},
		{"rename", http.MethodPatch, "/api/folders/a", `{"name":"Trips"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubFolderService{}
			mux := newTestMux(svc, library.NewFolderStore())

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			req := httptest.NewRequest(tt.method, tt.path, body).WithContext(ctx)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if svc.ctxErr != nil {
				t.Errorf("service ctx.Err() = %v, want nil after client cancel", svc.ctxErr)
			}
		})
	}
}

func TestRenameFolder_Handler(t *testing.T) {
	svc := &stubFolderService{}
	mux := newTestMux(svc, library.NewFolderStore())

	rec := do(t, mux, http.MethodPatch, "/api/folders/abc", `{"name":"Trips","close_dialog_id":"edit"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.lastRename.FolderID != "abc" || svc.lastRename.Name != "Trips" || svc.lastRename.CloseDialogID != "edit" {
		t.Errorf("rename request = %+v", svc.lastRename)
	}
}

func TestMoveFolder_Handler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantParent *string
	}{
		{"into folder", `{"parent_id":"p"}`, http.StatusOK, parent("p")},
		{"explicit null moves to root", `{"parent_id":null}`, http.StatusOK, nil},
		{"missing parent_id", `{}`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubFolderService{}
			mux := newTestMux(svc, library.NewFolderStore())

			rec := do(t, mux, http.MethodPost, "/api/folders/a/move", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if svc.lastMove != nil {
					t.Error("service called for invalid request")
				}
				return
			}

			got := svc.lastMove.ParentID
			switch {
			case tt.wantParent == nil && got != nil:
				t.Errorf("ParentID = %q, want nil", *got)
			case tt.wantParent != nil && (got == nil || *got != *tt.wantParent):
				t.Errorf("ParentID = %v, want %q", got, *tt.wantParent)
			}
		})
	}
}

func TestSetPicked_Handler(t *testing.T) {
	store := library.NewFolderStore()
	store.ApplyCreate(models.Folder{ID: "a", Name: "A"})
	mux := newTestMux(&stubFolderService{}, store)

	rec := do(t, mux, http.MethodPut, "/api/folders/a/picked", `{"picked":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if item, _ := store.Item("a"); !item.Picked {
		t.Error("Picked = false after request")
	}

	rec = do(t, mux, http.MethodPut, "/api/folders/missing/picked", `{"picked":true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	mux := newTestMux(&stubFolderService{}, library.NewFolderStore())

	rec := do(t, mux, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["fetched"] != false {
		t.Errorf("fetched = %v, want false before first fetch", body["fetched"])
	}
}
