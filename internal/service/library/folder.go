package library

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"medialib/internal/config"
	"medialib/internal/domain"
	"medialib/internal/domain/models"
	"medialib/internal/domain/repositories"
	"medialib/internal/domain/services"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// folderService implements the folder mutation protocols.
//
// Each protocol is a linear sequence of remote calls. There is no per-folder
// lock: two requests for the same folder may race and the last terminal event
// wins in the store. The uniqueness and emptiness checks are separate remote
// round-trips from the write they guard, so concurrent requests can both pass
// them.
type folderService struct {
	docs    repositories.FolderDocumentStore
	store   *FolderStore
	bus     *EventBus
	metrics *Metrics
	logger  *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	docs repositories.FolderDocumentStore,
	store *FolderStore,
	bus *EventBus,
	metrics *Metrics,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		docs:    docs,
		store:   store,
		bus:     bus,
		metrics: metrics,
		logger:  logger,
	}
}

var folderNameRules = []validation.Rule{
	validation.Required.Error("folder name is required"),
	validation.Length(1, config.MaxFolderNameLength),
	validation.Match(regexp.MustCompile(`^[^/]+$`)).Error("folder name cannot contain slashes"),
}

// FetchFolders loads every non-draft folder into the store
func (s *folderService) FetchFolders(ctx context.Context) error {
	s.store.BeginFetch()

	folders, err := s.docs.FetchAll(ctx)
	if err != nil {
		err = domain.NewRemoteError(err)
		info := domain.ToErrorInfo(err)
		s.store.FailFetch(info)
		s.metrics.observeOperation("fetch", err)
		s.bus.Publish(Event{Kind: EventFetchError, Error: info})
		s.logger.Error("folder fetch failed", "error", err)
		return err
	}

	s.store.ApplyFetch(folders)
	s.metrics.observeOperation("fetch", nil)
	s.metrics.setStored(s.store.Len())
	s.bus.Publish(Event{Kind: EventFetchComplete, Folders: folders})

	s.logger.Info("folders fetched", "count", len(folders))
	return nil
}

// CreateFolder creates a folder:
//  1. count siblings with the same name in the parent scope
//  2. reject with a conflict if any exist
//  3. create the document with a weak parent reference
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	s.store.BeginCreate()

	folder, err := s.createFolder(ctx, req)
	s.metrics.observeOperation("create", err)
	if err != nil {
		info := domain.ToErrorInfo(err)
		s.store.FailCreate(info)
		s.bus.Publish(Event{Kind: EventCreateError, Error: info})
		s.logger.Warn("folder create failed", "name", req.Name, "error", err)
		return nil, err
	}

	s.store.ApplyCreate(*folder)
	s.metrics.setStored(s.store.Len())
	s.bus.Publish(Event{Kind: EventCreateComplete, FolderID: folder.ID, Folder: folder})

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentRef(),
	)
	return folder, nil
}

func (s *folderService) createFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.ParentID = normalizeParent(req.ParentID)

	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, folderNameRules...),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if err := s.checkFolderName(ctx, req.Name, req.ParentID, ""); err != nil {
		return nil, err
	}

	folder, err := s.docs.Create(ctx, req.Name, req.ParentID)
	if err != nil {
		return nil, domain.NewRemoteError(err)
	}
	return folder, nil
}

// RenameFolder renames a folder within its current parent scope
func (s *folderService) RenameFolder(ctx context.Context, req *services.RenameFolderRequest) (*models.Folder, error) {
	item, ok := s.store.Item(req.FolderID)
	if !ok {
		return nil, s.unknownFolder(EventUpdateError, "rename", req.FolderID)
	}

	s.store.BeginMutation(req.FolderID)

	folder, err := s.renameFolder(ctx, item.Folder, req)
	s.metrics.observeOperation("rename", err)
	if err != nil {
		return nil, s.failMutation(EventUpdateError, req.FolderID, err)
	}

	s.store.ApplyUpdate(*folder)

	// Edit dialogs are keyed by folder id
	closeID := req.CloseDialogID
	if closeID == "" {
		closeID = folder.ID
	}
	s.bus.Publish(Event{
		Kind:           EventUpdateComplete,
		FolderID:       folder.ID,
		Folder:         folder,
		CloseDialogIDs: []string{closeID},
	})

	s.logger.Info("folder renamed", "id", folder.ID, "name", folder.Name)
	return folder, nil
}

func (s *folderService) renameFolder(ctx context.Context, current models.Folder, req *services.RenameFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, folderNameRules...),
	); err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	if err := s.checkFolderName(ctx, req.Name, current.ParentID, current.ID); err != nil {
		return nil, err
	}

	folder, err := s.docs.SetName(ctx, current.ID, req.Name)
	if err != nil {
		return nil, domain.NewRemoteError(err)
	}
	return folder, nil
}

// MoveFolder sets or unsets the parent reference of a folder.
// No cycle check happens here; see MoveTargets.
func (s *folderService) MoveFolder(ctx context.Context, req *services.MoveFolderRequest) (*models.Folder, error) {
	if _, ok := s.store.Item(req.FolderID); !ok {
		return nil, s.unknownFolder(EventMoveError, "move", req.FolderID)
	}

	s.store.BeginMutation(req.FolderID)

	var (
		folder *models.Folder
		err    error
	)
	if parentID := normalizeParent(req.ParentID); parentID != nil {
		s.logger.Debug("moving folder to new parent", "folder_id", req.FolderID, "parent_id", *parentID)
		folder, err = s.docs.SetParent(ctx, req.FolderID, *parentID)
	} else {
		s.logger.Debug("moving folder to root", "folder_id", req.FolderID)
		folder, err = s.docs.UnsetParent(ctx, req.FolderID)
	}
	if err != nil {
		err = domain.NewRemoteError(err)
	}
	s.metrics.observeOperation("move", err)
	if err != nil {
		return nil, s.failMutation(EventMoveError, req.FolderID, err)
	}

	s.store.ApplyMove(*folder)

	closeIDs := []string{MoveDialogID}
	if req.CloseDialogID != "" {
		closeIDs = []string{req.CloseDialogID, MoveDialogID}
	}
	s.bus.Publish(Event{
		Kind:           EventMoveComplete,
		FolderID:       folder.ID,
		Folder:         folder,
		CloseDialogIDs: closeIDs,
	})

	s.logger.Info("folder moved", "id", folder.ID, "parent_id", folder.ParentRef())
	return folder, nil
}

// DeleteFolder deletes an empty folder:
//  1. count assets in the folder, fail if any
//  2. count subfolders, fail if any
//  3. delete the document
//
// Each step gates the next.
func (s *folderService) DeleteFolder(ctx context.Context, req *services.DeleteFolderRequest) error {
	if !s.store.BeginDelete(req.FolderID) {
		return s.unknownFolder(EventDeleteError, "delete", req.FolderID)
	}

	err := s.deleteFolder(ctx, req.FolderID)
	s.metrics.observeOperation("delete", err)
	if err != nil {
		return s.failMutation(EventDeleteError, req.FolderID, err)
	}

	s.store.ApplyDelete(req.FolderID)
	s.metrics.setStored(s.store.Len())

	var closeIDs []string
	if req.CloseDialogID != "" {
		closeIDs = []string{req.CloseDialogID}
	}
	s.bus.Publish(Event{
		Kind:           EventDeleteComplete,
		FolderID:       req.FolderID,
		CloseDialogIDs: closeIDs,
	})

	s.logger.Info("folder deleted", "id", req.FolderID)
	return nil
}

func (s *folderService) deleteFolder(ctx context.Context, folderID string) error {
	assetCount, err := s.docs.CountAssets(ctx, folderID)
	if err != nil {
		return domain.NewRemoteError(err)
	}
	if assetCount > 0 {
		return &domain.NonEmptyFolderError{FolderID: folderID, Kind: domain.NonEmptyAssets, Count: assetCount}
	}

	subfolderCount, err := s.docs.CountChildren(ctx, folderID)
	if err != nil {
		return domain.NewRemoteError(err)
	}
	if subfolderCount > 0 {
		return &domain.NonEmptyFolderError{FolderID: folderID, Kind: domain.NonEmptySubfolders, Count: subfolderCount}
	}

	if err := s.docs.Delete(ctx, folderID); err != nil {
		return domain.NewRemoteError(err)
	}
	return nil
}

// checkFolderName fails with a ConflictError if another folder in the same
// parent scope already has name. excludeID leaves the renamed folder out.
func (s *folderService) checkFolderName(ctx context.Context, name string, parentID *string, excludeID string) error {
	count, err := s.docs.CountByName(ctx, name, parentID, excludeID)
	if err != nil {
		return domain.NewRemoteError(fmt.Errorf("check folder name: %w", err))
	}
	if count > 0 {
		return &domain.ConflictError{
			Message:      "a folder with this name already exists in this location",
			ResourceType: "folder",
			ResourceID:   excludeID,
		}
	}
	return nil
}

func (s *folderService) failMutation(kind EventKind, folderID string, err error) error {
	info := domain.ToErrorInfo(err)
	s.store.FailMutation(folderID, info)
	s.bus.Publish(Event{Kind: kind, FolderID: folderID, Error: info})
	s.logger.Warn("folder mutation failed", "kind", kind, "folder_id", folderID, "error", err)
	return err
}

func (s *folderService) unknownFolder(kind EventKind, operation, folderID string) error {
	err := &domain.NotFoundError{Message: fmt.Sprintf("folder %s not found", folderID)}
	s.metrics.observeOperation(operation, err)
	s.bus.Publish(Event{Kind: kind, FolderID: folderID, Error: domain.ToErrorInfo(err)})
	return err
}

// normalizeParent maps "", the root sentinel and the see-all sentinel to nil (root scope)
func normalizeParent(parentID *string) *string {
	if parentID == nil || *parentID == "" || models.IsSentinelID(*parentID) {
		return nil
	}
	p := *parentID
	return &p
}
