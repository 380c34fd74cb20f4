// Package catalog implements browsing of the file catalog: listing with the
// joined category, client-side style filtering, downloads with counter
// bookkeeping and deletion of both the stored object and its metadata row.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/basit/fileshare-catalog/common"
	"github.com/basit/fileshare-catalog/logging"
	"github.com/basit/fileshare-catalog/models"
	"github.com/basit/fileshare-catalog/repositories"
	"github.com/basit/fileshare-catalog/storage"
)

// Requester identifies who triggered a download, for the audit trail.
type Requester struct {
	UserID    *uuid.UUID
	IPAddress string
	UserAgent string
}

// Download is the outcome of a download action: the record with its
// counter already incremented and the URL the browser should fetch.
type Download struct {
	File models.File
	URL  string
}

type Service struct {
	files   repositories.FileRepository
	events  repositories.DownloadEventRepository
	storage storage.ObjectStorage
	logger  logging.Logger
}

func NewService(files repositories.FileRepository, events repositories.DownloadEventRepository,
	store storage.ObjectStorage, logger logging.Logger) *Service {
	return &Service{files: files, events: events, storage: store, logger: logger}
}

// List returns all file records, newest first, each with its category.
func (s *Service) List(ctx context.Context) ([]models.File, error) {
	files, err := s.files.ListWithCategory(ctx)
	if err != nil {
		s.logger.Error(ctx, "error fetching files", "error", err)
		return nil, common.NewUserError(common.ErrInternal, "Failed to load the file list", err)
	}
	return files, nil
}

// Search lists the catalog and applies flt.
func (s *Service) Search(ctx context.Context, flt Filter) ([]models.File, error) {
	files, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Apply(files, flt), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.File, error) {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, err)
	}
	return f, nil
}

// Download resolves the URL for the file, increments its stored download
// counter by one and records a download event.
func (s *Service) Download(ctx context.Context, id uuid.UUID, req Requester) (*Download, error) {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(ctx, err)
	}
	return s.download(ctx, f, req)
}

// DownloadBySlug is Download addressed by the public share slug.
func (s *Service) DownloadBySlug(ctx context.Context, slug string, req Requester) (*Download, error) {
	f, err := s.files.GetBySlug(ctx, slug)
	if err != nil {
		return nil, s.lookupError(ctx, err)
	}
	return s.download(ctx, f, req)
}

func (s *Service) download(ctx context.Context, f *models.File, req Requester) (*Download, error) {
	url, err := s.storage.DownloadURL(ctx, f.StoragePath, f.OriginalName)
	if err != nil {
		s.logger.Error(ctx, "error resolving download url", "file_id", f.ID, "path", f.StoragePath, "error", err)
		return nil, common.NewUserError(common.ErrInternal, "Download failed", err)
	}

	if err := s.files.IncrementDownloads(ctx, f.ID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewUserError(common.ErrNotFound, "File not found", err)
		}
		s.logger.Error(ctx, "error updating download count", "file_id", f.ID, "error", err)
		return nil, common.NewUserError(common.ErrInternal, "Download failed", err)
	}
	f.DownloadCount++

	event := &models.DownloadEvent{
		FileID:    f.ID,
		UserID:    req.UserID,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warn(ctx, "error recording download event", "file_id", f.ID, "error", err)
	}

	return &Download{File: *f, URL: url}, nil
}

// Delete removes the stored object and then the metadata row. A storage
// failure is logged and does not prevent the row deletion; a row deletion
// failure is returned and may leave the object orphaned.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return s.lookupError(ctx, err)
	}

	if err := s.storage.Remove(ctx, []string{f.StoragePath}); err != nil {
		s.logger.Error(ctx, "error deleting from storage", "file_id", f.ID, "path", f.StoragePath, "error", err)
	}

	if err := s.files.DeleteByID(ctx, f.ID); err != nil {
		s.logger.Error(ctx, "error deleting file row", "file_id", f.ID, "error", err)
		return common.NewUserError(common.ErrInternal, "Delete failed", err)
	}

	s.logger.Info(ctx, "file deleted", "file_id", f.ID, "name", f.OriginalName)
	return nil
}

// Stats lists the catalog and aggregates it.
func (s *Service) Stats(ctx context.Context) (Stats, []models.File, error) {
	files, err := s.List(ctx)
	if err != nil {
		return Stats{}, nil, err
	}
	return ComputeStats(files), files, nil
}

func (s *Service) lookupError(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NewUserError(common.ErrNotFound, "File not found", err)
	}
	s.logger.Error(ctx, "error fetching file", "error", err)
	return common.NewUserError(common.ErrInternal, "Failed to load file", fmt.Errorf("lookup: %w", err))
}
