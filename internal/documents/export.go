package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/exporter"
	"github.com/starford/draftdeck/internal/storage"
)

// ErrExportNotFound is returned for an archived export that does not exist.
var ErrExportNotFound = fmt.Errorf("export %w", apperr.ErrNotFound)

// Export renders a project. When an archive is configured the file is also
// stored there; archive failures are logged and do not fail the export.
func (s *Service) Export(ctx context.Context, ownerID, projectID int64) (*exporter.File, error) {
	p, err := s.repo.ProjectForOwner(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}
	f, err := exporter.Export(p)
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		key := storage.ExportKey(p.ID, f.Ext())
		if err := s.archive.Put(ctx, key, f.ContentType, f.Data); err != nil {
			s.logger.Warn("export archive failed",
				slog.Int64("project_id", p.ID),
				slog.String("key", key),
				slog.String("error", err.Error()))
		} else {
			s.logger.Info("export archived", slog.Int64("project_id", p.ID), slog.String("key", key))
		}
	}
	return f, nil
}

// Archived lists previously archived exports of a project.
func (s *Service) Archived(ctx context.Context, ownerID, projectID int64) ([]storage.Object, error) {
	if _, err := s.repo.ProjectForOwner(ctx, projectID, ownerID); err != nil {
		return nil, err
	}
	if s.archive == nil {
		return []storage.Object{}, nil
	}
	return s.archive.List(ctx, storage.ExportPrefix(projectID))
}

// ArchivedFile loads one archived export of a project by its file name
// (the last element of the key returned by Archived).
func (s *Service) ArchivedFile(ctx context.Context, ownerID, projectID int64, name string) (*exporter.File, error) {
	if _, err := s.repo.ProjectForOwner(ctx, projectID, ownerID); err != nil {
		return nil, err
	}
	if s.archive == nil || name == "" || name != path.Base(name) || strings.Contains(name, "\\") {
		return nil, ErrExportNotFound
	}
	var contentType string
	switch path.Ext(name) {
	case ".docx":
		contentType = exporter.ContentTypeDocx
	case ".pptx":
		contentType = exporter.ContentTypePptx
	default:
		return nil, ErrExportNotFound
	}
	data, err := s.archive.Get(ctx, storage.ExportPrefix(projectID)+name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrExportNotFound
		}
		return nil, err
	}
	return &exporter.File{Name: name, ContentType: contentType, Data: data}, nil
}

// purgeArchive removes every archived export of a deleted project.
func (s *Service) purgeArchive(ctx context.Context, projectID int64) {
	if s.archive == nil {
		return
	}
	objs, err := s.archive.List(ctx, storage.ExportPrefix(projectID))
	if err != nil {
		s.logger.Warn("export archive list failed",
			slog.Int64("project_id", projectID),
			slog.String("error", err.Error()))
		return
	}
	for _, o := range objs {
		if err := s.archive.Delete(ctx, o.Key); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Warn("export archive delete failed",
				slog.Int64("project_id", projectID),
				slog.String("key", o.Key),
				slog.String("error", err.Error()))
		}
	}
}
