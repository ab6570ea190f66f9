package internal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/draftdeck/internal/auth"
	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/llm"
	"github.com/starford/draftdeck/internal/prompts"
	"github.com/starford/draftdeck/internal/sse"
	"github.com/starford/draftdeck/internal/storage"
	"github.com/starford/draftdeck/internal/store"
)

// components are the services shared by the HTTP and MCP front ends.
type components struct {
	db       *store.DB
	prompts  *prompts.Set
	accounts *auth.Service
	docs     *documents.Service
}

func (c *components) Close() error {
	return c.db.Close()
}

// newArchive builds the export archive; nil means exports are not archived.
func newArchive(ctx context.Context, cfg ExportConfig) (storage.Provider, error) {
	switch cfg.Storage {
	case ExportStorageFS:
		return storage.NewFS(cfg.FS.Path)
	case ExportStorageS3:
		return storage.NewS3(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
	default:
		return nil, nil
	}
}

func buildComponents(ctx context.Context, cfg *Config, logger *slog.Logger, events documents.Publisher) (*components, error) {
	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	provider, err := llm.New(cfg.LLM.Settings(), logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init llm: %w", err)
	}

	set, err := prompts.New(cfg.Prompts.Dir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init prompts: %w", err)
	}

	tokens, err := auth.NewTokens(cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.TokenTTL())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init auth: %w", err)
	}

	archive, err := newArchive(ctx, cfg.Export)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init export storage: %w", err)
	}

	opts := []documents.Option{
		documents.WithConcurrency(cfg.LLM.Concurrency),
		documents.WithLogger(logger),
	}
	if archive != nil {
		opts = append(opts, documents.WithArchive(archive))
	}
	if events != nil {
		opts = append(opts, documents.WithEvents(events))
	}

	logger.Info("Components ready",
		slog.String("db_driver", cfg.Database.Driver),
		slog.String("llm_provider", provider.Name()),
		slog.String("export_storage", cfg.Export.Storage),
		slog.String("prompts_dir", cfg.Prompts.Dir))

	return &components{
		db:       db,
		prompts:  set,
		accounts: auth.NewService(db, tokens),
		docs:     documents.NewService(db, provider, set, opts...),
	}, nil
}

var _ documents.Publisher = (*sse.Broker)(nil)
