//go:build !sqlite_fts5

package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/starford/draftdeck/internal/models"
)

const ftsEnabled = false

// initFTS is a no-op without FTS5; Search falls back to LIKE.
func initFTS(_ context.Context, _ *sqlx.DB) error {
	return nil
}

func (db *DB) searchFTS(ctx context.Context, ownerID int64, query string, limit int) ([]models.SearchHit, error) {
	return db.searchLike(ctx, ownerID, query, limit)
}
