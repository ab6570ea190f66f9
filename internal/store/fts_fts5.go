//go:build sqlite_fts5

package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/starford/draftdeck/internal/models"
)

const ftsEnabled = true

// initFTS keeps an external-content FTS5 table in step with sections via triggers.
func initFTS(ctx context.Context, conn *sqlx.DB) error {
	_, err := conn.ExecContext(ctx, `
		CREATE VIRTUAL TABLE IF NOT EXISTS sections_fts USING fts5(
			title,
			content,
			content = 'sections',
			content_rowid = 'id',
			tokenize = 'unicode61 remove_diacritics 2'
		);

		CREATE TRIGGER IF NOT EXISTS sections_fts_ai AFTER INSERT ON sections BEGIN
			INSERT INTO sections_fts (rowid, title, content) VALUES (new.id, new.title, new.content);
		END;

		CREATE TRIGGER IF NOT EXISTS sections_fts_ad AFTER DELETE ON sections BEGIN
			INSERT INTO sections_fts (sections_fts, rowid, title, content) VALUES ('delete', old.id, old.title, old.content);
		END;

		CREATE TRIGGER IF NOT EXISTS sections_fts_au AFTER UPDATE ON sections BEGIN
			INSERT INTO sections_fts (sections_fts, rowid, title, content) VALUES ('delete', old.id, old.title, old.content);
			INSERT INTO sections_fts (rowid, title, content) VALUES (new.id, new.title, new.content);
		END;

		INSERT INTO sections_fts (sections_fts) VALUES ('rebuild');
	`)
	return err
}

func (db *DB) searchFTS(ctx context.Context, ownerID int64, query string, limit int) ([]models.SearchHit, error) {
	hits := []models.SearchHit{}
	err := db.conn.SelectContext(ctx, &hits, `
		SELECT p.id AS project_id,
		       p.title AS project_title,
		       s.id AS section_id,
		       s.title AS section_title,
		       snippet(sections_fts, 1, '<b>', '</b>', '...', 32) AS snippet
		FROM sections_fts
		JOIN sections s ON s.id = sections_fts.rowid
		JOIN projects p ON p.id = s.project_id
		WHERE sections_fts MATCH ? AND p.owner_id = ?
		ORDER BY rank
		LIMIT ?`, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return hits, nil
}
