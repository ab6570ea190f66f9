package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/draftdeck/internal/models"
	"github.com/starford/draftdeck/internal/parser"
)

// Search finds the owner's sections whose title or content matches query.
func (db *DB) Search(ctx context.Context, ownerID int64, query string, limit int) ([]models.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.SearchHit{}, nil
	}
	if db.driver == DriverSQLite && ftsEnabled {
		return db.searchFTS(ctx, ownerID, query, limit)
	}
	return db.searchLike(ctx, ownerID, query, limit)
}

// searchLike is a case-insensitive substring match usable on every driver.
func (db *DB) searchLike(ctx context.Context, ownerID int64, query string, limit int) ([]models.SearchHit, error) {
	like := "%" + strings.ToLower(query) + "%"
	hits := []models.SearchHit{}
	err := db.conn.SelectContext(ctx, &hits, db.q(`
		SELECT p.id AS project_id,
		       p.title AS project_title,
		       s.id AS section_id,
		       s.title AS section_title,
		       substr(s.content, 1, 200) AS snippet
		FROM sections s
		JOIN projects p ON p.id = s.project_id
		WHERE p.owner_id = ? AND (LOWER(s.title) LIKE ? OR LOWER(s.content) LIKE ?)
		ORDER BY p.id, s.position, s.id
		LIMIT ?`), ownerID, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	for i := range hits {
		hits[i].Snippet = parser.PlainText(hits[i].Snippet)
	}
	return hits, nil
}
