package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/checksum"
	"github.com/starford/draftdeck/internal/models"
)

func insertSections(ctx context.Context, tx DBTX, projectID int64, sections []models.Section) ([]models.Section, error) {
	out := make([]models.Section, 0, len(sections))
	for _, s := range sections {
		s.ProjectID = projectID
		err := tx.QueryRowxContext(ctx,
			tx.Rebind(`INSERT INTO sections (project_id, title, content, position, is_slide) VALUES (?, ?, ?, ?, ?) RETURNING id`),
			s.ProjectID, s.Title, s.Content, s.Position, s.IsSlide,
		).Scan(&s.ID)
		if err != nil {
			return nil, fmt.Errorf("store: insert section: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Sections returns a project's sections ordered by position, then id.
func (db *DB) Sections(ctx context.Context, projectID int64) ([]models.Section, error) {
	sections := []models.Section{}
	err := db.conn.SelectContext(ctx, &sections,
		db.q(`SELECT `+sectionColumns+` FROM sections WHERE project_id = ? ORDER BY position, id`), projectID)
	if err != nil {
		return nil, fmt.Errorf("store: sections of %d: %w", projectID, err)
	}
	return sections, nil
}

// AddSections appends sections to an existing project.
func (db *DB) AddSections(ctx context.Context, projectID int64, sections []models.Section) ([]models.Section, error) {
	var created []models.Section
	err := db.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		created, err = insertSections(ctx, tx, projectID, sections)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SectionForOwner loads a section whose project belongs to ownerID.
func (db *DB) SectionForOwner(ctx context.Context, sectionID, ownerID int64) (*models.Section, error) {
	var s models.Section
	err := db.conn.GetContext(ctx, &s, db.q(`
		SELECT s.id, s.project_id, s.title, s.content, s.position, s.is_slide
		FROM sections s
		JOIN projects p ON p.id = s.project_id
		WHERE s.id = ? AND p.owner_id = ?`), sectionID, ownerID)
	if err != nil {
		if notFound(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get section %d: %w", sectionID, err)
	}
	return &s, nil
}

// UpdateSectionContent replaces a section's content. When ifMatch is set it
// must match the checksum of the stored content, else apperr.ErrConflict.
func (db *DB) UpdateSectionContent(ctx context.Context, sectionID int64, content, ifMatch string) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		var current string
		err := tx.GetContext(ctx, &current, tx.Rebind(`SELECT content FROM sections WHERE id = ?`), sectionID)
		if err != nil {
			if notFound(err) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("store: read section %d: %w", sectionID, err)
		}
		if !checksum.Matches(ifMatch, current) {
			return fmt.Errorf("store: section %d: %w", sectionID, apperr.ErrConflict)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE sections SET content = ? WHERE id = ?`), content, sectionID); err != nil {
			return fmt.Errorf("store: update section %d: %w", sectionID, err)
		}
		return nil
	})
}

// RecordRefinement stores r and applies its content to the section atomically.
func (db *DB) RecordRefinement(ctx context.Context, r *models.Refinement) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		r.CreatedAt = now()
		err := tx.QueryRowxContext(ctx,
			tx.Rebind(`INSERT INTO refinements (section_id, user_id, prompt, new_content, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id`),
			r.SectionID, r.UserID, r.Prompt, r.NewContent, r.CreatedAt,
		).Scan(&r.ID)
		if err != nil {
			return fmt.Errorf("store: insert refinement: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE sections SET content = ? WHERE id = ?`), r.NewContent, r.SectionID); err != nil {
			return fmt.Errorf("store: apply refinement: %w", err)
		}
		return nil
	})
}

// Refinements lists a section's refinement history, oldest first.
func (db *DB) Refinements(ctx context.Context, sectionID int64) ([]models.Refinement, error) {
	out := []models.Refinement{}
	err := db.conn.SelectContext(ctx, &out, db.q(`
		SELECT id, section_id, user_id, prompt, new_content, created_at
		FROM refinements WHERE section_id = ? ORDER BY id`), sectionID)
	if err != nil {
		return nil, fmt.Errorf("store: refinements of %d: %w", sectionID, err)
	}
	return out, nil
}

// AddComment stores c, filling in its id and timestamp.
func (db *DB) AddComment(ctx context.Context, c *models.Comment) error {
	c.CreatedAt = now()
	err := db.conn.QueryRowxContext(ctx,
		db.q(`INSERT INTO comments (section_id, user_id, text, created_at) VALUES (?, ?, ?, ?) RETURNING id`),
		c.SectionID, c.UserID, c.Text, c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("store: insert comment: %w", err)
	}
	return nil
}

// Comments lists a section's comments, oldest first.
func (db *DB) Comments(ctx context.Context, sectionID int64) ([]models.Comment, error) {
	out := []models.Comment{}
	err := db.conn.SelectContext(ctx, &out, db.q(`
		SELECT id, section_id, user_id, text, created_at
		FROM comments WHERE section_id = ? ORDER BY id`), sectionID)
	if err != nil {
		return nil, fmt.Errorf("store: comments of %d: %w", sectionID, err)
	}
	return out, nil
}
