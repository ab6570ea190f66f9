package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/models"
)

const projectColumns = `id, owner_id, title, doc_type, prompt, created_at`

const sectionColumns = `id, project_id, title, content, position, is_slide`

// CreateProject inserts p and its initial sections in one transaction.
// p.ID, p.CreatedAt and p.Sections are filled in on success.
func (db *DB) CreateProject(ctx context.Context, p *models.Project, sections []models.Section) error {
	return db.withTx(ctx, func(tx *sqlx.Tx) error {
		p.CreatedAt = now()
		err := tx.QueryRowxContext(ctx,
			tx.Rebind(`INSERT INTO projects (owner_id, title, doc_type, prompt, created_at) VALUES (?, ?, ?, ?, ?) RETURNING id`),
			p.OwnerID, p.Title, p.DocType, p.Prompt, p.CreatedAt,
		).Scan(&p.ID)
		if err != nil {
			return fmt.Errorf("store: insert project: %w", err)
		}
		created, err := insertSections(ctx, tx, p.ID, sections)
		if err != nil {
			return err
		}
		p.Sections = created
		return nil
	})
}

// ListProjects returns the owner's projects, oldest first, each with its sections.
func (db *DB) ListProjects(ctx context.Context, ownerID int64) ([]models.Project, error) {
	var projects []models.Project
	err := db.conn.SelectContext(ctx, &projects,
		db.q(`SELECT `+projectColumns+` FROM projects WHERE owner_id = ? ORDER BY id`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	if len(projects) == 0 {
		return []models.Project{}, nil
	}

	ids := make([]int64, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	query, args, err := sqlx.In(`SELECT `+sectionColumns+` FROM sections WHERE project_id IN (?) ORDER BY position, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("store: list sections: %w", err)
	}
	var sections []models.Section
	if err := db.conn.SelectContext(ctx, &sections, db.q(query), args...); err != nil {
		return nil, fmt.Errorf("store: list sections: %w", err)
	}

	byProject := make(map[int64][]models.Section, len(projects))
	for _, s := range sections {
		byProject[s.ProjectID] = append(byProject[s.ProjectID], s)
	}
	for i := range projects {
		projects[i].Sections = byProject[projects[i].ID]
		if projects[i].Sections == nil {
			projects[i].Sections = []models.Section{}
		}
	}
	return projects, nil
}

// ProjectForOwner loads a project and its ordered sections. A project that
// does not exist or belongs to someone else yields apperr.ErrNotFound.
func (db *DB) ProjectForOwner(ctx context.Context, id, ownerID int64) (*models.Project, error) {
	var p models.Project
	err := db.conn.GetContext(ctx, &p,
		db.q(`SELECT `+projectColumns+` FROM projects WHERE id = ? AND owner_id = ?`), id, ownerID)
	if err != nil {
		if notFound(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get project %d: %w", id, err)
	}
	sections, err := db.Sections(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Sections = sections
	return &p, nil
}

// DeleteProject removes a project; sections and their history cascade.
func (db *DB) DeleteProject(ctx context.Context, id, ownerID int64) error {
	res, err := db.conn.ExecContext(ctx,
		db.q(`DELETE FROM projects WHERE id = ? AND owner_id = ?`), id, ownerID)
	if err != nil {
		return fmt.Errorf("store: delete project %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete project %d: %w", id, err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
