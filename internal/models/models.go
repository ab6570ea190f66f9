// Package models defines the domain types for draftdeck.
package models

import "time"

// Document types a project can be exported as.
const (
	DocTypeDocx = "docx"
	DocTypePptx = "pptx"
)

// User is an account that owns projects.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Project is a document or slide deck made of ordered sections.
type Project struct {
	ID        int64     `db:"id" json:"id"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	Title     string    `db:"title" json:"title"`
	DocType   string    `db:"doc_type" json:"doc_type"`
	Prompt    string    `db:"prompt" json:"prompt"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Sections  []Section `db:"-" json:"sections"`
}

// IsSlides reports whether the project exports as a slide deck.
func (p *Project) IsSlides() bool {
	return p.DocType == DocTypePptx
}

// Section is one heading or slide of a project.
type Section struct {
	ID        int64  `db:"id" json:"id"`
	ProjectID int64  `db:"project_id" json:"project_id"`
	Title     string `db:"title" json:"title"`
	Content   string `db:"content" json:"content"`
	Position  int    `db:"position" json:"position"`
	IsSlide   bool   `db:"is_slide" json:"is_slide"`
}

// Refinement records one AI rewrite of a section.
type Refinement struct {
	ID         int64     `db:"id" json:"id"`
	SectionID  int64     `db:"section_id" json:"section_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	Prompt     string    `db:"prompt" json:"prompt"`
	NewContent string    `db:"new_content" json:"new_content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Comment is a free-text note attached to a section.
type Comment struct {
	ID        int64     `db:"id" json:"id"`
	SectionID int64     `db:"section_id" json:"section_id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Text      string    `db:"text" json:"text"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SearchHit is a section matching a full-text query.
type SearchHit struct {
	ProjectID    int64  `db:"project_id" json:"project_id"`
	ProjectTitle string `db:"project_title" json:"project_title"`
	SectionID    int64  `db:"section_id" json:"section_id"`
	SectionTitle string `db:"section_title" json:"section_title"`
	Snippet      string `db:"snippet" json:"snippet"`
}
