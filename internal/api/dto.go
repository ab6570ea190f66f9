package api

import (
	"github.com/starford/draftdeck/internal/auth"
	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/models"
)

// Credentials is the register and login request body.
type Credentials = auth.Credentials

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string `json:"access_token" validate:"required"`
	TokenType   string `json:"token_type" example:"bearer" validate:"required"`
}

// CreateProjectRequest is the request body for creating a project.
type CreateProjectRequest = documents.NewProject

// Project is the project response type (aliased from the domain layer).
type Project = models.Project

// Section is the section response type (aliased from the domain layer).
type Section = models.Section

// GenerateResponse is returned once every section has been generated.
type GenerateResponse struct {
	Status string `json:"status" example:"generated" validate:"required"`
}

// SuggestOutlineRequest is the optional body of suggest_outline.
type SuggestOutlineRequest struct {
	Count *int `json:"count,omitempty" example:"5"`
}

// SuggestOutlineResponse lists suggested titles.
type SuggestOutlineResponse struct {
	Suggestions []string `json:"suggestions" validate:"required"`
}

// ApplyOutlineRequest lists the titles to turn into sections.
type ApplyOutlineRequest struct {
	Titles []string `json:"titles" validate:"required"`
}

// CreatedSection is one entry of ApplyOutlineResponse.
type CreatedSection struct {
	ID    int64  `json:"id" validate:"required"`
	Title string `json:"title" validate:"required"`
}

// ApplyOutlineResponse lists the sections created from an outline.
type ApplyOutlineResponse struct {
	Created []CreatedSection `json:"created" validate:"required"`
}

// RefineRequest asks for an AI rewrite of a section.
type RefineRequest struct {
	SectionID int64  `json:"section_id" example:"1" validate:"required"`
	Prompt    string `json:"prompt" example:"Make it shorter" validate:"required"`
}

// RefineResponse carries the stored refinement.
type RefineResponse struct {
	RefinementID int64  `json:"refinement_id" validate:"required"`
	NewContent   string `json:"new_content" validate:"required"`
}

// CommentRequest attaches a comment to a section.
type CommentRequest struct {
	SectionID int64  `json:"section_id" example:"1" validate:"required"`
	Text      string `json:"text" example:"Needs numbers" validate:"required"`
}

// SaveSectionRequest replaces a section's content.
type SaveSectionRequest struct {
	Content string `json:"content" validate:"required"`
}

// SectionDetail is a section with the checksum of its content.
type SectionDetail struct {
	models.Section
	Checksum string `json:"checksum" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchHit `json:"results" validate:"required"`
}
