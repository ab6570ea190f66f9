package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/draftdeck/internal/llm"
	"github.com/starford/draftdeck/internal/models"
	"github.com/starford/draftdeck/internal/sse"
)

// Refine rewrites a section following instructions and records the result.
func (s *Service) Refine(ctx context.Context, ownerID, sectionID int64, instructions string) (*models.Refinement, error) {
	if strings.TrimSpace(instructions) == "" {
		return nil, invalid(fmt.Errorf("prompt: cannot be blank"))
	}
	sec, err := s.repo.SectionForOwner(ctx, sectionID, ownerID)
	if err != nil {
		return nil, err
	}
	prompt, err := s.prompts.Refine(instructions, sec.Content)
	if err != nil {
		return nil, err
	}
	text, err := s.llm.Generate(ctx, llm.Request{Prompt: prompt, System: s.prompts.System()})
	if err != nil {
		return nil, fmt.Errorf("refine section %d: %w", sectionID, err)
	}

	r := &models.Refinement{SectionID: sectionID, UserID: ownerID, Prompt: instructions, NewContent: text}
	if err := s.repo.RecordRefinement(ctx, r); err != nil {
		return nil, err
	}
	s.publish(ownerID, sse.TypeSectionRefined, map[string]any{
		"project_id":    sec.ProjectID,
		"section_id":    sectionID,
		"refinement_id": r.ID,
	})
	return r, nil
}

// SaveSection replaces a section's content directly. ifMatch, when set,
// must be the checksum of the current content.
func (s *Service) SaveSection(ctx context.Context, ownerID, sectionID int64, content, ifMatch string) (*models.Section, error) {
	sec, err := s.repo.SectionForOwner(ctx, sectionID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSectionContent(ctx, sectionID, content, ifMatch); err != nil {
		return nil, err
	}
	sec.Content = content
	s.publish(ownerID, sse.TypeSectionSaved, map[string]any{
		"project_id": sec.ProjectID,
		"section_id": sectionID,
	})
	return sec, nil
}

// AddComment attaches a comment to a section.
func (s *Service) AddComment(ctx context.Context, ownerID, sectionID int64, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid(fmt.Errorf("text: cannot be blank"))
	}
	sec, err := s.repo.SectionForOwner(ctx, sectionID, ownerID)
	if err != nil {
		return nil, err
	}
	c := &models.Comment{SectionID: sectionID, UserID: ownerID, Text: text}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, err
	}
	s.publish(ownerID, sse.TypeCommentAdded, map[string]any{
		"project_id": sec.ProjectID,
		"section_id": sectionID,
		"comment_id": c.ID,
	})
	return c, nil
}

// Comments lists a section's comments.
func (s *Service) Comments(ctx context.Context, ownerID, sectionID int64) ([]models.Comment, error) {
	if _, err := s.repo.SectionForOwner(ctx, sectionID, ownerID); err != nil {
		return nil, err
	}
	return s.repo.Comments(ctx, sectionID)
}

// Refinements lists a section's refinement history.
func (s *Service) Refinements(ctx context.Context, ownerID, sectionID int64) ([]models.Refinement, error) {
	if _, err := s.repo.SectionForOwner(ctx, sectionID, ownerID); err != nil {
		return nil, err
	}
	return s.repo.Refinements(ctx, sectionID)
}
