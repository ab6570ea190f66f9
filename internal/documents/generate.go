package documents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/starford/draftdeck/internal/llm"
	"github.com/starford/draftdeck/internal/models"
	"github.com/starford/draftdeck/internal/sse"
)

// Generate fills every section of a project with model output, in section
// order when concurrency is 1. The first failure cancels the remaining work.
func (s *Service) Generate(ctx context.Context, ownerID, projectID int64) error {
	p, err := s.repo.ProjectForOwner(ctx, projectID, ownerID)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, sec := range p.Sections {
		g.Go(func() error {
			return s.generateSection(gCtx, ownerID, p, sec)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("generation failed",
			slog.Int64("project_id", projectID),
			slog.String("error", err.Error()))
		return err
	}

	s.publish(ownerID, sse.TypeProjectGenerated, map[string]any{
		"project_id": projectID,
		"sections":   len(p.Sections),
	})
	s.logger.Info("project generated",
		slog.Int64("project_id", projectID),
		slog.String("provider", s.llm.Name()),
		slog.Int("sections", len(p.Sections)))
	return nil
}

func (s *Service) generateSection(ctx context.Context, ownerID int64, p *models.Project, sec models.Section) error {
	prompt, err := s.prompts.Section(sec.Title, p.Prompt)
	if err != nil {
		return err
	}
	text, err := s.llm.Generate(ctx, llm.Request{Prompt: prompt, System: s.prompts.System()})
	if err != nil {
		return fmt.Errorf("generate section %d: %w", sec.ID, err)
	}
	if err := s.repo.UpdateSectionContent(ctx, sec.ID, text, ""); err != nil {
		return err
	}
	s.publish(ownerID, sse.TypeSectionGenerated, map[string]any{
		"project_id": p.ID,
		"section_id": sec.ID,
		"title":      sec.Title,
	})
	return nil
}

// SuggestOutline asks the model for count section titles about the
// project's prompt, or its title when the prompt is empty.
func (s *Service) SuggestOutline(ctx context.Context, ownerID, projectID int64, count int) ([]string, error) {
	if count < 1 || count > MaxOutlineCount {
		return nil, invalid(fmt.Errorf("count: must be between 1 and %d", MaxOutlineCount))
	}
	p, err := s.repo.ProjectForOwner(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}
	topic := p.Prompt
	if strings.TrimSpace(topic) == "" {
		topic = p.Title
	}
	prompt, err := s.prompts.Outline(count, topic)
	if err != nil {
		return nil, err
	}
	text, err := s.llm.Generate(ctx, llm.Request{Prompt: prompt, System: s.prompts.System()})
	if err != nil {
		return nil, fmt.Errorf("suggest outline for %d: %w", projectID, err)
	}
	return llm.ParseTitles(text), nil
}

// ApplyOutline appends one section per non-blank title. Positions follow the
// title order and sections are slides when the project is a deck.
func (s *Service) ApplyOutline(ctx context.Context, ownerID, projectID int64, titles []string) ([]models.Section, error) {
	p, err := s.repo.ProjectForOwner(ctx, projectID, ownerID)
	if err != nil {
		return nil, err
	}
	sections := make([]models.Section, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		sections = append(sections, models.Section{Title: t, Position: len(sections), IsSlide: p.IsSlides()})
	}
	if len(sections) == 0 {
		return []models.Section{}, nil
	}
	created, err := s.repo.AddSections(ctx, projectID, sections)
	if err != nil {
		return nil, err
	}
	s.publish(ownerID, sse.TypeOutlineApplied, map[string]any{
		"project_id": projectID,
		"created":    len(created),
	})
	return created, nil
}
