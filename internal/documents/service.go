// Package documents implements project authoring: creating projects,
// generating and refining section content, outline suggestion, comments
// and export.
package documents

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/llm"
	"github.com/starford/draftdeck/internal/models"
	"github.com/starford/draftdeck/internal/prompts"
	"github.com/starford/draftdeck/internal/sse"
	"github.com/starford/draftdeck/internal/storage"
)

// Outline suggestion bounds.
const (
	DefaultOutlineCount = 5
	MaxOutlineCount     = 50
)

// Repository is the persistence the service needs.
type Repository interface {
	CreateProject(ctx context.Context, p *models.Project, sections []models.Section) error
	ListProjects(ctx context.Context, ownerID int64) ([]models.Project, error)
	ProjectForOwner(ctx context.Context, id, ownerID int64) (*models.Project, error)
	DeleteProject(ctx context.Context, id, ownerID int64) error
	AddSections(ctx context.Context, projectID int64, sections []models.Section) ([]models.Section, error)
	SectionForOwner(ctx context.Context, sectionID, ownerID int64) (*models.Section, error)
	UpdateSectionContent(ctx context.Context, sectionID int64, content, ifMatch string) error
	RecordRefinement(ctx context.Context, r *models.Refinement) error
	Refinements(ctx context.Context, sectionID int64) ([]models.Refinement, error)
	AddComment(ctx context.Context, c *models.Comment) error
	Comments(ctx context.Context, sectionID int64) ([]models.Comment, error)
	Search(ctx context.Context, ownerID int64, query string, limit int) ([]models.SearchHit, error)
}

// Publisher receives progress events.
type Publisher interface {
	Publish(event sse.Event)
}

// Service coordinates the repository, the language model and exports.
type Service struct {
	repo        Repository
	llm         llm.Provider
	prompts     *prompts.Set
	archive     storage.Provider
	events      Publisher
	concurrency int
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithArchive stores every export in p.
func WithArchive(p storage.Provider) Option {
	return func(s *Service) { s.archive = p }
}

// WithEvents publishes progress events to p.
func WithEvents(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithConcurrency bounds parallel section generation.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a document service.
func NewService(repo Repository, provider llm.Provider, set *prompts.Set, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		llm:         provider,
		prompts:     set,
		concurrency: 1,
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) publish(userID int64, typ string, data any) {
	if s.events == nil {
		return
	}
	s.events.Publish(sse.Event{Type: typ, UserID: userID, Data: data})
}

// invalid wraps a validation failure so callers can match apperr.ErrValidation.
func invalid(err error) error {
	return fmt.Errorf("%w: %s", apperr.ErrValidation, err.Error())
}

// NewSection describes a section supplied at project creation.
type NewSection struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
	IsSlide  bool   `json:"is_slide"`
}

// NewProject is the input to CreateProject.
type NewProject struct {
	Title    string       `json:"title"`
	DocType  string       `json:"doc_type"`
	Prompt   string       `json:"prompt"`
	Sections []NewSection `json:"sections"`
}

// Validate checks the required fields.
func (p NewProject) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.DocType, validation.Required, validation.In(models.DocTypeDocx, models.DocTypePptx)),
	)
}

// CreateProject stores a project with its initial sections. A section's
// position defaults to its index when unset or zero.
func (s *Service) CreateProject(ctx context.Context, ownerID int64, in NewProject) (*models.Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	sections := make([]models.Section, 0, len(in.Sections))
	for i, ns := range in.Sections {
		pos := ns.Position
		if pos == 0 {
			pos = i
		}
		sections = append(sections, models.Section{Title: ns.Title, Position: pos, IsSlide: ns.IsSlide})
	}

	p := &models.Project{OwnerID: ownerID, Title: in.Title, DocType: in.DocType, Prompt: in.Prompt}
	if err := s.repo.CreateProject(ctx, p, sections); err != nil {
		return nil, err
	}
	s.logger.Info("project created",
		slog.Int64("project_id", p.ID),
		slog.Int64("owner_id", ownerID),
		slog.Int("sections", len(p.Sections)))
	return p, nil
}

// ListProjects returns the caller's projects.
func (s *Service) ListProjects(ctx context.Context, ownerID int64) ([]models.Project, error) {
	return s.repo.ListProjects(ctx, ownerID)
}

// GetProject returns one of the caller's projects with ordered sections.
func (s *Service) GetProject(ctx context.Context, ownerID, projectID int64) (*models.Project, error) {
	return s.repo.ProjectForOwner(ctx, projectID, ownerID)
}

// DeleteProject removes a project and everything attached to it.
func (s *Service) DeleteProject(ctx context.Context, ownerID, projectID int64) error {
	if err := s.repo.DeleteProject(ctx, projectID, ownerID); err != nil {
		return err
	}
	s.purgeArchive(ctx, projectID)
	return nil
}

// Search finds sections by title or content across the caller's projects.
func (s *Service) Search(ctx context.Context, ownerID int64, query string, limit int) ([]models.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalid(fmt.Errorf("q: cannot be blank"))
	}
	return s.repo.Search(ctx, ownerID, query, limit)
}
