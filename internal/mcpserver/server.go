// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes draftdeck authoring tools over stdio, acting as one user.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/models"
)

const promptGuideURI = "draftdeck://prompt-guide"

// Server wraps the MCP server with draftdeck tools.
type Server struct {
	mcp    *server.MCPServer
	docs   *documents.Service
	userID int64
}

// New creates an MCP server whose tools operate on user's projects.
func New(docs *documents.Service, user *models.User) *Server {
	s := &Server{docs: docs, userID: user.ID}

	s.mcp = server.NewMCPServer(
		"draftdeck",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List the user's projects with their sections."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Read a project and its ordered sections, including content."),
		mcp.WithNumber("project_id", mcp.Required(), mcp.Description("Project ID")),
	), s.getProject)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a Word document (docx) or slide deck (pptx) project. "+
			"Read the draftdeck://prompt-guide resource for how prompts are used."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Project title")),
		mcp.WithString("doc_type", mcp.Required(), mcp.Enum(models.DocTypeDocx, models.DocTypePptx), mcp.Description("Export format")),
		mcp.WithString("prompt", mcp.Description("Topic the generated content is about")),
		mcp.WithArray("sections", mcp.WithStringItems(), mcp.Description("Initial section or slide titles, in order")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("suggest_outline",
		mcp.WithDescription("Ask the model for section or slide titles for a project. Nothing is saved."),
		mcp.WithNumber("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithNumber("count", mcp.Description("Number of titles (1-50, default 5)")),
	), s.suggestOutline)

	s.mcp.AddTool(mcp.NewTool("apply_outline",
		mcp.WithDescription("Append one section per title to a project."),
		mcp.WithNumber("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithArray("titles", mcp.Required(), mcp.WithStringItems(), mcp.Description("Section titles, in order")),
	), s.applyOutline)

	s.mcp.AddTool(mcp.NewTool("generate_project",
		mcp.WithDescription("Generate content for every section of a project, replacing existing content."),
		mcp.WithNumber("project_id", mcp.Required(), mcp.Description("Project ID")),
	), s.generateProject)

	s.mcp.AddTool(mcp.NewTool("refine_section",
		mcp.WithDescription("Rewrite one section following instructions. The refinement is recorded."),
		mcp.WithNumber("section_id", mcp.Required(), mcp.Description("Section ID")),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Instructions, e.g. 'make it shorter'")),
	), s.refineSection)

	// Resource: how prompts are turned into content.
	s.mcp.AddResource(
		mcp.NewResource(promptGuideURI, "Prompt Guide",
			mcp.WithResourceDescription("How project prompts, outlines and refinements are sent to the model."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPromptGuide,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("not found")
	}
	return mcp.NewToolResultError(err.Error())
}

func requireID(req mcp.CallToolRequest, key string) (int64, error) {
	v, err := req.RequireFloat(key)
	if err != nil {
		return 0, err
	}
	if v < 1 || v != float64(int64(v)) {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	return int64(v), nil
}

func (s *Server) listProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects, err := s.docs.ListProjects(ctx, s.userID)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(projects), nil
}

func (s *Server) getProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.docs.GetProject(ctx, s.userID, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docType, err := req.RequireString("doc_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := documents.NewProject{
		Title:   title,
		DocType: docType,
		Prompt:  req.GetString("prompt", ""),
	}
	for i, t := range req.GetStringSlice("sections", nil) {
		in.Sections = append(in.Sections, documents.NewSection{
			Title:    t,
			Position: i,
			IsSlide:  docType == models.DocTypePptx,
		})
	}
	p, err := s.docs.CreateProject(ctx, s.userID, in)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) suggestOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	count := req.GetInt("count", documents.DefaultOutlineCount)
	titles, err := s.docs.SuggestOutline(ctx, s.userID, id, count)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{"suggestions": titles}), nil
}

func (s *Server) applyOutline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	titles, err := req.RequireStringSlice("titles")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(titles) == 0 {
		return mcp.NewToolResultError("No titles to apply"), nil
	}
	created, err := s.docs.ApplyOutline(ctx, s.userID, id, titles)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created %d sections", len(created))), nil
}

func (s *Server) generateProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "project_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.docs.Generate(ctx, s.userID, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("generated: project %d", id)), nil
}

func (s *Server) refineSection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req, "section_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prompt, err := req.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := s.docs.Refine(ctx, s.userID, id, prompt)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(r.NewContent), nil
}

func (s *Server) readPromptGuide(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      promptGuideURI,
			MIMEType: "text/markdown",
			Text:     PromptGuide,
		},
	}, nil
}
