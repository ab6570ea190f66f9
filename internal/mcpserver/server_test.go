package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/llm"
	"github.com/starford/draftdeck/internal/models"
	"github.com/starford/draftdeck/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db := testutil.TestDB(t)
	user := testutil.TestUser(t, db, "mcp@example.com", "pw")
	docs := documents.NewService(db, llm.NewMock(), testutil.TestPrompts(t))
	return New(docs, user)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so handlers are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_projects":
		result, err = srv.listProjects(ctx, req)
	case "get_project":
		result, err = srv.getProject(ctx, req)
	case "create_project":
		result, err = srv.createProject(ctx, req)
	case "suggest_outline":
		result, err = srv.suggestOutline(ctx, req)
	case "apply_outline":
		result, err = srv.applyOutline(ctx, req)
	case "generate_project":
		result, err = srv.generateProject(ctx, req)
	case "refine_section":
		result, err = srv.refineSection(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func createDeck(t *testing.T, srv *Server) models.Project {
	t.Helper()
	r := callTool(t, srv, "create_project", map[string]any{
		"title":    "Launch",
		"doc_type": "pptx",
		"prompt":   "new product",
		"sections": []any{"Why", "How"},
	})
	if r.IsError {
		t.Fatalf("create_project: %s", resultText(r))
	}
	var p models.Project
	if err := json.Unmarshal([]byte(resultText(r)), &p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCreateAndGetProject(t *testing.T) {
	srv := testServer(t)
	p := createDeck(t, srv)
	if len(p.Sections) != 2 || !p.Sections[0].IsSlide {
		t.Fatalf("sections = %+v", p.Sections)
	}

	r := callTool(t, srv, "get_project", map[string]any{"project_id": float64(p.ID)})
	if r.IsError || !strings.Contains(resultText(r), `"title": "Launch"`) {
		t.Errorf("get_project = %q", resultText(r))
	}

	r = callTool(t, srv, "list_projects", map[string]any{})
	if !strings.Contains(resultText(r), "Launch") {
		t.Errorf("list_projects = %q", resultText(r))
	}
}

func TestCreateProjectInvalid(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_project", map[string]any{"title": "x", "doc_type": "pdf"})
	if !r.IsError {
		t.Error("expected error for bad doc_type")
	}
	r = callTool(t, srv, "create_project", map[string]any{"doc_type": "docx"})
	if !r.IsError {
		t.Error("expected error for missing title")
	}
}

func TestGetProjectMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_project", map[string]any{"project_id": float64(404)})
	if !r.IsError || resultText(r) != "not found" {
		t.Errorf("get missing = %q", resultText(r))
	}
	r = callTool(t, srv, "get_project", map[string]any{"project_id": 1.5})
	if !r.IsError {
		t.Error("expected error for fractional id")
	}
}

func TestOutlineGenerateRefine(t *testing.T) {
	srv := testServer(t)
	p := createDeck(t, srv)

	r := callTool(t, srv, "suggest_outline", map[string]any{"project_id": float64(p.ID), "count": float64(3)})
	if r.IsError || !strings.Contains(resultText(r), "suggestions") {
		t.Errorf("suggest_outline = %q", resultText(r))
	}

	r = callTool(t, srv, "apply_outline", map[string]any{"project_id": float64(p.ID), "titles": []any{"Extra"}})
	if resultText(r) != "created 1 sections" {
		t.Errorf("apply_outline = %q", resultText(r))
	}
	r = callTool(t, srv, "apply_outline", map[string]any{"project_id": float64(p.ID), "titles": []any{}})
	if !r.IsError {
		t.Error("expected error for empty titles")
	}

	r = callTool(t, srv, "generate_project", map[string]any{"project_id": float64(p.ID)})
	if r.IsError {
		t.Fatalf("generate_project = %q", resultText(r))
	}

	r = callTool(t, srv, "refine_section", map[string]any{"section_id": float64(p.Sections[0].ID), "prompt": "shorter"})
	if r.IsError || !strings.Contains(resultText(r), "instructions: shorter") {
		t.Errorf("refine_section = %q", resultText(r))
	}
}

func TestPromptGuideResource(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readPromptGuide(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != promptGuideURI || !strings.Contains(tc.Text, "Refine the following section content") {
		t.Errorf("resource = %+v", contents)
	}
}
