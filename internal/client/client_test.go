package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starford/draftdeck/internal/api"
	"github.com/starford/draftdeck/internal/auth"
	"github.com/starford/draftdeck/internal/checksum"
	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/llm"
	"github.com/starford/draftdeck/internal/testutil"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testutil.TestDB(t)
	tokens, err := auth.NewTokens("test-secret", "HS256", time.Hour)
	require.NoError(t, err)
	docs := documents.NewService(db, llm.NewMock(), testutil.TestPrompts(t))
	srv := httptest.NewServer(api.NewRouter(auth.NewService(db, tokens), docs, nil))
	t.Cleanup(srv.Close)
	return srv
}

func loggedIn(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	require.NoError(t, c.Register(context.Background(), "cli@example.com", "pw"))
	require.NotEmpty(t, c.Token())
	return c
}

func TestAPIErrorMessage(t *testing.T) {
	require.Equal(t, "Project not found", (&APIError{Status: 404, Detail: "Project not found", Body: `{"detail":"Project not found"}`}).Error())
	require.Equal(t, `{"error":"x"}`, (&APIError{Status: 500, Body: `{"error":"x"}`}).Error())
	require.Equal(t, "502 Bad Gateway", (&APIError{Status: 502}).Error())
}

func TestNonStringDetailKeptRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","title"]}]}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListProjects(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	require.Equal(t, `[{"loc":["body","title"]}]`, apiErr.Detail)
}

func TestLoginFailureSurfacesDetail(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	err := c.Login(context.Background(), "nobody@example.com", "pw")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Invalid credentials", err.Error())
	require.Empty(t, c.Token())
}

func TestUnauthenticatedCall(t *testing.T) {
	srv := newServer(t)
	_, err := New(srv.URL, WithHTTPClient(srv.Client())).ListProjects(context.Background())
	require.EqualError(t, err, "Not authenticated")
}

func TestProjectWorkflow(t *testing.T) {
	srv := newServer(t)
	c := loggedIn(t, srv)
	ctx := context.Background()

	p, err := c.CreateProject(ctx, documents.NewProject{Title: "Plan", DocType: "docx", Prompt: "gardens"})
	require.NoError(t, err)
	require.Empty(t, p.Sections)

	titles, err := c.SuggestOutline(ctx, p.ID, 3)
	require.NoError(t, err)
	require.NotEmpty(t, titles)

	created, err := c.ApplyOutline(ctx, p.ID, []string{"Soil", "Water"})
	require.NoError(t, err)
	require.Len(t, created, 2)

	require.NoError(t, c.Generate(ctx, p.ID))

	got, err := c.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Sections, 2)
	require.Contains(t, got.Sections[0].Content, "section titled 'Soil' about: gardens")

	ref, err := c.Refine(ctx, created[0].ID, "shorter")
	require.NoError(t, err)
	require.NotZero(t, ref.RefinementID)

	saved, err := c.SaveSection(ctx, created[0].ID, "my text", checksum.Sum(ref.NewContent))
	require.NoError(t, err)
	require.Equal(t, checksum.Sum("my text"), saved.Checksum)

	_, err = c.SaveSection(ctx, created[0].ID, "again", checksum.Sum("stale"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.Status)

	cm, err := c.Comment(ctx, created[0].ID, "looks good")
	require.NoError(t, err)
	require.Equal(t, "looks good", cm.Text)

	comments, err := c.Comments(ctx, created[0].ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	refs, err := c.Refinements(ctx, created[0].ID)
	require.NoError(t, err)
	require.Len(t, refs, 1)

	dl, err := c.Export(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("project_%d.docx", p.ID), dl.Name)
	require.Equal(t, []byte("PK"), dl.Data[:2])

	hits, err := c.Search(ctx, "my text")
	require.NoError(t, err)
	require.Len(t, hits, 1)

	list, err := c.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, c.DeleteProject(ctx, p.ID))
	_, err = c.GetProject(ctx, p.ID)
	require.EqualError(t, err, "Project not found")
}

func TestExportNameWithoutDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("blob"))
	}))
	defer srv.Close()

	dl, err := New(srv.URL).Export(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "project_7", dl.Name)
	require.Equal(t, []byte("blob"), dl.Data)
}
