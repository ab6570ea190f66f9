package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/draftdeck/internal/apperr"
	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/exporter"
)

// pathID parses the {id} URL parameter, writing a 422 when it is not an integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// Register handles POST /auth/register.
//
//	@Summary		Create an account
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Credentials	true	"Email and password"
//	@Success		201		{object}	TokenResponse
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if !decode(w, r, &req) {
		return
	}
	token, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperr.ErrAlreadyExists) {
			writeJSON(w, http.StatusBadRequest, errorBody("Email already registered"))
			return
		}
		fail(w, "register", err, "not found")
		return
	}
	writeJSON(w, http.StatusCreated, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// Login handles POST /auth/login.
//
//	@Summary		Exchange credentials for an access token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		Credentials	true	"Email and password"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if !decode(w, r, &req) {
		return
	}
	token, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorBody("Invalid credentials"))
			return
		}
		fail(w, "login", err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// ListProjects handles GET /projects.
//
//	@Summary		List the caller's projects
//	@Tags			projects
//	@Produce		json
//	@Success		200	{array}	Project
//	@Security		BearerAuth
//	@Router			/projects [get]
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	u := UserFrom(r.Context())
	projects, err := h.docs.ListProjects(r.Context(), u.ID)
	if err != nil {
		fail(w, "list projects", err, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// CreateProject handles POST /projects.
//
//	@Summary		Create a project with optional initial sections
//	@Tags			projects
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateProjectRequest	true	"Project to create"
//	@Success		200		{object}	Project
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects [post]
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !decode(w, r, &req) {
		return
	}
	u := UserFrom(r.Context())
	p, err := h.docs.CreateProject(r.Context(), u.ID, req)
	if err != nil {
		fail(w, "create project", err, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetProject handles GET /projects/{id}.
//
//	@Summary		Get a project with its ordered sections
//	@Tags			projects
//	@Produce		json
//	@Param			id	path		int	true	"Project ID"
//	@Success		200	{object}	Project
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [get]
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.docs.GetProject(r.Context(), UserFrom(r.Context()).ID, id)
	if err != nil {
		fail(w, "get project", err, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeleteProject handles DELETE /projects/{id}.
//
//	@Summary		Delete a project and its history
//	@Tags			projects
//	@Param			id	path	int	true	"Project ID"
//	@Success		204	"Project deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id} [delete]
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.docs.DeleteProject(r.Context(), UserFrom(r.Context()).ID, id); err != nil {
		fail(w, "delete project", err, "Project not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Generate handles POST /projects/{id}/generate.
//
//	@Summary		Generate content for every section
//	@Tags			generation
//	@Produce		json
//	@Param			id	path		int	true	"Project ID"
//	@Success		200	{object}	GenerateResponse
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.docs.Generate(r.Context(), UserFrom(r.Context()).ID, id); err != nil {
		fail(w, "generate", err, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, GenerateResponse{Status: "generated"})
}

// SuggestOutline handles POST /projects/{id}/suggest_outline.
//
//	@Summary		Suggest section or slide titles
//	@Tags			generation
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Project ID"
//	@Param			count	query		int						false	"Number of titles"
//	@Param			body	body		SuggestOutlineRequest	false	"Number of titles"
//	@Success		200		{object}	SuggestOutlineResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/suggest_outline [post]
func (h *Handler) SuggestOutline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// count comes from the body, then the query string, then the default.
	count := documents.DefaultOutlineCount
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("count must be an integer"))
			return
		}
		count = n
	}
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		var req SuggestOutlineRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("invalid JSON body"))
			return
		}
		if req.Count != nil {
			count = *req.Count
		}
	}

	titles, err := h.docs.SuggestOutline(r.Context(), UserFrom(r.Context()).ID, id, count)
	if err != nil {
		fail(w, "suggest outline", err, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, SuggestOutlineResponse{Suggestions: titles})
}

// ApplyOutline handles POST /projects/{id}/apply_outline.
//
//	@Summary		Append sections from a list of titles
//	@Tags			generation
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Project ID"
//	@Param			body	body		ApplyOutlineRequest	true	"Titles"
//	@Success		200		{object}	ApplyOutlineResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/apply_outline [post]
func (h *Handler) ApplyOutline(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ApplyOutlineRequest
	if !decode(w, r, &req) {
		return
	}
	sections, err := h.docs.ApplyOutline(r.Context(), UserFrom(r.Context()).ID, id, req.Titles)
	if err != nil {
		fail(w, "apply outline", err, "Project not found")
		return
	}
	created := make([]CreatedSection, len(sections))
	for i, s := range sections {
		created[i] = CreatedSection{ID: s.ID, Title: s.Title}
	}
	writeJSON(w, http.StatusOK, ApplyOutlineResponse{Created: created})
}

// Export handles GET /export/{id}.
//
//	@Summary		Download the project as docx or pptx
//	@Tags			export
//	@Produce		application/vnd.openxmlformats-officedocument.wordprocessingml.document
//	@Produce		application/vnd.openxmlformats-officedocument.presentationml.presentation
//	@Param			id	path		int	true	"Project ID"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export/{id} [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := h.docs.Export(r.Context(), UserFrom(r.Context()).ID, id)
	if err != nil {
		fail(w, "export", err, "Project not found")
		return
	}
	writeFile(w, f, id)
}

func writeFile(w http.ResponseWriter, f *exporter.File, projectID int64) {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+f.Name)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(f.Data); err != nil {
		slog.Warn("export write failed", slog.Int64("project_id", projectID), slog.String("error", err.Error()))
	}
}

// ListExports handles GET /projects/{id}/exports.
//
//	@Summary		List archived exports of a project
//	@Tags			export
//	@Produce		json
//	@Param			id	path	int	true	"Project ID"
//	@Success		200	{array}	storage.Object
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/exports [get]
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	objs, err := h.docs.Archived(r.Context(), UserFrom(r.Context()).ID, id)
	if err != nil {
		fail(w, "list exports", err, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, objs)
}

// DownloadExport handles GET /projects/{id}/exports/{name}.
//
//	@Summary		Download an archived export
//	@Tags			export
//	@Produce		application/vnd.openxmlformats-officedocument.wordprocessingml.document
//	@Produce		application/vnd.openxmlformats-officedocument.presentationml.presentation
//	@Param			id		path		int		true	"Project ID"
//	@Param			name	path		string	true	"Archived file name"
//	@Success		200		{file}		binary
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{id}/exports/{name} [get]
func (h *Handler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := h.docs.ArchivedFile(r.Context(), UserFrom(r.Context()).ID, id, chi.URLParam(r, "name"))
	if err != nil {
		msg := "Project not found"
		if errors.Is(err, documents.ErrExportNotFound) {
			msg = "Export not found"
		}
		fail(w, "download export", err, msg)
		return
	}
	writeFile(w, f, id)
}

// Search handles GET /search.
//
//	@Summary		Full-text search across the caller's sections
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusUnprocessableEntity, errorBody("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	hits, err := h.docs.Search(r.Context(), UserFrom(r.Context()).ID, q, limit)
	if err != nil {
		fail(w, "search", err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: hits})
}
