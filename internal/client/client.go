// Package client is a typed HTTP client for the draftdeck API.
//
// A Client holds the bearer token set by Register or Login and sends it on
// every other call. It is not safe for concurrent use; callers issue one
// request at a time.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/starford/draftdeck/internal/documents"
	"github.com/starford/draftdeck/internal/models"
)

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Detail string
	Body   string
}

// Error returns the server's detail message, or the raw body when the
// response had none.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// Client talks to one draftdeck server.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken starts the client with an existing access token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the current access token, empty when logged out.
func (c *Client) Token() string { return c.token }

// SetToken replaces the access token.
func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) newRequest(ctx context.Context, method, path string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil && len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil {
			apiErr.Detail = s
		} else {
			apiErr.Detail = string(body.Detail)
		}
	}
	return nil, apiErr
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	req, err := c.newRequest(ctx, method, path, in)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) error {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"email": email, "password": password}, &resp); err != nil {
		return err
	}
	c.token = resp.AccessToken
	return nil
}

// Register creates an account and keeps its token.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/auth/register", email, password)
}

// Login exchanges credentials for a token and keeps it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	return c.authenticate(ctx, "/auth/login", email, password)
}

// ListProjects returns the caller's projects.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProject creates a project with optional initial sections.
func (c *Client) CreateProject(ctx context.Context, in documents.NewProject) (*models.Project, error) {
	if in.Sections == nil {
		in.Sections = []documents.NewSection{}
	}
	var out models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject returns a project with its ordered sections.
func (c *Client) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var out models.Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/projects/"+strconv.FormatInt(id, 10), nil, nil)
}

// Generate fills every section of a project; it returns once the server
// has finished.
func (c *Client) Generate(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/generate", id), nil, nil)
}

// SuggestOutline asks for count section titles.
func (c *Client) SuggestOutline(ctx context.Context, id int64, count int) ([]string, error) {
	var out struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/suggest_outline", id), map[string]int{"count": count}, &out); err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// CreatedSection is a section made by ApplyOutline.
type CreatedSection struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ApplyOutline appends one section per title.
func (c *Client) ApplyOutline(ctx context.Context, id int64, titles []string) ([]CreatedSection, error) {
	var out struct {
		Created []CreatedSection `json:"created"`
	}
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/projects/%d/apply_outline", id), map[string][]string{"titles": titles}, &out); err != nil {
		return nil, err
	}
	return out.Created, nil
}

// Refinement is the result of Refine.
type Refinement struct {
	RefinementID int64  `json:"refinement_id"`
	NewContent   string `json:"new_content"`
}

// Refine rewrites a section following prompt.
func (c *Client) Refine(ctx context.Context, sectionID int64, prompt string) (*Refinement, error) {
	var out Refinement
	body := map[string]any{"section_id": sectionID, "prompt": prompt}
	if err := c.do(ctx, http.MethodPost, "/refine", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SavedSection is a section with the checksum of its content.
type SavedSection struct {
	models.Section
	Checksum string `json:"checksum"`
}

// SaveSection replaces a section's content. A non-empty ifMatch makes the
// save fail with a 409 APIError when the content changed meanwhile.
func (c *Client) SaveSection(ctx context.Context, sectionID int64, content, ifMatch string) (*SavedSection, error) {
	path := "/sections/" + strconv.FormatInt(sectionID, 10)
	req, err := c.newRequest(ctx, http.MethodPut, path, map[string]string{"content": content})
	if err != nil {
		return nil, err
	}
	if ifMatch != "" {
		req.Header.Set("If-Match", `"`+ifMatch+`"`)
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var out SavedSection
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("client: decode PUT %s: %w", path, err)
	}
	return &out, nil
}

// Comment attaches a comment to a section.
func (c *Client) Comment(ctx context.Context, sectionID int64, text string) (*models.Comment, error) {
	var out models.Comment
	body := map[string]any{"section_id": sectionID, "text": text}
	if err := c.do(ctx, http.MethodPost, "/comment", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Comments lists a section's comments.
func (c *Client) Comments(ctx context.Context, sectionID int64) ([]models.Comment, error) {
	var out []models.Comment
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/sections/%d/comments", sectionID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Refinements lists a section's refinement history.
func (c *Client) Refinements(ctx context.Context, sectionID int64) ([]models.Refinement, error) {
	var out []models.Refinement
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/sections/%d/refinements", sectionID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Download is an exported file.
type Download struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export downloads a project as docx or pptx. The name is project_<id>,
// with the extension the server reports in Content-Disposition.
func (c *Client) Export(ctx context.Context, id int64) (*Download, error) {
	path := "/export/" + strconv.FormatInt(id, 10)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read export: %w", err)
	}
	name := fmt.Sprintf("project_%d", id)
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return &Download{Name: name, ContentType: resp.Header.Get("Content-Type"), Data: data}, nil
}

// Search finds sections matching q across the caller's projects.
func (c *Client) Search(ctx context.Context, q string) ([]models.SearchHit, error) {
	var out struct {
		Results []models.SearchHit `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/search?q="+url.QueryEscape(q), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}
