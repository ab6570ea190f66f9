package api

import (
	"net/http"
	"strings"

	"github.com/starford/draftdeck/internal/checksum"
)

// Refine handles POST /refine.
//
//	@Summary		Rewrite a section with AI following instructions
//	@Tags			sections
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RefineRequest	true	"Section and instructions"
//	@Success		200		{object}	RefineResponse
//	@Failure		404		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/refine [post]
func (h *Handler) Refine(w http.ResponseWriter, r *http.Request) {
	var req RefineRequest
	if !decode(w, r, &req) {
		return
	}
	ref, err := h.docs.Refine(r.Context(), UserFrom(r.Context()).ID, req.SectionID, req.Prompt)
	if err != nil {
		fail(w, "refine", err, "Section not found")
		return
	}
	writeJSON(w, http.StatusOK, RefineResponse{RefinementID: ref.ID, NewContent: ref.NewContent})
}

// Comment handles POST /comment.
//
//	@Summary		Comment on a section
//	@Tags			sections
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CommentRequest	true	"Section and text"
//	@Success		200		{object}	models.Comment
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/comment [post]
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := h.docs.AddComment(r.Context(), UserFrom(r.Context()).ID, req.SectionID, req.Text)
	if err != nil {
		fail(w, "comment", err, "Section not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// SaveSection handles PUT /sections/{id}.
//
//	@Summary		Save edited section content with optimistic concurrency
//	@Tags			sections
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int					true	"Section ID"
//	@Param			If-Match	header		string				false	"SHA-256 checksum of the current content"
//	@Param			body		body		SaveSectionRequest	true	"New content"
//	@Success		200			{object}	SectionDetail
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections/{id} [put]
func (h *Handler) SaveSection(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SaveSectionRequest
	if !decode(w, r, &req) {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	sec, err := h.docs.SaveSection(r.Context(), UserFrom(r.Context()).ID, id, req.Content, ifMatch)
	if err != nil {
		fail(w, "save section", err, "Section not found")
		return
	}
	sum := checksum.Sum(sec.Content)
	w.Header().Set("ETag", `"`+sum+`"`)
	writeJSON(w, http.StatusOK, SectionDetail{Section: *sec, Checksum: sum})
}

// ListComments handles GET /sections/{id}/comments.
//
//	@Summary		List a section's comments
//	@Tags			sections
//	@Produce		json
//	@Param			id	path	int	true	"Section ID"
//	@Success		200	{array}	models.Comment
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections/{id}/comments [get]
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	comments, err := h.docs.Comments(r.Context(), UserFrom(r.Context()).ID, id)
	if err != nil {
		fail(w, "list comments", err, "Section not found")
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// ListRefinements handles GET /sections/{id}/refinements.
//
//	@Summary		List a section's refinement history
//	@Tags			sections
//	@Produce		json
//	@Param			id	path	int	true	"Section ID"
//	@Success		200	{array}	models.Refinement
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sections/{id}/refinements [get]
func (h *Handler) ListRefinements(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	refs, err := h.docs.Refinements(r.Context(), UserFrom(r.Context()).ID, id)
	if err != nil {
		fail(w, "list refinements", err, "Section not found")
		return
	}
	writeJSON(w, http.StatusOK, refs)
}
