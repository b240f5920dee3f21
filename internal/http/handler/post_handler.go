package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lionwox/blogging-platform-api/internal/http/middleware"
	"github.com/lionwox/blogging-platform-api/internal/http/response"
	"github.com/lionwox/blogging-platform-api/internal/repository"
	"github.com/lionwox/blogging-platform-api/internal/service"
)

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type postRequest struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Published *bool   `json:"published,omitempty"`
	Contact   *string `json:"contact,omitempty"`
}

func (req *postRequest) toInput() (service.PostInput, bool) {
	if req.Title == "" || req.Content == "" {
		return service.PostInput{}, false
	}
	published := true
	if req.Published != nil {
		published = *req.Published
	}
	return service.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: published,
		Contact:   req.Contact,
	}, true
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.posts.List(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, rows)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, post)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed json body", nil)
		return
	}
	in, ok := req.toInput()
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "title and content are required", nil)
		return
	}

	post, err := h.posts.Create(r.Context(), principal.ID, in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContact) {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	response.JSON(w, r, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, ok := postID(w, r)
	if !ok {
		return
	}
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed json body", nil)
		return
	}
	in, ok := req.toInput()
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "title and content are required", nil)
		return
	}

	post, err := h.posts.Update(r.Context(), principal.ID, id, in)
	if err != nil {
		writePostMutationError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, ok := postID(w, r)
	if !ok {
		return
	}
	if err := h.posts.Delete(r.Context(), principal.ID, id); err != nil {
		writePostMutationError(w, r, err)
		return
	}
	response.NoContent(w)
}

func writePostMutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrPostNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
	case errors.Is(err, service.ErrNotPostOwner):
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "not authorized to perform requested action", nil)
	case errors.Is(err, service.ErrInvalidContact):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}

func postID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid post id", nil)
		return 0, false
	}
	return uint(id), true
}
