package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lionwox/blogging-platform-api/internal/http/middleware"
	"github.com/lionwox/blogging-platform-api/internal/http/response"
	"github.com/lionwox/blogging-platform-api/internal/repository"
	"github.com/lionwox/blogging-platform-api/internal/service"
)

type VoteHandler struct {
	votes *service.VoteService
}

func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type voteRequest struct {
	PostID uint `json:"post_id"`
	Dir    int  `json:"dir"`
}

// Vote casts (dir=1) or withdraws (dir=0) the caller's vote on a post.
func (h *VoteHandler) Vote(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed json body", nil)
		return
	}
	if req.Dir != 0 && req.Dir != 1 {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "dir must be 0 or 1", nil)
		return
	}

	if req.Dir == 1 {
		err := h.votes.Cast(r.Context(), principal.ID, req.PostID)
		switch {
		case err == nil:
			response.JSON(w, r, http.StatusCreated, map[string]string{"message": "vote added successfully"})
		case errors.Is(err, service.ErrAlreadyVoted):
			response.Error(w, r, http.StatusConflict, "CONFLICT", "vote already exists", nil)
		case errors.Is(err, repository.ErrPostNotFound):
			response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "post not found", nil)
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		}
		return
	}

	err := h.votes.Remove(r.Context(), principal.ID, req.PostID)
	switch {
	case err == nil:
		response.JSON(w, r, http.StatusOK, map[string]string{"message": "vote deleted successfully"})
	case errors.Is(err, service.ErrVoteMissing):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "vote not found", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
