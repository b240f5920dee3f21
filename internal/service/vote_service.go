package service

import (
	"context"
	"errors"

	"github.com/lionwox/blogging-platform-api/internal/domain"
	"github.com/lionwox/blogging-platform-api/internal/observability"
	"github.com/lionwox/blogging-platform-api/internal/repository"
)

var (
	ErrAlreadyVoted = errors.New("vote already exists")
	ErrVoteMissing  = errors.New("vote not found")
)

type VoteService struct {
	votes repository.VoteRepository
	posts repository.PostRepository
}

func NewVoteService(votes repository.VoteRepository, posts repository.PostRepository) *VoteService {
	return &VoteService{votes: votes, posts: posts}
}

// Cast adds the caller's vote on a post. Voting twice is a conflict.
func (s *VoteService) Cast(ctx context.Context, userID, postID uint) error {
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return err
	}
	err := s.votes.Create(ctx, &domain.Vote{PostID: postID, UserID: userID})
	if err != nil {
		if errors.Is(err, repository.ErrVoteExists) {
			return ErrAlreadyVoted
		}
		return err
	}
	observability.RecordVoteMutation("cast")
	return nil
}

// Remove withdraws the caller's vote.
func (s *VoteService) Remove(ctx context.Context, userID, postID uint) error {
	err := s.votes.Delete(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrVoteNotFound) {
			return ErrVoteMissing
		}
		return err
	}
	observability.RecordVoteMutation("remove")
	return nil
}
