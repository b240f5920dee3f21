package repository

import (
	"context"
	"errors"

	"github.com/lionwox/blogging-platform-api/internal/domain"
	"github.com/lionwox/blogging-platform-api/internal/observability"

	"gorm.io/gorm"
)

var (
	ErrVoteNotFound = errors.New("vote not found")
	ErrVoteExists   = errors.New("vote already exists")
)

type VoteRepository interface {
	Find(ctx context.Context, postID, userID uint) (*domain.Vote, error)
	Create(ctx context.Context, vote *domain.Vote) error
	Delete(ctx context.Context, postID, userID uint) error
}

type GormVoteRepository struct{ db *gorm.DB }

func NewVoteRepository(db *gorm.DB) VoteRepository { return &GormVoteRepository{db: db} }

func (r *GormVoteRepository) Find(ctx context.Context, postID, userID uint) (*domain.Vote, error) {
	var v domain.Vote
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "vote", "find", "not_found")
			return nil, ErrVoteNotFound
		}
		observability.RecordRepositoryOperation(ctx, "vote", "find", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "vote", "find", "success")
	return &v, nil
}

func (r *GormVoteRepository) Create(ctx context.Context, vote *domain.Vote) error {
	err := r.db.WithContext(ctx).Create(vote).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(ctx, "vote", "create", "duplicate")
			return ErrVoteExists
		}
		observability.RecordRepositoryOperation(ctx, "vote", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "vote", "create", "success")
	return nil
}

func (r *GormVoteRepository) Delete(ctx context.Context, postID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&domain.Vote{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "vote", "delete", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "vote", "delete", "not_found")
		return ErrVoteNotFound
	}
	observability.RecordRepositoryOperation(ctx, "vote", "delete", "success")
	return nil
}
