package repository

import (
	"context"
	"errors"

	"github.com/lionwox/blogging-platform-api/internal/domain"
	"github.com/lionwox/blogging-platform-api/internal/observability"

	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id uint) (*domain.Post, error)
	ListWithVotes(ctx context.Context) ([]domain.PostWithVotes, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id uint) error
}

type GormPostRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &GormPostRepository{db: db} }

func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "post", "create", "success")
	return nil
}

func (r *GormPostRepository) FindByID(ctx context.Context, id uint) (*domain.Post, error) {
	var p domain.Post
	err := r.db.WithContext(ctx).Preload("Owner").First(&p, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "post", "find_by_id", "not_found")
			return nil, ErrPostNotFound
		}
		observability.RecordRepositoryOperation(ctx, "post", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "post", "find_by_id", "success")
	return &p, nil
}

// ListWithVotes returns every post together with its vote count via a
// single grouped outer join.
func (r *GormPostRepository) ListWithVotes(ctx context.Context) ([]domain.PostWithVotes, error) {
	var rows []domain.PostWithVotes
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Select("posts.*, COUNT(votes.post_id) AS votes").
		Joins("LEFT JOIN votes ON votes.post_id = posts.id").
		Group("posts.id").
		Order("posts.id").
		Find(&rows).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "post", "list_with_votes", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "post", "list_with_votes", "success")
	return rows, nil
}

func (r *GormPostRepository) Update(ctx context.Context, post *domain.Post) error {
	res := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"title":     post.Title,
			"content":   post.Content,
			"published": post.Published,
			"contact":   post.Contact,
		})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "post", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "post", "update", "not_found")
		return ErrPostNotFound
	}
	observability.RecordRepositoryOperation(ctx, "post", "update", "success")
	return nil
}

// Delete removes the post and its vote rows in one transaction. The schema
// cascades votes too, but not every driver enforces foreign keys, so the
// delete is explicit.
func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.Vote{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			observability.RecordRepositoryOperation(ctx, "post", "delete", "not_found")
		} else {
			observability.RecordRepositoryOperation(ctx, "post", "delete", "error")
		}
		return err
	}
	observability.RecordRepositoryOperation(ctx, "post", "delete", "success")
	return nil
}
