package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lionwox/blogging-platform-api/internal/domain"
	"github.com/lionwox/blogging-platform-api/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTokenNotFound covers missing, expired, and already-revoked tokens
// alike. Callers must not be able to tell which case they hit.
var ErrTokenNotFound = errors.New("refresh token not found")

type RefreshTokenRepository interface {
	Create(ctx context.Context, rt *domain.RefreshToken) error
	FindActive(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	Rotate(ctx context.Context, oldToken string, next *domain.RefreshToken) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type GormRefreshTokenRepository struct{ db *gorm.DB }

func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &GormRefreshTokenRepository{db: db}
}

func (r *GormRefreshTokenRepository) Create(ctx context.Context, rt *domain.RefreshToken) error {
	err := r.db.WithContext(ctx).Create(rt).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "refresh_token", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "refresh_token", "create", "success")
	return nil
}

func (r *GormRefreshTokenRepository) FindActive(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var rt domain.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND is_active = ? AND expires_at > ?", token, true, time.Now()).
		First(&rt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "refresh_token", "find_active", "not_found")
			return nil, ErrTokenNotFound
		}
		observability.RecordRepositoryOperation(ctx, "refresh_token", "find_active", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "refresh_token", "find_active", "success")
	return &rt, nil
}

// Revoke deactivates the token if it exists. Revoking an unknown or
// already-inactive token is a no-op.
func (r *GormRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	err := r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("token = ? AND is_active = ?", token, true).
		Update("is_active", false).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "refresh_token", "revoke", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "refresh_token", "revoke", "success")
	return nil
}

// Rotate deactivates oldToken and inserts next in one transaction. The row
// lock plus the is_active/expires_at predicate make the claim a check-and-set:
// under concurrent reuse of the same token exactly one caller wins, the rest
// get ErrTokenNotFound.
func (r *GormRefreshTokenRepository) Rotate(ctx context.Context, oldToken string, next *domain.RefreshToken) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current domain.RefreshToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token = ? AND is_active = ? AND expires_at > ?", oldToken, true, time.Now()).
			First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		if err := tx.Model(&domain.RefreshToken{}).
			Where("id = ?", current.ID).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Create(next).Error
	})
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			observability.RecordRepositoryOperation(ctx, "refresh_token", "rotate", "not_found")
		} else {
			observability.RecordRepositoryOperation(ctx, "refresh_token", "rotate", "error")
		}
		return err
	}
	observability.RecordRepositoryOperation(ctx, "refresh_token", "rotate", "success")
	return nil
}

// CleanupExpired removes rows past their expiry. Request paths never call
// this; it backs the operator sweep command.
func (r *GormRefreshTokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&domain.RefreshToken{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "refresh_token", "cleanup_expired", "error")
		return res.RowsAffected, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "refresh_token", "cleanup_expired", "success")
	return res.RowsAffected, nil
}
