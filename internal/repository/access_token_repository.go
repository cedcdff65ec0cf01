package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"postboard/internal/model"
)

// AccessTokenRepository persists hashed bearer tokens.
type AccessTokenRepository interface {
	Create(ctx context.Context, token *model.AccessToken) error
	FindByHash(ctx context.Context, hash string) (*model.AccessToken, error)
	DeleteByHash(ctx context.Context, hash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type accessTokenRepository struct {
	db *gorm.DB
}

// NewAccessTokenRepository creates a new access token repository.
func NewAccessTokenRepository(db *gorm.DB) AccessTokenRepository {
	return &accessTokenRepository{db: db}
}

func (r *accessTokenRepository) Create(ctx context.Context, token *model.AccessToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(token).Error
}

func (r *accessTokenRepository) FindByHash(ctx context.Context, hash string) (*model.AccessToken, error) {
	var token model.AccessToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *accessTokenRepository) DeleteByHash(ctx context.Context, hash string) error {
	return r.db.WithContext(ctx).Where("token_hash = ?", hash).Delete(&model.AccessToken{}).Error
}

// DeleteExpired purges tokens whose expiry is at or before now.
func (r *accessTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.AccessToken{})
	return res.RowsAffected, res.Error
}
