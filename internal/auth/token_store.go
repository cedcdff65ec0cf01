package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"postboard/internal/cache"
	apperrors "postboard/internal/errors"
	"postboard/internal/model"
	"postboard/internal/repository"
)

// AccessTokenTTL is the fixed lifetime of an issued bearer token.
const AccessTokenTTL = 600 * time.Second

const accessTokenKeyPrefix = "access_token:"

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	// Issue creates a token for userID and returns the plaintext once.
	Issue(ctx context.Context, userID uint) (string, *model.AccessToken, error)
	// Validate resolves a plaintext token. Missing, malformed, unknown and
	// expired tokens all yield errors.ErrUnauthenticated.
	Validate(ctx context.Context, plain string) (*model.AccessToken, error)
	Revoke(ctx context.Context, plain string) error
}

// TokenStore persists token hashes in the database and caches lookups in Redis.
type TokenStore struct {
	repo  repository.AccessTokenRepository
	cache *cache.Client
	now   func() time.Time
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(repo repository.AccessTokenRepository, cache *cache.Client) *TokenStore {
	return &TokenStore{repo: repo, cache: cache, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *TokenStore) WithClock(now func() time.Time) *TokenStore {
	s.now = now
	return s
}

type cachedToken struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HashToken returns the hex encoded SHA-256 digest stored for a plaintext token.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

func (s *TokenStore) Issue(ctx context.Context, userID uint) (string, *model.AccessToken, error) {
	plain := uuid.New().String()
	issuedAt := s.now()
	token := &model.AccessToken{
		UserID:    userID,
		TokenHash: HashToken(plain),
		ExpiresAt: issuedAt.Add(AccessTokenTTL),
		CreatedAt: issuedAt,
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return "", nil, fmt.Errorf("store access token: %w", err)
	}
	s.remember(ctx, token)
	return plain, token, nil
}

func (s *TokenStore) Validate(ctx context.Context, plain string) (*model.AccessToken, error) {
	if plain == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if _, err := uuid.Parse(plain); err != nil {
		return nil, apperrors.ErrUnauthenticated
	}
	hash := HashToken(plain)
	now := s.now()

	if data, _ := s.cache.Get(ctx, accessTokenKeyPrefix+hash); data != nil {
		var cached cachedToken
		if err := json.Unmarshal(data, &cached); err == nil {
			token := &model.AccessToken{ID: cached.ID, UserID: cached.UserID, TokenHash: hash, ExpiresAt: cached.ExpiresAt}
			if token.Expired(now) {
				return nil, apperrors.ErrUnauthenticated
			}
			return token, nil
		}
	}

	token, err := s.repo.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, fmt.Errorf("find access token: %w", err)
	}
	if token.Expired(now) {
		return nil, apperrors.ErrUnauthenticated
	}
	s.remember(ctx, token)
	return token, nil
}

func (s *TokenStore) Revoke(ctx context.Context, plain string) error {
	hash := HashToken(plain)
	_ = s.cache.Delete(ctx, accessTokenKeyPrefix+hash)
	if err := s.repo.DeleteByHash(ctx, hash); err != nil {
		return fmt.Errorf("delete access token: %w", err)
	}
	return nil
}

// remember caches a valid token until it expires.
func (s *TokenStore) remember(ctx context.Context, token *model.AccessToken) {
	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(cachedToken{ID: token.ID, UserID: token.UserID, ExpiresAt: token.ExpiresAt})
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, accessTokenKeyPrefix+token.TokenHash, payload, ttl)
}

// PruneExpired deletes tokens that can no longer authenticate.
func (s *TokenStore) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("prune access tokens: %w", err)
	}
	return n, nil
}
