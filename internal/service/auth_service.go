package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"postboard/internal/auth"
	apperrors "postboard/internal/errors"
	"postboard/internal/model"
	"postboard/internal/repository"
	"postboard/internal/validation"
)

const bcryptCost = 10

const emailTakenMessage = "The email has already been taken."

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=6,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginInput carries credentials plus the client address used for throttling.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	ClientIP string `json:"-"`
}

// LoginResult is returned after a successful login. Token is the only copy of the plaintext.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

// LoginThrottle counts failed logins per key over a sliding window.
type LoginThrottle interface {
	TooManyAttempts(ctx context.Context, key string, limit int) (bool, error)
	Hit(ctx context.Context, key string) (int64, error)
	AvailableIn(ctx context.Context, key string, limit int) (int, error)
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	// Authenticate resolves the user behind a bearer token.
	Authenticate(ctx context.Context, token string) (*model.User, error)
	Logout(ctx context.Context, token string) error
}

type authService struct {
	userRepo    repository.UserRepository
	users       UserService
	tokenStore  auth.TokenStoreInterface
	throttle    LoginThrottle
	validator   *validation.Validator
	maxAttempts int
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	users UserService,
	tokenStore auth.TokenStoreInterface,
	throttle LoginThrottle,
	validator *validation.Validator,
	maxAttempts int,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		users:       users,
		tokenStore:  tokenStore,
		throttle:    throttle,
		validator:   validator,
		maxAttempts: maxAttempts,
	}
}

// Register creates a new user with a hashed password.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check user existence: %w", err)
	}
	if exists {
		return nil, apperrors.NewValidationError("email", emailTakenMessage)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewValidationError("email", emailTakenMessage)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login checks the throttle, verifies credentials and issues a bearer token.
// Validation failures and bad credentials both count as failed attempts.
func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	key := auth.LoginThrottleKey(in.ClientIP)

	// Check and Hit are separate round trips, so concurrent bad attempts can all
	// pass the check before any is recorded. Every failure is still counted and
	// the lockout starts once they land.
	blocked, err := s.throttle.TooManyAttempts(ctx, key, s.maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("check login throttle: %w", err)
	}
	if blocked {
		seconds, err := s.throttle.AvailableIn(ctx, key, s.maxAttempts)
		if err != nil {
			return nil, fmt.Errorf("read login throttle: %w", err)
		}
		if seconds < 1 {
			seconds = 1
		}
		return nil, &apperrors.RateLimitError{RetryAfter: seconds}
	}

	in.Email = strings.TrimSpace(in.Email)
	if err := s.validator.Struct(in); err != nil {
		return nil, s.fail(ctx, key, err)
	}

	user, err := s.userRepo.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.fail(ctx, key, apperrors.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, s.fail(ctx, key, apperrors.ErrInvalidCredentials)
	}

	plain, token, err := s.tokenStore.Issue(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Token:     plain,
		ExpiresAt: token.ExpiresAt,
		User:      user,
	}, nil
}

// fail records a failed attempt and returns cause, or the throttle error if recording failed.
func (s *authService) fail(ctx context.Context, key string, cause error) error {
	if _, err := s.throttle.Hit(ctx, key); err != nil {
		return fmt.Errorf("record failed login: %w", err)
	}
	return cause
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	accessToken, err := s.tokenStore.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, accessToken.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the presented token. Other tokens of the same user stay valid.
func (s *authService) Logout(ctx context.Context, token string) error {
	return s.tokenStore.Revoke(ctx, token)
}
