package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lnledger/internal/core/domain"
	"lnledger/internal/core/ports"
	"lnledger/pkg/apperror"
)

// registrationWindow is the rolling window the daily registration cap
// is measured over.
const registrationWindow = 24 * time.Hour

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo         ports.UserRepository
	hashSvc          ports.HashService
	tokenSvc         ports.TokenService
	maxDailyNewUsers int64
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	maxDailyNewUsers int64,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		hashSvc:          hashSvc,
		tokenSvc:         tokenSvc,
		maxDailyNewUsers: maxDailyNewUsers,
	}
}

// Register creates a new user account and returns a session token. The
// daily registration cap is a soft admission check; the unique constraint
// on username is what actually prevents duplicate accounts.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (string, time.Time, error) {
	recent, err := s.userRepo.CountRegisteredSince(ctx, registrationWindow)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("count recent registrations: %w", err))
	}
	if recent >= s.maxDailyNewUsers {
		return "", time.Time{}, apperror.ErrRegistrationCapReached()
	}

	passwordHash, err := s.hashSvc.Hash(password)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return "", time.Time{}, apperror.ErrUsernameExists()
		}
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	token, expiry, err := s.tokenSvc.Generate(username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return token, expiry, nil
}

// Login validates credentials and returns a session token. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	return token, expiry, nil
}
