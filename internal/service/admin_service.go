package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"lnledger/internal/core/domain"
	"lnledger/internal/core/ports"
	"lnledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// AdminServiceImpl implements ports.AdminService.
type AdminServiceImpl struct {
	userRepo   ports.UserRepository
	settlement ports.SettlementEngine
	log        zerolog.Logger
}

// NewAdminService creates a new AdminServiceImpl.
func NewAdminService(userRepo ports.UserRepository, settlement ports.SettlementEngine, log zerolog.Logger) *AdminServiceImpl {
	return &AdminServiceImpl{
		userRepo:   userRepo,
		settlement: settlement,
		log:        log.With().Str("component", "admin").Logger(),
	}
}

// CreditUser mints a receipt for the user outside any invoice flow. The
// synthesized payment hash keeps the credit unique in the ledger and
// distinguishable from network receives.
func (s *AdminServiceImpl) CreditUser(ctx context.Context, username string, amountMsat int64) error {
	if amountMsat <= 0 {
		return apperror.Validation("Credit amount must be positive")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return apperror.ErrUserNotFound()
	}

	hash, err := randomHex(32)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("generate credit hash: %w", err))
	}

	receipt := domain.Receipt{
		PaymentHash: hash,
		Username:    username,
		AmountMsat:  amountMsat,
		Description: "Admin credit",
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.settlement.SettleIncoming(ctx, receipt); err != nil {
		return apperror.InternalError(fmt.Errorf("settle credit: %w", err))
	}

	s.log.Info().
		Str("username", username).
		Int64("amount_msat", amountMsat).
		Msg("credited user")
	return nil
}

// ListUsers returns every user with its computed balance.
func (s *AdminServiceImpl) ListUsers(ctx context.Context) ([]domain.UserInfo, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list users: %w", err))
	}
	return users, nil
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
