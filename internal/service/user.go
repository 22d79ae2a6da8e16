package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nhasan/codenest/internal/apperror"
	"github.com/nhasan/codenest/internal/model"
	"github.com/nhasan/codenest/internal/repository"
)

// UserService provisions and looks up accounts. Provisioning is driven by the
// identity-provider webhook; this layer trusts its caller — signature and
// header checks belong to the transport.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger,
	}
}

// Sync provisions the account for an external identity, idempotently.
//
// If no user exists for the identity, one is inserted with pro tier off.
// If one already exists, nothing happens — replaying the same event never
// creates duplicates or touches tier/billing fields.
//
// Two concurrent first syncs can both observe "not found" and both insert;
// the unique index on the identity makes the loser fail with a conflict
// instead of double-inserting, and Sync absorbs that conflict as "already
// provisioned".
func (s *UserService) Sync(ctx context.Context, userID, email, name string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperror.ValidationFailed("userId", "user ID is required")
	}

	_, err := s.users.GetByUserID(ctx, userID)
	if err == nil {
		// Already provisioned; replay is a no-op.
		return nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return fmt.Errorf("checking existing user: %w", err)
	}

	user := &model.User{
		UserID: userID,
		Email:  email,
		Name:   name,
		IsPro:  false,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Lost the first-sync race to a concurrent event; the account exists.
			return nil
		}
		s.logger.Error("failed to provision user",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("provisioning user: %w", err)
	}

	s.logger.Info("user provisioned",
		slog.String("userId", userID),
		slog.String("email", email),
	)

	return nil
}

// GetByUserID returns the account for an external identity, or ErrNotFound.
func (s *UserService) GetByUserID(ctx context.Context, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}
	return s.users.GetByUserID(ctx, userID)
}

// UpgradeToPro records a billing-tier transition for the identity.
func (s *UserService) UpgradeToPro(ctx context.Context, userID, customerID, orderID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperror.ValidationFailed("userId", "user ID is required")
	}

	if err := s.users.SetProTier(ctx, userID, customerID, orderID); err != nil {
		return err
	}

	s.logger.Info("user upgraded to pro", slog.String("userId", userID))
	return nil
}
