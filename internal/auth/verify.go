package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sl "finlet/internal/lib/logger"
	"finlet/internal/lib/verification"
	"finlet/internal/models"
	"finlet/internal/storage"

	"github.com/google/uuid"
)

type SendVerificationInput struct {
	Email string `json:"email" validate:"required,email"`
}

// SendVerificationEmail queues a verification link for an unverified user.
// Unknown or already verified addresses are accepted silently.
func (a *Auth) SendVerificationEmail(ctx context.Context, in SendVerificationInput) error {
	const op = "auth.SendVerificationEmail"

	log := sl.FromContext(ctx, a.log).With(slog.String("op", op))

	in.Email = strings.TrimSpace(in.Email)
	if err := a.validateStruct(in); err != nil {
		return err
	}

	user, err := a.usrProvider.UserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("verification requested for unknown email")
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if user.EmailVerified {
		log.Info("email already verified", slog.String("user_id", user.ID))
		return nil
	}

	value, err := newToken()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := a.now()
	v := models.Verification{
		ID:         uuid.NewString(),
		Identifier: user.Email,
		Value:      value,
		ExpiresAt:  now.Add(a.cfg.VerificationTTL),
		CreatedAt:  &now,
		UpdatedAt:  &now,
	}

	if err := a.verifications.CreateVerification(ctx, v); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := verification.NewToken(user.ID, value, a.cfg.VerificationTTL, a.cfg.Secret)
	if err != nil {
		return fmt.Errorf("%s: failed to sign token: %w", op, err)
	}

	verification.SendLink(ctx, log, a.publisher, user.Email, verification.Link(a.cfg.BaseURL, token))

	return nil
}

// VerifyEmail redeems a verification token. Tokens are single use.
func (a *Auth) VerifyEmail(ctx context.Context, token string) (models.User, error) {
	const op = "auth.VerifyEmail"

	log := sl.FromContext(ctx, a.log).With(slog.String("op", op))

	claims, err := verification.ParseToken(token, a.cfg.Secret)
	if err != nil {
		log.Info("rejected verification token", sl.Err(err))
		return models.User{}, ErrInvalidVerification
	}

	v, err := a.verifications.VerificationByValue(ctx, claims.Value)
	if err != nil {
		if errors.Is(err, storage.ErrVerificationNotFound) {
			return models.User{}, ErrInvalidVerification
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if v.IsExpired(a.now()) {
		_ = a.verifications.DeleteVerification(ctx, v.ID)
		return models.User{}, ErrInvalidVerification
	}

	user, err := a.usrProvider.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrInvalidVerification
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if user.Email != v.Identifier {
		return models.User{}, ErrInvalidVerification
	}

	if err := a.usrSaver.SetEmailVerified(ctx, user.ID); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.verifications.DeleteVerification(ctx, v.ID); err != nil {
		log.Warn("failed to delete used verification", sl.Err(err))
	}

	user.EmailVerified = true
	log.Info("email verified", slog.String("user_id", user.ID))

	return user, nil
}
