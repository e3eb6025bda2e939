package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "finlet/internal/lib/logger"
	"finlet/internal/models"
	"finlet/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

// RevokeSessions signs the user out everywhere.
func (a *Auth) RevokeSessions(ctx context.Context, userID string) error {
	const op = "auth.RevokeSessions"

	if err := a.sessions.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RevokeOtherSessions deletes every session of the user except keepToken and
// returns how many were removed.
func (a *Auth) RevokeOtherSessions(ctx context.Context, userID, keepToken string) (int, error) {
	const op = "auth.RevokeOtherSessions"

	all, err := a.sessions.SessionsByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	revoked := 0
	for _, s := range all {
		if s.Token == keepToken {
			continue
		}

		err := a.sessions.DeleteUserSession(ctx, userID, s.Token)
		if errors.Is(err, storage.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			return revoked, fmt.Errorf("%s: %w", op, err)
		}
		revoked++
	}

	return revoked, nil
}

func (a *Auth) ListAccounts(ctx context.Context, userID string) ([]models.Account, error) {
	const op = "auth.ListAccounts"

	accounts, err := a.usrProvider.AccountsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return accounts, nil
}

// DeleteUser removes the user after re-checking the password. Sessions,
// accounts and categories go with it.
func (a *Auth) DeleteUser(ctx context.Context, userID, password string) error {
	const op = "auth.DeleteUser"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	log := sl.FromContext(ctx, a.log).With(slog.String("op", op), slog.String("user_id", userID))

	account, err := a.usrProvider.AccountByProvider(ctx, userID, CredentialProvider)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			return ErrInvalidCredentials
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if account.Password == nil || bcrypt.CompareHashAndPassword([]byte(*account.Password), []byte(password)) != nil {
		log.Info("password mismatch on delete")
		return ErrInvalidCredentials
	}

	if err := a.usrSaver.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUnauthorized
		}

		span.RecordError(err)
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user deleted")

	return nil
}
