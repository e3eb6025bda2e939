package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sl "finlet/internal/lib/logger"
	"finlet/internal/models"
	"finlet/internal/storage"

	"github.com/google/uuid"
)

func (a *Auth) newSession(userID string, meta ClientMeta, now time.Time) (models.Session, error) {
	token, err := newToken()
	if err != nil {
		return models.Session{}, err
	}

	s := models.Session{
		ID:        uuid.NewString(),
		ExpiresAt: now.Add(a.cfg.SessionTTL),
		Token:     token,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
	}
	if meta.IPAddress != "" {
		s.IPAddress = &meta.IPAddress
	}
	if meta.UserAgent != "" {
		s.UserAgent = &meta.UserAgent
	}

	return s, nil
}

// ResolveSession looks up the session carried by the request headers. A nil
// identity with a nil error means there is no valid session. Validity is
// checked against the store on every call.
func (a *Auth) ResolveSession(ctx context.Context, h http.Header) (*Identity, error) {
	const op = "auth.ResolveSession"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	token := TokenFromHeader(h)
	if token == "" {
		return nil, nil
	}

	s, err := a.sessions.SessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, nil
		}

		span.RecordError(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := a.now()
	if s.IsExpired(now) {
		return nil, nil
	}

	user, err := a.usrProvider.UserByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil
		}

		span.RecordError(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if a.dueForRenewal(s, now) {
		expiresAt := now.Add(a.cfg.SessionTTL)
		if err := a.sessions.ExtendSession(ctx, s.ID, expiresAt, now); err != nil {
			sl.FromContext(ctx, a.log).Warn("failed to extend session",
				slog.String("op", op),
				slog.String("session_id", s.ID),
				sl.Err(err),
			)
		} else {
			s.ExpiresAt = expiresAt
			s.UpdatedAt = now
		}
	}

	return &Identity{User: user, Session: s}, nil
}

// dueForRenewal reports whether UpdateAge has passed since the expiry was
// last pushed forward.
func (a *Auth) dueForRenewal(s models.Session, now time.Time) bool {
	if a.cfg.UpdateAge <= 0 {
		return false
	}

	lastExtended := s.ExpiresAt.Add(-a.cfg.SessionTTL)

	return !now.Before(lastExtended.Add(a.cfg.UpdateAge))
}

// SignOut deletes the session. Unknown tokens are ignored.
func (a *Auth) SignOut(ctx context.Context, token string) error {
	const op = "auth.SignOut"

	if token == "" {
		return nil
	}

	if err := a.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListSessions returns the user's sessions that are still valid.
func (a *Auth) ListSessions(ctx context.Context, userID string) ([]models.Session, error) {
	const op = "auth.ListSessions"

	all, err := a.sessions.SessionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := a.now()
	active := make([]models.Session, 0, len(all))
	for _, s := range all {
		if !s.IsExpired(now) {
			active = append(active, s)
		}
	}

	return active, nil
}

func (a *Auth) RevokeSession(ctx context.Context, userID, token string) error {
	const op = "auth.RevokeSession"

	if err := a.sessions.DeleteUserSession(ctx, userID, token); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return ErrSessionNotFound
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Sweep deletes expired sessions and verification tokens.
func (a *Auth) Sweep(ctx context.Context) (sessions, verifications int64, err error) {
	const op = "auth.Sweep"

	now := a.now()

	sessions, err = a.sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	a.metrics.SessionsSwept(sessions)

	verifications, err = a.verifications.DeleteExpiredVerifications(ctx, now)
	if err != nil {
		return sessions, 0, fmt.Errorf("%s: %w", op, err)
	}

	a.log.Info("expired rows swept",
		slog.String("op", op),
		slog.Int64("sessions", sessions),
		slog.Int64("verifications", verifications),
	)

	return sessions, verifications, nil
}
