package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	sl "finlet/internal/lib/logger"
	"finlet/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid verification token")

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

type Claims struct {
	UserID string
	Value  string
}

// NewToken signs a short-lived email verification token. value is the
// single-use verification row value and travels as the jti claim.
func NewToken(userID, value string, ttl time.Duration, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":     userID,
		"jti":     value,
		"purpose": models.PurposeEmailVerification,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

func ParseToken(tokenStr, secret string) (Claims, error) {
	const op = "verification.ParseToken"

	claims := jwt.MapClaims{}

	parsedToken, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: unexpected signing method", op)
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	if !parsedToken.Valid {
		return Claims{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if purpose, ok := claims["purpose"].(string); !ok || purpose != models.PurposeEmailVerification {
		return Claims{}, fmt.Errorf("%s: %w: wrong purpose", op, ErrInvalidToken)
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, fmt.Errorf("%s: %w: missing sub claim", op, ErrInvalidToken)
	}

	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return Claims{}, fmt.Errorf("%s: %w: missing jti claim", op, ErrInvalidToken)
	}

	return Claims{UserID: sub, Value: jti}, nil
}

func Link(baseURL, token string) string {
	return fmt.Sprintf("%s/api/auth/verify-email?token=%s", baseURL, url.QueryEscape(token))
}

// SendLink queues the verification email. A publish failure is logged and
// swallowed so the caller's flow is not interrupted by the broker.
func SendLink(ctx context.Context, log *slog.Logger, pub Publisher, email, link string) {
	msg := models.Message{
		Email:   email,
		Subject: "Verify your email address",
		Link:    link,
		Purpose: models.PurposeEmailVerification,
	}

	if pub == nil {
		log.Info("no message broker configured, verification link not queued", slog.String("link", link))
		return
	}

	if err := pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to send verification link", sl.Err(err))
	}
}
