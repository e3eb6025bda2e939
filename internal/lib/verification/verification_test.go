package verification

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"finlet/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	token, err := NewToken("user-1", "value-1", time.Minute, secret)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, Claims{UserID: "user-1", Value: "value-1"}, claims)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := NewToken("user-1", "value-1", time.Minute, secret)
	require.NoError(t, err)

	_, err = ParseToken(token, "another-secret-another-secret-xx")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := NewToken("user-1", "value-1", -time.Minute, secret)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_WrongPurpose(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     "user-1",
		"jti":     "value-1",
		"purpose": "password_reset",
		"exp":     time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLink(t *testing.T) {
	link := Link("http://localhost:3000", "a.b+c")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/verify-email", u.Path)
	assert.Equal(t, "a.b+c", u.Query().Get("token"))
}

type recordingPublisher struct {
	msgs []models.Message
	err  error
}

func (p *recordingPublisher) SendMessage(_ context.Context, msg models.Message) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestSendLink(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	pub := &recordingPublisher{err: errors.New("broker down")}

	SendLink(context.Background(), log, pub, "a@x.com", "http://link")

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "a@x.com", pub.msgs[0].Email)
	assert.Equal(t, models.PurposeEmailVerification, pub.msgs[0].Purpose)

	SendLink(context.Background(), log, nil, "a@x.com", "http://link")
}
