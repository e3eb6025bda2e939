package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"finlet/internal/models"
)

const SessionCookie = "finlet.session_token"

// ClientMeta is stored on the session for the session list.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

func MetaFromRequest(r *http.Request) ClientMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	return ClientMeta{IPAddress: ip, UserAgent: r.UserAgent()}
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth.newToken: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// TokenFromHeader extracts the session token. A bearer Authorization header
// wins over the session cookie.
func TokenFromHeader(h http.Header) string {
	if authz := h.Get("Authorization"); authz != "" {
		scheme, token, ok := strings.Cut(authz, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}

	r := http.Request{Header: h}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}

	return ""
}

func (a *Auth) SetSessionCookie(w http.ResponseWriter, s models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *Auth) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
