package auth

import (
	"context"

	"finlet/internal/models"
)

type Identity struct {
	User    models.User    `json:"user"`
	Session models.Session `json:"session"`
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by the guard, or nil.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
