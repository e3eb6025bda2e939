package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	sl "finlet/internal/lib/logger"
	"finlet/internal/lib/validate"
	"finlet/internal/models"
	"finlet/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type SignUpInput struct {
	Name     string  `json:"name" validate:"max=128"`
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,max=128"`
	Image    *string `json:"image,omitempty" validate:"omitempty,url"`
}

type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

const (
	signInSuccess = "success"
	signInFailure = "failure"
)

func (a *Auth) validateStruct(v any) error {
	if err := a.validate.Struct(v); err != nil {
		return &ValidationError{Fields: validate.Fields(err)}
	}

	return nil
}

// SignUp creates the user, its credential account and a first session in
// one transaction, then fires the after sign-up hooks.
func (a *Auth) SignUp(ctx context.Context, in SignUpInput, meta ClientMeta) (*Identity, error) {
	const op = "auth.SignUp"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	log := sl.FromContext(ctx, a.log).With(slog.String("op", op))

	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if err := a.validateStruct(in); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(in.Password) < a.cfg.MinPasswordLength {
		return nil, &ValidationError{Fields: map[string]string{
			"password": fmt.Sprintf("must be at least %d characters", a.cfg.MinPasswordLength),
		}}
	}

	if in.Name == "" {
		in.Name, _, _ = strings.Cut(in.Email, "@")
	}

	_, err := a.usrProvider.UserByEmail(ctx, in.Email)
	if err == nil {
		log.Info("email already registered")
		return nil, fmt.Errorf("%s: %w", op, ErrCredentialConflict)
	}
	if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}
	hash := string(passHash)

	now := a.now()

	user := models.User{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Image:     in.Image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	account := models.Account{
		ID:         uuid.NewString(),
		AccountID:  user.ID,
		ProviderID: CredentialProvider,
		UserID:     user.ID,
		Password:   &hash,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	session, err := a.newSession(user.ID, meta, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.CreateUserWithAccount(ctx, user, account, session); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Info("email already registered")
			return nil, fmt.Errorf("%s: %w", op, ErrCredentialConflict)
		}

		span.RecordError(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id := Identity{User: user, Session: session}

	a.metrics.SignUp()
	log.Info("user signed up", slog.String("user_id", user.ID))

	a.dispatchSignUp(ctx, id)

	return &id, nil
}

// SignIn checks email and password and opens a new session. Every failure
// to authenticate is reported as ErrInvalidCredentials.
func (a *Auth) SignIn(ctx context.Context, in SignInInput, meta ClientMeta) (*Identity, error) {
	const op = "auth.SignIn"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	log := sl.FromContext(ctx, a.log).With(slog.String("op", op))

	in.Email = strings.TrimSpace(in.Email)

	if err := a.validateStruct(in); err != nil {
		return nil, err
	}

	user, err := a.usrProvider.UserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			a.metrics.SignIn(signInFailure)
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	account, err := a.usrProvider.AccountByProvider(ctx, user.ID, CredentialProvider)
	if err != nil {
		if errors.Is(err, storage.ErrAccountNotFound) {
			log.Info("no credential account", slog.String("user_id", user.ID))
			a.metrics.SignIn(signInFailure)
			return nil, ErrInvalidCredentials
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if account.Password == nil {
		a.metrics.SignIn(signInFailure)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*account.Password), []byte(in.Password)); err != nil {
		log.Info("invalid credentials", slog.String("user_id", user.ID))
		a.metrics.SignIn(signInFailure)
		return nil, ErrInvalidCredentials
	}

	session, err := a.newSession(user.ID, meta, a.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.sessions.CreateSession(ctx, session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.metrics.SignIn(signInSuccess)
	log.Info("user signed in", slog.String("user_id", user.ID))

	return &Identity{User: user, Session: session}, nil
}
