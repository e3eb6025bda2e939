// Package memory is an in-process gateway with the same constraints as the
// Postgres schema: unique email, unique session token, unique
// (provider, account id), unique (user, category name) and cascade delete.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"finlet/internal/models"
	"finlet/internal/storage"
)

type Storage struct {
	mu            sync.RWMutex
	users         map[string]models.User
	accounts      map[string]models.Account
	sessions      map[string]models.Session
	verifications map[string]models.Verification
	categories    map[string]models.Category
}

func New() *Storage {
	return &Storage{
		users:         make(map[string]models.User),
		accounts:      make(map[string]models.Account),
		sessions:      make(map[string]models.Session),
		verifications: make(map[string]models.Verification),
		categories:    make(map[string]models.Category),
	}
}

func (s *Storage) Ping(context.Context) error { return nil }

func (s *Storage) CreateUserWithAccount(
	ctx context.Context,
	user models.User,
	account models.Account,
	session models.Session,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return storage.ErrUserExists
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return storage.ErrUserExists
		}
	}
	for _, a := range s.accounts {
		if a.ProviderID == account.ProviderID && a.AccountID == account.AccountID {
			return storage.ErrUserExists
		}
	}
	if s.tokenTaken(session.Token) {
		return storage.ErrUserExists
	}

	s.users[user.ID] = user
	s.accounts[account.ID] = account
	s.sessions[session.ID] = session

	return nil
}

func (s *Storage) tokenTaken(token string) bool {
	for _, existing := range s.sessions {
		if existing.Token == token {
			return true
		}
	}

	return false
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *Storage) UserByID(ctx context.Context, id string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (s *Storage) SetEmailVerified(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	u.EmailVerified = true
	u.UpdatedAt = time.Now()
	s.users[userID] = u

	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return storage.ErrUserNotFound
	}

	delete(s.users, id)
	for k, a := range s.accounts {
		if a.UserID == id {
			delete(s.accounts, k)
		}
	}
	for k, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, k)
		}
	}
	for k, c := range s.categories {
		if c.UserID == id {
			delete(s.categories, k)
		}
	}

	return nil
}

func (s *Storage) AccountByProvider(ctx context.Context, userID, providerID string) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.UserID == userID && a.ProviderID == providerID {
			return a, nil
		}
	}

	return models.Account{}, storage.ErrAccountNotFound
}

func (s *Storage) AccountsByUser(ctx context.Context, userID string) ([]models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Account
	for _, a := range s.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out, nil
}

func (s *Storage) CreateSession(ctx context.Context, session models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[session.UserID]; !ok {
		return storage.ErrUserNotFound
	}
	if s.tokenTaken(session.Token) {
		return storage.ErrUserExists
	}

	s.sessions[session.ID] = session

	return nil
}

func (s *Storage) SessionByToken(ctx context.Context, token string) (models.Session, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sess := range s.sessions {
		if sess.Token == token {
			return sess, nil
		}
	}

	return models.Session{}, storage.ErrSessionNotFound
}

func (s *Storage) SessionsByUser(ctx context.Context, userID string) ([]models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

func (s *Storage) ExtendSession(ctx context.Context, id string, expiresAt, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return storage.ErrSessionNotFound
	}

	sess.ExpiresAt = expiresAt
	sess.UpdatedAt = updatedAt
	s.sessions[id] = sess

	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, sess := range s.sessions {
		if sess.Token == token {
			delete(s.sessions, k)
		}
	}

	return nil
}

func (s *Storage) DeleteUserSession(ctx context.Context, userID, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, sess := range s.sessions {
		if sess.Token == token && sess.UserID == userID {
			delete(s.sessions, k)
			return nil
		}
	}

	return storage.ErrSessionNotFound
}

func (s *Storage) DeleteUserSessions(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, k)
		}
	}

	return nil
}

func (s *Storage) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, k)
			n++
		}
	}

	return n, nil
}

func (s *Storage) CreateVerification(ctx context.Context, v models.Verification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.verifications[v.ID] = v

	return nil
}

func (s *Storage) VerificationByValue(ctx context.Context, value string) (models.Verification, error) {
	if err := ctx.Err(); err != nil {
		return models.Verification{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.verifications {
		if v.Value == value {
			return v, nil
		}
	}

	return models.Verification{}, storage.ErrVerificationNotFound
}

func (s *Storage) DeleteVerification(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.verifications, id)

	return nil
}

func (s *Storage) DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, v := range s.verifications {
		if v.IsExpired(now) {
			delete(s.verifications, k)
			n++
		}
	}

	return n, nil
}

func (s *Storage) categoryNameTaken(userID, name string) bool {
	for _, c := range s.categories {
		if c.UserID == userID && c.Name == name {
			return true
		}
	}

	return false
}

func (s *Storage) UpsertCategories(ctx context.Context, categories []models.Category) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var inserted int64
	for _, c := range categories {
		if _, ok := s.users[c.UserID]; !ok {
			return 0, storage.ErrUserNotFound
		}
		if s.categoryNameTaken(c.UserID, c.Name) {
			continue
		}
		s.categories[c.ID] = c
		inserted++
	}

	return inserted, nil
}

func (s *Storage) CategoriesByUser(ctx context.Context, userID string) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})

	return out, nil
}

func (s *Storage) CreateCategory(ctx context.Context, c models.Category) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[c.UserID]; !ok {
		return storage.ErrUserNotFound
	}
	if s.categoryNameTaken(c.UserID, c.Name) {
		return storage.ErrCategoryExists
	}

	s.categories[c.ID] = c

	return nil
}

func (s *Storage) DeleteCategory(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return storage.ErrCategoryNotFound
	}

	delete(s.categories, id)

	return nil
}

// Counts reports row counts per table, for assertions in tests.
type Counts struct {
	Users, Accounts, Sessions, Verifications, Categories int
}

func (s *Storage) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Counts{
		Users:         len(s.users),
		Accounts:      len(s.accounts),
		Sessions:      len(s.sessions),
		Verifications: len(s.verifications),
		Categories:    len(s.categories),
	}
}
