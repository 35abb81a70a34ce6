package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// lookupTimeout bounds a shared token lookup once it no longer follows the
// caller's context.
const lookupTimeout = 5 * time.Second

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// TokenStore persists bearer tokens. Lookup returns ErrTokenNotFound for
// unknown tokens; Delete of an unknown token is not an error.
type TokenStore interface {
	Save(ctx context.Context, token *entities.AuthToken) error
	Lookup(ctx context.Context, token string) (*entities.AuthToken, error)
	Delete(ctx context.Context, token string) error
}

// Manager issues and resolves bearer tokens.
type Manager struct {
	store  TokenStore
	users  interfaces.UserRepository
	ttl    time.Duration
	logger *zap.SugaredLogger
	now    func() time.Time

	lookups singleflight.Group
}

func NewManager(store TokenStore, users interfaces.UserRepository, ttl time.Duration, logger *zap.SugaredLogger) *Manager {
	return &Manager{
		store:  store,
		users:  users,
		ttl:    ttl,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Issue creates a new token for userID.
func (m *Manager) Issue(ctx context.Context, userID int64) (*entities.AuthToken, error) {
	issued := m.now()
	token := &entities.AuthToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: issued,
		ExpiresAt: issued.Add(m.ttl),
	}
	if err := m.store.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user. Unknown, expired and
// orphaned tokens all yield ErrInvalidToken; store failures are returned
// wrapped. Concurrent requests carrying the same token share one lookup,
// which outlives any single caller; each caller gets its own copy of the user.
func (m *Manager) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	ch := m.lookups.DoChan(token, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		return m.resolve(lookupCtx, token)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		user := *res.Val.(*entities.User)
		return &user, nil
	}
}

func (m *Manager) resolve(ctx context.Context, token string) (*entities.User, error) {
	stored, err := m.store.Lookup(ctx, token)
	if errors.Is(err, ErrTokenNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if stored.Expired(m.now()) {
		if err := m.store.Delete(ctx, token); err != nil && m.logger != nil {
			m.logger.Warnw("Failed to delete expired token", "user_id", stored.UserID, "error", err)
		}
		return nil, ErrInvalidToken
	}

	user, err := m.users.GetByID(ctx, stored.UserID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("load token user: %w", err)
	}
	return user, nil
}

func (m *Manager) Revoke(ctx context.Context, token string) error {
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// SQLTokenStore keeps tokens in the auth_tokens table.
type SQLTokenStore struct {
	repo interfaces.TokenRepository
}

func NewSQLTokenStore(repo interfaces.TokenRepository) *SQLTokenStore {
	return &SQLTokenStore{repo: repo}
}

func (s *SQLTokenStore) Save(ctx context.Context, token *entities.AuthToken) error {
	return s.repo.Save(ctx, token)
}

func (s *SQLTokenStore) Lookup(ctx context.Context, token string) (*entities.AuthToken, error) {
	t, err := s.repo.Get(ctx, token)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	return t, err
}

func (s *SQLTokenStore) Delete(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, token)
}
