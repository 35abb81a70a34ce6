package blog

import (
	"context"
	"errors"

	"github.com/leafsii/blog-backend/internal/access"
	"github.com/leafsii/blog-backend/internal/auth"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
)

var errBadCredentials = fieldError("non_field_errors", "Unable to log in with provided credentials.")

// Login verifies the password and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (*entities.AuthToken, *entities.User, error) {
	user, err := s.db.Users().GetByUsername(ctx, username)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, nil, errBadCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if user.PasswordHash == "" || password == "" {
		return nil, nil, errBadCredentials
	}
	if err := s.hasher.Check(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, nil, errBadCredentials
		}
		return nil, nil, err
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Infow("User logged in", "user_id", user.ID)
	return token, user, nil
}

// Logout revokes the token the principal authenticated with.
func (s *Service) Logout(ctx context.Context, principal *entities.User, token string) error {
	if err := access.RequirePrincipal(principal); err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, token)
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	return s.tokens.Authenticate(ctx, token)
}
