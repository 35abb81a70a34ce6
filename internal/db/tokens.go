package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/leafsii/blog-backend/internal/db/entities"
)

type tokenRepo struct {
	s *store
}

func (r *tokenRepo) Save(ctx context.Context, token *entities.AuthToken) error {
	_, err := r.s.execute(ctx, "save token", r.s.sb.Insert("auth_tokens").
		Columns("token", "user_id", "created_at", "expires_at").
		Values(token.Token, token.UserID, token.CreatedAt, token.ExpiresAt))
	return err
}

func (r *tokenRepo) Get(ctx context.Context, token string) (*entities.AuthToken, error) {
	var t entities.AuthToken
	stmt := r.s.sb.Select("token", "user_id", "created_at", "expires_at").
		From("auth_tokens").
		Where(sq.Eq{"token": token})
	if err := r.s.get(ctx, "get token", &t, stmt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete is idempotent: removing an unknown token is not an error.
func (r *tokenRepo) Delete(ctx context.Context, token string) error {
	_, err := r.s.execute(ctx, "delete token", r.s.sb.Delete("auth_tokens").Where(sq.Eq{"token": token}))
	return err
}
