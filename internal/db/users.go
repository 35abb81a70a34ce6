package db

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/leafsii/blog-backend/internal/db/query"
)

type userRepo struct {
	s *store
}

// userRow is a user joined with its optional profile.
type userRow struct {
	entities.User
	ProfileID     sql.NullInt64  `db:"profile_id"`
	ProfileBio    sql.NullString `db:"profile_bio"`
	ProfileAvatar sql.NullString `db:"profile_avatar"`
}

func (r userRow) toEntity() *entities.User {
	u := r.User
	if r.ProfileID.Valid {
		u.Profile = &entities.UserProfile{
			ID:     r.ProfileID.Int64,
			UserID: u.ID,
			Bio:    nullString(r.ProfileBio),
			Avatar: nullString(r.ProfileAvatar),
		}
	}
	return &u
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func (r *userRepo) selectUsers() sq.SelectBuilder {
	return r.s.sb.Select(
		"u.id", "u.username", "u.email", "u.password_hash", "u.first_name", "u.last_name", "u.created_at",
		"pr.id AS profile_id", "pr.bio AS profile_bio", "pr.avatar AS profile_avatar",
	).From("users u").LeftJoin("user_profiles pr ON pr.user_id = u.id")
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	var row userRow
	if err := r.s.get(ctx, "get user", &row, r.selectUsers().Where(sq.Eq{"u.id": id})); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	var row userRow
	if err := r.s.get(ctx, "get user by username", &row, r.selectUsers().Where(sq.Eq{"u.username": username})); err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *userRepo) FindMany(ctx context.Context, q *interfaces.Query) ([]*entities.User, error) {
	stmt, err := query.NewBuilder(UserSchema).Apply(r.selectUsers(), q)
	if err != nil {
		return nil, err
	}
	var rows []userRow
	if err := r.s.selectAll(ctx, "list users", &rows, stmt); err != nil {
		return nil, err
	}
	users := make([]*entities.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toEntity())
	}
	return users, nil
}

func (r *userRepo) Create(ctx context.Context, user *entities.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	stmt := r.s.sb.Insert("users").
		Columns("username", "email", "password_hash", "first_name", "last_name", "created_at").
		Values(user.Username, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.CreatedAt).
		Suffix("RETURNING id")
	return r.s.get(ctx, "create user", &user.ID, stmt)
}

func (r *userRepo) Update(ctx context.Context, user *entities.User) error {
	n, err := r.s.execute(ctx, "update user", r.s.sb.Update("users").
		Set("username", user.Username).
		Set("email", user.Email).
		Set("password_hash", user.PasswordHash).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Where(sq.Eq{"id": user.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// Delete removes the user after everything that references it, in one
// transaction: likes by or on doomed rows, comments by the user or on the
// user's posts, the posts, the profile and the tokens.
func (r *userRepo) Delete(ctx context.Context, id int64) error {
	return r.s.inTx(ctx, func(tx *store) error {
		ownPosts := sq.Select("id").From("posts").Where(sq.Eq{"author_id": id})
		doomedComments := sq.Select("id").From("comments").Where(sq.Or{
			sq.Eq{"author_id": id},
			sq.Expr("post_id IN (?)", ownPosts),
		})

		steps := []struct {
			op   string
			stmt sq.DeleteBuilder
		}{
			{"delete user comment likes", tx.sb.Delete("comment_likes").Where(sq.Or{
				sq.Eq{"user_id": id},
				sq.Expr("comment_id IN (?)", doomedComments),
			})},
			{"delete user comments", tx.sb.Delete("comments").Where(sq.Or{
				sq.Eq{"author_id": id},
				sq.Expr("post_id IN (?)", ownPosts),
			})},
			{"delete user post likes", tx.sb.Delete("post_likes").Where(sq.Or{
				sq.Eq{"user_id": id},
				sq.Expr("post_id IN (?)", ownPosts),
			})},
			{"delete user posts", tx.sb.Delete("posts").Where(sq.Eq{"author_id": id})},
			{"delete user profile", tx.sb.Delete("user_profiles").Where(sq.Eq{"user_id": id})},
			{"delete user tokens", tx.sb.Delete("auth_tokens").Where(sq.Eq{"user_id": id})},
		}
		for _, step := range steps {
			if _, err := tx.execute(ctx, step.op, step.stmt); err != nil {
				return err
			}
		}

		n, err := tx.execute(ctx, "delete user", tx.sb.Delete("users").Where(sq.Eq{"id": id}))
		if err != nil {
			return err
		}
		if n == 0 {
			return interfaces.ErrNotFound
		}
		return nil
	})
}

// isNotFound reports whether err is the store's not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}
