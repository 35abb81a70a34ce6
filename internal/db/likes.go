package db

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/leafsii/blog-backend/internal/db/entities"
)

// likeRepo serves both like tables; target names the table and its columns.
type likeRepo struct {
	s      *store
	target entities.LikeTarget
}

func newLikeRepo(s *store, target entities.LikeTarget) *likeRepo {
	return &likeRepo{s: s, target: target}
}

func (r *likeRepo) Target() entities.LikeTarget {
	return r.target
}

// Toggle relies on the (target, user) unique constraint: the insert either
// returns the new id or does nothing, in which case the existing like is
// removed in the same transaction.
func (r *likeRepo) Toggle(ctx context.Context, targetID, userID int64) (*entities.Like, bool, error) {
	var (
		like    *entities.Like
		created bool
	)
	err := r.s.inTx(ctx, func(tx *store) error {
		ts := now()
		insert := tx.sb.Insert(r.target.TableName).
			Columns(r.target.TargetColumn, "user_id", "created_at").
			Values(targetID, userID, ts).
			Suffix(fmt.Sprintf("ON CONFLICT (%s, user_id) DO NOTHING RETURNING id", r.target.TargetColumn))

		var id int64
		err := tx.get(ctx, "insert "+r.target.Name+" like", &id, insert)
		switch {
		case err == nil:
			var username string
			if err := tx.get(ctx, "get like user", &username,
				tx.sb.Select("username").From("users").Where(sq.Eq{"id": userID})); err != nil {
				return err
			}
			like = &entities.Like{ID: id, TargetID: targetID, UserID: userID, Username: username, CreatedAt: ts}
			created = true
			return nil
		case isNotFound(err):
			_, err := tx.execute(ctx, "delete "+r.target.Name+" like", tx.sb.Delete(r.target.TableName).
				Where(sq.Eq{r.target.TargetColumn: targetID, "user_id": userID}))
			return err
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, err
	}
	return like, created, nil
}

// ListByTarget returns the likes on one post or comment, oldest first.
func (r *likeRepo) ListByTarget(ctx context.Context, targetID int64) ([]*entities.Like, error) {
	column := "l." + r.target.TargetColumn
	stmt := r.s.sb.Select("l.id", column+" AS target_id", "l.user_id", "u.username", "l.created_at").
		From(r.target.TableName + " l").
		Join("users u ON u.id = l.user_id").
		Where(sq.Eq{column: targetID}).
		OrderBy("l.created_at ASC", "l.id ASC")

	var likes []*entities.Like
	if err := r.s.selectAll(ctx, "list "+r.target.Name+" likes", &likes, stmt); err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *likeRepo) Count(ctx context.Context, targetID int64) (int64, error) {
	var n int64
	stmt := r.s.sb.Select("COUNT(*)").From(r.target.TableName).Where(sq.Eq{r.target.TargetColumn: targetID})
	if err := r.s.get(ctx, "count "+r.target.Name+" likes", &n, stmt); err != nil {
		return 0, err
	}
	return n, nil
}
