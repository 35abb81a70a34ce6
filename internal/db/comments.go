package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/leafsii/blog-backend/internal/db/query"
)

type commentRepo struct {
	s *store
}

func (r *commentRepo) selectComments() sq.SelectBuilder {
	return r.s.sb.Select(
		"c.id", "c.post_id", "c.author_id", "c.content", "c.created_at", "c.updated_at",
		"u.username AS author_username",
		"(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS likes_count",
	).From("comments c").Join("users u ON u.id = c.author_id")
}

func (r *commentRepo) GetByID(ctx context.Context, id int64) (*entities.Comment, error) {
	var c entities.Comment
	if err := r.s.get(ctx, "get comment", &c, r.selectComments().Where(sq.Eq{"c.id": id})); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *commentRepo) FindMany(ctx context.Context, q *interfaces.Query) ([]*entities.Comment, error) {
	stmt, err := query.NewBuilder(CommentSchema).Apply(r.selectComments(), q)
	if err != nil {
		return nil, err
	}
	var comments []*entities.Comment
	if err := r.s.selectAll(ctx, "list comments", &comments, stmt); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepo) Popular(ctx context.Context, limit int) ([]*entities.Comment, error) {
	stmt := r.selectComments().OrderBy("likes_count DESC", "c.id ASC").Limit(uint64(limit))
	var comments []*entities.Comment
	if err := r.s.selectAll(ctx, "popular comments", &comments, stmt); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepo) Create(ctx context.Context, comment *entities.Comment) error {
	ts := now()
	comment.CreatedAt, comment.UpdatedAt = ts, ts
	stmt := r.s.sb.Insert("comments").
		Columns("post_id", "author_id", "content", "created_at", "updated_at").
		Values(comment.PostID, comment.AuthorID, comment.Content, comment.CreatedAt, comment.UpdatedAt).
		Suffix("RETURNING id")
	return r.s.get(ctx, "create comment", &comment.ID, stmt)
}

// Update rewrites the content. A comment cannot move to another post.
func (r *commentRepo) Update(ctx context.Context, comment *entities.Comment) error {
	comment.UpdatedAt = now()
	n, err := r.s.execute(ctx, "update comment", r.s.sb.Update("comments").
		Set("content", comment.Content).
		Set("updated_at", comment.UpdatedAt).
		Where(sq.Eq{"id": comment.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *commentRepo) Delete(ctx context.Context, id int64) error {
	return r.s.inTx(ctx, func(tx *store) error {
		if _, err := tx.execute(ctx, "delete comment likes",
			tx.sb.Delete("comment_likes").Where(sq.Eq{"comment_id": id})); err != nil {
			return err
		}
		n, err := tx.execute(ctx, "delete comment", tx.sb.Delete("comments").Where(sq.Eq{"id": id}))
		if err != nil {
			return err
		}
		if n == 0 {
			return interfaces.ErrNotFound
		}
		return nil
	})
}
