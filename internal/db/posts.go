package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/leafsii/blog-backend/internal/db/query"
)

type postRepo struct {
	s *store
}

// selectPosts reads posts with the author's username and the derived counts.
func (r *postRepo) selectPosts() sq.SelectBuilder {
	return r.s.sb.Select(
		"p.id", "p.title", "p.content", "p.author_id", "p.created_at", "p.updated_at",
		"u.username AS author_username",
		"(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS likes_count",
		"(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id) AS comments_count",
	).From("posts p").Join("users u ON u.id = p.author_id")
}

func (r *postRepo) GetByID(ctx context.Context, id int64) (*entities.Post, error) {
	var p entities.Post
	if err := r.s.get(ctx, "get post", &p, r.selectPosts().Where(sq.Eq{"p.id": id})); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepo) FindMany(ctx context.Context, q *interfaces.Query) ([]*entities.Post, error) {
	stmt, err := query.NewBuilder(PostSchema).Apply(r.selectPosts(), q)
	if err != nil {
		return nil, err
	}
	var posts []*entities.Post
	if err := r.s.selectAll(ctx, "list posts", &posts, stmt); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepo) Popular(ctx context.Context, limit int) ([]*entities.Post, error) {
	stmt := r.selectPosts().OrderBy("likes_count DESC", "p.id ASC").Limit(uint64(limit))
	var posts []*entities.Post
	if err := r.s.selectAll(ctx, "popular posts", &posts, stmt); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepo) Create(ctx context.Context, post *entities.Post) error {
	ts := now()
	post.CreatedAt, post.UpdatedAt = ts, ts
	stmt := r.s.sb.Insert("posts").
		Columns("title", "content", "author_id", "created_at", "updated_at").
		Values(post.Title, post.Content, post.AuthorID, post.CreatedAt, post.UpdatedAt).
		Suffix("RETURNING id")
	return r.s.get(ctx, "create post", &post.ID, stmt)
}

func (r *postRepo) Update(ctx context.Context, post *entities.Post) error {
	post.UpdatedAt = now()
	n, err := r.s.execute(ctx, "update post", r.s.sb.Update("posts").
		Set("title", post.Title).
		Set("content", post.Content).
		Set("updated_at", post.UpdatedAt).
		Where(sq.Eq{"id": post.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *postRepo) Delete(ctx context.Context, id int64) error {
	return r.s.inTx(ctx, func(tx *store) error {
		comments := sq.Select("id").From("comments").Where(sq.Eq{"post_id": id})
		if _, err := tx.execute(ctx, "delete post comment likes",
			tx.sb.Delete("comment_likes").Where(sq.Expr("comment_id IN (?)", comments))); err != nil {
			return err
		}
		if _, err := tx.execute(ctx, "delete post comments",
			tx.sb.Delete("comments").Where(sq.Eq{"post_id": id})); err != nil {
			return err
		}
		if _, err := tx.execute(ctx, "delete post likes",
			tx.sb.Delete("post_likes").Where(sq.Eq{"post_id": id})); err != nil {
			return err
		}
		n, err := tx.execute(ctx, "delete post", tx.sb.Delete("posts").Where(sq.Eq{"id": id}))
		if err != nil {
			return err
		}
		if n == 0 {
			return interfaces.ErrNotFound
		}
		return nil
	})
}
