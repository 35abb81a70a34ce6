package blog

import (
	"context"
	"fmt"
	"strings"

	"github.com/leafsii/blog-backend/internal/access"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
)

type PostInput struct {
	Title   string
	Content string
}

type PostPatch struct {
	Title   Field[string]
	Content Field[string]
}

// PostDetail is a post with its comments.
type PostDetail struct {
	*entities.Post
	Comments []*entities.Comment
}

func validatePost(p *entities.Post) error {
	v := &ValidationError{}
	if checkRequired(v, "title", strings.TrimSpace(p.Title)) {
		checkMaxLen(v, "title", p.Title, maxTitleLen)
	}
	checkRequired(v, "content", strings.TrimSpace(p.Content))
	return v.OrNil()
}

func (s *Service) ListPosts(ctx context.Context, q *interfaces.Query) ([]*entities.Post, error) {
	return s.db.Posts().FindMany(ctx, q)
}

func (s *Service) GetPost(ctx context.Context, id int64) (*PostDetail, error) {
	post, err := s.db.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "post", id)
	}
	comments, err := s.db.Comments().FindMany(ctx, &interfaces.Query{
		Where: []interfaces.Filter{{Field: "post", Value: id}},
	})
	if err != nil {
		return nil, fmt.Errorf("load post comments: %w", err)
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}

// CreatePost publishes a post authored by the principal.
func (s *Service) CreatePost(ctx context.Context, principal *entities.User, in PostInput) (*entities.Post, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	post := &entities.Post{Title: in.Title, Content: in.Content, AuthorID: principal.ID}
	if err := validatePost(post); err != nil {
		return nil, err
	}
	if err := s.db.Posts().Create(ctx, post); err != nil {
		return nil, err
	}
	return s.reloadPost(ctx, post.ID)
}

func (s *Service) UpdatePost(ctx context.Context, principal *entities.User, id int64, patch PostPatch) (*entities.Post, error) {
	post, err := s.ownedPost(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	patch.Title.apply(&post.Title)
	patch.Content.apply(&post.Content)
	if err := validatePost(post); err != nil {
		return nil, err
	}
	if err := s.db.Posts().Update(ctx, post); err != nil {
		return nil, notFound(err, "post", id)
	}
	return s.reloadPost(ctx, id)
}

// DeletePost removes the post with its comments and all likes on either.
func (s *Service) DeletePost(ctx context.Context, principal *entities.User, id int64) error {
	if _, err := s.ownedPost(ctx, principal, id); err != nil {
		return err
	}
	if err := s.db.Posts().Delete(ctx, id); err != nil {
		return notFound(err, "post", id)
	}
	return nil
}

func (s *Service) PopularPosts(ctx context.Context) ([]*entities.Post, error) {
	return s.db.Posts().Popular(ctx, PopularLimit)
}

// MyPosts lists the principal's posts; q may add search and ordering.
func (s *Service) MyPosts(ctx context.Context, principal *entities.User, q *interfaces.Query) ([]*entities.Post, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	return s.db.Posts().FindMany(ctx, withAuthor(q, principal.ID))
}

func (s *Service) ownedPost(ctx context.Context, principal *entities.User, id int64) (*entities.Post, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	post, err := s.db.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "post", id)
	}
	if err := access.Check(access.Write, principal, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Service) reloadPost(ctx context.Context, id int64) (*entities.Post, error) {
	post, err := s.db.Posts().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "post", id)
	}
	return post, nil
}

// withAuthor copies q and restricts it to authorID, replacing any author filter.
func withAuthor(q *interfaces.Query, authorID int64) *interfaces.Query {
	out := interfaces.Query{}
	if q != nil {
		out = *q
	}
	where := make([]interfaces.Filter, 0, len(out.Where)+1)
	for _, f := range out.Where {
		if f.Field != "author" {
			where = append(where, f)
		}
	}
	out.Where = append(where, interfaces.Filter{Field: "author", Value: authorID})
	return &out
}
