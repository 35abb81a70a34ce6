package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leafsii/blog-backend/internal/access"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
)

type CommentInput struct {
	PostID  int64
	Content string
}

// CommentPatch updates the content. A comment stays on its post.
type CommentPatch struct {
	Content Field[string]
}

func validateComment(c *entities.Comment) error {
	v := &ValidationError{}
	checkRequired(v, "content", strings.TrimSpace(c.Content))
	return v.OrNil()
}

func missingPost(id int64) error {
	return fieldError("post", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
}

func (s *Service) ListComments(ctx context.Context, q *interfaces.Query) ([]*entities.Comment, error) {
	return s.db.Comments().FindMany(ctx, q)
}

func (s *Service) GetComment(ctx context.Context, id int64) (*entities.Comment, error) {
	comment, err := s.db.Comments().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "comment", id)
	}
	return comment, nil
}

// CreateComment adds a comment by the principal to an existing post.
func (s *Service) CreateComment(ctx context.Context, principal *entities.User, in CommentInput) (*entities.Comment, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	comment := &entities.Comment{PostID: in.PostID, AuthorID: principal.ID, Content: in.Content}
	if err := validateComment(comment); err != nil {
		return nil, err
	}
	if _, err := s.db.Posts().GetByID(ctx, in.PostID); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, missingPost(in.PostID)
		}
		return nil, err
	}
	if err := s.db.Comments().Create(ctx, comment); err != nil {
		if errors.Is(err, interfaces.ErrForeignKeyConstraint) {
			return nil, missingPost(in.PostID)
		}
		return nil, err
	}
	return s.GetComment(ctx, comment.ID)
}

func (s *Service) UpdateComment(ctx context.Context, principal *entities.User, id int64, patch CommentPatch) (*entities.Comment, error) {
	comment, err := s.ownedComment(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	patch.Content.apply(&comment.Content)
	if err := validateComment(comment); err != nil {
		return nil, err
	}
	if err := s.db.Comments().Update(ctx, comment); err != nil {
		return nil, notFound(err, "comment", id)
	}
	return s.GetComment(ctx, id)
}

func (s *Service) DeleteComment(ctx context.Context, principal *entities.User, id int64) error {
	if _, err := s.ownedComment(ctx, principal, id); err != nil {
		return err
	}
	if err := s.db.Comments().Delete(ctx, id); err != nil {
		return notFound(err, "comment", id)
	}
	return nil
}

func (s *Service) PopularComments(ctx context.Context) ([]*entities.Comment, error) {
	return s.db.Comments().Popular(ctx, PopularLimit)
}

func (s *Service) MyComments(ctx context.Context, principal *entities.User, q *interfaces.Query) ([]*entities.Comment, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	return s.db.Comments().FindMany(ctx, withAuthor(q, principal.ID))
}

func (s *Service) ownedComment(ctx context.Context, principal *entities.User, id int64) (*entities.Comment, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	comment, err := s.db.Comments().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "comment", id)
	}
	if err := access.Check(access.Write, principal, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
