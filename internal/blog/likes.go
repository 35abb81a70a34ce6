package blog

import (
	"context"
	"errors"

	"github.com/leafsii/blog-backend/internal/access"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
)

// TogglePostLike likes the post for the principal, or removes the like if
// it exists. created reports which happened.
func (s *Service) TogglePostLike(ctx context.Context, principal *entities.User, postID int64) (*entities.Like, bool, error) {
	return s.toggle(ctx, principal, s.db.PostLikes(), postID, func() error {
		_, err := s.db.Posts().GetByID(ctx, postID)
		return err
	})
}

func (s *Service) ToggleCommentLike(ctx context.Context, principal *entities.User, commentID int64) (*entities.Like, bool, error) {
	return s.toggle(ctx, principal, s.db.CommentLikes(), commentID, func() error {
		_, err := s.db.Comments().GetByID(ctx, commentID)
		return err
	})
}

func (s *Service) PostLikes(ctx context.Context, postID int64) ([]*entities.Like, error) {
	if _, err := s.db.Posts().GetByID(ctx, postID); err != nil {
		return nil, notFound(err, "post", postID)
	}
	return s.db.PostLikes().ListByTarget(ctx, postID)
}

func (s *Service) CommentLikes(ctx context.Context, commentID int64) ([]*entities.Like, error) {
	if _, err := s.db.Comments().GetByID(ctx, commentID); err != nil {
		return nil, notFound(err, "comment", commentID)
	}
	return s.db.CommentLikes().ListByTarget(ctx, commentID)
}

func (s *Service) toggle(ctx context.Context, principal *entities.User, likes interfaces.LikeRepository, targetID int64, exists func() error) (*entities.Like, bool, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, false, err
	}
	target := likes.Target().Name
	if err := exists(); err != nil {
		return nil, false, notFound(err, target, targetID)
	}

	like, created, err := likes.Toggle(ctx, targetID, principal.ID)
	if errors.Is(err, interfaces.ErrForeignKeyConstraint) {
		// The target was deleted between the lookup and the insert.
		return nil, false, notFound(interfaces.ErrNotFound, target, targetID)
	}
	if err != nil {
		return nil, false, err
	}

	s.metrics.RecordLikeToggle(ctx, target, created)
	s.logger.Debugw("Like toggled", "target", target, "target_id", targetID, "user_id", principal.ID, "created", created)
	return like, created, nil
}
