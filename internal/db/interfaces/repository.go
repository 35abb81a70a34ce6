package interfaces

import (
	"context"

	"github.com/leafsii/blog-backend/internal/db/entities"
)

// Repositories groups the per-entity repositories sharing one executor.
type Repositories interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Posts() PostRepository
	Comments() CommentRepository
	PostLikes() LikeRepository
	CommentLikes() LikeRepository
	Tokens() TokenRepository
}

// UserRepository reads users together with their profile.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	FindMany(ctx context.Context, query *Query) ([]*entities.User, error)
	Create(ctx context.Context, user *entities.User) error
	Update(ctx context.Context, user *entities.User) error
	// Delete removes the user and everything the user owns.
	Delete(ctx context.Context, id int64) error
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.UserProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*entities.UserProfile, error)
	FindMany(ctx context.Context, query *Query) ([]*entities.UserProfile, error)
	Create(ctx context.Context, profile *entities.UserProfile) error
	// GetOrCreate returns the user's profile, inserting an empty one when absent.
	GetOrCreate(ctx context.Context, userID int64) (*entities.UserProfile, error)
	Update(ctx context.Context, profile *entities.UserProfile) error
	Delete(ctx context.Context, id int64) error
}

type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.Post, error)
	FindMany(ctx context.Context, query *Query) ([]*entities.Post, error)
	// Popular returns up to limit posts ordered by like count, highest first.
	Popular(ctx context.Context, limit int) ([]*entities.Post, error)
	Create(ctx context.Context, post *entities.Post) error
	Update(ctx context.Context, post *entities.Post) error
	// Delete removes the post, its comments, and all likes on either.
	Delete(ctx context.Context, id int64) error
}

type CommentRepository interface {
	GetByID(ctx context.Context, id int64) (*entities.Comment, error)
	FindMany(ctx context.Context, query *Query) ([]*entities.Comment, error)
	Popular(ctx context.Context, limit int) ([]*entities.Comment, error)
	Create(ctx context.Context, comment *entities.Comment) error
	Update(ctx context.Context, comment *entities.Comment) error
	// Delete removes the comment and its likes.
	Delete(ctx context.Context, id int64) error
}

// LikeRepository manages one like table (post_likes or comment_likes).
type LikeRepository interface {
	// Toggle inserts a like for (targetID, userID) or, when one already
	// exists, deletes it. created reports which of the two happened; like is
	// nil when the like was removed.
	Toggle(ctx context.Context, targetID, userID int64) (like *entities.Like, created bool, err error)
	ListByTarget(ctx context.Context, targetID int64) ([]*entities.Like, error)
	Count(ctx context.Context, targetID int64) (int64, error)
	Target() entities.LikeTarget
}

type TokenRepository interface {
	Save(ctx context.Context, token *entities.AuthToken) error
	Get(ctx context.Context, token string) (*entities.AuthToken, error)
	Delete(ctx context.Context, token string) error
}
