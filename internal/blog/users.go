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

// UserInput is the payload for registration.
type UserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UserPatch is a full or partial user update.
type UserPatch struct {
	Username  Field[string]
	Email     Field[string]
	Password  Field[string]
	FirstName Field[string]
	LastName  Field[string]
}

// UserDetail is a user with everything the user authored.
type UserDetail struct {
	*entities.User
	Posts    []*entities.Post
	Comments []*entities.Comment
}

func validateUser(u *entities.User) error {
	v := &ValidationError{}
	if checkRequired(v, "username", u.Username) {
		checkMaxLen(v, "username", u.Username, maxUsernameLen)
		if !usernamePattern.MatchString(u.Username) {
			v.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
		}
	}
	checkMaxLen(v, "first_name", u.FirstName, maxNameLen)
	checkMaxLen(v, "last_name", u.LastName, maxNameLen)
	return v.OrNil()
}

func usernameTaken(err error) error {
	if errors.Is(err, interfaces.ErrUniqueConstraint) {
		return fieldError("username", "A user with that username already exists.")
	}
	return err
}

// Register creates a user and an empty profile in one transaction. An empty
// password leaves the account unable to log in.
func (s *Service) Register(ctx context.Context, in UserInput) (*entities.User, error) {
	user := &entities.User{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.TrimSpace(in.Email),
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	err := s.db.Transaction(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		if err := repos.Users().Create(ctx, user); err != nil {
			return usernameTaken(err)
		}
		profile := &entities.UserProfile{UserID: user.ID}
		if err := repos.Profiles().Create(ctx, profile); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordRegistration(ctx)
	s.logger.Infow("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context, q *interfaces.Query) ([]*entities.User, error) {
	return s.db.Users().FindMany(ctx, q)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*UserDetail, error) {
	user, err := s.db.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	return s.userDetail(ctx, user)
}

// Me returns the principal's own detail.
func (s *Service) Me(ctx context.Context, principal *entities.User) (*UserDetail, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, principal.ID)
}

func (s *Service) userDetail(ctx context.Context, user *entities.User) (*UserDetail, error) {
	byAuthor := &interfaces.Query{Where: []interfaces.Filter{{Field: "author", Value: user.ID}}}

	posts, err := s.db.Posts().FindMany(ctx, byAuthor)
	if err != nil {
		return nil, fmt.Errorf("load user posts: %w", err)
	}
	comments, err := s.db.Comments().FindMany(ctx, byAuthor)
	if err != nil {
		return nil, fmt.Errorf("load user comments: %w", err)
	}
	return &UserDetail{User: user, Posts: posts, Comments: comments}, nil
}

func (s *Service) UpdateUser(ctx context.Context, principal *entities.User, id int64, patch UserPatch) (*entities.User, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	user, err := s.db.Users().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user", id)
	}
	if err := access.Check(access.Write, principal, user); err != nil {
		return nil, err
	}

	patch.Username.apply(&user.Username)
	patch.Email.apply(&user.Email)
	patch.FirstName.apply(&user.FirstName)
	patch.LastName.apply(&user.LastName)
	user.Username = strings.TrimSpace(user.Username)
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if patch.Password.Set && patch.Password.Value != "" {
		hash, err := s.hasher.Hash(patch.Password.Value)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.db.Users().Update(ctx, user); err != nil {
		return nil, notFound(usernameTaken(err), "user", id)
	}
	return user, nil
}

// DeleteUser removes the user and everything the user owns.
func (s *Service) DeleteUser(ctx context.Context, principal *entities.User, id int64) error {
	if err := access.RequirePrincipal(principal); err != nil {
		return err
	}
	user, err := s.db.Users().GetByID(ctx, id)
	if err != nil {
		return notFound(err, "user", id)
	}
	if err := access.Check(access.Write, principal, user); err != nil {
		return err
	}
	if err := s.db.Users().Delete(ctx, id); err != nil {
		return notFound(err, "user", id)
	}
	if user.Profile != nil && user.Profile.Avatar != nil {
		s.removeAvatar(*user.Profile.Avatar)
	}
	s.logger.Infow("User deleted", "user_id", id)
	return nil
}
