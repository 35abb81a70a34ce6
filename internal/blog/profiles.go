package blog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/leafsii/blog-backend/internal/access"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/leafsii/blog-backend/internal/media"
)

type ProfilePatch struct {
	Bio Field[*string]
}

// ProfileDetail is a profile with its owning user.
type ProfileDetail struct {
	*entities.UserProfile
	User *entities.User
}

func (s *Service) ListProfiles(ctx context.Context, q *interfaces.Query) ([]*entities.UserProfile, error) {
	return s.db.Profiles().FindMany(ctx, q)
}

func (s *Service) GetProfile(ctx context.Context, id int64) (*ProfileDetail, error) {
	profile, err := s.db.Profiles().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "profile", id)
	}
	return s.profileDetail(ctx, profile)
}

func (s *Service) profileDetail(ctx context.Context, profile *entities.UserProfile) (*ProfileDetail, error) {
	user, err := s.db.Users().GetByID(ctx, profile.UserID)
	if err != nil {
		return nil, fmt.Errorf("load profile user: %w", err)
	}
	return &ProfileDetail{UserProfile: profile, User: user}, nil
}

// CreateProfile creates the principal's profile. A user has at most one.
func (s *Service) CreateProfile(ctx context.Context, principal *entities.User, bio *string) (*entities.UserProfile, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	profile := &entities.UserProfile{UserID: principal.ID, Bio: bio}
	if err := s.db.Profiles().Create(ctx, profile); err != nil {
		if errors.Is(err, interfaces.ErrUniqueConstraint) {
			return nil, fieldError("user", "This user already has a profile.")
		}
		return nil, err
	}
	return profile, nil
}

// MyProfile returns the principal's profile, creating an empty one if needed.
func (s *Service) MyProfile(ctx context.Context, principal *entities.User) (*ProfileDetail, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	profile, err := s.db.Profiles().GetOrCreate(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	return s.profileDetail(ctx, profile)
}

// ownedProfile loads a profile the principal is allowed to modify.
func (s *Service) ownedProfile(ctx context.Context, principal *entities.User, id int64) (*entities.UserProfile, error) {
	if err := access.RequirePrincipal(principal); err != nil {
		return nil, err
	}
	profile, err := s.db.Profiles().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "profile", id)
	}
	if err := access.Check(access.Write, principal, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) UpdateProfile(ctx context.Context, principal *entities.User, id int64, patch ProfilePatch) (*entities.UserProfile, error) {
	profile, err := s.ownedProfile(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	patch.Bio.apply(&profile.Bio)
	if err := s.db.Profiles().Update(ctx, profile); err != nil {
		return nil, notFound(err, "profile", id)
	}
	return profile, nil
}

// UploadAvatar replaces the profile's avatar with the image read from r.
func (s *Service) UploadAvatar(ctx context.Context, principal *entities.User, id int64, r io.Reader) (*ProfileDetail, error) {
	profile, err := s.ownedProfile(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	key, err := s.media.SaveAvatar(r)
	switch {
	case errors.Is(err, media.ErrTooLarge):
		return nil, fieldError("avatar", "The uploaded file is too large.")
	case errors.Is(err, media.ErrUnsupportedType):
		return nil, fieldError("avatar", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	case err != nil:
		return nil, err
	}

	previous := profile.Avatar
	profile.Avatar = &key
	if err := s.db.Profiles().Update(ctx, profile); err != nil {
		s.removeAvatar(key)
		return nil, notFound(err, "profile", id)
	}
	if previous != nil {
		s.removeAvatar(*previous)
	}
	return s.profileDetail(ctx, profile)
}

func (s *Service) DeleteProfile(ctx context.Context, principal *entities.User, id int64) error {
	profile, err := s.ownedProfile(ctx, principal, id)
	if err != nil {
		return err
	}
	if err := s.db.Profiles().Delete(ctx, id); err != nil {
		return notFound(err, "profile", id)
	}
	if profile.Avatar != nil {
		s.removeAvatar(*profile.Avatar)
	}
	return nil
}

// removeAvatar deletes a stored file; failures only leave an orphan behind.
func (s *Service) removeAvatar(key string) {
	if s.media == nil {
		return
	}
	if err := s.media.Delete(key); err != nil {
		s.logger.Warnw("Failed to remove avatar", "key", key, "error", err)
	}
}
