package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/leafsii/blog-backend/internal/db/entities"
	"github.com/leafsii/blog-backend/internal/db/interfaces"
	"github.com/leafsii/blog-backend/internal/db/query"
)

type profileRepo struct {
	s *store
}

func (r *profileRepo) selectProfiles() sq.SelectBuilder {
	return r.s.sb.Select("pr.id", "pr.user_id", "pr.bio", "pr.avatar").From("user_profiles pr")
}

func (r *profileRepo) GetByID(ctx context.Context, id int64) (*entities.UserProfile, error) {
	var p entities.UserProfile
	if err := r.s.get(ctx, "get profile", &p, r.selectProfiles().Where(sq.Eq{"pr.id": id})); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID int64) (*entities.UserProfile, error) {
	var p entities.UserProfile
	if err := r.s.get(ctx, "get profile by user", &p, r.selectProfiles().Where(sq.Eq{"pr.user_id": userID})); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) FindMany(ctx context.Context, q *interfaces.Query) ([]*entities.UserProfile, error) {
	stmt, err := query.NewBuilder(ProfileSchema).Apply(r.selectProfiles(), q)
	if err != nil {
		return nil, err
	}
	var profiles []*entities.UserProfile
	if err := r.s.selectAll(ctx, "list profiles", &profiles, stmt); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepo) Create(ctx context.Context, profile *entities.UserProfile) error {
	stmt := r.s.sb.Insert("user_profiles").
		Columns("user_id", "bio", "avatar").
		Values(profile.UserID, profile.Bio, profile.Avatar).
		Suffix("RETURNING id")
	return r.s.get(ctx, "create profile", &profile.ID, stmt)
}

func (r *profileRepo) GetOrCreate(ctx context.Context, userID int64) (*entities.UserProfile, error) {
	var profile *entities.UserProfile
	err := r.s.inTx(ctx, func(tx *store) error {
		insert := tx.sb.Insert("user_profiles").
			Columns("user_id").
			Values(userID).
			Suffix("ON CONFLICT (user_id) DO NOTHING")
		if _, err := tx.execute(ctx, "create profile if missing", insert); err != nil {
			return err
		}
		p, err := (&profileRepo{s: tx}).GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	return profile, err
}

func (r *profileRepo) Update(ctx context.Context, profile *entities.UserProfile) error {
	n, err := r.s.execute(ctx, "update profile", r.s.sb.Update("user_profiles").
		Set("bio", profile.Bio).
		Set("avatar", profile.Avatar).
		Where(sq.Eq{"id": profile.ID}))
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *profileRepo) Delete(ctx context.Context, id int64) error {
	n, err := r.s.execute(ctx, "delete profile", r.s.sb.Delete("user_profiles").Where(sq.Eq{"id": id}))
	if err != nil {
		return err
	}
	if n == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}
