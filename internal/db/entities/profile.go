package entities

// UserProfile holds optional per-user data. At most one profile exists per user.
type UserProfile struct {
	ID     int64   `json:"id" db:"id"`
	UserID int64   `json:"user_id" db:"user_id"`
	Bio    *string `json:"bio" db:"bio"`
	Avatar *string `json:"avatar" db:"avatar"` // media-store key, e.g. avatars/<uuid>.png
}

func (p *UserProfile) OwnerID() int64 {
	return p.UserID
}
