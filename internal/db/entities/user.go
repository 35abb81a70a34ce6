package entities

import "time"

// Owned is implemented by every entity that has a single owning user.
// Access checks compare OwnerID against the requesting principal.
type Owned interface {
	OwnerID() int64
}

// User represents an account. Username is unique.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Profile is loaded alongside the user and may be nil when no profile row exists.
	Profile *UserProfile `json:"profile,omitempty" db:"-"`
}

// OwnerID returns the user's own id: a user record is owned by itself.
func (u *User) OwnerID() int64 {
	return u.ID
}
