package entities

import "time"

// Comment represents a comment on a post.
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Author     string `json:"author" db:"author_username"`
	LikesCount int64  `json:"likes_count" db:"likes_count"`
}

func (c *Comment) OwnerID() int64 {
	return c.AuthorID
}
