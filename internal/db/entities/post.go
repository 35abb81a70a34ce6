package entities

import "time"

// Post represents a post entity.
// Author, LikesCount and CommentsCount are read-side values filled by the repository.
type Post struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Author        string `json:"author" db:"author_username"`
	LikesCount    int64  `json:"likes_count" db:"likes_count"`
	CommentsCount int64  `json:"comments_count" db:"comments_count"`
}

func (p *Post) OwnerID() int64 {
	return p.AuthorID
}
