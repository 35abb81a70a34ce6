package entities

import "time"

// Like is a row of post_likes or comment_likes. TargetID is the liked post or
// comment id depending on the table it was read from.
type Like struct {
	ID        int64     `json:"id" db:"id"`
	TargetID  int64     `json:"target_id" db:"target_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"user" db:"username"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (l *Like) OwnerID() int64 {
	return l.UserID
}

// LikeTarget describes a like table and the table it points at.
type LikeTarget struct {
	Name         string // "post" or "comment"
	TableName    string
	TargetColumn string
	ParentTable  string
}

var (
	PostLikeTarget = LikeTarget{
		Name:         "post",
		TableName:    "post_likes",
		TargetColumn: "post_id",
		ParentTable:  "posts",
	}
	CommentLikeTarget = LikeTarget{
		Name:         "comment",
		TableName:    "comment_likes",
		TargetColumn: "comment_id",
		ParentTable:  "comments",
	}
)
