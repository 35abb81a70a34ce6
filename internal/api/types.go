package api

import "time"

// Request bodies. Count fields and author are never read from input.

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type UserUpdateRequest struct {
	Username  string `json:"username" validate:"required,max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type ProfileRequest struct {
	Bio *string `json:"bio"`
}

type PostRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

type CommentRequest struct {
	Post    int64  `json:"post" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type CommentUpdateRequest struct {
	Content string `json:"content" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Responses

type ProfileSummaryDTO struct {
	ID     int64   `json:"id"`
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}

type ProfileDetailDTO struct {
	ProfileSummaryDTO
	User *UserSummaryDTO `json:"user"`
}

type UserSummaryDTO struct {
	ID        int64              `json:"id"`
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	FirstName string             `json:"first_name"`
	LastName  string             `json:"last_name"`
	Profile   *ProfileSummaryDTO `json:"profile"`
}

type UserDetailDTO struct {
	UserSummaryDTO
	Posts    []PostSummaryDTO `json:"posts"`
	Comments []CommentDTO     `json:"comments"`
}

type PostSummaryDTO struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
}

type PostDetailDTO struct {
	PostSummaryDTO
	Comments []CommentDTO `json:"comments"`
}

type CommentDTO struct {
	ID         int64     `json:"id"`
	Post       int64     `json:"post"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	LikesCount int64     `json:"likes_count"`
}

type PostLikeDTO struct {
	ID        int64     `json:"id"`
	Post      int64     `json:"post"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentLikeDTO struct {
	ID        int64     `json:"id"`
	Comment   int64     `json:"comment"`
	User      string    `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type TokenResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      UserSummaryDTO `json:"user"`
}

type ErrorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}
