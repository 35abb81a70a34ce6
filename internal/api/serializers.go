package api

import (
	"github.com/leafsii/blog-backend/internal/blog"
	"github.com/leafsii/blog-backend/internal/db/entities"
)

// Entity to DTO conversion. Avatars are rendered as absolute URLs.

func (h *Handler) profileSummary(p *entities.UserProfile) *ProfileSummaryDTO {
	if p == nil {
		return nil
	}
	dto := &ProfileSummaryDTO{ID: p.ID, Bio: p.Bio}
	if p.Avatar != nil && h.svc.Media() != nil {
		url := h.svc.Media().URL(*p.Avatar)
		dto.Avatar = &url
	}
	return dto
}

func (h *Handler) profileDetail(d *blog.ProfileDetail) ProfileDetailDTO {
	dto := ProfileDetailDTO{ProfileSummaryDTO: *h.profileSummary(d.UserProfile)}
	if d.User != nil {
		user := h.userSummary(d.User)
		dto.User = &user
	}
	return dto
}

func (h *Handler) userSummary(u *entities.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Profile:   h.profileSummary(u.Profile),
	}
}

func (h *Handler) userDetail(d *blog.UserDetail) UserDetailDTO {
	return UserDetailDTO{
		UserSummaryDTO: h.userSummary(d.User),
		Posts:          postSummaries(d.Posts),
		Comments:       commentDTOs(d.Comments),
	}
}

func postSummary(p *entities.Post) PostSummaryDTO {
	return PostSummaryDTO{
		ID:            p.ID,
		Title:         p.Title,
		Content:       p.Content,
		Author:        p.Author,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		LikesCount:    p.LikesCount,
		CommentsCount: p.CommentsCount,
	}
}

func postSummaries(posts []*entities.Post) []PostSummaryDTO {
	out := make([]PostSummaryDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, postSummary(p))
	}
	return out
}

func postDetail(d *blog.PostDetail) PostDetailDTO {
	return PostDetailDTO{PostSummaryDTO: postSummary(d.Post), Comments: commentDTOs(d.Comments)}
}

func commentDTO(c *entities.Comment) CommentDTO {
	return CommentDTO{
		ID:         c.ID,
		Post:       c.PostID,
		Author:     c.Author,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		LikesCount: c.LikesCount,
	}
}

func commentDTOs(comments []*entities.Comment) []CommentDTO {
	out := make([]CommentDTO, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentDTO(c))
	}
	return out
}

func postLikeDTOs(likes []*entities.Like) []PostLikeDTO {
	out := make([]PostLikeDTO, 0, len(likes))
	for _, l := range likes {
		out = append(out, PostLikeDTO{ID: l.ID, Post: l.TargetID, User: l.Username, CreatedAt: l.CreatedAt})
	}
	return out
}

func commentLikeDTOs(likes []*entities.Like) []CommentLikeDTO {
	out := make([]CommentLikeDTO, 0, len(likes))
	for _, l := range likes {
		out = append(out, CommentLikeDTO{ID: l.ID, Comment: l.TargetID, User: l.Username, CreatedAt: l.CreatedAt})
	}
	return out
}
