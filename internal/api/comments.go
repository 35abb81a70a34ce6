package api

import (
	"net/http"

	"github.com/leafsii/blog-backend/internal/blog"
	"github.com/leafsii/blog-backend/internal/db/entities"
)

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, "post", "author")
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	comments, err := h.svc.ListComments(r.Context(), q)
	h.writeComments(w, comments, err)
}

func (h *Handler) PopularComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.PopularComments(r.Context())
	h.writeComments(w, comments, err)
}

func (h *Handler) MyComments(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, "post")
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	comments, err := h.svc.MyComments(r.Context(), Principal(r.Context()), q)
	h.writeComments(w, comments, err)
}

func (h *Handler) writeComments(w http.ResponseWriter, comments []*entities.Comment, err error) {
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, commentDTOs(comments))
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	comment, err := h.svc.GetComment(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, commentDTO(comment))
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	present, err := decodeBody(w, r, &req)
	if err == nil {
		err = validateRequest(&req, present, false)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	comment, err := h.svc.CreateComment(r.Context(), Principal(r.Context()), blog.CommentInput{
		PostID:  req.Post,
		Content: req.Content,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, commentDTO(comment))
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	h.updateComment(w, r, false)
}

func (h *Handler) PartialUpdateComment(w http.ResponseWriter, r *http.Request) {
	h.updateComment(w, r, true)
}

// updateComment changes the content only; a "post" key is ignored.
func (h *Handler) updateComment(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	var req CommentUpdateRequest
	present, err := decodeBody(w, r, &req)
	if err == nil {
		err = validateRequest(&req, present, partial)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	comment, err := h.svc.UpdateComment(r.Context(), Principal(r.Context()), id, blog.CommentPatch{
		Content: field(present, "content", req.Content),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, commentDTO(comment))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := h.svc.DeleteComment(r.Context(), Principal(r.Context()), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleCommentLike(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	like, created, err := h.svc.ToggleCommentLike(r.Context(), Principal(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !created {
		h.writeJSON(w, http.StatusOK, StatusResponse{Status: "unliked"})
		return
	}
	h.writeJSON(w, http.StatusCreated, commentLikeDTOs([]*entities.Like{like})[0])
}

func (h *Handler) CommentLikes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	likes, err := h.svc.CommentLikes(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, commentLikeDTOs(likes))
}
