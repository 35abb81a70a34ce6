package api

import (
	"net/http"

	"github.com/leafsii/blog-backend/internal/blog"
	"github.com/leafsii/blog-backend/internal/db/entities"
)

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, "author")
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	posts, err := h.svc.ListPosts(r.Context(), q)
	h.writePosts(w, posts, err)
}

func (h *Handler) PopularPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.PopularPosts(r.Context())
	h.writePosts(w, posts, err)
}

func (h *Handler) MyPosts(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	posts, err := h.svc.MyPosts(r.Context(), Principal(r.Context()), q)
	h.writePosts(w, posts, err)
}

func (h *Handler) writePosts(w http.ResponseWriter, posts []*entities.Post, err error) {
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postSummaries(posts))
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	detail, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postDetail(detail))
}

// CreatePost publishes a post as the principal. An "author" key in the body
// is ignored.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	present, err := decodeBody(w, r, &req)
	if err == nil {
		err = validateRequest(&req, present, false)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	post, err := h.svc.CreatePost(r.Context(), Principal(r.Context()), blog.PostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, postSummary(post))
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	h.updatePost(w, r, false)
}

func (h *Handler) PartialUpdatePost(w http.ResponseWriter, r *http.Request) {
	h.updatePost(w, r, true)
}

func (h *Handler) updatePost(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	var req PostRequest
	present, err := decodeBody(w, r, &req)
	if err == nil {
		err = validateRequest(&req, present, partial)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	post, err := h.svc.UpdatePost(r.Context(), Principal(r.Context()), id, blog.PostPatch{
		Title:   field(present, "title", req.Title),
		Content: field(present, "content", req.Content),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postSummary(post))
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := h.svc.DeletePost(r.Context(), Principal(r.Context()), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TogglePostLike answers 201 with the new like, or 200 {"status":"unliked"}
// when an existing like was removed.
func (h *Handler) TogglePostLike(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	like, created, err := h.svc.TogglePostLike(r.Context(), Principal(r.Context()), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !created {
		h.writeJSON(w, http.StatusOK, StatusResponse{Status: "unliked"})
		return
	}
	h.writeJSON(w, http.StatusCreated, postLikeDTOs([]*entities.Like{like})[0])
}

func (h *Handler) PostLikes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	likes, err := h.svc.PostLikes(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, postLikeDTOs(likes))
}
