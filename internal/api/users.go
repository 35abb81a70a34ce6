package api

import (
	"net/http"

	"github.com/leafsii/blog-backend/internal/blog"
)

// RegisterUser creates an account with an empty profile. Served at both
// POST /users and POST /users/register.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	present, err := decodeBody(w, r, &req)
	if err == nil {
		err = validateRequest(&req, present, false)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	user, err := h.svc.Register(r.Context(), blog.UserInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.userSummary(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	users, err := h.svc.ListUsers(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]UserSummaryDTO, 0, len(users))
	for _, u := range users {
		out = append(out, h.userSummary(u))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	detail, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.userDetail(detail))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Me(r.Context(), Principal(r.Context()))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.userDetail(detail))
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, false)
}

func (h *Handler) PartialUpdateUser(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, true)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	var req UserUpdateRequest
	present, err := decodeBody(w, r, &req)
	if err == nil {
		err = validateRequest(&req, present, partial)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	user, err := h.svc.UpdateUser(r.Context(), Principal(r.Context()), id, blog.UserPatch{
		Username:  field(present, "username", req.Username),
		Email:     field(present, "email", req.Email),
		Password:  field(present, "password", req.Password),
		FirstName: field(present, "first_name", req.FirstName),
		LastName:  field(present, "last_name", req.LastName),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.userSummary(user))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := h.svc.DeleteUser(r.Context(), Principal(r.Context()), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
