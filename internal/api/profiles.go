package api

import (
	"errors"
	"net/http"

	"github.com/leafsii/blog-backend/internal/blog"
)

const maxUploadBytes = 32 << 20

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, "user")
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	profiles, err := h.svc.ListProfiles(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]*ProfileSummaryDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, h.profileSummary(p))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	detail, err := h.svc.GetProfile(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.profileDetail(detail))
}

// CreateProfile creates the principal's profile; the owner is never read
// from the body.
func (h *Handler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if _, err := decodeBody(w, r, &req); err != nil {
		h.writeServiceError(w, err)
		return
	}
	principal := Principal(r.Context())
	profile, err := h.svc.CreateProfile(r.Context(), principal, req.Bio)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, h.profileDetail(&blog.ProfileDetail{UserProfile: profile, User: principal}))
}

func (h *Handler) MyProfile(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.MyProfile(r.Context(), Principal(r.Context()))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.profileDetail(detail))
}

// UpdateProfile serves PUT and PATCH alike: bio is the only writable field
// and it is optional.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	var req ProfileRequest
	present, err := decodeBody(w, r, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), Principal(r.Context()), id, blog.ProfilePatch{
		Bio: field(present, "bio", req.Bio),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.profileDetail(&blog.ProfileDetail{UserProfile: profile, User: Principal(r.Context())}))
}

func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if err := h.svc.DeleteProfile(r.Context(), Principal(r.Context()), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar reads the multipart "avatar" file and stores it for the profile.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("avatar")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.writeServiceError(w, (&blog.ValidationError{}).Add("avatar", "The uploaded file is too large."))
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			h.writeServiceError(w, (&blog.ValidationError{}).Add("avatar", "No file was submitted."))
		default:
			h.writeServiceError(w, (&blog.ValidationError{}).Add("avatar", "The submitted data was not a file."))
		}
		return
	}
	defer file.Close()

	detail, err := h.svc.UploadAvatar(r.Context(), Principal(r.Context()), id, file)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.profileDetail(detail))
}
