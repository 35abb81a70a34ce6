package api

import "net/http"

// Login exchanges username and password for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	present, err := decodeBody(w, r, &req)
	if err == nil {
		err = validateRequest(&req, present, false)
	}
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, TokenResponse{
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		User:      h.userSummary(user),
	})
}

// Logout revokes the token the request was authenticated with.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), Principal(r.Context()), bearerToken(r.Context())); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
