package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leafsii/blog-backend/internal/media"
)

func (h *Handler) Routes(m *Middleware, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(m.RequestID)
	r.Use(m.RequestLogger)
	r.Use(m.Recoverer)
	r.Use(m.SecurityHeaders)
	r.Use(m.Compress)
	r.Use(m.Timeout(15 * time.Second))
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(m.CORS(corsOrigins))
	r.Use(middleware.StripSlashes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed.")
	})

	// Health endpoints
	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	if store := h.svc.Media(); store != nil {
		r.Handle(media.URLPrefix+"*", store.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(m.Authenticate)

		r.Route("/auth/token", func(r chi.Router) {
			r.Post("/", h.Login)
			r.Delete("/", h.Logout)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Post("/", h.RegisterUser)
			r.Post("/register", h.RegisterUser)
			r.Get("/me", h.Me)
			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Use(m.RequireAuth)
				r.Get("/", h.GetUser)
				r.Put("/", h.UpdateUser)
				r.Patch("/", h.PartialUpdateUser)
				r.Delete("/", h.DeleteUser)
			})
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Use(m.RequireAuth)
			r.Get("/", h.ListProfiles)
			r.Post("/", h.CreateProfile)
			r.Get("/my_profile", h.MyProfile)
			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Put("/", h.UpdateProfile)
				r.Patch("/", h.UpdateProfile)
				r.Delete("/", h.DeleteProfile)
				r.Put("/avatar", h.UploadAvatar)
			})
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(m.RequireAuth)
			r.Get("/", h.ListPosts)
			r.Post("/", h.CreatePost)
			r.Get("/popular", h.PopularPosts)
			r.Get("/my", h.MyPosts)
			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Get("/", h.GetPost)
				r.Put("/", h.UpdatePost)
				r.Patch("/", h.PartialUpdatePost)
				r.Delete("/", h.DeletePost)
				r.Post("/like", h.TogglePostLike)
				r.Get("/likes", h.PostLikes)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(m.RequireAuth)
			r.Get("/", h.ListComments)
			r.Post("/", h.CreateComment)
			r.Get("/popular", h.PopularComments)
			r.Get("/my", h.MyComments)
			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Get("/", h.GetComment)
				r.Put("/", h.UpdateComment)
				r.Patch("/", h.PartialUpdateComment)
				r.Delete("/", h.DeleteComment)
				r.Post("/like", h.ToggleCommentLike)
				r.Get("/likes", h.CommentLikes)
			})
		})
	})

	return r
}
