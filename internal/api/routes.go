package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups the handlers mounted by RegisterRoutes.
type Handlers struct {
	Users   *UserHandler
	Avatars *AvatarHandler
	Tasks   *TaskHandler
}

// RegisterRoutes mounts the user, avatar and task routes on r. The
// authenticate middleware guards everything except registration, login and
// avatar download.
func RegisterRoutes(r chi.Router, h Handlers, authenticate func(http.Handler) http.Handler) {
	r.Post("/users", h.Users.Register)
	r.Post("/users/login", h.Users.Login)
	r.Get("/users/{id}/avatar", h.Avatars.Get)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/users/logout", h.Users.Logout)
		r.Post("/users/logoutAll", h.Users.LogoutAll)
		r.Get("/users", h.Users.List)
		r.Get("/users/me", h.Users.Me)
		r.Patch("/users/me", h.Users.UpdateMe)
		r.Delete("/users/me", h.Users.DeleteMe)
		r.Post("/users/me/avatar", h.Avatars.Upload)
		r.Delete("/users/me/avatar", h.Avatars.Delete)

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", h.Tasks.Create)
			r.Get("/", h.Tasks.List)
			r.Get("/{id}", h.Tasks.Get)
			r.Patch("/{id}", h.Tasks.Update)
			r.Delete("/{id}", h.Tasks.Delete)
		})
	})
}
