package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"helphands-go/internal/config"
	"helphands-go/internal/transport/httpserver/handler"
	authmw "helphands-go/internal/transport/httpserver/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *authmw.Auth) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.RequestTimeout))
	r.Use(authmw.NewCORS(cfg.CORS.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Post("/auth/register", handlers.Register)
		r.Post("/auth/login", handlers.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Optional)

			r.Get("/events", handlers.ListEvents)
			r.Get("/events/{id}", handlers.GetEvent)
			r.Get("/announcements", handlers.ListAnnouncements)
			r.Get("/announcements/{id}", handlers.GetAnnouncement)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Require)

			r.Get("/auth/me", handlers.AuthMe)

			r.Post("/events", handlers.CreateEvent)
			r.Put("/events/{id}", handlers.UpdateEvent)
			r.Delete("/events/{id}", handlers.DeleteEvent)
			r.Post("/events/{id}/join", handlers.JoinEvent)
			r.Post("/events/{id}/leave", handlers.LeaveEvent)
			r.Delete("/events/{id}/volunteers/{volunteerId}", handlers.RemoveVolunteer)
			r.Post("/events/{id}/announce", handlers.AnnounceToEvent)

			r.Get("/announcements/my-announcements", handlers.MyAnnouncements)
			r.Post("/announcements", handlers.CreateAnnouncement)
			r.Put("/announcements/{id}", handlers.UpdateAnnouncement)
			r.Delete("/announcements/{id}", handlers.DeleteAnnouncement)
			r.Put("/announcements/{id}/toggle", handlers.ToggleAnnouncement)
			r.Post("/announcements/{id}/read", handlers.MarkAnnouncementRead)

			r.Get("/users", handlers.ListUsers)
			r.Get("/users/profile", handlers.GetProfile)
			r.Put("/users/profile", handlers.UpdateProfile)
			r.Get("/users/my-events", handlers.MyEvents)
			r.Get("/users/{id}", handlers.GetUser)
			r.Put("/users/{id}", handlers.UpdateUser)
			r.Delete("/users/{id}", handlers.DeleteUser)
		})
	})

	return r
}
