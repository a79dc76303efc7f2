package routes

import (
	"github.com/Dosada05/practice-system/handlers"
	"github.com/Dosada05/practice-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Arena     *handlers.ArenaHandler
	Kit       *handlers.KitHandler
	Party     *handlers.PartyHandler
	Match     *handlers.MatchHandler
	Duel      *handlers.DuelHandler
	Queue     *handlers.QueueHandler
	Events    *handlers.EventsHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, auth *middleware.Auth, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", h.Auth.Login)

	router.Route("/arenas", func(r chi.Router) {
		r.Get("/", h.Arena.List)
		r.Get("/{name}", h.Arena.Get)

		// Management endpoints require an admin token.
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize("admin"))

			r.Post("/", h.Arena.Create)
			r.Put("/{name}/anchors/{anchor}", h.Arena.SetAnchor)
			r.Put("/{name}/regenerate", h.Arena.SetRegenerate)
			r.Put("/{name}/kits", h.Arena.SetKits)
			r.Delete("/{name}", h.Arena.Delete)
		})
	})

	router.Route("/kits", func(r chi.Router) {
		r.Get("/", h.Kit.List)
		r.Get("/{id}", h.Kit.Get)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(auth.Authorize("admin"))

			r.Post("/", h.Kit.Create)
			r.Post("/{id}/icon", h.Kit.UploadIcon)
			r.Delete("/{id}", h.Kit.Delete)
		})
	})

	router.Route("/parties", func(r chi.Router) {
		r.Post("/", h.Party.Create)
		r.Get("/{player}", h.Party.Get)
		r.Post("/invite", h.Party.Invite)
		r.Post("/accept", h.Party.Accept)
		r.Post("/leave", h.Party.Leave)
		r.Post("/kick", h.Party.Kick)
		r.Post("/disband", h.Party.Disband)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", h.Match.List)
		r.Get("/{id}", h.Match.Get)
		r.Post("/ffa", h.Match.StartFFA)
		r.Post("/split", h.Match.StartSplit)
		r.Post("/partyvs", h.Match.StartPartyVersus)
	})

	router.Route("/duels", func(r chi.Router) {
		r.Get("/", h.Duel.List)
		r.Get("/{id}", h.Duel.Get)
		r.Post("/challenge", h.Duel.Challenge)
		r.Post("/accept", h.Duel.Accept)
		r.Post("/decline", h.Duel.Decline)
	})

	router.Route("/queue", func(r chi.Router) {
		r.Post("/join", h.Queue.Join)
		r.Post("/leave", h.Queue.Leave)
		r.Get("/depth", h.Queue.Depth)
	})

	// Game-server event ingestion.
	router.Route("/events", func(r chi.Router) {
		r.Post("/death", h.Events.Death)
		r.Post("/disconnect", h.Events.Disconnect)
	})

	router.Get("/ws/matches/{id}", h.WebSocket.ServeMatch)
	router.Get("/ws/players/{id}", h.WebSocket.ServePlayer)
}
