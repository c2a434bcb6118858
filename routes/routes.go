package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Nihilantropy/ft-transcendence-sub006/handlers"
	"github.com/Nihilantropy/ft-transcendence-sub006/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	gameHandler *handlers.GameHandler,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
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

	router.Route("/games", func(r chi.Router) {
		r.Use(auth.Optional)

		r.Post("/", gameHandler.CreateHandler)
		r.Get("/", gameHandler.ListHandler)
		r.Get("/{gameID}", gameHandler.GetByIDHandler)
		r.Delete("/{gameID}", gameHandler.CancelHandler)
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Use(auth.Optional)

		r.Post("/", tournamentHandler.CreateHandler)
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/bracket", tournamentHandler.BracketHandler)
		r.Post("/{tournamentID}/join", tournamentHandler.JoinHandler)
		r.Post("/{tournamentID}/start", tournamentHandler.StartHandler)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Require)
		r.Get("/users/{userID}/stats", gameHandler.UserStatsHandler)
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.Optional)
		r.Get("/ws", webSocketHandler.ServeWs)
		r.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeTournamentWs)
	})
}
