package routes

import (
	"github.com/MaturityMaxing/sportns/handlers"
	"github.com/MaturityMaxing/sportns/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	gameHandler *handlers.GameHandler,
	chatHandler *handlers.ChatHandler,
	sportHandler *handlers.SportHandler,
	webSocketHandler *handlers.WebSocketHandler,
	opsHandler *handlers.OpsHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Post("/auth/register", authHandler.RegisterHandler)
	router.Post("/auth/login", authHandler.LoginHandler)

	router.Get("/ws/lobby", webSocketHandler.ServeLobby)
	router.Get("/ws/games/{gameID}", webSocketHandler.ServeGame)

	router.Route("/sports", func(r chi.Router) {
		r.Get("/", sportHandler.ListHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Post("/", sportHandler.CreateHandler)
			r.Put("/{sportID}/icon", sportHandler.UploadIconHandler)
		})
	})

	router.Route("/games", func(r chi.Router) {
		// Public read access so the lobby list works before login.
		r.Get("/", gameHandler.ListHandler)
		r.Get("/{gameID}", gameHandler.GetByIDHandler)
		r.Get("/{gameID}/chat", chatHandler.ListMessagesHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", gameHandler.CreateHandler)
			r.Post("/{gameID}/join", gameHandler.JoinHandler)
			r.Post("/{gameID}/leave", gameHandler.LeaveHandler)
			r.Post("/{gameID}/end", gameHandler.EndHandler)
			r.Post("/{gameID}/cancel", gameHandler.CancelHandler)
			r.Post("/{gameID}/chat", chatHandler.PostMessageHandler)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/me", userHandler.GetMeHandler)
		r.Put("/me", userHandler.UpdateMeHandler)
		r.Put("/me/push-token", userHandler.SetPushTokenHandler)
		r.Put("/me/avatar", userHandler.UploadAvatarHandler)
	})

	router.Route("/internal", func(r chi.Router) {
		r.Post("/sweep", opsHandler.SweepHandler)
		r.Post("/worker/run", opsHandler.RunWorkerHandler)
	})
}
