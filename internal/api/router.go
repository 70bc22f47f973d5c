package api

import (
	"net/http"

	"github.com/anurag/vidtube-server/internal/api/handlers"
	"github.com/anurag/vidtube-server/internal/api/middleware"
	"github.com/anurag/vidtube-server/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	userHandler := handlers.NewUserHandler(services.User)

	// API v1 routes
	r.Route("/api/v1/users", func(r chi.Router) {
		// Public routes
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh-token", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Post("/logout", authHandler.Logout)
			r.Patch("/change-password", authHandler.ChangePassword)
			r.Get("/current-user", userHandler.CurrentUser)
			r.Patch("/update-account", userHandler.UpdateAccount)
			r.Patch("/avatar", userHandler.UpdateAvatar)
			r.Patch("/cover-image", userHandler.UpdateCoverImage)
		})
	})

	return r
}
