package router

import (
	"net/http"

	"devconnector/internal/config"
	"devconnector/internal/database"
	handlers "devconnector/internal/handler"
	"devconnector/internal/middleware"
	"devconnector/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every HTTP route and wraps the result in the global middleware chain.
func NewRouter(h *handlers.Handlers, authService service.AuthService, cfg *config.Config, health database.HealthChecker) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	auth := middleware.AuthMiddleware(authService)
	protected := func(fn http.HandlerFunc) http.Handler {
		return auth(fn)
	}

	r.Handle("/health", handlers.Health(health)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", h.RefreshToken).Methods(http.MethodPost)

	api.Handle("/me", protected(h.GetMe)).Methods(http.MethodGet)
	api.Handle("/me/avatar", protected(h.UploadAvatar)).Methods(http.MethodPost)

	api.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	api.Handle("/posts", protected(h.CreatePost)).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.GetPost).Methods(http.MethodGet)
	api.Handle("/posts/{id}", protected(h.DeletePost)).Methods(http.MethodDelete)
	api.Handle("/posts/like/{id}", protected(h.LikePost)).Methods(http.MethodPost)
	api.Handle("/posts/unlike/{id}", protected(h.UnlikePost)).Methods(http.MethodPost)
	api.Handle("/posts/comment/{id}", protected(h.AddComment)).Methods(http.MethodPost)
	api.Handle("/posts/comment/{postId}/{commentId}", protected(h.RemoveComment)).Methods(http.MethodDelete)

	return middleware.Chain(
		r,
		middleware.LoggingMiddleware,
		middleware.CORSMiddleware(cfg.CORSAllowedOrigins),
	)
}
