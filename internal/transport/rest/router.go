package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"learnmyway/internal/auth"
	"learnmyway/internal/service"
	"learnmyway/internal/transport/rest/handler"
	"learnmyway/internal/transport/rest/middleware"
	"learnmyway/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	Verifier        auth.Verifier
	UserService     *service.UserService
	SessionService  *service.SessionService
	MaterialService *service.MaterialService
	WSHandler       *ws.Handler
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	userHandler := handler.NewUserHandler(c.UserService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	materialHandler := handler.NewMaterialHandler(c.MaterialService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.Verifier)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Public routes
	r.HandleFunc("/api/register", userHandler.Register).Methods("POST", "OPTIONS")

	// WebSocket endpoint (credential exchanged over the socket)
	r.HandleFunc("/ws", c.WSHandler.ServeWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes
	authRoutes := r.NewRoute().Subrouter()
	authRoutes.Use(authMW.RequireAuth)

	authRoutes.HandleFunc("/api/user/{id}", userHandler.Get).Methods("GET", "OPTIONS")
	authRoutes.HandleFunc("/api/sessions", sessionHandler.List).Methods("GET", "OPTIONS")
	authRoutes.HandleFunc("/api/materials", materialHandler.List).Methods("GET", "OPTIONS")

	// Teacher routes
	teacherRoutes := r.NewRoute().Subrouter()
	teacherRoutes.Use(authMW.RequireTeacher)

	teacherRoutes.HandleFunc("/api/teachers/students", userHandler.ListStudents).Methods("GET", "OPTIONS")
	teacherRoutes.HandleFunc("/api/teachers/create-session", sessionHandler.Create).Methods("POST", "OPTIONS")
	teacherRoutes.HandleFunc("/api/teachers/upload-material", materialHandler.Upload).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
