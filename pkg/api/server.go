package api

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"

	"admind/pkg/auth"
	"admind/pkg/catalog"
	"admind/pkg/httputil"
	"admind/pkg/middleware"
	"admind/pkg/observability"
	"admind/pkg/orders"
	"admind/pkg/rbac"
	"admind/pkg/uploads"
)

// Server represents the API server
type Server struct {
	router *mux.Router
}

// Deps carries everything the server needs wired in
type Deps struct {
	DB             *sql.DB
	Sessions       *auth.SessionManager
	Logger         *observability.Logger
	Metrics        *observability.Metrics
	Uploads        *uploads.Handler
	AllowedOrigins []string
}

// NewServer creates the API server with all routes registered
func NewServer(deps Deps) *Server {
	s := &Server{router: mux.NewRouter()}

	users := auth.NewStore(deps.DB)
	roles := rbac.NewStore(deps.DB)
	products := catalog.NewStore(deps.DB)
	orderStore := orders.NewStore(deps.DB)

	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(deps.Logger))
	if deps.Metrics != nil {
		s.router.Use(deps.Metrics.HTTPMiddleware)
		s.router.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}
	s.router.Use(httputil.CORSMiddleware(deps.AllowedOrigins))
	s.router.Use(httputil.RecoveryMiddleware(deps.Logger))

	// Routes registered on the protected subrouter require a valid session.
	sessionAuth := middleware.NewSessionAuth(deps.Sessions, users)
	protected := s.router.NewRoute().Subrouter()
	protected.Use(sessionAuth.Handler)

	NewAuthHandlers(users, deps.Sessions).RegisterRoutes(s.router, protected)
	NewUserHandlers(users, roles).RegisterRoutes(protected)
	NewRoleHandlers(roles).RegisterRoutes(protected)
	NewProductHandlers(products).RegisterRoutes(protected)
	NewOrderHandlers(orderStore).RegisterRoutes(protected)

	if deps.Uploads != nil {
		protected.HandleFunc("/api/upload", deps.Uploads.Upload).Methods("POST")
		s.router.HandleFunc("/api/uploads/{filename}", deps.Uploads.Serve).Methods("GET")
	}

	return s
}

// Router exposes the underlying router, mainly for tests
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
