package api

import (
	"net/http"

	"github.com/crewdesk/backend/internal/auth"
	apperrors "github.com/crewdesk/backend/internal/errors"
	"github.com/crewdesk/backend/internal/health"
	"github.com/crewdesk/backend/internal/metrics"
	"github.com/crewdesk/backend/internal/tasks"
	"github.com/crewdesk/backend/internal/users"
)

type Router struct {
	mux          *http.ServeMux
	authHandlers *auth.Handlers
	issuer       *auth.Issuer
	userHandlers *users.Handlers
	taskHandlers *tasks.Handlers
	checker      *health.Checker
	metrics      *metrics.Metrics
}

func NewRouter(
	authHandlers *auth.Handlers,
	issuer *auth.Issuer,
	userHandlers *users.Handlers,
	taskHandlers *tasks.Handlers,
	checker *health.Checker,
	m *metrics.Metrics,
) *Router {
	r := &Router{
		mux:          http.NewServeMux(),
		authHandlers: authHandlers,
		issuer:       issuer,
		userHandlers: userHandlers,
		taskHandlers: taskHandlers,
		checker:      checker,
		metrics:      m,
	}
	r.setupRoutes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	// Operational endpoints
	r.mux.HandleFunc("GET /health", r.checker.Handler())
	r.mux.HandleFunc("GET /metrics", r.metrics.Handler())

	// Auth routes (no auth required)
	r.mux.HandleFunc("POST /api/auth/login", r.authHandlers.Login)
	r.mux.HandleFunc("GET /api/auth/refresh", r.authHandlers.Refresh)
	r.mux.HandleFunc("POST /api/auth/logout", r.authHandlers.Logout)

	// User routes (auth required)
	r.mux.HandleFunc("GET /api/users", r.withAuth(apperrors.HandleFunc(r.userHandlers.List)))
	r.mux.HandleFunc("POST /api/users", r.withAuth(apperrors.HandleFunc(r.userHandlers.Create)))
	r.mux.HandleFunc("GET /api/users/{id}", r.withAuth(apperrors.HandleFunc(r.userHandlers.Get)))
	r.mux.HandleFunc("PATCH /api/users/{id}", r.withAuth(apperrors.HandleFunc(r.userHandlers.Update)))
	r.mux.HandleFunc("PATCH /api/users/password/{id}", r.withAuth(apperrors.HandleFunc(r.userHandlers.ResetPassword)))
	r.mux.HandleFunc("DELETE /api/users/{id}", r.withAuth(apperrors.HandleFunc(r.userHandlers.Delete)))

	// Task routes (auth required)
	r.mux.HandleFunc("GET /api/tasks", r.withAuth(apperrors.HandleFunc(r.taskHandlers.List)))
	r.mux.HandleFunc("POST /api/tasks", r.withAuth(apperrors.HandleFunc(r.taskHandlers.Create)))
	r.mux.HandleFunc("GET /api/tasks/{id}", r.withAuth(apperrors.HandleFunc(r.taskHandlers.Get)))
	r.mux.HandleFunc("PATCH /api/tasks/{id}", r.withAuth(apperrors.HandleFunc(r.taskHandlers.Update)))
	r.mux.HandleFunc("DELETE /api/tasks/{id}", r.withAuth(apperrors.HandleFunc(r.taskHandlers.Delete)))

	// Everything else
	r.mux.HandleFunc("/", notFoundHandler)
}

func (r *Router) withAuth(next http.HandlerFunc) http.HandlerFunc {
	middleware := auth.Middleware(r.issuer)
	return func(w http.ResponseWriter, req *http.Request) {
		middleware(http.HandlerFunc(next)).ServeHTTP(w, req)
	}
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())
	apperrors.WriteError(w, requestID, apperrors.NotFound("route"))
}
