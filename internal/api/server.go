// Package api provides the JSON HTTP server for the drone survey service.
package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rachitshah07/drone-survey-management-system/internal/auth"
	"github.com/rachitshah07/drone-survey-management-system/internal/metrics"
	"github.com/rachitshah07/drone-survey-management-system/internal/mission"
	"github.com/rachitshah07/drone-survey-management-system/repository"
)

// Handlers bundles the collaborators the HTTP layer needs.
type Handlers struct {
	DB          *sql.DB // health check ping only
	Users       *repository.UserRepository
	Drones      *repository.DroneRepository
	Missions    *repository.MissionRepository
	Coordinator *mission.Coordinator
	Tracker     *mission.ProgressTracker
	JWTSecret   string
	TokenTTL    time.Duration
	Logger      *slog.Logger
}

// NewServer creates and configures the HTTP router.
func NewServer(h *Handlers, m *metrics.Metrics) *chi.Mux {
	if h.Logger == nil {
		h.Logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Logger))

	r.Get("/api/health", h.health)
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.With(auth.Middleware(h.JWTSecret)).Get("/profile", h.profile)
	})

	r.Route("/api/drones", func(r chi.Router) {
		r.Use(auth.Middleware(h.JWTSecret))
		r.Get("/", h.listDrones)
		r.Post("/", h.createDrone)
		r.Get("/stats", h.droneStats)
		r.Get("/{id}", h.getDrone)
		r.Put("/{id}", h.updateDrone)
		r.Delete("/{id}", h.deleteDrone)
	})

	r.Route("/api/missions", func(r chi.Router) {
		r.Use(auth.Middleware(h.JWTSecret))
		r.Get("/", h.listMissions)
		r.Post("/", h.createMission)
		r.Get("/stats", h.missionStats)
		r.Get("/{id}", h.getMission)
		r.Post("/{id}/start", h.startMission)
		r.Post("/{id}/pause", h.pauseMission)
		r.Post("/{id}/resume", h.resumeMission)
		r.Post("/{id}/abort", h.abortMission)
		r.Put("/{id}/progress", h.missionProgress)
	})

	return r
}

// requestLogger logs each request with its status and latency.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}
