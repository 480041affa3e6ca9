package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/trailmark/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	session *tracker.Session
	mapView *tracker.MapState
	list    *tracker.ListState
	log     *slog.Logger
	router  chi.Router
}

// New creates a new Server with all routes configured. mapView and list
// must be the views the session draws into.
func New(session *tracker.Session, mapView *tracker.MapState, list *tracker.ListState, log *slog.Logger) *Server {
	s := &Server{
		session: session,
		mapView: mapView,
		list:    list,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/workouts", s.handleListWorkouts)
		r.Post("/workouts", s.handleCreateWorkout)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Patch("/workouts/{id}", s.handleEditWorkout)
		r.Delete("/workouts/{id}", s.handleDeleteWorkout)
		r.Post("/workouts/{id}/edit", s.handleEditRequested)
		r.Post("/workouts/{id}/select", s.handleSelectWorkout)
		r.Get("/workouts/{id}/entry", s.handleWorkoutEntry)

		r.Post("/location", s.handleSelectLocation)
		r.Get("/map", s.handleMap)
		r.Get("/list", s.handleList)
		r.Post("/reset", s.handleReset)
	})
}

// SetMCP mounts an MCP transport handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}
