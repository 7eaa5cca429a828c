package adapthttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"fitmate/internal/app"
	"fitmate/internal/domain"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	weight  *app.WeightService
	food    *app.FoodService
	engine  *app.Engine
	charts  *app.ChartsService
	metrics http.Handler
	log     *slog.Logger
	webDir  string
}

// New creates a Server wired to the given application services. webDir may
// be empty to serve the API only.
func New(ws *app.WeightService, fs *app.FoodService, eng *app.Engine, cs *app.ChartsService, webDir string) *Server {
	return &Server{
		weight: ws,
		food:   fs,
		engine: eng,
		charts: cs,
		log:    slog.Default(),
		webDir: webDir,
	}
}

// WithMetrics exposes h at /api/metrics.
func (s *Server) WithMetrics(h http.Handler) *Server {
	s.metrics = h
	return s
}

// WithLogger sets the request and error logger.
func (s *Server) WithLogger(l *slog.Logger) *Server {
	s.log = l
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/weight", s.handleWeights)
	api.HandleFunc("/weight/{id}", s.handleWeightByID)
	api.HandleFunc("/weight/recent", s.handleWeightRecent)
	api.HandleFunc("/weight/change", s.handleWeightChange)
	api.HandleFunc("/weight/weekly", s.handleWeightWeekly)
	api.HandleFunc("/weight/export.csv", s.handleWeightExport)

	api.HandleFunc("/food", s.handleFoods)
	api.HandleFunc("/food/{id}", s.handleFoodByID)
	api.HandleFunc("/food/lookup", s.handleFoodLookup)
	api.HandleFunc("/food/recognize", s.handleFoodRecognize)
	api.HandleFunc("/food/estimate", s.handleFoodEstimate)

	api.HandleFunc("/daily", s.handleDaily)
	api.HandleFunc("/charts/daily", s.handleChartsDaily)
	api.HandleFunc("/profile/calorie-target", s.handleCalorieTarget)

	if s.metrics != nil {
		api.Handle("/metrics", s.metrics)
	}

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.webDir != "" {
		root.Handle("/", spaFromDisk(s.webDir))
	}

	return s.loggingMiddleware(withNoCache(root))
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrLookupUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// mutationFailed reports err to the client. Failures that may have come
// from the store also re-sync the aggregate, since the failed mutation
// published nothing.
func (s *Server) mutationFailed(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status != http.StatusBadRequest {
		if rerr := s.engine.Refresh(context.WithoutCancel(r.Context())); rerr != nil {
			s.log.Error("resync after failed mutation", "path", r.URL.Path, "err", rerr)
		}
	}
	writeError(w, status, err)
}
