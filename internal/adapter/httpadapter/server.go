package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/covid-dashboard-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// countryHint is shown when the country search box is empty or unmatched.
const countryHint = "Please enter the country in a valid format ex : Egypt"

// DashboardProvider exposes the built dashboard and its readiness.
type DashboardProvider interface {
	sharedobs.ReadinessChecker
	Dashboard() *domain.Dashboard
}

// Server exposes health, readiness, metrics, and the read-only dashboard API.
type Server struct {
	httpServer *http.Server
	provider   DashboardProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and /api routes.
func NewServer(addr string, provider DashboardProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider: provider,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(provider))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/summary", s.withDashboard(handleSummary))
	mux.HandleFunc("GET /api/table", s.withDashboard(handleTable))
	mux.HandleFunc("GET /api/map", s.withDashboard(handleMap))
	mux.HandleFunc("GET /api/timeline", s.withDashboard(handleTimeline))
	mux.HandleFunc("GET /api/countries/{name}", s.withDashboard(handleCountry))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type dashboardHandler func(w http.ResponseWriter, r *http.Request, d *domain.Dashboard)

// withDashboard answers 503 until the dashboard has been built.
func (s *Server) withDashboard(h dashboardHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := s.provider.Dashboard()
		if d == nil {
			sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "dashboard not built yet"})
			return
		}
		h(w, r, d)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type mapResponse struct {
	Points []domain.ChoroplethPoint `json:"points"`
	Ticks  []domain.ColorbarTick    `json:"ticks"`
}

type countryResponse struct {
	Country   string `json:"country"`
	Confirmed int64  `json:"confirmed"`
	Message   string `json:"message"`
}

func handleSummary(w http.ResponseWriter, _ *http.Request, d *domain.Dashboard) {
	sharedobs.WriteJSON(w, http.StatusOK, d.Summary)
}

func handleTable(w http.ResponseWriter, _ *http.Request, d *domain.Dashboard) {
	sharedobs.WriteJSON(w, http.StatusOK, d.Table)
}

func handleMap(w http.ResponseWriter, _ *http.Request, d *domain.Dashboard) {
	sharedobs.WriteJSON(w, http.StatusOK, mapResponse{Points: d.Map, Ticks: domain.ColorbarTicks})
}

func handleTimeline(w http.ResponseWriter, _ *http.Request, d *domain.Dashboard) {
	sharedobs.WriteJSON(w, http.StatusOK, d.Timeline)
}

func handleCountry(w http.ResponseWriter, r *http.Request, d *domain.Dashboard) {
	row, err := d.FindCountry(r.PathValue("name"))
	switch {
	case errors.Is(err, domain.ErrEmptyCountryQuery):
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: countryHint})
	case errors.Is(err, domain.ErrCountryNotFound):
		sharedobs.WriteJSON(w, http.StatusNotFound, errorResponse{Error: countryHint})
	default:
		sharedobs.WriteJSON(w, http.StatusOK, countryResponse{
			Country:   row.Country,
			Confirmed: row.Confirmed,
			Message:   "Confirmed cases in " + row.Country + " : " + strconv.FormatInt(row.Confirmed, 10),
		})
	}
}
