// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/magicboard/internal/app"
	"github.com/okian/magicboard/internal/domain/model"
	"github.com/okian/magicboard/internal/domain/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	LeaderboardDependencies
	MemberDependencies
	ValentineDependencies
	HealthChecker
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	leaderboardHandler *LeaderboardHandler
	memberHandler      *MemberHandler
	valentineHandler   *ValentineHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		memberHandler:      NewMemberHandler(deps),
		valentineHandler:   NewValentineHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /members/{handle}", MetricsMiddleware(s.memberHandler.HandleGetMember, "members"))
	mux.HandleFunc("PUT /members", MetricsMiddleware(s.memberHandler.HandlePutMember, "members"))
	mux.HandleFunc("POST /valentines", MetricsMiddleware(s.valentineHandler.HandlePostValentine, "valentines"))
	mux.HandleFunc("GET /valentines/{handle}", MetricsMiddleware(s.valentineHandler.HandleGetValentines, "valentines"))
}

// Handler returns the registered routes wrapped in OpenTelemetry tracing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return Trace(mux)
}

// Trace wraps h so every request runs in an OpenTelemetry server span.
func Trace(h http.Handler) http.Handler {
	return otelhttp.NewHandler(h, "magicboard")
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError picks the status from the error kind.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status == http.StatusInternalServerError {
		// Do not leak storage details.
		writeError(w, status, code, nil)
		return
	}
	writeError(w, status, code, err)
}

// compile-time check that the service satisfies the handler contracts.
var _ Dependencies = (*service.Service)(nil)

// LeaderboardDependencies reads leaderboard pages.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, q service.Query) (types.LeaderboardPage, error)
}

// MemberDependencies reads and writes members.
type MemberDependencies interface {
	Member(ctx context.Context, handle string) (types.Card, error)
	UpsertMember(ctx context.Context, rec model.ActivityRecord) error
}

// ValentineDependencies sends and lists notes.
type ValentineDependencies interface {
	SendValentine(ctx context.Context, req service.SendRequest) (model.Valentine, bool, error)
	Valentines(ctx context.Context, handle string) ([]model.Valentine, error)
}
