// Package httpserver exposes the supp-tracker JSON API over HTTP.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/and161185/supp-tracker/internal/clock"
	"github.com/and161185/supp-tracker/internal/service"
)

// Services bundles the application services served by the API.
type Services struct {
	Auth      service.AuthService
	Days      service.DayService
	Templates service.TemplateService
	Library   service.LibraryService
	Stats     service.StatsService
}

// Server wires services into HTTP handlers.
type Server struct {
	svc     Services
	signKey []byte
	clock   clock.Clock
	log     *zap.Logger
	reg     *prometheus.Registry
	ping    func(context.Context) error
}

// Option customizes a Server.
type Option func(*Server)

// WithRegistry exposes reg on /metrics.
func WithRegistry(reg *prometheus.Registry) Option { return func(s *Server) { s.reg = reg } }

// WithPing makes /healthz report the result of ping.
func WithPing(ping func(context.Context) error) Option { return func(s *Server) { s.ping = ping } }

// WithClock overrides the wall clock used for default dates.
func WithClock(c clock.Clock) Option { return func(s *Server) { s.clock = c } }

// New constructs an HTTP server with injected services.
func New(svc Services, signKey []byte, log *zap.Logger, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{svc: svc, signKey: signKey, log: log, clock: clock.System{Loc: time.Local}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router builds the request multiplexer.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(Recover(s.log), Logging(s.log))

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(requireAuth(s.signKey))

	api.HandleFunc("/days", s.handleListDays).Methods(http.MethodGet)
	api.HandleFunc("/days/{date}", s.handleGetDay).Methods(http.MethodGet)
	api.HandleFunc("/days/{date}", s.handlePutDay).Methods(http.MethodPut)
	api.HandleFunc("/days/{date}/supplements", s.handleAddSupplement).Methods(http.MethodPost)
	api.HandleFunc("/days/{date}/supplements/from-library", s.handleAddFromLibrary).Methods(http.MethodPost)
	api.HandleFunc("/days/{date}/supplements/{id}/toggle", s.handleToggle).Methods(http.MethodPost)
	api.HandleFunc("/days/{date}/supplements/{id}", s.handleRemove).Methods(http.MethodDelete)

	api.HandleFunc("/template", s.handleGetTemplate).Methods(http.MethodGet)
	api.HandleFunc("/template", s.handleSaveTemplate).Methods(http.MethodPut)
	api.HandleFunc("/template", s.handleDeleteTemplate).Methods(http.MethodDelete)
	api.HandleFunc("/template/from-day/{date}", s.handleTemplateFromDay).Methods(http.MethodPost)
	api.HandleFunc("/template/apply/{date}", s.handleApplyDate).Methods(http.MethodPost)
	api.HandleFunc("/template/apply-range", s.handleApplyRange).Methods(http.MethodPost)

	api.HandleFunc("/library", s.handleListLibrary).Methods(http.MethodGet)
	api.HandleFunc("/library", s.handleAddLibrary).Methods(http.MethodPost)
	api.HandleFunc("/library/{id}", s.handleUpdateLibrary).Methods(http.MethodPut)
	api.HandleFunc("/library/{id}", s.handleDeleteLibrary).Methods(http.MethodDelete)

	api.HandleFunc("/stats/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/stats/weekly", s.handleWeekly).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			writeFailure(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	writeOK(w)
}

func errField(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id, ok := UserIDFromCtx(r.Context()); ok {
		fields = append(fields, zap.String("user", id.String()))
	}
	return fields
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
