// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tabung/internal/log"
	"tabung/internal/metrics"
	"tabung/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	AuthUsername   string
	AuthPassword   string
	MetricsEnabled bool
	// RateLimit is the number of mutating requests per client per minute. Zero disables it.
	RateLimit int
	Ready     Pinger
	Logger    *log.Logger
}

type Server struct {
	http.Server
	ledger       *services.Ledger
	ready        Pinger
	limiter      *mutationLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger *services.Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		ledger: ledger,
		ready:  opts.Ready,
	}
	if opts.RateLimit > 0 {
		s.limiter = newMutationLimiter(opts.RateLimit)
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(log.Middleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(observeDuration)
	r.Use(securityHeaders)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	if opts.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if opts.AuthUsername != "" {
			r.Use(basicAuth(opts.AuthUsername, opts.AuthPassword))
		}
		if s.limiter != nil {
			r.Use(s.limiter.middleware)
		}
		r.Use(middleware.Timeout(15 * time.Second))

		r.Get("/balances", s.handleBalances)
		r.Get("/summary/today", s.handleTodaySummary)

		r.Get("/money", s.handleListMoney)
		r.Post("/money", s.handleRecordMoney)
		r.Put("/money/{id}", s.handleUpdateMoney)

		r.Get("/expenses", s.handleListExpenses)
		r.Post("/expenses", s.handleRecordExpense)
		r.Put("/expenses/{id}", s.handleUpdateExpense)
		r.Delete("/expenses/{id}", s.handleDeleteExpense)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleAddCategory)
		r.Put("/categories/{id}", s.handleUpdateCategory)
		r.Delete("/categories/{id}", s.handleDeleteCategory)

		r.Get("/bills", s.handleListBills)
		r.Post("/bills", s.handleAddBill)
		r.Put("/bills/{id}", s.handleUpdateBill)
		r.Delete("/bills/{id}", s.handleDeleteBill)
		r.Post("/bills/{id}/pay", s.handlePayBill)
		r.Post("/bills/{id}/reverse", s.handleReverseBill)

		r.Get("/goals", s.handleListGoals)
		r.Post("/goals", s.handleAddGoal)
		r.Delete("/goals/{id}", s.handleDeleteGoal)

		r.Get("/archive", s.handleListArchive)
		r.Post("/reset", s.handleReset)
	})

	s.Handler = r
	return s
}

// Shutdown drains the HTTP server. Later calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// requestID reuses an incoming X-Request-Id or mints a UUID, and stores it
// where chi's middleware.GetReqID finds it.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observeDuration records request latency by route pattern, keeping label cardinality bounded.
func observeDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(r.Method, route, metrics.StatusClass(status)).
			Observe(time.Since(start).Seconds())
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, "not_ready", "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
