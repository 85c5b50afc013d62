package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"sopgen/internal/endpoint"
	"sopgen/internal/logging"
	"sopgen/internal/metrics"
)

const (
	RouteGenerate       = "/api/generate-sop"
	RouteGenerateLegacy = "/.netlify/functions/generate-sop"
	RouteMetrics        = "/metrics"
	RouteHealth         = "/healthz"
)

type Options struct {
	Addr    string
	Metrics metrics.Metrics
	// ExposeMetrics mounts the Prometheus handler on /metrics.
	ExposeMetrics bool
}

type Server struct {
	endpoint *endpoint.Endpoint
	opts     Options
}

func New(e *endpoint.Endpoint, opts Options) (*Server, error) {
	if e == nil {
		return nil, errors.New("endpoint required")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Noop{}
	}
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	return &Server{endpoint: e, opts: opts}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	generate := endpoint.HTTPHandler(s.endpoint)
	mux.Handle(RouteGenerate, s.observe(RouteGenerate, generate))
	mux.Handle(RouteGenerateLegacy, s.observe(RouteGenerateLegacy, generate))
	mux.HandleFunc(RouteHealth, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.opts.ExposeMetrics {
		mux.Handle(RouteMetrics, metrics.Handler())
	}
	return logMiddleware(mux)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logging.Info("server", "listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.Info("server", "shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) observe(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.opts.Metrics.ObserveRequest(r.Method, route, strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := r.URL.Path
		if path == "" {
			path = "/"
		}
		if path == RouteHealth || path == RouteMetrics {
			return
		}
		logging.Info("http", "request", "method", r.Method, "path", path, "status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
