package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/asadmin/rpc/common"
	"github.com/ValentinKolb/asadmin/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/rpc")

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{
		counters: xsync.NewMapOf[string, *metrics.Counter](),
	}
}

type route struct {
	pattern string
	handler http.HandlerFunc
}

type httpServerTransport struct {
	routes []route
	// requests per route and status code
	counters *xsync.MapOf[string, *metrics.Counter]
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(pattern string, handler http.HandlerFunc) {
	t.routes = append(t.routes, route{pattern: pattern, handler: handler})
}

func (t *httpServerTransport) Handler(config common.ServerConfig) http.Handler {
	// Create a new HTTP server
	mux := http.NewServeMux()

	// Register handlers
	for _, r := range t.routes {
		h := t.metricsMiddleware(r.pattern, r.handler)
		if config.LogLevel == "debug" {
			h = loggerMiddleware(h)
		}
		mux.HandleFunc(r.pattern, h)
	}

	// Prometheus text format of all metrics of the process
	mux.HandleFunc("GET "+common.RouteMetrics, func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	if config.CORSOrigin != "" {
		return corsMiddleware(config.CORSOrigin, mux)
	}
	return mux
}

func (t *httpServerTransport) Listen(ctx context.Context, config common.ServerConfig) error {
	server := &http.Server{
		Addr:              config.Endpoint,
		Handler:           t.Handler(config),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Shut down once the context is done
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			Logger.Errorf("Failed to shut down HTTP server: %v", err)
		}
	}()

	Logger.Infof("Starting HTTP server on %s", config.Endpoint)

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-stopped
		Logger.Infof("HTTP server stopped")
		return nil
	}
	return err
}

// --------------------------------------------------------------------------
// Middleware (logging, metrics, cors)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create custom response writer to capture status code
		rw := wrap(w)

		// Process request
		next.ServeHTTP(rw, r)

		// Log the request
		duration := time.Since(start)
		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, duration)
	}
}

// metricsMiddleware counts the requests of a route by status code and
// records their duration
func (t *httpServerTransport) metricsMiddleware(pattern string, next http.HandlerFunc) http.HandlerFunc {
	duration := metrics.GetOrCreateHistogram(fmt.Sprintf(`asadmin_http_request_duration_seconds{route=%q}`, routeLabel(pattern)))
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)
		next.ServeHTTP(rw, r)
		duration.UpdateDuration(start)
		t.counter(pattern, rw.statusCode).Inc()
	}
}

func (t *httpServerTransport) counter(pattern string, code int) *metrics.Counter {
	key := pattern + "|" + strconv.Itoa(code)
	c, _ := t.counters.LoadOrCompute(key, func() *metrics.Counter {
		return metrics.GetOrCreateCounter(fmt.Sprintf(`asadmin_http_requests_total{route=%q,code="%d"}`, routeLabel(pattern), code))
	})
	return c
}

var labelReplacer = strings.NewReplacer("{", ":", "}", "")

// routeLabel turns "GET /api/records/{key}" into "GET /api/records/:key"
func routeLabel(pattern string) string {
	return labelReplacer.Replace(pattern)
}

// corsMiddleware allows cross origin requests from origin and answers
// preflight requests
func corsMiddleware(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if origin != "*" {
			h.Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
