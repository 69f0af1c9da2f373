package http

import (
	"fmt"
	"github.com/ValentinKolb/metasync/rpc/common"
	"github.com/ValentinKolb/metasync/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net/http"
	"strconv"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handler transport.ServerHandleFunc
	config  common.ServerConfig
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}
	t.config = config

	server := &http.Server{
		Addr:              t.config.Endpoint,
		Handler:           NewHandler(t.handler, t.config.LogLevel == "debug"),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if config.TimeoutSecond > 0 {
		server.WriteTimeout = time.Duration(config.TimeoutSecond) * time.Second
	}

	Logger.Infof("Starting HTTP server on %s", t.config.Endpoint)
	return server.ListenAndServe()
}

// NewHandler returns the HTTP handler of the server transport:
//
//	POST /{shardId}  RPC request for a shard, the body is the serialized message
//	GET  /metrics    Prometheus metrics of the process
//	GET  /health     liveness probe
func NewHandler(handler transport.ServerHandleFunc, debug bool) http.Handler {
	rpc := requestHandler(handler)
	if debug {
		rpc = loggerMiddleware(rpc)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /{shardId}", rpc)
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		metrics.WritePrometheus(w, true)
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	return mux
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// requestHandler handles incoming HTTP requests and writes the response to the writer
func requestHandler(handler transport.ServerHandleFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Parse shardId from request
		shardId, err := strconv.ParseUint(r.PathValue("shardId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid shardId", http.StatusBadRequest)
			return
		}

		// Read request body
		body, err := io.ReadAll(r.Body)
		defer r.Body.Close()
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}

		metrics.GetOrCreateCounter(fmt.Sprintf(`metasync_rpc_requests_total{shard="%d"}`, shardId)).Inc()
		resp := handler(shardId, body)

		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err = w.Write(resp); err != nil {
			Logger.Warningf("Failed to write response: %v", err)
		}
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
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

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create custom response writer to capture status code
		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		// Process request
		next.ServeHTTP(rw, r)

		// Log the request
		duration := time.Since(start)
		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, duration)
	}
}
