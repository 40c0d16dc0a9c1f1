package server

import (
	"bufio"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"

	"github.com/muurk/tapcalc/internal/cutting"
	"github.com/muurk/tapcalc/internal/logging"
	"go.uber.org/zap"
)

// maxCutRequestSize bounds the /api/cut request body.
const maxCutRequestSize = 4096

//go:embed static
var staticFiles embed.FS

// Handler returns the HTTP routes:
//
//	GET  /          calculator page
//	GET  /ws        WebSocket session
//	POST /api/cut   roll cutting plan
//	GET  /metrics   Prometheus metrics
//	GET  /healthz   liveness probe
func (s *Server) Handler() http.Handler {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("embedded static files: %v", err))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServerFS(static))
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("POST /api/cut", s.handleCut)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintln(w, "ok")
	})
	return logRequests(mux)
}

// handleCut answers a JSON cutting.Request with a cutting.Plan, or a 400
// with {"error": "..."} when the request is rejected.
func (s *Server) handleCut(w http.ResponseWriter, r *http.Request) {
	var req cutting.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCutRequestSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("malformed request: %v", err)})
		return
	}

	plan, err := cutting.Calculate(req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, cutting.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	logging.Debug("Cutting plan calculated",
		zap.String("remote_addr", r.RemoteAddr),
		zap.Int("material_width", req.MaterialWidth),
		zap.Float64("target_width", req.TargetWidth),
		zap.Int("main_count", plan.MainCount),
		zap.Float64("waste", plan.Waste),
	)
	writeJSON(w, http.StatusOK, plan)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to write JSON response", zap.Error(err))
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}
