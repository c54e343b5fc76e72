package handlers

import (
	"net/http"
	"time"

	"dineflow/internal/common/logger"
)

func Router(h *Handler, lg *logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", h.OrderHandler.CreateOrder)
	mux.HandleFunc("GET /api/orders", h.OrderHandler.ListOrders)
	mux.HandleFunc("GET /api/orders/stream", h.StreamHandler.Stream)
	mux.HandleFunc("GET /api/orders/{id}", h.OrderHandler.GetOrder)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.OrderHandler.UpdateStatus)
	mux.HandleFunc("GET /api/stats", h.StatsHandler.GetStats)
	mux.HandleFunc("GET /health", health)
	return withAccessLog(mux, lg)
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func withAccessLog(next http.Handler, lg *logger.Logger) http.Handler {
	if lg == nil {
		lg = logger.Nop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		lg.Debug("http_request", map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}
