// Package api serves the dashboard's HTTP surface: the JSON endpoints,
// the WebSocket upgrade and the Prometheus scrape endpoint.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quantum-dashboard/internal/app"
	"quantum-dashboard/internal/scheduler"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// Handler holds the API dependencies.
type Handler struct {
	app *app.App
	log *slog.Logger
	now func() time.Time
}

// NewRouter builds the chi router for a.
func NewRouter(a *app.App, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	h := &Handler{app: a, log: log, now: time.Now}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/ws", h.ServeWS)
	r.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	r.Handle("/healthz", a.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/health", h.Health)
		r.Get("/dashboard-data", h.DashboardData)
		r.Get("/models", h.Models)
		r.Post("/predict", h.Predict)
		r.Get("/prediction", h.Prediction)
		r.Get("/chart", h.Chart)
		r.Get("/slots", h.Slots)
		r.Get("/mirror", h.Mirror)
		r.Get("/missed", h.Missed)
		r.Get("/metrics", h.SystemMetrics)
	})
	return r
}

// ServeWS upgrades to a WebSocket and hands the connection to the hub.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	h.app.Hub.HandleWSRequest(conn, r.URL.Query().Get("last_ts"))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"timestamp":  h.now().Format(time.RFC3339),
		"message":    "Quantum ML API is running",
		"ws_clients": h.app.Hub.ClientCount(),
	})
}

func (h *Handler) DashboardData(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.DashboardData(r.Context())
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "Failed to load dashboard data", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	snap, err := h.app.DashboardData(r.Context())
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "Failed to load model performance", err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Models)
}

// Predict starts a prediction; the result arrives on the predictionResult
// slot and at GET /api/prediction.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	id, err := h.app.Predict(r.Context())
	if err != nil {
		h.fail(w, loopStatus(err), "Prediction failed", err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"request_id": id, "status": "loading"})
}

func (h *Handler) Prediction(w http.ResponseWriter, r *http.Request) {
	st, err := h.app.PredictionStatus(r.Context())
	if err != nil {
		h.fail(w, loopStatus(err), "Prediction status unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	v, err := h.app.ChartView(r.Context())
	if err != nil {
		h.fail(w, loopStatus(err), "Chart unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.app.Slots(r.Context())
	if err != nil {
		h.fail(w, loopStatus(err), "Slots unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// Mirror returns the slot states read back from Redis.
func (h *Handler) Mirror(w http.ResponseWriter, r *http.Request) {
	slots, err := h.app.MirrorState(r.Context())
	if errors.Is(err, app.ErrMirrorDisabled) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Redis mirror is not enabled"})
		return
	}
	if err != nil {
		h.fail(w, http.StatusBadGateway, "Redis mirror unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// Missed returns buffered envelopes for ?channel=&from=&to= so a client
// can backfill a channel_seq gap.
func (h *Handler) Missed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	channel := q.Get("channel")
	from, errFrom := strconv.ParseInt(q.Get("from"), 10, 64)
	to, errTo := strconv.ParseInt(q.Get("to"), 10, 64)
	if channel == "" || errFrom != nil || errTo != nil || from > to {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "channel, from and to are required"})
		return
	}

	raw := h.app.Hub.GetReplayRange(channel, from, to)
	out := make([]json.RawMessage, len(raw))
	for i, b := range raw {
		out[i] = b
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"channel":     channel,
		"current_seq": h.app.Hub.GetChannelSeq(channel),
		"envelopes":   out,
	})
}

func (h *Handler) SystemMetrics(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	writeJSON(w, http.StatusOK, h.app.Hub.BuildMetrics(h.app.StartedAt(), now))
}

// fail logs err and writes a generic message.
func (h *Handler) fail(w http.ResponseWriter, status int, msg string, err error) {
	h.log.Error(msg, "error", err)
	writeJSON(w, status, map[string]string{"error": msg})
}

func loopStatus(err error) int {
	if errors.Is(err, scheduler.ErrStopped) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one structured line per request.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
