package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// HealthStatus represents the service health.
type HealthStatus struct {
	mu sync.RWMutex

	LoopRunning      bool
	DataLoaded       bool
	LastTickTime     time.Time
	LastPredictionAt time.Time
	RedisEnabled     bool
	RedisConnected   bool
	RedisLatencyMs   float64
	LastCheckAt      time.Time
	StartedAt        time.Time

	now func() time.Time
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{StartedAt: time.Now(), now: time.Now}
}

func (h *HealthStatus) SetLoopRunning(v bool) {
	h.mu.Lock()
	h.LoopRunning = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetDataLoaded(v bool) {
	h.mu.Lock()
	h.DataLoaded = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastTickTime(t time.Time) {
	h.mu.Lock()
	h.LastTickTime = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastPrediction(t time.Time) {
	h.mu.Lock()
	h.LastPredictionAt = t
	h.mu.Unlock()
}

func (h *HealthStatus) SetRedisEnabled(v bool) {
	h.mu.Lock()
	h.RedisEnabled = v
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = h.now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic Redis probes until ctx is done.
// A nil client disables the probe.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, interval time.Duration) {
	if rdb == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				h.CheckRedis(probeCtx, rdb)
				cancel()
			}
		}
	}()
}

// Report is the JSON body of /healthz.
type Report struct {
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	LoopRunning      bool    `json:"loop_running"`
	DataLoaded       bool    `json:"data_loaded"`
	LastTickTime     string  `json:"last_tick_time,omitempty"`
	TickAge          string  `json:"tick_age,omitempty"`
	LastPredictionAt string  `json:"last_prediction_at,omitempty"`
	RedisEnabled     bool    `json:"redis_enabled"`
	RedisConnected   bool    `json:"redis_connected"`
	RedisLatencyMs   float64 `json:"redis_latency_ms"`
	LastCheckAt      string  `json:"last_check_at,omitempty"`
}

// Report computes the current health. The Redis mirror is optional, so a
// lost Redis connection only degrades.
func (h *HealthStatus) Report() Report {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.now()
	r := Report{
		Status:         "healthy",
		Uptime:         now.Sub(h.StartedAt).Round(time.Second).String(),
		LoopRunning:    h.LoopRunning,
		DataLoaded:     h.DataLoaded,
		RedisEnabled:   h.RedisEnabled,
		RedisConnected: h.RedisConnected,
		RedisLatencyMs: h.RedisLatencyMs,
	}
	if h.RedisEnabled && !h.RedisConnected {
		r.Status = "degraded"
	}
	if !h.DataLoaded {
		r.Status = "degraded"
	}
	if !h.LoopRunning {
		r.Status = "unhealthy"
	}
	if !h.LastTickTime.IsZero() {
		r.LastTickTime = h.LastTickTime.Format(time.RFC3339)
		r.TickAge = now.Sub(h.LastTickTime).Round(time.Millisecond).String()
	}
	if !h.LastPredictionAt.IsZero() {
		r.LastPredictionAt = h.LastPredictionAt.Format(time.RFC3339)
	}
	if !h.LastCheckAt.IsZero() {
		r.LastCheckAt = h.LastCheckAt.Format(time.RFC3339)
	}
	return r
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rep := h.Report()
	w.Header().Set("Content-Type", "application/json")
	if rep.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(rep)
}
