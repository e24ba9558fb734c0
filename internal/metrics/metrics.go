package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metrics for the dashboard service.
type Metrics struct {
	TicksTotal   prometheus.Counter
	TickNaNTotal prometheus.Counter

	// Prediction simulator
	PredictionsTotal  *prometheus.CounterVec // labels: outcome=result|error
	PredictionLatency prometheus.Histogram
	PredictionsActive prometheus.Gauge

	// Chart
	ChartUpdatesTotal prometheus.Counter
	DebounceCoalesced prometheus.Counter

	// Interaction + gateway
	UIEventsTotal       *prometheus.CounterVec // labels: type
	WSClients           prometheus.Gauge
	BroadcastDropsTotal prometheus.Counter
	E2ELatency          prometheus.Histogram // slot change to WS emit

	// Redis mirror circuit breaker
	RedisCircuitBreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	RedisCircuitBreakerTrips prometheus.Counter
	RedisMirrorDropped       prometheus.Counter

	// Market session
	MarketState prometheus.Gauge // 0=closed, 1=open
}

// NewMetrics creates all metrics and registers them, plus the Go runtime
// and process collectors, on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_ticks_total",
			Help: "Price ticker runs",
		}),
		TickNaNTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_tick_nan_total",
			Help: "Ticks that produced a non-numeric price",
		}),

		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_predictions_total",
			Help: "Completed predictions by outcome",
		}, []string{"outcome"}),
		PredictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_prediction_latency_seconds",
			Help:    "Time from trigger to completion",
			Buckets: []float64{0.5, 1, 1.5, 2, 2.5, 3, 5, 10},
		}),
		PredictionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_predictions_in_flight",
			Help: "Predictions triggered but not yet completed",
		}),

		ChartUpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_chart_updates_total",
			Help: "Points pushed onto the price chart",
		}),
		DebounceCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_debounce_coalesced_total",
			Help: "Chart update calls superseded by a later call",
		}),

		UIEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dashboard_ui_events_total",
			Help: "Browser interaction events by type",
		}, []string{"type"}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_ws_clients",
			Help: "Connected WebSocket clients",
		}),
		BroadcastDropsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_broadcast_drops_total",
			Help: "Envelopes dropped because a client send queue was full",
		}),
		E2ELatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dashboard_e2e_latency_seconds",
			Help:    "Latency from slot change to WS emit",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		RedisCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_redis_circuit_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		RedisCircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_redis_circuit_breaker_trips_total",
			Help: "Times the Redis circuit breaker tripped open",
		}),
		RedisMirrorDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dashboard_redis_mirror_dropped_total",
			Help: "Slot changes not mirrored to Redis (queue full or breaker open)",
		}),

		MarketState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dashboard_market_state",
			Help: "LSE session state (0=closed, 1=open)",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TicksTotal,
		m.TickNaNTotal,
		m.PredictionsTotal,
		m.PredictionLatency,
		m.PredictionsActive,
		m.ChartUpdatesTotal,
		m.DebounceCoalesced,
		m.UIEventsTotal,
		m.WSClients,
		m.BroadcastDropsTotal,
		m.E2ELatency,
		m.RedisCircuitBreakerState,
		m.RedisCircuitBreakerTrips,
		m.RedisMirrorDropped,
		m.MarketState,
	)

	return m
}
