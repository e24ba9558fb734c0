// Package app owns every dashboard component and wires them together.
// All component state lives on the scheduler loop; the exported query
// methods marshal onto it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"quantum-dashboard/config"
	"quantum-dashboard/internal/chart"
	"quantum-dashboard/internal/dashboard"
	"quantum-dashboard/internal/debounce"
	"quantum-dashboard/internal/display"
	"quantum-dashboard/internal/gateway"
	"quantum-dashboard/internal/interaction"
	"quantum-dashboard/internal/markethours"
	"quantum-dashboard/internal/metrics"
	"quantum-dashboard/internal/model"
	"quantum-dashboard/internal/notification"
	"quantum-dashboard/internal/predictor"
	"quantum-dashboard/internal/provider"
	"quantum-dashboard/internal/scheduler"
	store "quantum-dashboard/internal/store/redis"
	"quantum-dashboard/internal/ticker"
)

// ErrMirrorDisabled is returned by MirrorState when Redis is not configured.
var ErrMirrorDisabled = errors.New("redis mirror disabled")

// Options configures New. Zero values select the defaults.
type Options struct {
	Config    *config.Config
	Scheduler scheduler.Scheduler
	Provider  provider.Provider
	Generator predictor.Generator
	Layout    *interaction.Layout
	// Redis enables the slot mirror when set.
	Redis *goredis.Client
	// Notifiers receive operational alerts; nil builds them from Config.Alerts.
	Notifiers []notification.Notifier
	Log       *slog.Logger
}

// ChartView is the chart widget state for the API.
type ChartView struct {
	Points []model.ChartPoint `json:"points"`
	Config chart.Config       `json:"config"`
}

// App is the application state object.
type App struct {
	cfg   *config.Config
	sched scheduler.Scheduler
	log   *slog.Logger
	loc   *time.Location

	Surface     *display.Surface
	Chart       *chart.Adapter
	ChartUpdate *debounce.Debouncer[float64]
	Updater     *dashboard.Updater
	Predictor   *predictor.Simulator
	Wiring      *interaction.Wiring
	Ticker      *ticker.Ticker
	Hub         *gateway.Hub
	Mirror      *store.Mirror
	Alerts      *notification.Dispatcher

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Health   *metrics.HealthStatus

	provider    provider.Provider
	redis       *goredis.Client
	chartRand   *rand.Rand
	marketTimer scheduler.Timer
	startedAt   time.Time
}

// New builds every component and connects their hooks. Nothing runs
// until Start.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if opts.Scheduler == nil {
		return nil, fmt.Errorf("app: scheduler is required")
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	seed := cfg.Seed()
	a := &App{
		cfg:       cfg,
		sched:     opts.Scheduler,
		log:       log,
		loc:       cfg.Location(),
		Surface:   display.New(),
		Registry:  prometheus.NewRegistry(),
		Health:    metrics.NewHealthStatus(),
		provider:  opts.Provider,
		redis:     opts.Redis,
		chartRand: rand.New(rand.NewSource(seed)),
	}
	a.Metrics = metrics.NewMetrics(a.Registry)
	a.Surface.SetClock(a.sched.Now)
	if a.provider == nil {
		a.provider = provider.NewStatic()
	}

	a.Hub = gateway.NewHub(log.With("component", "gateway"))
	a.Hub.Metrics = a.Metrics
	a.Hub.OnEvent = a.HandleEvent

	a.Chart = chart.NewAdapter(cfg.ChartWindow, chart.DefaultConfig(), a.onRedraw)
	a.ChartUpdate = debounce.New(a.sched, cfg.DebounceWait, a.Chart.Update)
	a.ChartUpdate.OnCoalesce = a.Metrics.DebounceCoalesced.Inc

	a.Updater = dashboard.NewUpdater(a.Surface, a.provider, a.Chart, log.With("component", "dashboard"))

	gen := opts.Generator
	if gen == nil && cfg.PredictionReport != "" {
		report, err := os.ReadFile(cfg.PredictionReport)
		if err != nil {
			return nil, fmt.Errorf("prediction report: %w", err)
		}
		gen = predictor.ReportGenerator{Report: string(report)}
	}
	if gen == nil {
		gen = predictor.NewRandomGenerator(rand.New(rand.NewSource(seed + 1)))
	}
	a.Predictor = predictor.NewSimulator(a.sched, gen, a.Surface, cfg.PredictionDelay, log.With("component", "predictor"))
	a.Predictor.OnComplete = a.onPrediction

	layout := interaction.DefaultLayout()
	if opts.Layout != nil {
		layout = *opts.Layout
	}
	a.Wiring = interaction.New(layout, a.Surface, a.sched, a, a.Hub.PublishCommand, log.With("component", "interaction"))

	a.Ticker = ticker.New(a.sched, a.Surface, rand.New(rand.NewSource(seed+2)), cfg.TickInterval,
		a.ChartUpdate.Call, log.With("component", "ticker"))
	a.Ticker.OnTick = a.onTick

	notifiers := opts.Notifiers
	if notifiers == nil {
		notifiers = alertSinks(cfg, log.With("component", "alerts"))
	}
	a.Alerts = notification.NewDispatcher(log.With("component", "alerts"), notifiers...)

	if a.redis != nil {
		cb := store.NewCircuitBreaker(5, 10*time.Second)
		cb.OnStateChange = func(from, to store.State) {
			a.Metrics.RedisCircuitBreakerState.Set(float64(to))
			switch {
			case to == store.StateOpen:
				a.Metrics.RedisCircuitBreakerTrips.Inc()
				a.Alerts.Notify(notification.Warning, "Redis mirror paused",
					"circuit breaker opened after repeated write failures")
			case to == store.StateClosed && from != store.StateClosed:
				a.Alerts.Notify(notification.Info, "Redis mirror resumed", "circuit breaker closed")
			}
			log.Warn("redis circuit breaker", "from", from.String(), "to", to.String())
		}
		a.Mirror = store.NewMirror(a.redis, store.Config{}, cb, log.With("component", "redis"))
		a.Mirror.OnDrop = a.Metrics.RedisMirrorDropped.Inc
		a.Health.SetRedisEnabled(true)
	}

	a.Surface.Subscribe(a.onChange)
	return a, nil
}

// Start initializes the page on the loop: chart first, then the data
// render, then the interaction wiring, then the recurring jobs. A data
// load failure is shown on the page and does not abort start-up.
// Background goroutines stop with ctx.
func (a *App) Start(ctx context.Context) error {
	a.startedAt = time.Now()
	var startErr error
	err := a.sched.Do(ctx, func() {
		now := a.sched.Now().In(a.loc)
		a.Chart.Seed(now, a.cfg.ChartBasePrice, a.cfg.ChartSpread, a.chartRand)

		if err := a.Updater.Load(ctx); err != nil {
			a.Health.SetDataLoaded(false)
			a.Alerts.Notify(notification.Critical, "Dashboard data load failed", err.Error())
		} else {
			a.Health.SetDataLoaded(true)
		}

		a.Wiring.Attach()

		a.refreshMarketStatus()
		timer, err := a.sched.Every(time.Minute, a.refreshMarketStatus)
		if err != nil {
			startErr = err
			return
		}
		a.marketTimer = timer

		if err := a.Ticker.Start(); err != nil {
			startErr = err
		}
	})
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if startErr != nil {
		return startErr
	}

	go a.Alerts.Run(ctx)
	if a.Mirror != nil {
		go a.Mirror.Run(ctx)
		a.Health.CheckRedis(ctx, a.redis)
		a.Health.StartLivenessChecker(ctx, a.redis, 15*time.Second)
	}
	go a.Hub.StartMetricsBroadcast(ctx, a.startedAt, a.cfg.MetricsInterval)

	a.Health.SetLoopRunning(true)
	a.log.Info("dashboard started",
		"chart_points", a.Chart.Len(), "tick_interval", a.cfg.TickInterval)
	return nil
}

// Stop cancels recurring jobs and applies any pending chart update.
func (a *App) Stop(ctx context.Context) error {
	err := a.sched.Do(ctx, func() {
		a.Ticker.Stop()
		if a.marketTimer != nil {
			a.marketTimer.Stop()
			a.marketTimer = nil
		}
		a.ChartUpdate.Flush()
	})
	a.Health.SetLoopRunning(false)
	return err
}

// Trigger starts a prediction. Call on the loop.
func (a *App) Trigger() string {
	id := a.Predictor.Trigger()
	a.Metrics.PredictionsActive.Set(float64(a.Predictor.InFlight()))
	return id
}

// Dismiss hides the loading overlay. Call on the loop.
func (a *App) Dismiss() { a.Predictor.Dismiss() }

// HandleEvent queues a browser event onto the loop.
func (a *App) HandleEvent(ev interaction.Event) {
	a.sched.Post(func() {
		if err := a.Wiring.Handle(ev); err != nil {
			a.log.Warn("ui event rejected", "type", ev.Type, "error", err)
		}
	})
}

// Predict triggers a prediction and returns its request id.
func (a *App) Predict(ctx context.Context) (string, error) {
	var id string
	err := a.sched.Do(ctx, func() { id = a.Trigger() })
	return id, err
}

// PredictionStatus returns the simulator state.
func (a *App) PredictionStatus(ctx context.Context) (predictor.Status, error) {
	var st predictor.Status
	err := a.sched.Do(ctx, func() { st = a.Predictor.Status() })
	return st, err
}

// ChartView returns the chart series and widget configuration.
func (a *App) ChartView(ctx context.Context) (ChartView, error) {
	var v ChartView
	err := a.sched.Do(ctx, func() {
		v = ChartView{Points: a.Chart.Points(), Config: a.Chart.Config()}
	})
	return v, err
}

// DashboardData returns the provider snapshot.
func (a *App) DashboardData(ctx context.Context) (model.DashboardSnapshot, error) {
	return a.provider.Snapshot(ctx)
}

// Slots returns every display slot.
func (a *App) Slots(ctx context.Context) (map[string]display.SlotState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.Surface.Snapshot(), nil
}

// MirrorState returns the slot states as mirrored in Redis.
func (a *App) MirrorState(ctx context.Context) (map[string]display.SlotState, error) {
	if a.Mirror == nil {
		return nil, ErrMirrorDisabled
	}
	return a.Mirror.State(ctx)
}

func (a *App) onChange(c display.Change) {
	st, _ := a.Surface.State(c.Slot)
	a.Hub.PublishChange(c, st)
	if a.Mirror != nil {
		a.Mirror.Enqueue(c, st)
	}
}

func (a *App) onRedraw(r chart.Redraw) {
	a.Metrics.ChartUpdatesTotal.Inc()
	a.Hub.PublishChart(r)
}

func (a *App) onTick(price float64) {
	a.Metrics.TicksTotal.Inc()
	if math.IsNaN(price) {
		a.Metrics.TickNaNTotal.Inc()
	}
	a.Health.SetLastTickTime(a.sched.Now())
}

func (a *App) onPrediction(o predictor.Outcome) {
	outcome := "result"
	if o.Err != nil {
		outcome = "error"
	}
	a.Metrics.PredictionsTotal.WithLabelValues(outcome).Inc()
	a.Metrics.PredictionLatency.Observe(o.Latency.Seconds())
	a.Metrics.PredictionsActive.Set(float64(a.Predictor.InFlight()))
	a.Health.SetLastPrediction(a.sched.Now())
}

func (a *App) refreshMarketStatus() {
	now := a.sched.Now()
	a.Surface.SetText(dashboard.SlotMarketStatus, markethours.Status(now))
	if markethours.IsMarketOpen(now) {
		a.Metrics.MarketState.Set(1)
	} else {
		a.Metrics.MarketState.Set(0)
	}
}

// StartedAt returns when Start was called.
func (a *App) StartedAt() time.Time { return a.startedAt }

// alertSinks returns the log sink plus every alert channel configured.
func alertSinks(cfg *config.Config, log *slog.Logger) []notification.Notifier {
	sinks := []notification.Notifier{notification.NewLogNotifier(log)}
	if cfg.Alerts.WebhookURL != "" {
		sinks = append(sinks, notification.NewWebhookNotifier(cfg.Alerts.WebhookURL, "dashboard"))
	}
	if cfg.Alerts.TelegramToken != "" {
		sinks = append(sinks, notification.NewTelegramNotifier(cfg.Alerts.TelegramToken, cfg.Alerts.TelegramChatID))
	}
	return sinks
}
