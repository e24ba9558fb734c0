package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"quantum-dashboard/internal/display"
)

const (
	defaultQueueSize = 1024
	defaultStateTTL  = 30 * time.Minute
	writeTimeout     = 2 * time.Second
)

// Config configures the Redis mirror.
type Config struct {
	Addr     string // e.g. "localhost:6379"
	Password string
	DB       int

	// Prefix for PubSub channels, "pub:" gives "pub:slot:<id>".
	Prefix string
	// StateKey is the hash holding the latest state per slot.
	StateKey  string
	StateTTL  time.Duration
	QueueSize int
}

func (c *Config) withDefaults() {
	if c.Prefix == "" {
		c.Prefix = "pub:"
	}
	if c.StateKey == "" {
		c.StateKey = "dashboard:slots"
	}
	if c.StateTTL <= 0 {
		c.StateTTL = defaultStateTTL
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
}

// Update is one slot change to mirror.
type Update struct {
	Change display.Change    `json:"change"`
	State  display.SlotState `json:"state"`
}

// Mirror copies slot changes into Redis for external consumers: each
// change is published on "<prefix>slot:<id>" and the slot's latest state
// is kept in a hash. Writes happen on a background goroutine behind a
// circuit breaker; a full queue or an open breaker drops the update and
// never blocks the caller.
type Mirror struct {
	client *goredis.Client
	cfg    Config
	cb     *CircuitBreaker
	queue  chan Update
	log    *slog.Logger
	write  func(ctx context.Context, u Update) error

	// OnDrop is called for every update that was not written.
	OnDrop func()
}

// Dial creates the client and pings the server.
func Dial(ctx context.Context, cfg Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewMirror creates a mirror over client guarded by cb.
func NewMirror(client *goredis.Client, cfg Config, cb *CircuitBreaker, log *slog.Logger) *Mirror {
	cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	m := &Mirror{
		client: client,
		cfg:    cfg,
		cb:     cb,
		queue:  make(chan Update, cfg.QueueSize),
		log:    log,
	}
	m.write = m.writeRedis
	return m
}

// Channel returns the PubSub channel for a slot.
func (m *Mirror) Channel(slot string) string {
	return m.cfg.Prefix + "slot:" + slot
}

// Enqueue queues an update without blocking.
func (m *Mirror) Enqueue(c display.Change, state display.SlotState) {
	select {
	case m.queue <- Update{Change: c, State: state}:
	default:
		m.drop()
	}
}

// Run writes queued updates until ctx is cancelled.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-m.queue:
			m.handle(ctx, u)
		}
	}
}

func (m *Mirror) handle(ctx context.Context, u Update) {
	err := m.cb.Execute(func() error {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		defer cancel()
		return m.write(wctx, u)
	})
	if err == nil {
		return
	}
	m.drop()
	if !errors.Is(err, ErrCircuitOpen) {
		m.log.Warn("redis mirror write failed", "slot", u.Change.Slot, "error", err)
	}
}

func (m *Mirror) drop() {
	if m.OnDrop != nil {
		m.OnDrop()
	}
}

func (m *Mirror) writeRedis(ctx context.Context, u Update) error {
	payload, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	state, err := json.Marshal(u.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = m.client.Pipelined(ctx, func(p goredis.Pipeliner) error {
		p.Publish(ctx, m.Channel(u.Change.Slot), payload)
		p.HSet(ctx, m.cfg.StateKey, u.Change.Slot, state)
		p.Expire(ctx, m.cfg.StateKey, m.cfg.StateTTL)
		return nil
	})
	return err
}

// State reads back the mirrored slot states.
func (m *Mirror) State(ctx context.Context) (map[string]display.SlotState, error) {
	return ReadState(ctx, m.client, m.cfg.StateKey)
}

// ReadState returns the mirrored state of every slot.
func ReadState(ctx context.Context, client *goredis.Client, key string) (map[string]display.SlotState, error) {
	raw, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", key, err)
	}
	out := make(map[string]display.SlotState, len(raw))
	for slot, v := range raw {
		var st display.SlotState
		if err := json.Unmarshal([]byte(v), &st); err != nil {
			return nil, fmt.Errorf("decode slot %s: %w", slot, err)
		}
		out[slot] = st
	}
	return out, nil
}
