package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"quantum-dashboard/internal/chart"
	"quantum-dashboard/internal/display"
	"quantum-dashboard/internal/interaction"
	"quantum-dashboard/internal/markethours"
	"quantum-dashboard/internal/metrics"
)

// Channel names. Slot channels are SlotPrefix + slot id.
const (
	SlotPrefix     = "slot:"
	ChannelChart   = "chart"
	ChannelCommand = "command"
	ChannelMetrics = "metrics"
)

// Hub manages WebSocket clients and fans dashboard updates out to them.
// Slot and chart channels are retained for initial state on connect;
// commands are transient.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	latest  map[string]latestEntry
	seq     int64

	// Per-channel monotonic sequence numbers for gap detection
	channelSeqs map[string]int64

	// Per-channel replay buffers for gap backfill
	replayBufs map[string]*ReplayBuffer
	replayCap  int

	// Slot change to WS emit latency
	Latency *LatencyTracker

	Broadcaster *Broadcaster

	// OnEvent receives every UI event read from a client. Set before
	// serving; called on the client's read goroutine.
	OnEvent func(interaction.Event)

	// Metrics is optional.
	Metrics *metrics.Metrics

	log *slog.Logger
	now func() time.Time
}

type latestEntry struct {
	Data json.RawMessage
	TS   time.Time
	Seq  int64 // per-channel seq for gap detection
}

// SlotMessage is the payload on a slot channel: the change itself plus the
// slot's full state after it.
type SlotMessage struct {
	display.Change
	State display.SlotState `json:"state"`
}

// ChartMessage is the payload on the chart channel.
type ChartMessage struct {
	chart.Redraw
	TS time.Time `json:"ts"`
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	h := &Hub{
		clients:     make(map[*Client]bool),
		latest:      make(map[string]latestEntry),
		channelSeqs: make(map[string]int64),
		replayBufs:  make(map[string]*ReplayBuffer),
		replayCap:   500,
		Latency:     NewLatencyTracker(10000),
		log:         log,
		now:         time.Now,
	}
	h.Broadcaster = NewBroadcaster(h)
	return h
}

// PublishChange broadcasts a slot change with the slot's state after it.
func (h *Hub) PublishChange(c display.Change, state display.SlotState) {
	data, err := json.Marshal(SlotMessage{Change: c, State: state})
	if err != nil {
		h.log.Error("marshal slot change", "slot", c.Slot, "error", err)
		return
	}
	h.Broadcaster.Broadcast(SlotPrefix+c.Slot, data, true)
}

// PublishChart broadcasts a chart redraw.
func (h *Hub) PublishChart(r chart.Redraw) {
	data, err := json.Marshal(ChartMessage{Redraw: r, TS: h.now().UTC()})
	if err != nil {
		h.log.Error("marshal chart redraw", "error", err)
		return
	}
	h.Broadcaster.Broadcast(ChannelChart, data, true)
}

// PublishCommand broadcasts a page command such as a smooth scroll.
func (h *Hub) PublishCommand(cmd interaction.Command) {
	data, err := json.Marshal(cmd)
	if err != nil {
		h.log.Error("marshal command", "type", cmd.Type, "error", err)
		return
	}
	h.Broadcaster.Broadcast(ChannelCommand, data, false)
}

// HandleWSRequest registers an upgraded connection and starts its pumps.
// lastTS, when set, limits the initial state to channels updated after it.
func (h *Hub) HandleWSRequest(conn *websocket.Conn, lastTS string) {
	client := newClient(h, conn)
	conn.EnableWriteCompression(true)

	count := h.register(client)
	h.log.Info("ws client connected", "clients", count)

	client.sendInitialState(lastTS)
	go client.writePump()
	go client.readPump()
}

func (h *Hub) register(c *Client) int {
	h.mu.Lock()
	h.clients[c] = true
	count := len(h.clients)
	h.mu.Unlock()
	if h.Metrics != nil {
		h.Metrics.WSClients.Set(float64(count))
	}
	return count
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()
	close(c.send)
	if h.Metrics != nil {
		h.Metrics.WSClients.Set(float64(count))
	}
}

// GetLatestAll returns a snapshot of the retained data per channel.
func (h *Hub) GetLatestAll() map[string]json.RawMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()
	cp := make(map[string]json.RawMessage, len(h.latest))
	for k, v := range h.latest {
		cp[k] = v.Data
	}
	return cp
}

// GetReplayRange returns buffered envelopes for a channel in [fromSeq, toSeq].
func (h *Hub) GetReplayRange(channel string, fromSeq, toSeq int64) [][]byte {
	h.mu.RLock()
	rb, exists := h.replayBufs[channel]
	h.mu.RUnlock()
	if !exists {
		return nil
	}
	entries := rb.Range(fromSeq, toSeq)
	result := make([][]byte, len(entries))
	for i, e := range entries {
		result[i] = e.Data
	}
	return result
}

// GetChannelSeq returns the current sequence number for a channel.
func (h *Hub) GetChannelSeq(channel string) int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.channelSeqs[channel]
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// retainedChannels lists retained channels in name order.
func (h *Hub) retainedChannels() []string {
	names := make([]string, 0, len(h.latest))
	for ch := range h.latest {
		names = append(names, ch)
	}
	sort.Strings(names)
	return names
}

// MetricsMessage is the payload on the metrics channel.
type MetricsMessage struct {
	Metrics      SystemMetrics `json:"metrics"`
	MarketOpen   bool          `json:"marketOpen"`
	MarketStatus string        `json:"marketStatus"`
}

// BuildMetrics collects system metrics and the market session for now.
func (h *Hub) BuildMetrics(start, now time.Time) MetricsMessage {
	m := CollectMetrics(start)
	m.WSClients = h.ClientCount()
	if h.Latency != nil {
		m.LatencyP50, m.LatencyP95, m.LatencyP99 = h.Latency.Percentiles()
	}
	return MetricsMessage{
		Metrics:      m,
		MarketOpen:   markethours.IsMarketOpen(now),
		MarketStatus: markethours.Status(now),
	}
}

// StartMetricsBroadcast sends system metrics to all WS clients every
// interval until ctx is done.
func (h *Hub) StartMetricsBroadcast(ctx context.Context, start time.Time, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := h.now()
			msg := h.BuildMetrics(start, now)
			if h.Metrics != nil {
				if msg.MarketOpen {
					h.Metrics.MarketState.Set(1)
				} else {
					h.Metrics.MarketState.Set(0)
				}
			}
			envelope, _ := json.Marshal(map[string]interface{}{
				"channel": ChannelMetrics,
				"data":    msg,
				"ts":      now.UTC().Format(time.RFC3339Nano),
			})
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- envelope:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}
