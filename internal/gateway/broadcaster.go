package gateway

import (
	"encoding/json"
	"strconv"
	"time"
)

// Broadcaster constructs envelope JSON and sends it to every client.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a Broadcaster backed by the given Hub.
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// Broadcast sends data on a channel to all clients. retain keeps the
// payload as the channel's latest value for initial state on connect.
// Every envelope carries a global seq and a per-channel seq.
func (b *Broadcaster) Broadcast(channel string, data []byte, retain bool) {
	now := b.hub.now().UTC()

	if srcTS := extractTS(data); !srcTS.IsZero() {
		latency := now.Sub(srcTS)
		if latency >= 0 {
			if b.hub.Latency != nil {
				b.hub.Latency.Record(float64(latency.Microseconds()) / 1000.0)
			}
			if b.hub.Metrics != nil {
				b.hub.Metrics.E2ELatency.Observe(latency.Seconds())
			}
		}
	}

	b.hub.mu.Lock()
	b.hub.channelSeqs[channel]++
	channelSeq := b.hub.channelSeqs[channel]
	if retain {
		b.hub.latest[channel] = latestEntry{Data: data, TS: now, Seq: channelSeq}
	}
	b.hub.seq++
	seq := b.hub.seq
	rb, exists := b.hub.replayBufs[channel]
	if !exists {
		rb = NewReplayBuffer(b.hub.replayCap)
		b.hub.replayBufs[channel] = rb
	}
	b.hub.mu.Unlock()

	buf := buildEnvelope(channel, data, now, seq, channelSeq)
	rb.Push(channelSeq, buf)

	b.hub.mu.RLock()
	defer b.hub.mu.RUnlock()
	for client := range b.hub.clients {
		select {
		case client.send <- buf:
		default:
			if b.hub.Metrics != nil {
				b.hub.Metrics.BroadcastDropsTotal.Inc()
			}
		}
	}
}

// buildEnvelope hand-crafts
// {"channel":..,"data":..,"ts":..,"seq":N,"channel_seq":M}.
// channel must not need JSON escaping.
func buildEnvelope(channel string, data []byte, now time.Time, seq, channelSeq int64) []byte {
	buf := make([]byte, 0, len(channel)+len(data)+160)
	buf = append(buf, `{"channel":"`...)
	buf = append(buf, channel...)
	buf = append(buf, `","data":`...)
	buf = append(buf, data...)
	buf = append(buf, `,"ts":"`...)
	buf = now.AppendFormat(buf, time.RFC3339Nano)
	buf = append(buf, `","seq":`...)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, `,"channel_seq":`...)
	buf = strconv.AppendInt(buf, channelSeq, 10)
	buf = append(buf, '}')
	return buf
}

// extractTS reads a top-level "ts" field from a JSON payload.
func extractTS(data []byte) time.Time {
	var partial struct {
		TS time.Time `json:"ts"`
	}
	if err := json.Unmarshal(data, &partial); err == nil && !partial.TS.IsZero() {
		return partial.TS
	}
	return time.Time{}
}
