package gateway

import (
	"encoding/json"
	"testing"
	"time"

	"quantum-dashboard/internal/display"
)

type envelope struct {
	Channel    string          `json:"channel"`
	Data       json.RawMessage `json:"data"`
	TS         string          `json:"ts"`
	Seq        int64           `json:"seq"`
	ChannelSeq int64           `json:"channel_seq"`
	Initial    bool            `json:"initial"`
}

func TestBuildEnvelopeFormat(t *testing.T) {
	channel := "slot:currentPrice"
	data := []byte(`{"slot":"currentPrice","kind":"text","value":"9,138.9","ts":"2025-08-15T09:00:00Z"}`)
	now := time.Date(2025, 8, 15, 9, 0, 1, 0, time.UTC)

	buf := buildEnvelope(channel, data, now, 42, 7)

	var env envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		t.Fatalf("envelope is not valid JSON: %v\nraw: %s", err, buf)
	}
	if env.Channel != channel {
		t.Errorf("channel: got %q, want %q", env.Channel, channel)
	}
	if env.Seq != 42 || env.ChannelSeq != 7 {
		t.Errorf("seq: got %d/%d, want 42/7", env.Seq, env.ChannelSeq)
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("data is not valid JSON: %v", err)
	}
	if payload["value"] != "9,138.9" {
		t.Errorf("value: got %v", payload["value"])
	}
	parsed, err := time.Parse(time.RFC3339Nano, env.TS)
	if err != nil {
		t.Fatalf("ts is not valid RFC3339Nano: %v", err)
	}
	if !parsed.Equal(now) {
		t.Errorf("ts: got %v, want %v", parsed, now)
	}
}

func TestBroadcaster_PerChannelSeq(t *testing.T) {
	h := NewHub(nil)
	c := &Client{send: make(chan []byte, 16), hub: h}
	h.register(c)

	for i := 0; i < 3; i++ {
		h.Broadcaster.Broadcast("slot:a", []byte(`{}`), true)
	}
	for i := 0; i < 2; i++ {
		h.Broadcaster.Broadcast("slot:b", []byte(`{}`), true)
	}

	if got := h.GetChannelSeq("slot:a"); got != 3 {
		t.Errorf("slot:a seq = %d, want 3", got)
	}
	if got := h.GetChannelSeq("slot:b"); got != 2 {
		t.Errorf("slot:b seq = %d, want 2", got)
	}

	var last envelope
	for i := 0; i < 5; i++ {
		if err := json.Unmarshal(<-c.send, &last); err != nil {
			t.Fatal(err)
		}
	}
	if last.Seq != 5 || last.ChannelSeq != 2 || last.Channel != "slot:b" {
		t.Errorf("last envelope = %+v", last)
	}
}

func TestBroadcaster_TransientNotRetained(t *testing.T) {
	h := NewHub(nil)
	h.Broadcaster.Broadcast(ChannelCommand, []byte(`{"type":"scroll"}`), false)

	if _, ok := h.GetLatestAll()[ChannelCommand]; ok {
		t.Error("command channel should not be retained")
	}
	if got := h.GetReplayRange(ChannelCommand, 1, 1); len(got) != 1 {
		t.Errorf("replay: got %d entries, want 1", len(got))
	}
}

func TestBroadcaster_FullQueueDrops(t *testing.T) {
	h := NewHub(nil)
	c := &Client{send: make(chan []byte, 1), hub: h}
	h.register(c)

	h.Broadcaster.Broadcast("slot:a", []byte(`{}`), true)
	h.Broadcaster.Broadcast("slot:a", []byte(`{}`), true)

	if len(c.send) != 1 {
		t.Fatalf("queue len = %d, want 1", len(c.send))
	}
}

func TestPublishChange_CarriesState(t *testing.T) {
	h := NewHub(nil)
	ts := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return ts.Add(time.Millisecond) }

	h.PublishChange(
		display.Change{Slot: "currentPrice", Kind: display.KindText, Value: "9,138.9", TS: ts},
		display.SlotState{Text: "9,138.9"},
	)

	raw := h.GetLatestAll()["slot:currentPrice"]
	var msg SlotMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatal(err)
	}
	if msg.Slot != "currentPrice" || msg.State.Text != "9,138.9" {
		t.Errorf("message = %+v", msg)
	}
	if h.Latency.Count() != 1 {
		t.Errorf("latency samples = %d, want 1", h.Latency.Count())
	}
}

func TestSendInitialState_Cutoff(t *testing.T) {
	h := NewHub(nil)
	t0 := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return t0 }
	h.Broadcaster.Broadcast("slot:old", []byte(`{}`), true)
	h.now = func() time.Time { return t0.Add(time.Minute) }
	h.Broadcaster.Broadcast("slot:new", []byte(`{}`), true)

	c := &Client{send: make(chan []byte, 16), hub: h}
	c.sendInitialState("")
	if len(c.send) != 2 {
		t.Fatalf("full state: got %d envelopes, want 2", len(c.send))
	}

	c = &Client{send: make(chan []byte, 16), hub: h}
	c.sendInitialState(t0.Format(time.RFC3339Nano))
	if len(c.send) != 1 {
		t.Fatalf("after cutoff: got %d envelopes, want 1", len(c.send))
	}
	var env envelope
	if err := json.Unmarshal(<-c.send, &env); err != nil {
		t.Fatal(err)
	}
	if env.Channel != "slot:new" || !env.Initial {
		t.Errorf("envelope = %+v", env)
	}
}
