package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSurface_TextRoundTrip(t *testing.T) {
	s := New()
	assert.False(t, s.Exists("currentPrice"))

	s.SetText("currentPrice", "9,138.9")
	assert.True(t, s.Exists("currentPrice"))
	assert.Equal(t, "9,138.9", s.Text("currentPrice"))
	assert.Equal(t, "", s.Text("missing"))
}

func TestSurface_HTMLReplacesText(t *testing.T) {
	s := New()
	s.SetText("predictionResult", "waiting")
	s.SetHTML("predictionResult", "<p>done</p>")
	assert.Equal(t, "", s.Text("predictionResult"))
	assert.Equal(t, "<p>done</p>", s.HTML("predictionResult"))
}

func TestSurface_PublishesOnlyRealChanges(t *testing.T) {
	s := New()
	var got []Change
	s.Subscribe(func(c Change) { got = append(got, c) })

	s.SetText("a", "1")
	s.SetText("a", "1")
	s.SetStyle("a", "opacity", "0")
	s.SetStyle("a", "opacity", "0")
	s.AddClass("a", "active")
	s.AddClass("a", "active")
	s.RemoveClass("a", "active")
	s.RemoveClass("a", "active")

	kinds := make([]Kind, len(got))
	for i, c := range got {
		kinds[i] = c.Kind
	}
	assert.Equal(t, []Kind{KindText, KindStyle, KindClass, KindClass}, kinds)
	assert.True(t, got[2].On)
	assert.False(t, got[3].On)
}

func TestSurface_DeclareCreatesEmptySlots(t *testing.T) {
	s := New()
	published := 0
	s.Subscribe(func(Change) { published++ })

	s.Declare("live-prediction", "models")
	assert.True(t, s.Exists("live-prediction"))
	assert.Equal(t, 0, published, "declaring is not a visible change")
}

func TestSurface_Snapshot(t *testing.T) {
	s := New()
	s.SetText("a", "x")
	s.AddClass("nav-2", "active")
	s.AddClass("nav-2", "bold")
	s.SetStyle("card", "transform", "scale(1)")

	snap := s.Snapshot()
	assert.Equal(t, "x", snap["a"].Text)
	assert.Equal(t, []string{"active", "bold"}, snap["nav-2"].Classes)
	assert.Equal(t, "scale(1)", snap["card"].Style["transform"])

	snap["card"].Style["transform"] = "mutated"
	assert.Equal(t, "scale(1)", s.Style("card", "transform"), "snapshot must be a copy")
}

func TestSurface_State(t *testing.T) {
	s := New()
	_, ok := s.State("card-rf")
	assert.False(t, ok)

	s.AddClass("card-rf", "active")
	s.SetStyle("card-rf", "transform", "scale(1)")
	st, ok := s.State("card-rf")
	assert.True(t, ok)
	assert.Equal(t, []string{"active"}, st.Classes)
	assert.Equal(t, "scale(1)", st.Style["transform"])
}
