package chart

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_SeedThirtyDays(t *testing.T) {
	var redraws []Redraw
	a := NewAdapter(DefaultCapacity, DefaultConfig(), func(r Redraw) { redraws = append(redraws, r) })

	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	a.Seed(now, 9100, 200, rand.New(rand.NewSource(1)))

	pts := a.Points()
	require.Len(t, pts, 30)
	assert.Equal(t, "Jul 17", pts[0].Label)
	assert.Equal(t, "Aug 15", pts[29].Label)
	for _, p := range pts {
		assert.GreaterOrEqual(t, p.Price, 9000.0)
		assert.Less(t, p.Price, 9200.0)
	}
	require.Len(t, redraws, 1)
	assert.True(t, redraws[0].Animate)
}

func TestAdapter_UpdateSlidesWindow(t *testing.T) {
	var last Redraw
	a := NewAdapter(DefaultCapacity, DefaultConfig(), func(r Redraw) { last = r })
	a.Seed(time.Now(), 9100, 200, rand.New(rand.NewSource(2)))
	second := a.Points()[1]

	a.Update(9150.5)

	pts := a.Points()
	require.Len(t, pts, 30)
	assert.Equal(t, second, pts[0], "oldest point evicted")
	assert.Equal(t, TodayLabel, pts[29].Label)
	assert.Equal(t, 9150.5, pts[29].Price)
	assert.False(t, last.Animate, "incremental updates redraw without animation")
}

func TestAdapter_NilSink(t *testing.T) {
	a := NewAdapter(3, DefaultConfig(), nil)
	a.Update(1)
	assert.Equal(t, 1, a.Len())
}

func TestRedraw_NaNEncodesAsNull(t *testing.T) {
	a := NewAdapter(3, DefaultConfig(), nil)
	a.Update(math.NaN())

	b, err := json.Marshal(Redraw{Points: a.Points()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"points":[{"label":"Today","price":null}],"animate":false}`, string(b))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "line", cfg.Type)
	assert.Equal(t, "£", cfg.Options.Y.TickPrefix)
	assert.False(t, cfg.Options.Legend)
	assert.Equal(t, "index", cfg.Options.Interaction.Mode)
}
