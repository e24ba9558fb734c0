package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantum-dashboard/internal/display"
	"quantum-dashboard/internal/model"
	"quantum-dashboard/internal/provider"
)

type priceRecorder struct{ prices []float64 }

func (p *priceRecorder) Update(price float64) { p.prices = append(p.prices, price) }

func TestUpdater_InitialLoadScenario(t *testing.T) {
	s := display.New()
	chart := &priceRecorder{}
	u := NewUpdater(s, provider.NewStatic(), chart, nil)

	require.NoError(t, u.Load(context.Background()))

	assert.Equal(t, "9,138.9", s.Text(SlotCurrentPrice))
	assert.Equal(t, "1,261", s.Text(SlotDataPoints))
	assert.Equal(t, "60", s.Text(SlotFeatureCount))
	assert.Equal(t, "+45.20", s.Text(SlotChangeAmount))
	assert.Equal(t, "+0.5%", s.Text(SlotChangePercent))

	assert.Equal(t, "56.0%", s.Text("rf-accuracy"))
	assert.Equal(t, "55.7%", s.Text("rf-precision"))
	assert.Equal(t, "56.0%", s.Text("rf-recall"))
	assert.Equal(t, "53.1%", s.Text("hybrid-accuracy"))
	assert.Equal(t, "51.6%", s.Text("hybrid-precision"))
	assert.Equal(t, "53.5%", s.Text("svm-accuracy"))
	assert.Equal(t, "28.6%", s.Text("svm-precision"))

	assert.Equal(t, []float64{9138.90}, chart.prices)
}

func TestUpdater_ProviderFailureShowsGenericMessage(t *testing.T) {
	s := display.New()
	boom := errors.New("feed unavailable")
	p := provider.Func(func(context.Context) (model.DashboardSnapshot, error) {
		return model.DashboardSnapshot{}, boom
	})
	u := NewUpdater(s, p, nil, nil)

	err := u.Load(context.Background())
	assert.ErrorIs(t, err, provider.ErrDataLoad)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, s.HTML(SlotPredictionResult), MsgDataLoadFailed)
	assert.NotContains(t, s.HTML(SlotPredictionResult), "feed unavailable")
}

func TestUpdater_MissingModelFailsBeforeWriting(t *testing.T) {
	s := display.New()
	snap := provider.Default()
	delete(snap.Models, provider.ModelHybrid)
	u := NewUpdater(s, provider.NewStaticWith(snap), nil, nil)

	err := u.Load(context.Background())
	assert.ErrorIs(t, err, ErrMissingModel)
	assert.ErrorIs(t, err, provider.ErrDataLoad)
	assert.False(t, s.Exists(SlotCurrentPrice))
	assert.Contains(t, s.HTML(SlotPredictionResult), MsgDataLoadFailed)
}

func TestShowError_EscapesMessage(t *testing.T) {
	s := display.New()
	ShowError(s, "<script>")
	assert.Contains(t, s.HTML(SlotPredictionResult), "&lt;script&gt;")
}
