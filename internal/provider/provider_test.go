package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic_Snapshot(t *testing.T) {
	p := NewStatic()
	snap, err := p.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 9138.90, snap.CurrentPrice)
	assert.Equal(t, 1261, snap.DataPoints)
	assert.Equal(t, 60, snap.FeatureCount)
	assert.Len(t, snap.Models, 3)
	assert.Equal(t, 0.5597, snap.Models[ModelRandomForest].Accuracy)
	assert.Equal(t, "2020-08-17", snap.DateRange.Start)
}

func TestStatic_ReturnsIndependentCopies(t *testing.T) {
	p := NewStatic()
	a, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	delete(a.Models, ModelSVM)

	b, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, b.Models, ModelSVM)
}

func TestStatic_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatic().Snapshot(ctx)
	assert.ErrorIs(t, err, ErrDataLoad)
}
