package ml

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatorUnavailable(t *testing.T) {
	_, loadErr := LoadBundle("/nonexistent", DefaultArtifactFiles())
	require.Error(t, loadErr)

	e := NewEstimator(nil, loadErr)
	assert.False(t, e.Available())
	assert.ErrorIs(t, e.LoadError(), ErrArtifactLoad)
	assert.Nil(t, e.SkewedColumns())

	_, err := e.Estimate(context.Background(), DefaultHousingFeatures())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestEstimatorEstimate(t *testing.T) {
	bundle, err := LoadBundle(testArtifactDir, DefaultArtifactFiles())
	require.NoError(t, err)

	e := NewEstimator(bundle, nil)
	require.True(t, e.Available())
	assert.NoError(t, e.LoadError())
	assert.Len(t, e.SkewedColumns(), 6)

	estimate, err := e.Estimate(context.Background(), DefaultHousingFeatures())
	require.NoError(t, err)
	assert.Greater(t, estimate.Price, 0.0)
}

func TestEstimatorCancelledContext(t *testing.T) {
	bundle, err := LoadBundle(testArtifactDir, DefaultArtifactFiles())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewEstimator(bundle, nil).Estimate(ctx, DefaultHousingFeatures())
	assert.True(t, errors.Is(err, context.Canceled))
}

type stubPredictor struct {
	estimate Estimate
	err      error
}

func (s stubPredictor) Predict(HousingFeatures) (Estimate, error) {
	return s.estimate, s.err
}

func TestEstimatorWithPredictor(t *testing.T) {
	e := NewEstimatorWithPredictor(stubPredictor{estimate: Estimate{Price: 10}})
	estimate, err := e.Estimate(context.Background(), HousingFeatures{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, estimate.Price)

	assert.False(t, NewEstimatorWithPredictor(nil).Available())
}
