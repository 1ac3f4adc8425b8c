package ml

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testArtifactDir = "testdata/artifacts"

func loadTestPipeline(t *testing.T) *Pipeline {
	t.Helper()
	bundle, err := LoadBundle(testArtifactDir, DefaultArtifactFiles())
	require.NoError(t, err)
	pipeline, err := NewPipeline(bundle)
	require.NoError(t, err)
	return pipeline
}

// unitBundle has no skewed columns, an identity scaler and a single weight on
// the median income.
func unitBundle(t *testing.T, skewed []string, power *PowerTransformModel) *Bundle {
	t.Helper()
	mean := make([]float64, 13)
	scale := make([]float64, 13)
	coef := make([]float64, 13)
	for i := range scale {
		scale[i] = 1
	}
	coef[0] = 1
	bundle, err := NewBundle(
		&LinearModel{Coefficients: coef, Intercept: 0.5},
		&ScalerModel{Mean: mean, Scale: scale},
		power,
		skewed,
	)
	require.NoError(t, err)
	return bundle
}

func TestPipelineHandComputed(t *testing.T) {
	pipeline, err := NewPipeline(unitBundle(t, nil, nil))
	require.NoError(t, err)

	estimate, err := pipeline.Predict(DefaultHousingFeatures())
	require.NoError(t, err)
	assert.Equal(t, 4.0, estimate.LogPrice)
	assert.Equal(t, math.Expm1(4.0), estimate.Price)
}

func TestPipelineWithSkewCorrection(t *testing.T) {
	power := &PowerTransformModel{Method: YeoJohnson, Lambdas: []float64{0}}
	pipeline, err := NewPipeline(unitBundle(t, []string{MedianIncome}, power))
	require.NoError(t, err)

	estimate, err := pipeline.Predict(DefaultHousingFeatures())
	require.NoError(t, err)
	assert.InDelta(t, math.Log1p(3.5)+0.5, estimate.LogPrice, 1e-12)
}

func TestPipelineDeterministic(t *testing.T) {
	pipeline := loadTestPipeline(t)
	f := DefaultHousingFeatures()

	first, err := pipeline.Predict(f)
	require.NoError(t, err)
	second, err := pipeline.Predict(f)
	require.NoError(t, err)

	assert.Equal(t, math.Float64bits(first.Price), math.Float64bits(second.Price))
	assert.Equal(t, math.Float64bits(first.LogPrice), math.Float64bits(second.LogPrice))
	assert.Greater(t, first.Price, 0.0)
}

func TestPipelineIncomeSensitivity(t *testing.T) {
	pipeline := loadTestPipeline(t)

	baseline, err := pipeline.Predict(DefaultHousingFeatures())
	require.NoError(t, err)

	richer := DefaultHousingFeatures()
	richer.MedianIncome = 10.0
	estimate, err := pipeline.Predict(richer)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, estimate.Price, baseline.Price)
}

func TestPipelineDoesNotClampNegativePrices(t *testing.T) {
	coef := make([]float64, 13)
	bundle, err := NewBundle(
		&LinearModel{Coefficients: coef, Intercept: -3},
		newTestScaler(),
		nil,
		nil,
	)
	require.NoError(t, err)
	pipeline, err := NewPipeline(bundle)
	require.NoError(t, err)

	estimate, err := pipeline.Predict(DefaultHousingFeatures())
	require.NoError(t, err)
	assert.Less(t, estimate.Price, 0.0)
	assert.Equal(t, math.Expm1(-3), estimate.Price)
}

func TestPipelineReportsFailedStage(t *testing.T) {
	type test struct {
		bundle   func(t *testing.T) *Bundle
		vector   FeatureVector
		stage    Stage
		expected interface{}
	}

	boxCox := func(t *testing.T) *Bundle {
		return unitBundle(t, []string{Longitude}, &PowerTransformModel{Method: BoxCox, Lambdas: []float64{0.5}})
	}
	plain := func(t *testing.T) *Bundle {
		return unitBundle(t, nil, nil)
	}
	overflow := func(t *testing.T) *Bundle {
		coef := make([]float64, 13)
		coef[2] = 1
		b, err := NewBundle(&LinearModel{Coefficients: coef}, newTestScaler(), nil, nil)
		require.NoError(t, err)
		return b
	}
	huge := DefaultHousingFeatures()
	huge.TotRooms = 1e6

	tests := map[string]test{
		"skew-domain": {
			bundle: boxCox,
			vector: Assemble(DefaultHousingFeatures()),
			stage:  StageSkew,
		},
		"scale-dimension": {
			bundle: plain,
			vector: Assemble(DefaultHousingFeatures()).Drop(Latitude),
			stage:  StageScale,
		},
		"inverse-overflow": {
			bundle: overflow,
			vector: Assemble(huge),
			stage:  StageInverse,
		},
		"assemble-shape": {
			bundle: plain,
			vector: FeatureVector{Columns: FeatureNames(), Values: []float64{1, 2}},
			stage:  StageAssemble,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pipeline, err := NewPipeline(tt.bundle(t))
			require.NoError(t, err)

			estimate, err := pipeline.PredictVector(tt.vector)
			require.Error(t, err)
			assert.Equal(t, Estimate{}, estimate)

			var predErr *PredictionError
			require.True(t, errors.As(err, &predErr))
			assert.Equal(t, tt.stage, predErr.Stage)

			stage, ok := FailedStage(err)
			assert.True(t, ok)
			assert.Equal(t, tt.stage, stage)
		})
	}
}

func TestPipelineDimensionMismatchUnwraps(t *testing.T) {
	pipeline := loadTestPipeline(t)
	v := Assemble(DefaultHousingFeatures()).Drop(DistanceToLA)

	_, err := pipeline.PredictVector(v)
	var mismatch *DimensionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, StageScale, mismatch.Stage)
}

func TestLinkRoundTrip(t *testing.T) {
	for _, x := range []float64{0, 1e-12, 0.5, 1, 42, 190752.26, 1e6, 5e8} {
		assert.InDelta(t, x, InverseLink(ForwardLink(x)), 1e-9*math.Max(1, x))
	}
}

func TestNewPipelineRequiresBundle(t *testing.T) {
	_, err := NewPipeline(nil)
	assert.Error(t, err)
}
