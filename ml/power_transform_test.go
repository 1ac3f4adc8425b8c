package ml

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYeoJohnson(t *testing.T) {
	type test struct {
		x, lambda float64
		output    float64
	}

	tests := map[string]test{
		"log-branch":          {x: 1, lambda: 0, output: math.Ln2},
		"identity-positive":   {x: 7.25, lambda: 1, output: 7.25},
		"identity-negative":   {x: -3.5, lambda: 1, output: -3.5},
		"half-positive":       {x: 3, lambda: 0.5, output: 2},
		"half-negative":       {x: -3, lambda: 0.5, output: -7.0 / 1.5},
		"negative-log-branch": {x: -1, lambda: 2, output: -math.Ln2},
		"zero":                {x: 0, lambda: 0.3, output: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tt.output, yeoJohnson(tt.x, tt.lambda), 1e-12)
		})
	}
}

func TestBoxCox(t *testing.T) {
	assert.InDelta(t, 1.0, boxCox(math.E, 0), 1e-12)
	assert.InDelta(t, 4.0, boxCox(3, 2), 1e-12)
	assert.InDelta(t, 2.0, boxCox(4, 0.5), 1e-12)
}

func TestPowerTransformEmptyIsIdentity(t *testing.T) {
	v := Assemble(DefaultHousingFeatures())

	var nilModel *PowerTransformModel
	out, err := nilModel.Transform(v)
	require.NoError(t, err)
	assert.Equal(t, v, out)

	empty := &PowerTransformModel{Method: YeoJohnson}
	out, err = empty.Transform(v)
	require.NoError(t, err)
	assert.Equal(t, v, out)
}

func TestPowerTransformOnlySkewedColumns(t *testing.T) {
	m := &PowerTransformModel{
		Method:  YeoJohnson,
		Columns: []string{Population, MedianIncome},
		Lambdas: []float64{0, 0.5},
	}
	v := Assemble(DefaultHousingFeatures())

	out, err := m.Transform(v)
	require.NoError(t, err)
	require.Equal(t, v.Columns, out.Columns)
	require.Equal(t, v.Len(), out.Len())

	for i, column := range v.Columns {
		switch column {
		case Population:
			assert.InDelta(t, math.Log1p(1200), out.Values[i], 1e-12)
		case MedianIncome:
			assert.InDelta(t, (math.Sqrt(4.5)-1)/0.5, out.Values[i], 1e-12)
		default:
			assert.Equal(t, v.Values[i], out.Values[i], column)
		}
	}
	// input untouched
	assert.Equal(t, 1200.0, v.Values[v.Index(Population)])
}

func TestPowerTransformStandardize(t *testing.T) {
	m := &PowerTransformModel{
		Method:      YeoJohnson,
		Columns:     []string{TotRooms},
		Lambdas:     []float64{1},
		Standardize: true,
		Mean:        []float64{1000},
		Scale:       []float64{500},
	}
	out, err := m.Transform(Assemble(DefaultHousingFeatures()))
	require.NoError(t, err)

	rooms, _ := out.Get(TotRooms)
	assert.InDelta(t, 2.0, rooms, 1e-12)
}

func TestPowerTransformBoxCoxRejectsNonPositive(t *testing.T) {
	m := &PowerTransformModel{
		Method:  BoxCox,
		Columns: []string{DistanceToLA},
		Lambdas: []float64{0.5},
	}
	f := DefaultHousingFeatures()
	f.DistanceToLA = 0

	_, err := m.Transform(Assemble(f))
	require.Error(t, err)

	var transformErr *TransformError
	require.True(t, errors.As(err, &transformErr))
	assert.Equal(t, StageSkew, transformErr.Stage)
	assert.Equal(t, DistanceToLA, transformErr.Column)
}

func TestPowerTransformMissingColumn(t *testing.T) {
	m := &PowerTransformModel{
		Method:  YeoJohnson,
		Columns: []string{Households},
		Lambdas: []float64{0.2},
	}
	v := Assemble(DefaultHousingFeatures()).Drop(Households)

	_, err := m.Transform(v)
	var mismatch *DimensionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, StageSkew, mismatch.Stage)
}

func TestPowerTransformValidate(t *testing.T) {
	type test struct {
		model  PowerTransformModel
		skewed []string
		ok     bool
	}

	tests := map[string]test{
		"columns-from-skewed-list": {
			model:  PowerTransformModel{Method: YeoJohnson, Lambdas: []float64{0.1, 0.2}},
			skewed: []string{TotRooms, Population},
			ok:     true,
		},
		"unknown-method": {
			model:  PowerTransformModel{Method: "quantile", Lambdas: []float64{0.1}},
			skewed: []string{TotRooms},
		},
		"lambda-count": {
			model:  PowerTransformModel{Method: YeoJohnson, Lambdas: []float64{0.1}},
			skewed: []string{TotRooms, Population},
		},
		"column-not-skewed": {
			model:  PowerTransformModel{Method: YeoJohnson, Columns: []string{Latitude}, Lambdas: []float64{0.1}},
			skewed: []string{TotRooms},
		},
		"zero-scale": {
			model: PowerTransformModel{
				Method: YeoJohnson, Lambdas: []float64{0.1}, Standardize: true,
				Mean: []float64{0}, Scale: []float64{0},
			},
			skewed: []string{TotRooms},
		},
		"nan-lambda": {
			model:  PowerTransformModel{Method: BoxCox, Lambdas: []float64{math.NaN()}},
			skewed: []string{TotRooms},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m := tt.model
			err := m.validate(tt.skewed)
			if tt.ok {
				assert.NoError(t, err)
				assert.Equal(t, tt.skewed, m.Columns)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
