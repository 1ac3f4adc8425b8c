package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LinearModel is a fitted linear regression over the standardized features,
// predicting log1p(price).
type LinearModel struct {
	Columns      []string  `json:"columns,omitempty"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

// Predict returns dot(coefficients, x) + intercept.
func (m *LinearModel) Predict(v FeatureVector) (float64, error) {
	if len(v.Values) != len(m.Coefficients) || !sameColumns(m.Columns, v.Columns) {
		return 0, &DimensionMismatchError{Stage: StagePredict, Want: m.Columns, Got: v.Columns}
	}
	y := floats.Dot(m.Coefficients, v.Values) + m.Intercept
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, &TransformError{Stage: StagePredict, Value: y, Reason: "linear prediction is not finite"}
	}
	return y, nil
}

func (m *LinearModel) validate() error {
	names := FeatureNames()
	if len(m.Columns) == 0 {
		m.Columns = names
	}
	if !sameColumns(names, m.Columns) {
		return fmt.Errorf("fitted columns %v do not match feature order %v", m.Columns, names)
	}
	if len(m.Coefficients) != len(names) {
		return fmt.Errorf("want %d coefficients, got %d", len(names), len(m.Coefficients))
	}
	for i, c := range m.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient for %s is not finite", names[i])
		}
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("intercept is not finite")
	}
	return nil
}

func (m *LinearModel) clone() *LinearModel {
	return &LinearModel{
		Columns:      append([]string(nil), m.Columns...),
		Coefficients: append([]float64(nil), m.Coefficients...),
		Intercept:    m.Intercept,
	}
}

// InverseLink maps a log1p-space prediction back to price units.
func InverseLink(logPrice float64) float64 {
	return math.Expm1(logPrice)
}

// ForwardLink is the log1p transform the target was fitted in.
func ForwardLink(price float64) float64 {
	return math.Log1p(price)
}
