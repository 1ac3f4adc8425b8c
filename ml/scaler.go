package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ScalerModel standardizes every column with the mean and scale it was fitted
// with.
type ScalerModel struct {
	Columns []string  `json:"columns,omitempty"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// Transform returns (x - mean) / scale per column. The vector must carry
// exactly the fitted columns in the fitted order.
func (s *ScalerModel) Transform(v FeatureVector) (FeatureVector, error) {
	if len(v.Values) != len(s.Mean) || len(v.Columns) != len(v.Values) || !sameColumns(s.Columns, v.Columns) {
		return FeatureVector{}, &DimensionMismatchError{Stage: StageScale, Want: s.Columns, Got: v.Columns}
	}
	out := FeatureVector{
		Columns: append([]string(nil), v.Columns...),
		Values:  make([]float64, len(v.Values)),
	}
	floats.SubTo(out.Values, v.Values, s.Mean)
	floats.Div(out.Values, s.Scale)
	for i, value := range out.Values {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return FeatureVector{}, &TransformError{Stage: StageScale, Column: v.Columns[i], Value: v.Values[i], Reason: "standardized value is not finite"}
		}
	}
	return out, nil
}

func (s *ScalerModel) validate() error {
	names := FeatureNames()
	if len(s.Columns) == 0 {
		s.Columns = names
	}
	if !sameColumns(names, s.Columns) {
		return fmt.Errorf("fitted columns %v do not match feature order %v", s.Columns, names)
	}
	if len(s.Mean) != len(names) || len(s.Scale) != len(names) {
		return fmt.Errorf("want %d means and scales, got %d and %d", len(names), len(s.Mean), len(s.Scale))
	}
	return checkMoments(s.Columns, s.Mean, s.Scale)
}

func (s *ScalerModel) clone() *ScalerModel {
	return &ScalerModel{
		Columns: append([]string(nil), s.Columns...),
		Mean:    append([]float64(nil), s.Mean...),
		Scale:   append([]float64(nil), s.Scale...),
	}
}
