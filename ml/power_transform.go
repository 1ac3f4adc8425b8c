package ml

import (
	"errors"
	"fmt"
	"math"
)

// PowerMethod is the power transform family an artifact was fitted with.
type PowerMethod string

const (
	YeoJohnson PowerMethod = "yeo-johnson"
	BoxCox     PowerMethod = "box-cox"
)

// lambdaEps is the spacing of 1.0, the threshold the fitting library uses to
// pick the logarithmic branch of Yeo-Johnson.
var lambdaEps = math.Nextafter(1, 2) - 1

// boxCoxEps below this |lambda| Box-Cox degenerates to log(x).
const boxCoxEps = 1e-19

// PowerTransformModel holds per-column power transform parameters for the
// skewed columns. When Standardize is set the transformed values are then
// centred with Mean and Scale, which the fitting library does by default.
type PowerTransformModel struct {
	Method      PowerMethod `json:"method"`
	Columns     []string    `json:"columns,omitempty"`
	Lambdas     []float64   `json:"lambdas"`
	Standardize bool        `json:"standardize"`
	Mean        []float64   `json:"mean,omitempty"`
	Scale       []float64   `json:"scale,omitempty"`
}

// Transform replaces the value of every configured column with its transformed
// value. Other columns are copied untouched and the column order is kept.
func (m *PowerTransformModel) Transform(v FeatureVector) (FeatureVector, error) {
	out := v.Clone()
	if m == nil || len(m.Columns) == 0 {
		return out, nil
	}
	if len(v.Columns) != len(v.Values) {
		return FeatureVector{}, &DimensionMismatchError{Stage: StageSkew, Want: v.Columns, Got: v.Columns[:min(len(v.Columns), len(v.Values))]}
	}
	for i, column := range m.Columns {
		idx := out.Index(column)
		if idx < 0 {
			return FeatureVector{}, &DimensionMismatchError{Stage: StageSkew, Want: m.Columns, Got: v.Columns}
		}
		value, err := m.apply(i, out.Values[idx])
		if err != nil {
			return FeatureVector{}, &TransformError{Stage: StageSkew, Column: column, Value: out.Values[idx], Reason: err.Error()}
		}
		out.Values[idx] = value
	}
	return out, nil
}

func (m *PowerTransformModel) apply(i int, x float64) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, errors.New("input is not finite")
	}
	var y float64
	switch m.Method {
	case YeoJohnson:
		y = yeoJohnson(x, m.Lambdas[i])
	case BoxCox:
		if x <= 0 {
			return 0, errors.New("box-cox requires strictly positive input")
		}
		y = boxCox(x, m.Lambdas[i])
	default:
		return 0, fmt.Errorf("unknown power method %q", m.Method)
	}
	if m.Standardize {
		y = (y - m.Mean[i]) / m.Scale[i]
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, errors.New("transformed value is not finite")
	}
	return y, nil
}

func yeoJohnson(x, lambda float64) float64 {
	if x >= 0 {
		if math.Abs(lambda) < lambdaEps {
			return math.Log1p(x)
		}
		return (math.Pow(x+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) > lambdaEps {
		return -(math.Pow(-x+1, 2-lambda) - 1) / (2 - lambda)
	}
	return -math.Log1p(-x)
}

func boxCox(x, lambda float64) float64 {
	if math.Abs(lambda) < boxCoxEps {
		return math.Log(x)
	}
	return math.Expm1(lambda*math.Log(x)) / lambda
}

func (m *PowerTransformModel) validate(skewed []string) error {
	if len(skewed) == 0 {
		return nil
	}
	switch m.Method {
	case YeoJohnson, BoxCox:
	default:
		return fmt.Errorf("unknown power method %q", m.Method)
	}
	if len(m.Columns) == 0 {
		m.Columns = append([]string(nil), skewed...)
	}
	if len(m.Columns) != len(skewed) {
		return fmt.Errorf("fitted on %d columns, %d skewed columns configured", len(m.Columns), len(skewed))
	}
	configured := make(map[string]bool, len(skewed))
	for _, column := range skewed {
		configured[column] = true
	}
	for _, column := range m.Columns {
		if !configured[column] {
			return fmt.Errorf("column %s is not in the skewed column list", column)
		}
	}
	if len(m.Lambdas) != len(m.Columns) {
		return fmt.Errorf("want %d lambdas, got %d", len(m.Columns), len(m.Lambdas))
	}
	for i, lambda := range m.Lambdas {
		if math.IsNaN(lambda) || math.IsInf(lambda, 0) {
			return fmt.Errorf("lambda for %s is not finite", m.Columns[i])
		}
	}
	if !m.Standardize {
		return nil
	}
	if len(m.Mean) != len(m.Columns) || len(m.Scale) != len(m.Columns) {
		return fmt.Errorf("standardize needs %d means and scales, got %d and %d", len(m.Columns), len(m.Mean), len(m.Scale))
	}
	return checkMoments(m.Columns, m.Mean, m.Scale)
}

func (m *PowerTransformModel) clone() *PowerTransformModel {
	if m == nil {
		return nil
	}
	return &PowerTransformModel{
		Method:      m.Method,
		Columns:     append([]string(nil), m.Columns...),
		Lambdas:     append([]float64(nil), m.Lambdas...),
		Standardize: m.Standardize,
		Mean:        append([]float64(nil), m.Mean...),
		Scale:       append([]float64(nil), m.Scale...),
	}
}

func checkMoments(columns []string, mean, scale []float64) error {
	for i := range columns {
		if math.IsNaN(mean[i]) || math.IsInf(mean[i], 0) {
			return fmt.Errorf("mean for %s is not finite", columns[i])
		}
		if scale[i] == 0 || math.IsNaN(scale[i]) || math.IsInf(scale[i], 0) {
			return fmt.Errorf("scale for %s must be finite and non-zero", columns[i])
		}
	}
	return nil
}
