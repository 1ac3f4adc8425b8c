package ml

import (
	"errors"
	"fmt"
)

const (
	ArtifactLinear           = "linear_model"
	ArtifactScaler           = "feature_scaler"
	ArtifactPowerTransformer = "power_transformer"
	ArtifactSkewedColumns    = "skewed_columns"
)

// Bundle is the validated set of fitted artifacts. It is never modified after
// construction and may be shared by any number of concurrent estimates.
type Bundle struct {
	linear *LinearModel
	scaler *ScalerModel
	power  *PowerTransformModel
	skewed []string
	dir    string
}

// NewBundle validates the four artifacts against each other and the canonical
// feature order. The artifacts are copied, so later changes by the caller do
// not leak into the bundle.
func NewBundle(linear *LinearModel, scaler *ScalerModel, power *PowerTransformModel, skewed []string) (*Bundle, error) {
	b, artifact, err := newBundle(linear, scaler, power, skewed)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: artifact, Err: err}
	}
	return b, nil
}

func newBundle(linear *LinearModel, scaler *ScalerModel, power *PowerTransformModel, skewed []string) (*Bundle, string, error) {
	if linear == nil {
		return nil, ArtifactLinear, errors.New("missing")
	}
	if scaler == nil {
		return nil, ArtifactScaler, errors.New("missing")
	}
	if err := validateSkewed(skewed); err != nil {
		return nil, ArtifactSkewedColumns, err
	}

	b := &Bundle{
		linear: linear.clone(),
		scaler: scaler.clone(),
		skewed: append([]string(nil), skewed...),
	}
	if err := b.linear.validate(); err != nil {
		return nil, ArtifactLinear, err
	}
	if err := b.scaler.validate(); err != nil {
		return nil, ArtifactScaler, err
	}
	if len(skewed) > 0 {
		if power == nil {
			return nil, ArtifactPowerTransformer, errors.New("missing")
		}
		b.power = power.clone()
		if err := b.power.validate(b.skewed); err != nil {
			return nil, ArtifactPowerTransformer, err
		}
	}
	return b, "", nil
}

func validateSkewed(skewed []string) error {
	known := make(map[string]bool)
	for _, name := range FeatureNames() {
		known[name] = true
	}
	seen := make(map[string]bool, len(skewed))
	for _, column := range skewed {
		if !known[column] {
			return fmt.Errorf("unknown column %q", column)
		}
		if seen[column] {
			return fmt.Errorf("duplicate column %q", column)
		}
		seen[column] = true
	}
	return nil
}

// SkewedColumns returns the columns the power transform applies to.
func (b *Bundle) SkewedColumns() []string {
	return append([]string(nil), b.skewed...)
}

// Dir is the directory the bundle was loaded from, empty for in-memory bundles.
func (b *Bundle) Dir() string {
	return b.dir
}

// Summary describes the bundle for logs and the inspect command.
type Summary struct {
	Dir           string      `json:"dir,omitempty"`
	Features      []string    `json:"features"`
	SkewedColumns []string    `json:"skewed_columns"`
	PowerMethod   PowerMethod `json:"power_method,omitempty"`
	Intercept     float64     `json:"intercept"`
	Coefficients  []float64   `json:"coefficients"`
}

func (b *Bundle) Summary() Summary {
	s := Summary{
		Dir:           b.dir,
		Features:      append([]string(nil), b.linear.Columns...),
		SkewedColumns: b.SkewedColumns(),
		Intercept:     b.linear.Intercept,
		Coefficients:  append([]float64(nil), b.linear.Coefficients...),
	}
	if b.power != nil {
		s.PowerMethod = b.power.Method
	}
	return s
}
