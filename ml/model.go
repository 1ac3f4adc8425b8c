package ml

import (
	"context"
)

// Predictor turns housing features into a price estimate.
type Predictor interface {
	Predict(features HousingFeatures) (Estimate, error)
}

// Estimator is the service-facing wrapper around a pipeline. When the
// artifacts failed to load it stays usable and answers ErrUnavailable.
type Estimator struct {
	predictor Predictor
	bundle    *Bundle
	loadErr   error
}

// NewEstimator builds an estimator from the result of loading a bundle. A nil
// bundle or a non-nil loadErr disables prediction.
func NewEstimator(bundle *Bundle, loadErr error) *Estimator {
	if loadErr != nil || bundle == nil {
		if loadErr == nil {
			loadErr = ErrUnavailable
		}
		return &Estimator{loadErr: loadErr}
	}
	pipeline, err := NewPipeline(bundle)
	if err != nil {
		return &Estimator{loadErr: err}
	}
	return &Estimator{predictor: pipeline, bundle: bundle}
}

// NewEstimatorWithPredictor wraps an arbitrary predictor.
func NewEstimatorWithPredictor(predictor Predictor) *Estimator {
	if predictor == nil {
		return &Estimator{loadErr: ErrUnavailable}
	}
	return &Estimator{predictor: predictor}
}

func (e *Estimator) Available() bool {
	return e != nil && e.predictor != nil
}

// LoadError is the reason prediction is disabled, nil when available.
func (e *Estimator) LoadError() error {
	if e == nil {
		return ErrUnavailable
	}
	return e.loadErr
}

func (e *Estimator) SkewedColumns() []string {
	if e == nil || e.bundle == nil {
		return nil
	}
	return e.bundle.SkewedColumns()
}

func (e *Estimator) Bundle() *Bundle {
	if e == nil {
		return nil
	}
	return e.bundle
}

// Estimate runs the pipeline unless ctx is already done or prediction is
// disabled.
func (e *Estimator) Estimate(ctx context.Context, features HousingFeatures) (Estimate, error) {
	if err := ctx.Err(); err != nil {
		return Estimate{}, err
	}
	if !e.Available() {
		return Estimate{}, ErrUnavailable
	}
	return e.predictor.Predict(features)
}
