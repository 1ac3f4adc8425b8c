package ml

import (
	"errors"
	"math"
)

// Estimate is the outcome of one pass through the pipeline. Price is reported
// as computed; a negative price means the input is far outside the data the
// model was fitted on.
type Estimate struct {
	LogPrice float64 `json:"log_price"`
	Price    float64 `json:"price"`
}

// Pipeline runs skew correction, standardization, the linear model and the
// inverse link over a shared bundle. It keeps no per-call state.
type Pipeline struct {
	bundle *Bundle
}

func NewPipeline(bundle *Bundle) (*Pipeline, error) {
	if bundle == nil {
		return nil, errors.New("bundle is required")
	}
	return &Pipeline{bundle: bundle}, nil
}

func (p *Pipeline) Bundle() *Bundle {
	return p.bundle
}

func (p *Pipeline) Predict(f HousingFeatures) (Estimate, error) {
	return p.PredictVector(Assemble(f))
}

// PredictVector runs every stage or none: on failure it returns a
// *PredictionError naming the stage and a zero Estimate.
func (p *Pipeline) PredictVector(v FeatureVector) (Estimate, error) {
	if len(v.Columns) != len(v.Values) {
		return Estimate{}, &PredictionError{Stage: StageAssemble, Err: &DimensionMismatchError{Stage: StageAssemble, Want: v.Columns, Got: v.Columns[:min(len(v.Columns), len(v.Values))]}}
	}

	skewed, err := p.bundle.power.Transform(v)
	if err != nil {
		return Estimate{}, &PredictionError{Stage: StageSkew, Err: err}
	}
	scaled, err := p.bundle.scaler.Transform(skewed)
	if err != nil {
		return Estimate{}, &PredictionError{Stage: StageScale, Err: err}
	}
	logPrice, err := p.bundle.linear.Predict(scaled)
	if err != nil {
		return Estimate{}, &PredictionError{Stage: StagePredict, Err: err}
	}
	price := InverseLink(logPrice)
	if math.IsInf(price, 0) || math.IsNaN(price) {
		return Estimate{}, &PredictionError{Stage: StageInverse, Err: &TransformError{Stage: StageInverse, Value: logPrice, Reason: "price overflows"}}
	}
	return Estimate{LogPrice: logPrice, Price: price}, nil
}
