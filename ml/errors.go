package ml

import (
	"errors"
	"fmt"
)

// Stage names a step of the estimate pipeline.
type Stage string

const (
	StageAssemble Stage = "assemble"
	StageSkew     Stage = "skew"
	StageScale    Stage = "scale"
	StagePredict  Stage = "predict"
	StageInverse  Stage = "inverse"
)

var (
	ErrArtifactLoad = errors.New("artifact load failed")
	ErrUnavailable  = errors.New("prediction unavailable: model artifacts not loaded")
)

// ArtifactLoadError reports a missing, unreadable or inconsistent artifact.
type ArtifactLoadError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s artifact: %v", e.Artifact, e.Err)
	}
	return fmt.Sprintf("%s artifact %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

func (e *ArtifactLoadError) Is(target error) bool {
	return target == ErrArtifactLoad
}

// DimensionMismatchError reports a vector whose columns do not line up with
// the columns an artifact was fitted on.
type DimensionMismatchError struct {
	Stage Stage
	Want  []string
	Got   []string
}

func (e *DimensionMismatchError) Error() string {
	if len(e.Want) != len(e.Got) {
		return fmt.Sprintf("%s: dimension mismatch: want %d columns, got %d", e.Stage, len(e.Want), len(e.Got))
	}
	for i := range e.Want {
		if e.Want[i] != e.Got[i] {
			return fmt.Sprintf("%s: column %d is %q, want %q", e.Stage, i, e.Got[i], e.Want[i])
		}
	}
	return fmt.Sprintf("%s: dimension mismatch", e.Stage)
}

// TransformError reports a numeric failure while transforming one column.
type TransformError struct {
	Stage  Stage
	Column string
	Value  float64
	Reason string
}

func (e *TransformError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s: %s (value %g)", e.Stage, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s: column %s: %s (value %g)", e.Stage, e.Column, e.Reason, e.Value)
}

// PredictionError is the single error the pipeline returns. Stage tells the
// caller which step failed without parsing the message.
type PredictionError struct {
	Stage Stage
	Err   error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed at %s stage: %v", e.Stage, e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// FailedStage extracts the failing stage from a pipeline error.
func FailedStage(err error) (Stage, bool) {
	var predErr *PredictionError
	if errors.As(err, &predErr) {
		return predErr.Stage, true
	}
	return "", false
}

func sameColumns(want, got []string) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
