package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"estimahome/ml"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservePrediction(t *testing.T) {
	m := NewMetrics()

	m.ObservePrediction("http", time.Millisecond, ml.Estimate{Price: 190000}, nil)
	m.ObservePrediction("http", time.Millisecond, ml.Estimate{}, ml.ErrUnavailable)
	m.ObservePrediction("ws", time.Millisecond, ml.Estimate{}, &ml.PredictionError{Stage: ml.StageScale, Err: errors.New("boom")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("http", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("http", OutcomeUnavailable)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("ws", OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(string(ml.StageScale))))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetrics()
	m.SetArtifactsLoaded(true)
	m.SetArtifactsStale(false)
	m.ObservePrediction("http", time.Millisecond, ml.Estimate{Price: 250000}, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		"estimahome_predictions_total",
		"estimahome_prediction_duration_seconds",
		"estimahome_predicted_price_dollars",
		"estimahome_artifacts_loaded 1",
		"estimahome_artifacts_stale 0",
	} {
		assert.Contains(t, body, name)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObservePrediction("http", time.Millisecond, ml.Estimate{}, nil)
	m.SetArtifactsLoaded(true)
	m.SetArtifactsStale(true)
}
