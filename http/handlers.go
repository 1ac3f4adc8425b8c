package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"estimahome/db"
	"estimahome/ml"
	"estimahome/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Estimator is what the handlers need from the prediction service.
type Estimator interface {
	Available() bool
	LoadError() error
	SkewedColumns() []string
	Estimate(ctx context.Context, features ml.HousingFeatures) (ml.Estimate, error)
}

// StalenessReporter reports artifacts that changed on disk after load.
type StalenessReporter interface {
	Stale() bool
}

// Deps are the collaborators of the API handlers. Store, Metrics and Watcher
// are optional.
type Deps struct {
	Estimator Estimator
	Store     *db.Store
	Metrics   *monitoring.Metrics
	Watcher   StalenessReporter
	Logger    *zap.Logger
}

type Handlers struct {
	Deps
}

func NewHandlers(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Estimator == nil {
		deps.Estimator = ml.NewEstimator(nil, ml.ErrUnavailable)
	}
	return &Handlers{Deps: deps}
}

func RegisterHandlers(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/features", h.handleFeatures)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/predictions", h.handlePredictions)
	mux.HandleFunc("GET /api/ws/predict", h.handlePredictStream)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.metricsHandler())
	}
}

type predictResponse struct {
	ID        string   `json:"id"`
	Price     float64  `json:"price"`
	Formatted string   `json:"formatted"`
	LogPrice  float64  `json:"log_price"`
	Warnings  []string `json:"warnings,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage,omitempty"`
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":     "ok",
		"prediction": "available",
		"stale":      h.stale(),
	}
	if !h.Estimator.Available() {
		response["prediction"] = "unavailable"
		if err := h.Estimator.LoadError(); err != nil {
			response["reason"] = err.Error()
		}
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) handleFeatures(w http.ResponseWriter, r *http.Request) {
	skewed := h.Estimator.SkewedColumns()
	if skewed == nil {
		skewed = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"features":       ml.FeatureNames(),
		"defaults":       ml.DefaultHousingFeatures(),
		"ranges":         ml.FeatureRanges(),
		"skewed_columns": skewed,
	})
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	features, err := decodeFeatures(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	status, body := h.estimate(r.Context(), features, "http")
	writeJSON(w, status, body)
}

func (h *Handlers) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "prediction history disabled"})
		return
	}

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		if l > 500 {
			l = 500
		}
		limit = l
	}

	records, err := h.Store.RecentPredictions(r.Context(), limit)
	if err != nil {
		h.Logger.Error("query predictions", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not read prediction history"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": records,
	})
}

func (h *Handlers) metricsHandler() http.Handler {
	next := h.Metrics.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Metrics.SetArtifactsLoaded(h.Estimator.Available())
		h.Metrics.SetArtifactsStale(h.stale())
		next.ServeHTTP(w, r)
	})
}

// estimate runs one prediction and maps the outcome to a status and body.
// It is shared by the REST and WebSocket transports.
func (h *Handlers) estimate(ctx context.Context, features ml.HousingFeatures, transport string) (int, interface{}) {
	start := time.Now()
	estimate, err := h.Estimator.Estimate(ctx, features)
	h.Metrics.ObservePrediction(transport, time.Since(start), estimate, err)

	requestID := GetRequestID(ctx)
	if err != nil {
		status, body := errorStatus(err)
		h.Logger.Warn("prediction failed",
			zap.String("request_id", requestID),
			zap.String("transport", transport),
			zap.String("stage", body.Stage),
			zap.Error(err))
		return status, body
	}

	response := predictResponse{
		ID:        uuid.NewString(),
		Price:     estimate.Price,
		Formatted: ml.FormatPrice(estimate.Price),
		LogPrice:  estimate.LogPrice,
		Warnings:  ml.CheckRanges(ml.Assemble(features)),
	}
	if h.Store != nil {
		record := db.PredictionRecord{
			ID:        response.ID,
			Features:  features,
			LogPrice:  estimate.LogPrice,
			Price:     estimate.Price,
			Source:    transport,
			CreatedAt: time.Now(),
		}
		if err := h.Store.SavePrediction(ctx, record); err != nil {
			h.Logger.Warn("save prediction", zap.String("request_id", requestID), zap.Error(err))
		}
	}
	h.Logger.Debug("prediction served",
		zap.String("request_id", requestID),
		zap.String("id", response.ID),
		zap.Float64("price", estimate.Price))
	return http.StatusOK, response
}

func errorStatus(err error) (int, errorResponse) {
	if errors.Is(err, ml.ErrUnavailable) {
		return http.StatusServiceUnavailable, errorResponse{Error: "prediction unavailable: model artifacts not loaded"}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, errorResponse{Error: err.Error()}
	}
	if stage, ok := ml.FailedStage(err); ok {
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Stage: string(stage)}
	}
	return http.StatusInternalServerError, errorResponse{Error: err.Error()}
}

// decodeFeatures reads a JSON object of housing features. Omitted fields keep
// their default value and an empty body yields the defaults.
func decodeFeatures(body io.Reader) (ml.HousingFeatures, error) {
	features := ml.DefaultHousingFeatures()
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&features); err != nil && !errors.Is(err, io.EOF) {
		return ml.HousingFeatures{}, err
	}
	return features, nil
}

func (h *Handlers) stale() bool {
	return h.Watcher != nil && h.Watcher.Stale()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
