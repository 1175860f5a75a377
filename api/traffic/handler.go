// Package traffic exposes the prediction service over HTTP: POST /predict,
// GET /health and a root info endpoint.
package traffic

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/trafficd/core/health"
	"github.com/kilianp07/trafficd/core/inference"
	coremetrics "github.com/kilianp07/trafficd/core/metrics"
	"github.com/kilianp07/trafficd/core/schema"
	"github.com/kilianp07/trafficd/infra/logger"
	"github.com/kilianp07/trafficd/internal/eventbus"
)

// ServiceName appears in the root info payload.
const ServiceName = "Metro Interstate Traffic Volume Prediction API"

// ErrorResponse is the structured failure body. Every failure produces one;
// the service never drops a request silently.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// NewPredictHandler returns the POST /predict handler. Validation failures
// are client-class (400); a missing model is an operational fault (503);
// anything that breaks inside inference is a server fault (500). Each
// request emits one PredictionEvent on the bus regardless of outcome.
func NewPredictHandler(eng *inference.Engine, bus *eventbus.Bus, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		reqID := uuid.NewString()
		start := time.Now()

		emit := func(outcome coremetrics.Outcome, res inference.Result) {
			bus.Publish(coremetrics.PredictionEvent{
				RequestID:    reqID,
				Outcome:      outcome,
				Volume:       res.Volume,
				ModelVersion: res.ModelVersion,
				Latency:      time.Since(start),
				Time:         start,
			})
		}

		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			log.Warnf("request %s: malformed body: %v", reqID, err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "malformed_request", Detail: "body must be a JSON object"})
			emit(coremetrics.OutcomeMalformedRequest, inference.Result{})
			return
		}

		rec, err := schema.Validate(raw)
		if err != nil {
			var verr *schema.ValidationError
			if errors.As(err, &verr) {
				log.Infof("request %s: rejected: %v", reqID, verr)
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Detail: verr.Error()})
				emit(coremetrics.OutcomeValidationError, inference.Result{})
				return
			}
			// Validate only returns ValidationError; anything else is a bug.
			log.Errorf("request %s: unexpected validation failure: %v", reqID, err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Detail: "unexpected validation failure"})
			emit(coremetrics.OutcomePredictionFailed, inference.Result{})
			return
		}

		log.Debugw("prediction request", map[string]any{"request_id": reqID, "record": rec})

		res, err := eng.Predict(rec)
		switch {
		case errors.Is(err, inference.ErrModelUnavailable):
			log.Errorf("request %s: model unavailable", reqID)
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "model_unavailable", Detail: "model not loaded; check service deployment"})
			emit(coremetrics.OutcomeModelUnavailable, inference.Result{})
			return
		case err != nil:
			var perr *inference.PredictionError
			detail := "prediction failed"
			if errors.As(err, &perr) {
				detail = perr.Msg
			}
			log.Errorf("request %s: %v", reqID, err)
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "prediction_failed", Detail: detail})
			emit(coremetrics.OutcomePredictionFailed, inference.Result{})
			return
		}

		log.Infof("request %s: predicted %d vehicles/h", reqID, res.Volume)
		writeJSON(w, http.StatusOK, res)
		emit(coremetrics.OutcomeOK, res)
	})
}

// NewHealthHandler returns the GET /health handler. It reads the startup
// readiness flag and never invokes the predictor.
func NewHealthHandler(state *health.State) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, state.Snapshot())
	})
}

// NewRootHandler returns the GET / info handler: a static descriptive payload
// listing the service name, loaded state and available operations.
func NewRootHandler(state *health.State, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":      ServiceName,
			"status":       "running",
			"model_loaded": state.Loaded(),
			"version":      version,
			"endpoints": map[string]string{
				"predict": "POST /predict - Make traffic volume prediction",
				"health":  "GET /health - Readiness check",
				"root":    "GET / - Service information",
			},
		})
	})
}

// NewMux assembles the API routes on a fresh ServeMux.
func NewMux(eng *inference.Engine, state *health.State, bus *eventbus.Bus, version string, log logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/predict", NewPredictHandler(eng, bus, log))
	mux.Handle("/health", NewHealthHandler(state))
	mux.Handle("/", NewRootHandler(state, version))
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding a shaped response cannot realistically fail; the status line
	// is already gone if it does.
	_ = json.NewEncoder(w).Encode(body)
}
