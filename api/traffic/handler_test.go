package traffic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kilianp07/trafficd/core/health"
	"github.com/kilianp07/trafficd/core/inference"
	coremetrics "github.com/kilianp07/trafficd/core/metrics"
	"github.com/kilianp07/trafficd/core/predictor"
	"github.com/kilianp07/trafficd/infra/logger"
	"github.com/kilianp07/trafficd/internal/eventbus"
)

func newTestServer(pred predictor.Predictor) (*httptest.Server, *eventbus.Bus) {
	eng := inference.NewEngine(pred, logger.NopLogger{})
	state := health.NewState(eng.Loaded())
	bus := eventbus.New()
	mux := NewMux(eng, state, bus, "1.0.0", logger.NopLogger{})
	return httptest.NewServer(mux), bus
}

func postPredict(t *testing.T, srv *httptest.Server, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/predict", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, out
}

func TestPredictFullFeatureSet(t *testing.T) {
	// Raw estimate 3456.7 must come back truncated, never rounded up.
	mock := &predictor.MockPredictor{Raw: 3456.7, ModelVersion: "1.0.0"}
	srv, bus := newTestServer(mock)
	defer srv.Close()
	defer bus.Close()

	resp, out := postPredict(t, srv, `{
		"holiday": "None", "temp": 295.15, "rain_1h": 0.0, "snow_1h": 0.0,
		"clouds_all": 75, "weather_main": "Clouds", "hour": 17,
		"day_of_week": 0, "month": 6, "is_rush_hour": 1
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, out)
	}
	if out["predicted_traffic_volume"] != float64(3456) {
		t.Fatalf("volume = %v", out["predicted_traffic_volume"])
	}
	if out["model_version"] != "1.0.0" {
		t.Fatalf("model_version = %v", out["model_version"])
	}
	if len(mock.Calls) != 1 || mock.Calls[0].Hour != 17 || mock.Calls[0].CloudsAll != 75 {
		t.Fatalf("record not forwarded intact: %+v", mock.Calls)
	}
}

func TestPredictEmptyBodyUsesDefaults(t *testing.T) {
	mock := &predictor.MockPredictor{Raw: 1500, ModelVersion: "1.0.0"}
	srv, bus := newTestServer(mock)
	defer srv.Close()
	defer bus.Close()

	resp, out := postPredict(t, srv, `{}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, out)
	}
	if len(mock.Calls) != 1 || mock.Calls[0].Holiday != "None" || mock.Calls[0].Hour != 9 {
		t.Fatalf("defaults not applied: %+v", mock.Calls)
	}
}

func TestPredictOutOfBoundField(t *testing.T) {
	srv, bus := newTestServer(&predictor.MockPredictor{Raw: 1500})
	defer srv.Close()
	defer bus.Close()

	resp, out := postPredict(t, srv, `{"clouds_all": 150}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out["error"] != "validation_error" {
		t.Fatalf("error = %v", out["error"])
	}
	if !strings.Contains(out["detail"].(string), "clouds_all") {
		t.Fatalf("detail should name clouds_all: %v", out["detail"])
	}
}

func TestPredictModelUnavailable(t *testing.T) {
	srv, bus := newTestServer(nil)
	defer srv.Close()
	defer bus.Close()

	resp, out := postPredict(t, srv, `{}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out["error"] != "model_unavailable" {
		t.Fatalf("error = %v", out["error"])
	}
}

func TestPredictMalformedBody(t *testing.T) {
	srv, bus := newTestServer(&predictor.MockPredictor{})
	defer srv.Close()
	defer bus.Close()

	resp, out := postPredict(t, srv, `{"temp": `)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out["error"] != "malformed_request" {
		t.Fatalf("error = %v", out["error"])
	}
}

func TestPredictMethodNotAllowed(t *testing.T) {
	srv, bus := newTestServer(&predictor.MockPredictor{})
	defer srv.Close()
	defer bus.Close()

	resp, err := http.Get(srv.URL + "/predict")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestHealthUnloaded(t *testing.T) {
	srv, bus := newTestServer(nil)
	defer srv.Close()
	defer bus.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var st health.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != "unhealthy" || st.ModelLoaded {
		t.Fatalf("unexpected health: %+v", st)
	}
	if _, err := time.Parse(time.RFC3339, st.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", st.Timestamp)
	}
}

func TestHealthLoaded(t *testing.T) {
	srv, bus := newTestServer(&predictor.MockPredictor{Raw: 1})
	defer srv.Close()
	defer bus.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var st health.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != "healthy" || !st.ModelLoaded {
		t.Fatalf("unexpected health: %+v", st)
	}
}

func TestRootInfo(t *testing.T) {
	srv, bus := newTestServer(&predictor.MockPredictor{})
	defer srv.Close()
	defer bus.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["message"] != ServiceName || out["model_loaded"] != true {
		t.Fatalf("unexpected info payload: %v", out)
	}
	if _, ok := out["endpoints"].(map[string]any); !ok {
		t.Fatalf("endpoints listing missing: %v", out)
	}
}

func TestPredictEmitsEvents(t *testing.T) {
	mock := &predictor.MockPredictor{Raw: 2741.3, ModelVersion: "1.0.0"}
	eng := inference.NewEngine(mock, logger.NopLogger{})
	state := health.NewState(true)
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	srv := httptest.NewServer(NewMux(eng, state, bus, "1.0.0", logger.NopLogger{}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/predict", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()

	select {
	case ev := <-sub:
		if ev.Outcome != coremetrics.OutcomeOK || ev.Volume != 2741 || ev.RequestID == "" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no prediction event published")
	}
}
