package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"SonaCast/internal/domain/models"
	drepo "SonaCast/internal/domain/repository"
	"SonaCast/internal/services/modelbank"
	"SonaCast/internal/usecase"
	applogger "SonaCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

type failingSource struct{}

func (failingSource) BaseSeries(_ context.Context, metal models.Metal, _ int) (models.Series, error) {
	return nil, models.ErrDataUnavailable
}

type nopStore struct{}

func (nopStore) Save(models.Metal, drepo.Horizon, []byte, []byte) error { return nil }
func (nopStore) Load(models.Metal, drepo.Horizon) ([]byte, []byte, error) {
	return nil, nil, models.ErrModelUnavailable
}
func (nopStore) Exists(models.Metal, drepo.Horizon) bool { return false }

func newTestHandler(t *testing.T) (*ForecastEchoHandler, *echo.Echo) {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	src := failingSource{}
	bank := modelbank.NewBank(nopStore{}, modelbank.NewTrainer(src, modelbank.DefaultTrainerConfig(), l), l)
	forecaster := usecase.NewForecaster(src, bank)
	retrainer := usecase.NewRetrainer(bank, nil, l)

	h := NewForecastEchoHandler(l, forecaster, retrainer)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doRequest(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPuritiesEndpoint(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doRequest(e, http.MethodGet, "/api/purities")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data map[string][]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := body.Data["gold"]; len(got) != 3 || got[0] != "24K" {
		t.Fatalf("gold purities = %v", got)
	}
	if got := body.Data["silver"]; len(got) != 1 || got[0] != "Pure" {
		t.Fatalf("silver purities = %v", got)
	}
}

func TestUnitsEndpoint(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doRequest(e, http.MethodGet, "/api/units?metal=silver")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Data struct {
			Units []int  `json:"units"`
			Label string `json:"label"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data.Units) != 3 || body.Data.Units[2] != 1000 {
		t.Fatalf("silver units = %v", body.Data.Units)
	}
	if body.Data.Label != "grams" {
		t.Fatalf("label = %q", body.Data.Label)
	}
}

func TestUnitsRejectsUnknownMetal(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doRequest(e, http.MethodGet, "/api/units?metal=brass")
	if rec.Code != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "400") {
		t.Fatalf("expected validation error envelope, got %s", rec.Body.String())
	}
}

func TestPredictValidationError(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doRequest(e, http.MethodGet, "/api/predict?metal=copper")
	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", body.Status)
	}
}

func TestPredictUpstreamFailureIsUnavailable(t *testing.T) {
	_, e := newTestHandler(t)
	rec := doRequest(e, http.MethodGet, "/api/predict")
	var body struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", body.Status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h, e := newTestHandler(t)
	h.SetHealthProbe(func(echo.Context) map[string]string {
		return map[string]string{"clickhouse": "ok"}
	})
	rec := doRequest(e, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	for _, want := range []string{`"status":"ok"`, `"clickhouse":"ok"`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("body %s missing %s", rec.Body.String(), want)
		}
	}
}
