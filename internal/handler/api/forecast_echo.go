package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	models "SonaCast/internal/domain/models"
	icache "SonaCast/internal/service/cache"
	"SonaCast/internal/service/metrics"
	"SonaCast/internal/service/ratelimit"
	"SonaCast/internal/usecase"
	xhttp "SonaCast/pkg/http"
	xlogger "SonaCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ForecastEchoHandler exposes the price forecast API over Echo.
type ForecastEchoHandler struct {
	logger    *xlogger.Logger
	forecasts *usecase.Forecaster
	retrainer *usecase.Retrainer
	cache     icache.BytesCache
	rl        *ratelimit.Limiter
	health    func(ctx echo.Context) map[string]string
}

func NewForecastEchoHandler(logger *xlogger.Logger, forecasts *usecase.Forecaster, retrainer *usecase.Retrainer) *ForecastEchoHandler {
	metrics.Register()
	return &ForecastEchoHandler{
		logger:    logger,
		forecasts: forecasts,
		retrainer: retrainer,
		rl:        ratelimit.New(),
	}
}

// SetCache enables response caching for predict requests.
func (h *ForecastEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetHealthProbe sets the component status callback for /health.
func (h *ForecastEchoHandler) SetHealthProbe(fn func(ctx echo.Context) map[string]string) {
	h.health = fn
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/predict", h.Predict)
	g.GET("/purities", h.Purities)
	g.GET("/units", h.Units)
	g.POST("/retrain", h.Retrain)
	e.GET("/health", h.Health)
}

// locationDTO nests the selected market in the predict response.
type locationDTO struct {
	State string `json:"state"`
	City  string `json:"city"`
}

type forecastDayDTO struct {
	Day          int     `json:"day"`
	Price        float64 `json:"price"`
	PricePerGram float64 `json:"price_per_gram"`
	Trend        float64 `json:"trend"`
	Confidence   float64 `json:"confidence"`
}

type predictResponse struct {
	Metal               string           `json:"metal"`
	Purity              string           `json:"purity"`
	Unit                int              `json:"unit"`
	UnitLabel           string           `json:"unit_label"`
	Location            locationDTO      `json:"location"`
	CurrentPrice        float64          `json:"currentPrice"`
	CurrentPricePerGram float64          `json:"currentPricePerGram"`
	Forecast            []forecastDayDTO `json:"forecast"`
	WeekAverage         float64          `json:"weekAverage"`
	WeekTrend           float64          `json:"weekTrend"`
	Spread              float64          `json:"spread"`
	Timestamp           string           `json:"timestamp"`
}

func (h *ForecastEchoHandler) Predict(c echo.Context) error {
	start := time.Now()
	endpoint := "predict"
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":predict", 5, 2) {
		h.logger.Warn("predict rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	cacheKey := fmt.Sprintf("predict:%s:%s:%s:%s:%d", req.Metal, req.State, req.City, req.Purity, req.Unit)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("predict cache_get_error", xlogger.Error(err))
		} else if ok {
			var cached predictResponse
			if err := json.Unmarshal(b, &cached); err == nil {
				h.logger.Debug("predict cache_hit", xlogger.String("key", cacheKey))
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	metal := models.Metal(req.Metal)
	fc, err := h.forecasts.Localized(c.Request().Context(), metal, models.Purity(req.Purity), req.State, req.City, req.Unit)
	if err != nil {
		metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("predict usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, forecastAppError(err))
	}

	res := toPredictResponse(fc)
	if h.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 5*time.Minute); err != nil {
				h.logger.Warn("predict cache_set_error", xlogger.Error(err))
			}
		}
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func toPredictResponse(fc *models.LocalizedForecast) *predictResponse {
	days := make([]forecastDayDTO, len(fc.Forecast))
	for i, d := range fc.Forecast {
		days[i] = forecastDayDTO{
			Day:          d.Day,
			Price:        d.Price,
			PricePerGram: d.PricePerGram,
			Trend:        d.Trend,
			Confidence:   d.Confidence,
		}
	}
	return &predictResponse{
		Metal:               string(fc.Metal),
		Purity:              fc.PurityLabel,
		Unit:                fc.Unit,
		UnitLabel:           fc.UnitLabel,
		Location:            locationDTO{State: fc.State, City: fc.City},
		CurrentPrice:        fc.CurrentPrice,
		CurrentPricePerGram: fc.CurrentPricePerGram,
		Forecast:            days,
		WeekAverage:         fc.WeekAverage,
		WeekTrend:           fc.WeekTrend,
		Spread:              fc.Spread,
		Timestamp:           fc.GeneratedAt.Format(time.RFC3339),
	}
}

func (h *ForecastEchoHandler) Purities(c echo.Context) error {
	gold := make([]string, 0, 3)
	for _, p := range models.GoldPurities() {
		gold = append(gold, string(p))
	}
	return xhttp.SuccessResponse(c, map[string][]string{
		"gold":   gold,
		"silver": {"Pure"},
	})
}

func (h *ForecastEchoHandler) Units(c echo.Context) error {
	req := &models.UnitsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	metal := models.Metal(req.Metal)
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"units": metal.Units(),
		"label": "grams",
	})
}

func (h *ForecastEchoHandler) Retrain(c echo.Context) error {
	start := time.Now()
	endpoint := "retrain"
	defer func() { metrics.ForecastLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.RetrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":retrain", 2, 0.2) {
		h.logger.Warn("retrain rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limited")
	}

	if req.Async {
		if err := h.retrainer.Enqueue(c.Request().Context(), req.Metal, req.Horizon); err != nil {
			metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
			h.logger.Error("retrain enqueue error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, forecastAppError(err))
		}
		return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{"status": "queued"})
	}

	if err := h.retrainer.Retrain(c.Request().Context(), req.Metal, req.Horizon); err != nil {
		metrics.ForecastErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("retrain usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, forecastAppError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "done"})
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.health != nil {
		for k, v := range h.health(c) {
			status[k] = v
		}
	}
	return xhttp.SuccessResponse(c, status)
}

// forecastAppError maps domain failures onto transport errors. Bad input is
// the caller's fault; everything upstream reads as temporarily unavailable.
func forecastAppError(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidParameter):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrUnknownLocation):
		return xhttp.BadRequestError(err.Error()).WithError(err)
	case errors.Is(err, models.ErrDataUnavailable),
		errors.Is(err, models.ErrInsufficientHistory),
		errors.Is(err, models.ErrInsufficientData),
		errors.Is(err, models.ErrModelUnavailable):
		return xhttp.NewAppError("ERR_UNAVAILABLE", "", err.Error(), http.StatusServiceUnavailable).WithError(err)
	default:
		return err
	}
}
