package api

import (
	"errors"

	models "BTCForecast/internal/domain/models"
	modelsvc "BTCForecast/internal/services/model"
	"BTCForecast/internal/usecase"
	xhttp "BTCForecast/pkg/http"
	applogger "BTCForecast/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	msgInsufficientData = "Insufficient data for prediction"
	msgModelLoad        = "Failed to load prediction model"
)

// BitcoinHandler serves price history and predictions.
type BitcoinHandler struct {
	logger     *applogger.Logger
	historical *usecase.HistoricalUseCase
	prediction *usecase.PredictionUseCase
	state      *modelsvc.ArtifactState
	predictMW  []echo.MiddlewareFunc
}

func NewBitcoinHandler(
	logger *applogger.Logger,
	historical *usecase.HistoricalUseCase,
	prediction *usecase.PredictionUseCase,
	state *modelsvc.ArtifactState,
	predictMW ...echo.MiddlewareFunc,
) *BitcoinHandler {
	return &BitcoinHandler{
		logger:     logger,
		historical: historical,
		prediction: prediction,
		state:      state,
		predictMW:  predictMW,
	}
}

func (h *BitcoinHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/bitcoin/historical", h.Historical)
	g.POST("/predict", h.Predict, h.predictMW...)
	g.GET("/model/status", h.ModelStatus)
}

func (h *BitcoinHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *BitcoinHandler) Historical(c echo.Context) error {
	req := &models.HistoricalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr.Error())
	}

	points, err := h.historical.GetHistorical(c.Request().Context(), req.Timeframe)
	if err != nil {
		h.logger.Error("historical usecase error",
			applogger.String("timeframe", req.Timeframe),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, points)
}

func (h *BitcoinHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr.Error())
	}

	res, err := h.prediction.Predict(c.Request().Context(), req.Timeframe)
	if err != nil {
		h.logger.Error("prediction usecase error",
			applogger.String("timeframe", req.Timeframe),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, classifyPredictError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *BitcoinHandler) ModelStatus(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.state.Status())
}

func classifyPredictError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInsufficientData):
		return xhttp.BadRequestError(msgInsufficientData).WithError(err)
	case errors.Is(err, modelsvc.ErrModelLoad):
		return xhttp.InternalError(msgModelLoad).WithError(err)
	default:
		return err
	}
}
