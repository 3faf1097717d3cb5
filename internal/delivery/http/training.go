package http

import (
	"net/http"

	"churn-analytics/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupTraining(base *echo.Group) {
	training := base.Group("/ml-training")
	training.POST("/train-churn-model", h.trainChurnModel)
	training.POST("/train-sales-model", h.trainSalesModel)
	training.POST("/predict-churn", h.predictChurn)
	training.POST("/forecast-sales", h.forecastSales)
	training.POST("/generate-all-forecasts", h.generateAllForecasts)
}

func (h *HttpAPIHandler) trainChurnModel(c echo.Context) error {
	result, err := h.service.ChurnService.TrainChurnModel(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("churn model trained", result))
}

func (h *HttpAPIHandler) trainSalesModel(c echo.Context) error {
	result, err := h.service.SalesService.TrainSalesModel(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("sales model trained", result))
}

func (h *HttpAPIHandler) predictChurn(c echo.Context) error {
	req := new(dto.PredictChurnRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return respond(c, bad)
	}
	result, err := h.service.ChurnService.PredictChurn(c.Request().Context(), req.CustomerID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("churn prediction", result))
}

func (h *HttpAPIHandler) forecastSales(c echo.Context) error {
	req := new(dto.ForecastSalesRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return respond(c, bad)
	}
	req.Normalize()
	result, err := h.service.SalesService.ForecastSales(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("sales forecast", result))
}

func (h *HttpAPIHandler) generateAllForecasts(c echo.Context) error {
	result, err := h.service.SalesService.GenerateAllForecasts(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("forecasts generated", result))
}
