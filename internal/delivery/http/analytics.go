package http

import (
	"net/http"

	"churn-analytics/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) topChurnRisk(c echo.Context) error {
	customers, err := h.service.AnalyticsService.TopChurnRisk(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("top churn risk", customers))
}

func (h *HttpAPIHandler) churnAnalytics(c echo.Context) error {
	analytics, err := h.service.AnalyticsService.ChurnAnalytics(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("churn analytics", analytics))
}

func (h *HttpAPIHandler) paginatedCustomers(c echo.Context) error {
	q := new(dto.PaginatedCustomersQuery)
	if bad := h.bindAndValidate(c, q); bad != nil {
		return respond(c, bad)
	}
	q.Normalize()
	page, err := h.service.AnalyticsService.PaginatedCustomers(c.Request().Context(), *q)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("customers by churn risk", page))
}

func (h *HttpAPIHandler) topSelling(c echo.Context) error {
	forecasts, err := h.service.AnalyticsService.TopSelling(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("top selling", forecasts))
}

func (h *HttpAPIHandler) salesAnalytics(c echo.Context) error {
	analytics, err := h.service.AnalyticsService.SalesAnalytics(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("sales analytics", analytics))
}
