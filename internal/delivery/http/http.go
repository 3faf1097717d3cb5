package http

import (
	"context"
	"net/http"
	"strconv"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/service"
	"churn-analytics/pkg/logger"
	"churn-analytics/pkg/metrics"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	metrics   *metrics.Metrics
	log       *logger.Logger
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, validator *goValidator.Validate, service *service.Service, m *metrics.Metrics, log *logger.Logger) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		service:   service,
		metrics:   m,
		log:       log,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/healthz", h.healthz)
	if h.metrics != nil {
		h.echo.GET("/metrics", echo.WrapHandler(h.metrics.Handler()))
	}

	v1 := h.echo.Group("/api/v1")
	h.SetupCustomers(v1)
	h.SetupProducts(v1)
	h.SetupOrders(v1)
	h.SetupResults(v1)
	h.SetupTraining(v1)
	h.SetupInsights(v1)
	h.SetupIngest(v1)
	h.SetupJobs(v1)
}

func (h *HttpAPIHandler) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", nil))
}

// bindAndValidate binds the request into req and runs struct validation.
func (h *HttpAPIHandler) bindAndValidate(c echo.Context, req interface{}) *dto.BaseResponse {
	if err := c.Bind(req); err != nil {
		return dto.NewBadRequestResponse("invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return dto.NewBadRequestResponse(err.Error())
	}
	return nil
}

func (h *HttpAPIHandler) pageQuery(c echo.Context) (dto.PageQuery, *dto.BaseResponse) {
	var q dto.PageQuery
	if resp := h.bindAndValidate(c, &q); resp != nil {
		return q, resp
	}
	q.Normalize()
	return q, nil
}

func parseID(c echo.Context) (uint, *dto.BaseResponse) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, dto.NewBadRequestResponse("invalid id")
	}
	return uint(id), nil
}

// respondError maps err to its status; server errors are logged.
func (h *HttpAPIHandler) respondError(c echo.Context, err error) error {
	resp := dto.NewErrorResponse(err)
	if resp.Code >= http.StatusInternalServerError {
		h.log.ErrorContext(c.Request().Context(), "Request failed",
			logger.ErrorField(err),
			logger.StringField("path", c.Path()),
		)
	}
	return c.JSON(resp.Code, resp)
}

func respond(c echo.Context, resp *dto.BaseResponse) error {
	return c.JSON(resp.Code, resp)
}
