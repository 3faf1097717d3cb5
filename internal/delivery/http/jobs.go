package http

import (
	"net/http"

	"churn-analytics/internal/dto"
	"churn-analytics/internal/model"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupJobs(base *echo.Group) {
	jobs := base.Group("/jobs")
	{
		jobs.GET("", h.listJobs)
		jobs.POST("/run", h.RunJobs)
		jobs.POST("/:id/run", h.runJob)
	}
}

func (h *HttpAPIHandler) RunJobs(c echo.Context) error {
	response := dto.NewBaseResponse(http.StatusOK, "Start running jobs", nil)
	if err := h.service.SchedulerService.Execute(c.Request().Context()); err != nil {
		response.Code = http.StatusInternalServerError
		response.Message = err.Error()
	}
	return c.JSON(response.Code, response)
}

func (h *HttpAPIHandler) listJobs(c echo.Context) error {
	jobs, err := h.service.SchedulerService.GetJobSchedule(c.Request().Context(), model.GetJobParam{})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("jobs", jobs))
}

func (h *HttpAPIHandler) runJob(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	if err := h.service.SchedulerService.RunJobTask(c.Request().Context(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, dto.NewBaseResponse(http.StatusAccepted, "job started", nil))
}
