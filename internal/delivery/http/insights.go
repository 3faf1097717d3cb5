package http

import (
	"net/http"

	"churn-analytics/internal/dto"

	"github.com/labstack/echo/v4"
)

const maxUploadBytes = 32 << 20

func (h *HttpAPIHandler) SetupInsights(base *echo.Group) {
	base.GET("/insights/churn", h.churnInsight)
}

func (h *HttpAPIHandler) SetupIngest(base *echo.Group) {
	base.POST("/ingest", h.ingestCSV)
}

func (h *HttpAPIHandler) churnInsight(c echo.Context) error {
	insight, err := h.service.InsightService.ChurnInsight(c.Request().Context())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("churn insight", insight))
}

// ingestCSV accepts the customer export as the multipart field "file".
func (h *HttpAPIHandler) ingestCSV(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return respond(c, dto.NewBadRequestResponse("missing file"))
	}
	if header.Size > maxUploadBytes {
		return respond(c, dto.NewBadRequestResponse("file too large"))
	}
	file, err := header.Open()
	if err != nil {
		return h.respondError(c, err)
	}
	defer file.Close()

	result, err := h.service.IngestService.IngestCSV(c.Request().Context(), file)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ingest finished", result))
}
