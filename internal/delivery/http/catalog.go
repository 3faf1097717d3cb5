package http

import (
	"net/http"

	"churn-analytics/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupCustomers(base *echo.Group) {
	customers := base.Group("/customers")
	customers.GET("", h.listCustomers)
	customers.POST("", h.createCustomer)
	customers.GET("/top-churn-risk", h.topChurnRisk)
	customers.GET("/churn-analytics", h.churnAnalytics)
	customers.GET("/paginated", h.paginatedCustomers)
	customers.GET("/:id", h.getCustomer)
	customers.PUT("/:id", h.updateCustomer)
	customers.DELETE("/:id", h.deleteCustomer)
}

func (h *HttpAPIHandler) SetupProducts(base *echo.Group) {
	products := base.Group("/products")
	products.GET("", h.listProducts)
	products.POST("", h.createProduct)
	products.GET("/top-selling", h.topSelling)
	products.GET("/sales-analytics", h.salesAnalytics)
	products.GET("/:id", h.getProduct)
	products.PUT("/:id", h.updateProduct)
	products.DELETE("/:id", h.deleteProduct)
}

func (h *HttpAPIHandler) SetupOrders(base *echo.Group) {
	orders := base.Group("/orders")
	orders.GET("", h.listOrders)
	orders.POST("", h.createOrder)
	orders.GET("/:id", h.getOrder)
	orders.PUT("/:id", h.updateOrder)
	orders.DELETE("/:id", h.deleteOrder)
}

// SetupResults exposes the read-only pipeline outputs.
func (h *HttpAPIHandler) SetupResults(base *echo.Group) {
	base.GET("/churn-predictions", h.listChurnPredictions)
	base.GET("/churn-predictions/:id", h.getChurnPrediction)
	base.GET("/sales-forecasts", h.listSalesForecasts)
	base.GET("/sales-forecasts/:id", h.getSalesForecast)
	base.GET("/model-performance", h.listModelPerformance)
	base.GET("/model-performance/:id", h.getModelPerformance)
}

func (h *HttpAPIHandler) listCustomers(c echo.Context) error {
	q, bad := h.pageQuery(c)
	if bad != nil {
		return respond(c, bad)
	}
	page, err := h.service.CatalogService.ListCustomers(c.Request().Context(), q)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("customers", page))
}

func (h *HttpAPIHandler) createCustomer(c echo.Context) error {
	req := new(dto.CustomerRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return respond(c, bad)
	}
	customer, err := h.service.CatalogService.CreateCustomer(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "customer created", customer))
}

func (h *HttpAPIHandler) getCustomer(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	customer, err := h.service.CatalogService.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("customer", customer))
}

func (h *HttpAPIHandler) updateCustomer(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	req := new(dto.CustomerRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return respond(c, bad)
	}
	customer, err := h.service.CatalogService.UpdateCustomer(c.Request().Context(), id, *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("customer updated", customer))
}

func (h *HttpAPIHandler) deleteCustomer(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	if err := h.service.CatalogService.DeleteCustomer(c.Request().Context(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *HttpAPIHandler) listProducts(c echo.Context) error {
	q, bad := h.pageQuery(c)
	if bad != nil {
		return respond(c, bad)
	}
	page, err := h.service.CatalogService.ListProducts(c.Request().Context(), q)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("products", page))
}

func (h *HttpAPIHandler) createProduct(c echo.Context) error {
	req := new(dto.ProductRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return respond(c, bad)
	}
	product, err := h.service.CatalogService.CreateProduct(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "product created", product))
}

func (h *HttpAPIHandler) getProduct(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	product, err := h.service.CatalogService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("product", product))
}

func (h *HttpAPIHandler) updateProduct(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	req := new(dto.ProductRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return respond(c, bad)
	}
	product, err := h.service.CatalogService.UpdateProduct(c.Request().Context(), id, *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("product updated", product))
}

func (h *HttpAPIHandler) deleteProduct(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	if err := h.service.CatalogService.DeleteProduct(c.Request().Context(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *HttpAPIHandler) listOrders(c echo.Context) error {
	q, bad := h.pageQuery(c)
	if bad != nil {
		return respond(c, bad)
	}
	page, err := h.service.CatalogService.ListOrders(c.Request().Context(), q)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("orders", page))
}

func (h *HttpAPIHandler) createOrder(c echo.Context) error {
	req := new(dto.OrderRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return respond(c, bad)
	}
	order, err := h.service.CatalogService.CreateOrder(c.Request().Context(), *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "order created", order))
}

func (h *HttpAPIHandler) getOrder(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	order, err := h.service.CatalogService.GetOrder(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("order", order))
}

func (h *HttpAPIHandler) updateOrder(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	req := new(dto.OrderRequest)
	if bad := h.bindAndValidate(c, req); bad != nil {
		return respond(c, bad)
	}
	order, err := h.service.CatalogService.UpdateOrder(c.Request().Context(), id, *req)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("order updated", order))
}

func (h *HttpAPIHandler) deleteOrder(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	if err := h.service.CatalogService.DeleteOrder(c.Request().Context(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *HttpAPIHandler) listChurnPredictions(c echo.Context) error {
	q, bad := h.pageQuery(c)
	if bad != nil {
		return respond(c, bad)
	}
	page, err := h.service.CatalogService.ListChurnPredictions(c.Request().Context(), q)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("churn predictions", page))
}

func (h *HttpAPIHandler) getChurnPrediction(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	prediction, err := h.service.CatalogService.GetChurnPrediction(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("churn prediction", prediction))
}

func (h *HttpAPIHandler) listSalesForecasts(c echo.Context) error {
	q, bad := h.pageQuery(c)
	if bad != nil {
		return respond(c, bad)
	}
	page, err := h.service.CatalogService.ListSalesForecasts(c.Request().Context(), q)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("sales forecasts", page))
}

func (h *HttpAPIHandler) getSalesForecast(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	forecast, err := h.service.CatalogService.GetSalesForecast(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("sales forecast", forecast))
}

func (h *HttpAPIHandler) listModelPerformance(c echo.Context) error {
	q, bad := h.pageQuery(c)
	if bad != nil {
		return respond(c, bad)
	}
	page, err := h.service.CatalogService.ListModelPerformance(c.Request().Context(), q)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("model performance", page))
}

func (h *HttpAPIHandler) getModelPerformance(c echo.Context) error {
	id, bad := parseID(c)
	if bad != nil {
		return respond(c, bad)
	}
	perf, err := h.service.CatalogService.GetModelPerformance(c.Request().Context(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("model performance", perf))
}
