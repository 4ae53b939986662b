package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/callreview-team/call-review/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg           *config.Config
	reviewHandler *ReviewHandler
	exportHandler *ExportHandler
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, reviewHandler *ReviewHandler, exportHandler *ExportHandler) *Router {
	return &Router{
		cfg:           cfg,
		reviewHandler: reviewHandler,
		exportHandler: exportHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	rt.setupCallRoutes(v1)
	rt.setupExportRoutes(v1)
}

// setupCallRoutes configures call browsing and rating edit routes
func (rt *Router) setupCallRoutes(g *echo.Group) {
	calls := g.Group("/calls")
	calls.GET("", rt.reviewHandler.ListCalls)
	calls.GET("/:id", rt.reviewHandler.GetCall)
	calls.GET("/:id/ratings/:turn", rt.reviewHandler.GetRating)
	calls.PUT("/:id/ratings/:turn", rt.reviewHandler.SetField)
	calls.POST("/:id/complete", rt.reviewHandler.ToggleComplete)
}

// setupExportRoutes configures annotated export routes
func (rt *Router) setupExportRoutes(g *echo.Group) {
	exports := g.Group("/export")
	exports.GET("", rt.exportHandler.ExportAll)
	exports.GET("/:id", rt.exportHandler.ExportCall)
	exports.POST("/upload", rt.exportHandler.Upload)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
