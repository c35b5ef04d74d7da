package router

import (
	"github.com/labstack/echo/v4"

	"citywatch/internal/adapter/api/handler"
	"citywatch/internal/adapter/api/middleware"
)

func SetupReportRouter(e *echo.Echo, reportHandler *handler.ReportHandler, authMiddleware *middleware.AuthMiddleware, adminMiddleware *middleware.AdminMiddleware) {
	reports := e.Group("/reports")

	// Anyone may submit; a valid token attributes the report to its creator.
	reports.POST("", reportHandler.CreateReport, authMiddleware.OptionalAuthenticate)

	reports.GET("", reportHandler.ListReports, authMiddleware.OptionalAuthenticate)
	reports.GET("/photo/:id", reportHandler.GetPhoto)
	reports.GET("/:id", reportHandler.GetReport, authMiddleware.OptionalAuthenticate)

	// Moderation
	reports.PUT("/:id", reportHandler.UpdateStatus, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
	reports.DELETE("/:id", reportHandler.DeleteReport, authMiddleware.Authenticate, adminMiddleware.AdminOnly)
}
