package router

import (
	"github.com/labstack/echo/v4"

	"citywatch/internal/adapter/api/handler"
	"citywatch/internal/adapter/api/middleware"
)

func Setup(
	e *echo.Echo,
	reportHandler *handler.ReportHandler,
	adminHandler *handler.AdminHandler,
	authHandler *handler.AuthHandler,
	authMiddleware *middleware.AuthMiddleware,
	adminMiddleware *middleware.AdminMiddleware,
) {
	SetupReportRouter(e, reportHandler, authMiddleware, adminMiddleware)
	SetupAdminRouter(e, adminHandler, authMiddleware, adminMiddleware)
	SetupAuthRouter(e, authHandler, authMiddleware)
	SetupHealthRouter(e)
}
