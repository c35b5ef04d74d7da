package router

import (
	"github.com/labstack/echo/v4"

	"citywatch/internal/adapter/api/handler"
	"citywatch/internal/adapter/api/middleware"
)

func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware *middleware.AuthMiddleware) {
	auth := e.Group("/auth")

	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/verify/:code", authHandler.VerifyEmail)

	auth.POST("/change-password", authHandler.ChangePassword, authMiddleware.Authenticate)
	auth.POST("/change-email", authHandler.ChangeEmail, authMiddleware.Authenticate)
}
