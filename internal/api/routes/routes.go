package routes

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"jobscout/internal/api/handlers"
	"jobscout/internal/heartbeat"
)

// SetupRoutes configures the local observation endpoints. They are read-only:
// start/stop control belongs to the external supervisor, not the bot.
func SetupRoutes(e *echo.Echo, reporter *heartbeat.Reporter) {
	e.Use(echomiddleware.Recover())

	e.GET("/health", handlers.HealthHandler)
	e.GET("/status", handlers.StatusHandler(reporter))
}
