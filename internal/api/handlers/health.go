package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"jobscout/internal/heartbeat"
)

var startTime = time.Now()

// HealthHandler handles liveness probe requests from the supervisor.
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"uptime":    time.Since(startTime).String(),
	})
}

// StatusHandler exposes the reporter's last-known state, mirroring what the
// collector dashboard sees without a round trip to it.
func StatusHandler(reporter *heartbeat.Reporter) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, reporter.Snapshot())
	}
}
