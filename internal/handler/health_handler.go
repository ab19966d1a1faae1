package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Hello handles the root endpoint
func Hello(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "account merge service",
	})
}

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "merge-service",
	})
}
