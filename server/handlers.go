package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleStatus(c echo.Context) error {
	s.requestLog.Debug().
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("status requested")
	return c.JSON(http.StatusOK, s.api.Status())
}
