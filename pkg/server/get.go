package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"hookbuilder/pkg/auth"
	"hookbuilder/pkg/schema"
)

func (s *Server) handleGetRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "Hookbuilder API",
		"status":  "ok",
	})
}

// GET /api/options
func (s *Server) handleGetOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, schema.Options)
}

// GET /api/auth/me
func (s *Server) handleGetMe(c echo.Context) error {
	user, _ := auth.UserFrom(c.Request().Context())
	return c.JSON(http.StatusOK, user)
}

// GET /api/hooks?limit=n
func (s *Server) handleGetHooks(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	variations, err := s.Library.RecentHookVariations(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, variations)
}

// GET /api/scripts
func (s *Server) handleGetScripts(c echo.Context) error {
	scripts, err := s.Library.ListScripts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, scripts)
}
