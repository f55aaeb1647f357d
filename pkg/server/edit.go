package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hookbuilder/pkg/schema"
)

// PUT /api/scripts/:id saves the edited script under a new id and removes the old one.
func (s *Server) handlePutScript(c echo.Context) error {
	var script schema.SavedScript
	if err := c.Bind(&script); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	saved, err := s.Library.ReplaceScript(c.Request().Context(), c.Param("id"), script)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

// DELETE /api/scripts/:id
func (s *Server) handleDeleteScript(c echo.Context) error {
	if err := s.Library.DeleteScript(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DELETE /api/hooks/:id
func (s *Server) handleDeleteHook(c echo.Context) error {
	if err := s.Library.DeleteHookVariation(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
