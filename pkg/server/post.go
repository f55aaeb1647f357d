package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/auth"
	"hookbuilder/pkg/schema"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      schema.User `json:"user"`
}

// POST /api/auth/login
func (s *Server) handlePostLogin(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return apperr.Validation("Please enter your email and password")
	}

	ctx := c.Request().Context()
	user, err := s.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}
	token, expires, err := s.Tokens.Issue(user)
	if err != nil {
		return err
	}
	log.Info("signed in", "user", user.ID)
	return c.JSON(http.StatusOK, loginResp{Token: token, ExpiresAt: expires, User: user})
}

// POST /api/auth/logout
func (s *Server) handlePostLogout(c echo.Context) error {
	ctx := c.Request().Context()
	user, _ := auth.UserFrom(ctx)
	if err := s.Auth.SignOut(ctx, user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// POST /api/hooks/analyze?refresh=true
func (s *Server) handlePostAnalyzeHook(c echo.Context) error {
	var req schema.HookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	ctx := c.Request().Context()

	analyze := s.Studio.AnalyzeHook
	if c.QueryParam("refresh") == "true" {
		analyze = s.Studio.ReanalyzeHook
	}
	analysis, err := analyze(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysis)
}

// POST /api/hooks
func (s *Server) handlePostHook(c echo.Context) error {
	var v schema.SavedHookVariation
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	saved, err := s.Library.SaveHookVariation(c.Request().Context(), v)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}

// POST /api/scripts/generate
func (s *Server) handlePostGenerateScript(c echo.Context) error {
	var brief schema.ScriptBrief
	if err := c.Bind(&brief); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	res, err := s.Studio.GenerateScript(c.Request().Context(), brief)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type processReq struct {
	Script          string `json:"script"`
	ResistanceLevel string `json:"resistanceLevel"`
	EmotionEnding   string `json:"emotionEnding"`
}

// POST /api/scripts/process runs the post-processor over a script the user already has.
func (s *Server) handlePostProcessScript(c echo.Context) error {
	var req processReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	if strings.TrimSpace(req.Script) == "" {
		return apperr.Validation("Please paste a script to process")
	}
	res := s.Studio.Process(req.Script, schema.ParseResistance(req.ResistanceLevel), schema.ParseEnding(req.EmotionEnding))
	return c.JSON(http.StatusOK, res)
}

// POST /api/scripts
func (s *Server) handlePostScript(c echo.Context) error {
	var script schema.SavedScript
	if err := c.Bind(&script); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}
	saved, err := s.Library.SaveScript(c.Request().Context(), script)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, saved)
}
