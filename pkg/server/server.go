// Package server exposes the studio and the signed-in user's library over a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/auth"
	"hookbuilder/pkg/library"
	"hookbuilder/pkg/metrics"
	"hookbuilder/pkg/studio"
	"hookbuilder/pkg/utils"
)

type Server struct {
	Echo    *echo.Echo
	Studio  *studio.Studio
	Library *library.Library
	Auth    *auth.Authenticator
	Tokens  *auth.Tokens
}

func NewServer(st *studio.Studio, lib *library.Library, authn *auth.Authenticator, tokens *auth.Tokens) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		Echo:    e,
		Studio:  st,
		Library: lib,
		Auth:    authn,
		Tokens:  tokens,
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())
	e.Use(observeRequests)

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetRoot)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := s.Echo.Group("/api")
	api.GET("/options", s.handleGetOptions)
	api.POST("/auth/login", s.handlePostLogin)

	// everything below needs a session for an allowed user
	private := api.Group("", auth.Middleware(s.Tokens, s.Auth.Policy()))
	private.POST("/auth/logout", s.handlePostLogout)
	private.GET("/auth/me", s.handleGetMe)

	private.POST("/hooks/analyze", s.handlePostAnalyzeHook)
	private.GET("/hooks", s.handleGetHooks)
	private.POST("/hooks", s.handlePostHook)
	private.DELETE("/hooks/:id", s.handleDeleteHook)

	private.POST("/scripts/generate", s.handlePostGenerateScript)
	private.POST("/scripts/process", s.handlePostProcessScript)
	private.GET("/scripts", s.handleGetScripts)
	private.POST("/scripts", s.handlePostScript)
	private.PUT("/scripts/:id", s.handlePutScript)
	private.DELETE("/scripts/:id", s.handleDeleteScript)
}

func (s *Server) Start(addr string) error {
	log.Info("server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("shutting down server")
	return s.Echo.Shutdown(ctx)
}

// handleError renders every failure as {"success": false, "error": msg} with
// the status and wording that apperr assigns to it.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status, msg := statusOf(err), apperr.UserMessage(err)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprint(he.Message)
	}

	switch {
	case status >= http.StatusInternalServerError:
		log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "status", status, "err", err)
	case he == nil:
		log.Warn("request rejected", "method", c.Request().Method, "path", c.Path(), "status", status, "err", err)
	}

	if err := c.JSON(status, utils.ErrJSON(msg)); err != nil {
		log.Error("writing error response", "err", err)
	}
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return apperr.HTTPStatus(err)
}

func observeRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			status = statusOf(err)
		}
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request().Method
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}
