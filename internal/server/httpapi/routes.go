package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/ratelimit"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.requestIDMiddleware())
	s.echo.Use(s.requestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	if s.metrics != nil {
		s.echo.Use(s.metrics.Middleware())
	}
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{s.config.CORSOrigin},
		AllowCredentials: true,
	}))
	s.echo.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit:   s.config.BodyLimit,
		Skipper: isMultipart,
	}))
	s.echo.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit:   fmt.Sprintf("%dB", s.config.MaxUploadSize),
		Skipper: func(c echo.Context) bool { return !isMultipart(c) },
	}))

	s.echo.GET("/healthz", s.handleHealthz)
	if s.metricsHandler != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metricsHandler))
	}

	s.registerUserRoutes()

	if s.config.StaticDir != "" {
		s.echo.Static("/", s.config.StaticDir)
	}
}

func (s *Server) registerUserRoutes() {
	g := s.echo.Group("/users")

	limited := []echo.MiddlewareFunc{}
	if s.limiter != nil {
		limited = append(limited, ratelimit.Middleware(s.limiter))
	}

	g.POST("/register", s.handleRegister, limited...)
	g.POST("/login", s.handleLogin, limited...)
	g.POST("/refresh", s.handleRefresh, limited...)

	authed := s.requireAccessToken
	g.POST("/logout", s.handleLogout, authed)
	g.POST("/change", s.handleChangePassword, authed)
	g.POST("/currentUser", s.handleCurrentUser, authed)
	g.PATCH("/updatedetails", s.handleUpdateAccountDetails, authed)
	g.POST("/avatar", s.handleUpdateAvatar, authed)
	g.POST("/coverImage", s.handleUpdateCoverImage, authed)
	g.GET("/history", s.handleWatchHistory, authed)
	g.POST("/subscribe", s.handleSubscribe, authed)
	g.GET("/:username", s.handleChannelProfile, authed)
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

func (s *Server) requestIDMiddleware() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := logging.WithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	})
}

func (s *Server) requestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			s.logger.Info(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}

func (s *Server) handleHealthz(c echo.Context) error {
	if s.db != nil {
		if err := s.db.PingContext(c.Request().Context()); err != nil {
			s.logger.Error(c.Request().Context(), "health check failed", "error", err)
			return respond(c, http.StatusServiceUnavailable, nil, "Database unavailable")
		}
	}
	return respond(c, http.StatusOK, nil, "OK")
}
