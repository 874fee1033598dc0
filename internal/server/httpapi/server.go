// Package httpapi exposes the account services over HTTP with echo.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/media"
	"github.com/dmitrijs2005/vidtube/internal/server/metrics"
	"github.com/dmitrijs2005/vidtube/internal/server/models"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
)

type userService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, in services.LoginInput) (*services.LoginResult, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (*services.LoginResult, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
	UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID string, upload *media.Upload) (*models.User, error)
	UpdateCoverImage(ctx context.Context, userID string, upload *media.Upload) (*models.User, error)
}

type subscriptionService interface {
	Subscribe(ctx context.Context, subscriberID, channelUsername string) (*models.Subscription, error)
}

type profileService interface {
	ChannelProfile(ctx context.Context, viewerID, username string) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]*models.WatchedVideo, error)
}

type accessVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators of Server. Limiter, Metrics, MetricsHandler and
// DB are optional.
type Deps struct {
	Users          userService
	Subscriptions  subscriptionService
	Profiles       profileService
	Tokens         accessVerifier
	Limiter        middleware.RateLimiterStore
	Metrics        *metrics.HTTPMetrics
	MetricsHandler http.Handler
	DB             pinger
}

type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger logging.Logger

	users    userService
	subs     subscriptionService
	profiles profileService
	tokens   accessVerifier

	limiter        middleware.RateLimiterStore
	metrics        *metrics.HTTPMetrics
	metricsHandler http.Handler
	db             pinger
}

func NewServer(cfg *config.Config, l logging.Logger, d Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = readHeaderTimeout
	e.Server.ReadTimeout = readTimeout
	e.Server.WriteTimeout = writeTimeout

	s := &Server{
		echo:           e,
		config:         cfg,
		logger:         l.With("module", "http_server"),
		users:          d.Users,
		subs:           d.Subscriptions,
		profiles:       d.Profiles,
		tokens:         d.Tokens,
		limiter:        d.Limiter,
		metrics:        d.Metrics,
		metricsHandler: d.MetricsHandler,
		db:             d.DB,
	}

	e.HTTPErrorHandler = s.handleError
	s.registerRoutes()

	return s
}

// ServeHTTP makes Server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.config.EndpointAddrHTTP)

	if err := s.echo.Start(s.config.EndpointAddrHTTP); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-stopped
	return nil
}
