package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/labstack/echo/v4"
)

func (s *Server) authCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) setTokenCookies(c echo.Context, pair *services.TokenPair) {
	access := s.authCookie(common.AccessTokenCookieName, pair.AccessToken)
	access.MaxAge = int(s.config.AccessTokenValidityDuration.Seconds())
	c.SetCookie(access)

	refresh := s.authCookie(common.RefreshTokenCookieName, pair.RefreshToken)
	refresh.MaxAge = int(s.config.RefreshTokenValidityDuration.Seconds())
	c.SetCookie(refresh)
}

func (s *Server) clearTokenCookies(c echo.Context) {
	for _, name := range []string{common.AccessTokenCookieName, common.RefreshTokenCookieName} {
		ck := s.authCookie(name, "")
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}
