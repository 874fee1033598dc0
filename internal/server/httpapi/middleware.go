package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/labstack/echo/v4"
)

const userIDKey = "userID"

// accessToken reads the access token from its cookie or, failing that, from
// the Authorization header.
func accessToken(r *http.Request) string {
	if ck, err := r.Cookie(common.AccessTokenCookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := r.Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, common.AuthorizationHeaderPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, common.AuthorizationHeaderPrefix))
	}
	return ""
}

func (s *Server) requireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := s.tokens.VerifyAccess(accessToken(c.Request()))
		if err != nil {
			return err
		}
		c.Set(userIDKey, claims.UserID)
		return next(c)
	}
}

func currentUserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}
