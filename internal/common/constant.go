// Package common contains shared constants and sentinel errors used across
// vidtube components.
package common

// Cookie names carrying the token pair between the browser and the server.
const (
	AccessTokenCookieName  = "accessToken"
	RefreshTokenCookieName = "refreshToken"
)

// AuthorizationHeaderPrefix precedes the access token in the Authorization
// header when no cookie is sent.
const AuthorizationHeaderPrefix = "Bearer "
