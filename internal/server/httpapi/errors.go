package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/labstack/echo/v4"
)

const internalMessage = "Something went wrong"

type errorKind struct {
	kind   error
	status int
	label  string
}

// Checked in order when an error carries no *common.Error.
var errorKinds = []errorKind{
	{common.ErrorValidation, http.StatusBadRequest, "validation"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "unauthorized"},
	{common.ErrorNotFound, http.StatusNotFound, "not_found"},
	{common.ErrorAlreadyExists, http.StatusConflict, "conflict"},
	{common.ErrorInternal, http.StatusInternalServerError, "internal"},
}

var internalKind = errorKind{common.ErrorInternal, http.StatusInternalServerError, "internal"}

func lookupKind(err error) (errorKind, bool) {
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return k, true
		}
	}
	return errorKind{}, false
}

func kindForStatus(status int) errorKind {
	for _, k := range errorKinds {
		if k.status == status {
			return k
		}
	}
	if status >= http.StatusInternalServerError {
		return errorKind{common.ErrorInternal, status, "internal"}
	}
	return errorKind{status: status, label: "http"}
}

// classify maps err to a status, client message and metric label. The kind
// of the outermost *common.Error wins over kinds reachable through its cause.
func classify(err error) (errorKind, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		k := kindForStatus(he.Code)
		msg, ok := he.Message.(string)
		if !ok || k.status >= http.StatusInternalServerError {
			msg = http.StatusText(he.Code)
		}
		return k, msg
	}

	var ae *common.Error
	if errors.As(err, &ae) {
		if k, ok := lookupKind(ae.Kind); ok && k.status < http.StatusInternalServerError {
			return k, common.Message(ae, http.StatusText(k.status))
		}
		return internalKind, internalMessage
	}

	if k, ok := lookupKind(err); ok && k.status < http.StatusInternalServerError {
		return k, http.StatusText(k.status)
	}
	return internalKind, internalMessage
}

// handleError is the echo HTTPErrorHandler: every failure leaves the server
// in the same envelope.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	k, msg := classify(err)
	s.logError(c, err, k, msg)
	if s.metrics != nil {
		s.metrics.ObserveError(k.label)
	}

	body := apiError{StatusCode: k.status, Message: msg, Success: false, Errors: []string{}}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(k.status)
	} else {
		werr = c.JSON(k.status, body)
	}
	if werr != nil {
		s.logger.Error(c.Request().Context(), "failed to write error response", "error", werr)
	}
}

func (s *Server) logError(c echo.Context, err error, k errorKind, msg string) {
	ctx := c.Request().Context()
	attrs := []any{
		"error_kind", k.label,
		"message", msg,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", k.status,
	}
	if userID := currentUserID(c); userID != "" {
		attrs = append(attrs, "user_id", userID)
	}

	switch {
	case k.status >= http.StatusInternalServerError:
		s.logger.Error(ctx, "Internal error", append(attrs, "cause", err)...)
	case k.status == http.StatusConflict:
		s.logger.Warn(ctx, "Conflict", attrs...)
	case k.status == http.StatusNotFound:
		s.logger.Info(ctx, "Not found", attrs...)
	default:
		s.logger.Info(ctx, "Request rejected", append(attrs, "cause", err)...)
	}
}
