package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/vidtube/internal/server/media"
	"github.com/labstack/echo/v4"
)

// formUpload returns the file sent in field, or nil when the request has
// none. The caller closes it with closeUpload.
func formUpload(c echo.Context, field string, kind media.Kind) (*media.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		var he *echo.HTTPError
		switch {
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			return nil, nil
		case errors.As(err, &tooLarge):
			return nil, echo.ErrStatusRequestEntityTooLarge.WithInternal(err)
		case errors.As(err, &he):
			return nil, he
		default:
			return nil, echo.NewHTTPError(http.StatusBadRequest, "Malformed multipart form").SetInternal(err)
		}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Unreadable upload").SetInternal(err)
	}

	return &media.Upload{
		Kind:        kind,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, nil
}

func closeUpload(u *media.Upload) {
	if u == nil {
		return
	}
	if c, ok := u.Body.(io.Closer); ok {
		_ = c.Close()
	}
}
