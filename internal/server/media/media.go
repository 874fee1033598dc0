// Package media turns uploaded files into durable public URLs.
package media

import (
	"context"
	"errors"
	"io"
)

// Kind groups stored objects by purpose; it becomes the first key segment.
type Kind string

const (
	KindAvatar     Kind = "avatars"
	KindCoverImage Kind = "covers"
)

// ErrNoFile is returned when an upload has no content.
var ErrNoFile = errors.New("no file")

// Upload is a file received from a client, not yet stored.
type Upload struct {
	Kind        Kind
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// Resolver stores an upload and returns the URL it can be fetched from.
type Resolver interface {
	Resolve(ctx context.Context, upload *Upload) (string, error)
}
