package ports

import (
	"context"
	"io"
)

// UploadedImage is a file stored on the media host.
type UploadedImage struct {
	URL      string
	PublicID string
}

type ImageHost interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*UploadedImage, error)
	Delete(ctx context.Context, publicID string) error
	// PublicID derives the host identifier from a hosted URL.
	PublicID(url string) string
}
