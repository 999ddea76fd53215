package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

type MediaService struct {
	host ports.ImageHost
}

func NewMediaService(host ports.ImageHost) *MediaService {
	return &MediaService{host: host}
}

// Upload stores an image on the media host.
func (s *MediaService) Upload(ctx context.Context, filename string, r io.Reader) (*ports.UploadedImage, error) {
	if s.host == nil {
		return nil, apperr.Integration("Error uploading image", errNoImageHost)
	}
	img, err := s.host.Upload(ctx, filename, r)
	if err != nil {
		return nil, apperr.Integration("Error uploading image", err)
	}
	slog.InfoContext(ctx, "image uploaded", "public_id", img.PublicID)
	return img, nil
}
