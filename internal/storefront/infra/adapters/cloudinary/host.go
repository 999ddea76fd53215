// Package cloudinary stores product images on Cloudinary.
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// uploadTransformation bounds images to 1000x1000 and lets Cloudinary pick
// the quality.
const uploadTransformation = "c_limit,h_1000,w_1000/q_auto"

type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type Host struct {
	api    uploadAPI
	folder string
}

var _ ports.ImageHost = (*Host)(nil)

func NewHost(cloudName, apiKey, apiSecret, folder string) (*Host, error) {
	c, err := cld.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: configure client: %w", err)
	}
	return &Host{api: &c.Upload, folder: folder}, nil
}

func (h *Host) Upload(ctx context.Context, filename string, r io.Reader) (*ports.UploadedImage, error) {
	res, err := h.api.Upload(ctx, r, uploader.UploadParams{
		Folder:         h.folder,
		Transformation: uploadTransformation,
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary: upload %q: %w", filename, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary: upload %q: %s", filename, res.Error.Message)
	}
	return &ports.UploadedImage{URL: res.SecureURL, PublicID: res.PublicID}, nil
}

func (h *Host) Delete(ctx context.Context, publicID string) error {
	res, err := h.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("cloudinary: destroy %q: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("cloudinary: destroy %q: %w", publicID, errors.New(res.Error.Message))
	}
	return nil
}

func (h *Host) PublicID(url string) string {
	return PublicIDFromURL(h.folder, url)
}

// PublicIDFromURL derives "<folder>/<name>" from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/ecommerce/abc.jpg.
// It returns "" for URLs that are not Cloudinary uploads.
func PublicIDFromURL(folder, url string) string {
	if !strings.Contains(url, "/upload/") {
		return ""
	}
	base := path.Base(url)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	if base == "" || base == "/" || base == "." {
		return ""
	}
	return folder + "/" + base
}
