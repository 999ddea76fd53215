package httpx

import (
	"errors"
	"net/http"

	"github.com/jcmexdev/storefront/internal/storefront/core/apperr"
)

const (
	uploadFileLimit = 10 << 20
	uploadField     = "file"
)

// Upload accepts a multipart form with a single image in the "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, uploadFileLimit+(1<<20))
	if err := r.ParseMultipartForm(uploadFileLimit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, apperr.Invalid("file too large"))
			return
		}
		writeError(w, r, apperr.Invalid("No file provided"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		writeError(w, r, apperr.Invalid("No file provided"))
		return
	}
	defer file.Close()
	if header.Size > uploadFileLimit {
		writeError(w, r, apperr.Invalid("file too large"))
		return
	}

	img, err := h.media.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UploadResponse{URL: img.URL, PublicID: img.PublicID})
}
