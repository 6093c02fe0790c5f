package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxUploadSize is the largest accepted upload (5 MB).
const MaxUploadSize int64 = 5 << 20

var (
	ErrUploadTooLarge = errors.New("file exceeds the 5 MB limit")
	ErrNotAnImage     = errors.New("file is not a supported image")
	ErrMissingFile    = errors.New("file is missing")
)

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Upload is an image read from a multipart request.
type Upload struct {
	Data        []byte
	ContentType string
	Extension   string
}

func (u Upload) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

// ReadImageUpload reads the named multipart field, enforcing MaxUploadSize and an image content type.
func ReadImageUpload(w http.ResponseWriter, r *http.Request, field string) (Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+1024)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return Upload{}, ErrUploadTooLarge
		}
		return Upload{}, fmt.Errorf("%w: %v", ErrMissingFile, err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return Upload{}, ErrMissingFile
	}
	defer file.Close()

	if header.Size > MaxUploadSize {
		return Upload{}, ErrUploadTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize+1))
	if err != nil {
		return Upload{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > MaxUploadSize {
		return Upload{}, ErrUploadTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return Upload{}, ErrNotAnImage
	}
	return Upload{Data: data, ContentType: contentType, Extension: ext}, nil
}
