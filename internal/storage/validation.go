package storage

import (
	"bytes"
	"io"
	"net/http"

	"webshop/internal/apperr"
)

// SniffLength is the number of leading bytes inspected to detect the content type.
const SniffLength = 512

// AllowedImageTypes maps the accepted MIME types to the extension used in object keys.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SniffImage detects the content type of r from its first bytes and returns it
// together with a reader that still yields the complete stream.
func SniffImage(r io.Reader) (contentType string, ext string, full io.Reader, err error) {
	head := make([]byte, SniffLength)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", "", nil, apperr.Wrap(apperr.KindBadRequest, "could not read upload", err)
	}
	head = head[:n]
	if n == 0 {
		return "", "", nil, apperr.Validation("file is empty")
	}

	contentType = http.DetectContentType(head)
	ext, ok := AllowedImageTypes[contentType]
	if !ok {
		return "", "", nil, apperr.Validation("unsupported image type " + contentType + "; allowed are jpeg, png, gif and webp")
	}
	return contentType, ext, io.MultiReader(bytes.NewReader(head), r), nil
}

// ValidateSize checks that size is positive and within max.
func ValidateSize(size, max int64) error {
	if size <= 0 {
		return apperr.Validation("file size must be greater than 0")
	}
	if size > max {
		return apperr.Validation("file exceeds the maximum allowed size")
	}
	return nil
}
