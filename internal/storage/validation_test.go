package storage

import (
	"bytes"
	"io"
	"testing"

	"webshop/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSniffImage(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{1}, 1024)...)

	contentType, ext, full, err := SniffImage(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, ".png", ext)

	body, err := io.ReadAll(full)
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestSniffImageRejectsOtherTypes(t *testing.T) {
	_, _, _, err := SniffImage(bytes.NewReader([]byte("%PDF-1.7 not an image")))
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, _, _, err = SniffImage(bytes.NewReader(nil))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestValidateSize(t *testing.T) {
	assert.NoError(t, ValidateSize(10, 10))
	assert.True(t, apperr.Is(ValidateSize(0, 10), apperr.KindValidation))
	assert.True(t, apperr.Is(ValidateSize(11, 10), apperr.KindValidation))
}

func TestDisabledStorage(t *testing.T) {
	var s Disabled
	assert.True(t, apperr.Is(s.Upload(t.Context(), "k", "image/png", bytes.NewReader(nil), 0), apperr.KindUnavailable))
	url, err := s.PresignedURL(t.Context(), "k")
	assert.NoError(t, err)
	assert.Empty(t, url)
}
