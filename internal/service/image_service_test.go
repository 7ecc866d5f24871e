package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"webshop/internal/apperr"
	"webshop/internal/mocks"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type imageFixture struct {
	service  *ImageService
	images   *mocks.MockImageRepository
	products *mocks.MockProductRepository
	storage  *mocks.MockObjectStorage
}

func newImageFixture() *imageFixture {
	f := &imageFixture{
		images:   new(mocks.MockImageRepository),
		products: new(mocks.MockProductRepository),
		storage:  new(mocks.MockObjectStorage),
	}
	f.service = NewImageService(f.images, f.products, f.storage, 1024, zerolog.Nop())
	return f
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("First_Image_Becomes_Primary", func(t *testing.T) {
		f := newImageFixture()
		f.products.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil).Once()
		f.images.On("ListByProduct", ctx, productID).Return([]models.Image{}, nil).Once()
		f.storage.On("Upload", ctx, mock.AnythingOfType("string"), "image/png", int64(len(pngHeader))).Return(nil).Once()
		f.images.On("Create", ctx, mock.AnythingOfType("*models.Image")).Return(nil).Once()
		f.storage.On("PresignedURL", ctx, mock.AnythingOfType("string")).Return("http://minio/signed", nil).Once()

		image, err := f.service.Upload(ctx, productID, "../../mug.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), false)
		require.NoError(t, err)
		assert.True(t, image.IsPrimary)
		assert.Equal(t, "mug.png", image.FileName)
		assert.Equal(t, "image/png", image.ContentType)
		assert.True(t, strings.HasPrefix(image.ObjectKey, "products/"+productID.String()+"/"))
		assert.True(t, strings.HasSuffix(image.ObjectKey, ".png"))
		assert.Equal(t, "http://minio/signed", image.URL)
	})

	t.Run("Rejects_Non_Image", func(t *testing.T) {
		f := newImageFixture()
		body := []byte("just some text")
		f.products.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil).Once()

		_, err := f.service.Upload(ctx, productID, "notes.txt", bytes.NewReader(body), int64(len(body)), false)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Too_Large", func(t *testing.T) {
		f := newImageFixture()
		f.products.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil).Once()

		_, err := f.service.Upload(ctx, productID, "big.png", bytes.NewReader(pngHeader), 4096, false)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("Row_Failure_Removes_Object", func(t *testing.T) {
		f := newImageFixture()
		f.products.On("GetByID", ctx, productID).Return(&models.Product{ID: productID}, nil).Once()
		f.images.On("ListByProduct", ctx, productID).Return([]models.Image{{ID: uuid.New()}}, nil).Once()
		f.storage.On("Upload", ctx, mock.AnythingOfType("string"), "image/png", int64(len(pngHeader))).Return(nil).Once()
		f.images.On("Create", ctx, mock.AnythingOfType("*models.Image")).Return(errors.New("insert failed")).Once()
		f.storage.On("Delete", ctx, mock.AnythingOfType("string")).Return(nil).Once()

		_, err := f.service.Upload(ctx, productID, "mug.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), false)
		assert.Error(t, err)
		f.storage.AssertExpectations(t)
	})

	t.Run("Unknown_Product", func(t *testing.T) {
		f := newImageFixture()
		f.products.On("GetByID", ctx, productID).Return(nil, apperr.NotFound("product not found")).Once()

		_, err := f.service.Upload(ctx, productID, "mug.png", bytes.NewReader(pngHeader), int64(len(pngHeader)), false)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestDeleteImage(t *testing.T) {
	ctx := context.Background()
	f := newImageFixture()
	image := &models.Image{ID: uuid.New(), ObjectKey: "products/p/i.png"}
	f.images.On("GetByID", ctx, image.ID).Return(image, nil).Once()
	f.images.On("Delete", ctx, image.ID).Return(nil).Once()
	f.storage.On("Delete", ctx, image.ObjectKey).Return(apperr.Unavailable("storage down")).Once()

	require.NoError(t, f.service.Delete(ctx, image.ID))
	f.storage.AssertExpectations(t)
}

func TestOpenImage(t *testing.T) {
	ctx := context.Background()
	f := newImageFixture()
	image := &models.Image{ID: uuid.New(), ObjectKey: "products/p/i.png", ContentType: "image/png"}
	f.images.On("GetByID", ctx, image.ID).Return(image, nil).Once()
	f.storage.On("Download", ctx, image.ObjectKey).Return(io.NopCloser(bytes.NewReader(pngHeader)), nil).Once()

	body, got, err := f.service.Open(ctx, image.ID)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", got.ContentType)
}
