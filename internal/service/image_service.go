package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"webshop/internal/apperr"
	"webshop/internal/core"
	"webshop/internal/models"
	"webshop/internal/storage"
	"webshop/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ImageService struct {
	images   core.ImageRepository
	products core.ProductRepository
	storage  core.ObjectStorage
	maxBytes int64
	logger   zerolog.Logger
}

func NewImageService(images core.ImageRepository, products core.ProductRepository, store core.ObjectStorage, maxBytes int64, logger zerolog.Logger) *ImageService {
	return &ImageService{images: images, products: products, storage: store, maxBytes: maxBytes, logger: logger}
}

// Upload stores the binary under products/{product_id}/{image_id}{ext} and records it.
// The first image of a product always becomes its primary image.
func (s *ImageService) Upload(ctx context.Context, productID uuid.UUID, fileName string, r io.Reader, size int64, isPrimary bool) (*models.Image, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	if err := storage.ValidateSize(size, s.maxBytes); err != nil {
		return nil, err
	}

	contentType, ext, body, err := storage.SniffImage(r)
	if err != nil {
		return nil, err
	}

	existing, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	image := &models.Image{
		ID:          uuid.New(),
		ProductID:   productID,
		FileName:    validation.SanitizeString(filepath.Base(fileName)),
		ContentType: contentType,
		SizeBytes:   size,
		IsPrimary:   isPrimary || len(existing) == 0,
	}
	image.ObjectKey = fmt.Sprintf("products/%s/%s%s", productID, image.ID, ext)

	if err := s.storage.Upload(ctx, image.ObjectKey, contentType, body, size); err != nil {
		return nil, err
	}
	if err := s.images.Create(ctx, image); err != nil {
		if delErr := s.storage.Delete(ctx, image.ObjectKey); delErr != nil {
			s.logger.Warn().Err(delErr).Str("object_key", image.ObjectKey).Msg("Failed to remove orphaned image object")
		}
		return nil, err
	}

	s.withURL(ctx, image)
	return image, nil
}

func (s *ImageService) Get(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.withURL(ctx, image)
	return image, nil
}

func (s *ImageService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Image, error) {
	images, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	for i := range images {
		s.withURL(ctx, &images[i])
	}
	return images, nil
}

// Open returns the stored binary; the caller closes it.
func (s *ImageService) Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *models.Image, error) {
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	body, err := s.storage.Download(ctx, image.ObjectKey)
	if err != nil {
		return nil, nil, err
	}
	return body, image, nil
}

// Delete removes the row first; a binary left behind is logged, not returned.
func (s *ImageService) Delete(ctx context.Context, id uuid.UUID) error {
	image, err := s.images.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.images.Delete(ctx, id); err != nil {
		return err
	}
	s.RemoveObjects(ctx, []models.Image{*image})
	return nil
}

func (s *ImageService) RemoveObjects(ctx context.Context, images []models.Image) {
	for _, image := range images {
		if err := s.storage.Delete(ctx, image.ObjectKey); err != nil && !apperr.Is(err, apperr.KindNotFound) {
			s.logger.Warn().Err(err).Str("object_key", image.ObjectKey).Msg("Failed to remove image object")
		}
	}
}

// withURL attaches a presigned URL. Listings stay usable when presigning fails.
func (s *ImageService) withURL(ctx context.Context, image *models.Image) {
	url, err := s.storage.PresignedURL(ctx, image.ObjectKey)
	if err != nil {
		s.logger.Warn().Err(err).Str("image_id", image.ID.String()).Msg("Failed to presign image URL")
		return
	}
	image.URL = url
}
