package service

import (
	"context"
	"math"

	"webshop/internal/apperr"
	"webshop/internal/core"
	"webshop/internal/models"
	"webshop/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CatalogService struct {
	categories core.CategoryRepository
	products   core.ProductRepository
	images     core.ImageService
	logger     zerolog.Logger
}

func NewCatalogService(categories core.CategoryRepository, products core.ProductRepository, images core.ImageService, logger zerolog.Logger) *CatalogService {
	return &CatalogService{categories: categories, products: products, images: images, logger: logger}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// --- Categories ---

func (s *CatalogService) ListCategories(ctx context.Context, page models.PageRequest) ([]models.Category, *models.PaginationMetadata, error) {
	page = page.Normalize()
	categories, err := s.categories.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	totalCount, err := s.categories.Count(ctx)
	if err != nil {
		return nil, nil, err
	}
	return categories, models.NewPaginationMetadata(page, totalCount), nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	category := &models.Category{
		ID:          uuid.New(),
		Name:        validation.SanitizeString(req.Name),
		Description: validation.SanitizeString(req.Description),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req models.CategoryRequest) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = validation.SanitizeString(req.Name)
	category.Description = validation.SanitizeString(req.Description)
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory fails with Conflict while the category still has products.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}

// --- Products ---

func (s *CatalogService) ListProducts(ctx context.Context, filter models.ProductFilter, page models.PageRequest) ([]models.Product, *models.PaginationMetadata, error) {
	page = page.Normalize()
	filter.Search = validation.SanitizeString(filter.Search)
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, nil, apperr.Validation("min_price must not exceed max_price").WithOp("products.list")
	}

	products, err := s.products.List(ctx, filter, page)
	if err != nil {
		return nil, nil, err
	}
	totalCount, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return products, models.NewPaginationMetadata(page, totalCount), nil
}

// GetProduct returns the product with its images.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.images.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Images = images
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req models.ProductRequest) (*models.Product, error) {
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	product := &models.Product{ID: uuid.New(), IsActive: true}
	applyProduct(product, req)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req models.ProductRequest) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	applyProduct(product, req)
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes the product and the stored binaries of its images.
// Products that appear on orders cannot be deleted; deactivate them instead.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	images, err := s.images.ListByProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	// Image rows cascade with the product; only the binaries are left.
	s.images.RemoveObjects(ctx, images)
	s.logger.Info().Str("product_id", id.String()).Int("images", len(images)).Msg("Product deleted")
	return nil
}

func (s *CatalogService) requireCategory(ctx context.Context, id uuid.UUID) error {
	_, err := s.categories.GetByID(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.Validation("category does not exist").WithOp("products.category")
	}
	return err
}

func applyProduct(product *models.Product, req models.ProductRequest) {
	product.Name = validation.SanitizeString(req.Name)
	product.Description = validation.SanitizeString(req.Description)
	product.Price = roundMoney(req.Price)
	product.Stock = req.Stock
	product.CategoryID = req.CategoryID
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
}
