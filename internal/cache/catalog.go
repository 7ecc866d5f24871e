// Package cache puts a read-through sturdyc cache in front of the catalog
// repositories. Writes go straight to the database and evict the affected keys.
package cache

import (
	"context"
	"fmt"
	"time"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/viccon/sturdyc"
)

const (
	capacity           = 10000
	numShards          = 10
	evictionPercentage = 10
)

// DefaultTTL bounds how stale a cached catalog read may get.
const DefaultTTL = 30 * time.Second

// CategoryRepository caches single categories by ID.
type CategoryRepository struct {
	core.CategoryRepository
	byID *sturdyc.Client[*models.Category]
}

func NewCategoryRepository(next core.CategoryRepository, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		CategoryRepository: next,
		byID:               sturdyc.New[*models.Category](capacity, numShards, ttl, evictionPercentage),
	}
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := r.byID.GetOrFetch(ctx, categoryKey(id), func(ctx context.Context) (*models.Category, error) {
		return r.CategoryRepository.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	c := *category
	return &c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	defer r.byID.Delete(categoryKey(category.ID))
	return r.CategoryRepository.Update(ctx, category)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.byID.Delete(categoryKey(id))
	return r.CategoryRepository.Delete(ctx, id)
}

// ProductRepository caches single products by ID. Stock in a cached product
// may lag; order placement reads locked rows and never consults the cache.
type ProductRepository struct {
	core.ProductRepository
	byID *sturdyc.Client[*models.Product]
}

func NewProductRepository(next core.ProductRepository, ttl time.Duration) *ProductRepository {
	return &ProductRepository{
		ProductRepository: next,
		byID:              sturdyc.New[*models.Product](capacity, numShards, ttl, evictionPercentage),
	}
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := r.byID.GetOrFetch(ctx, productKey(id), func(ctx context.Context) (*models.Product, error) {
		return r.ProductRepository.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	p := *product
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	defer r.byID.Delete(productKey(product.ID))
	return r.ProductRepository.Update(ctx, product)
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.byID.Delete(productKey(id))
	return r.ProductRepository.Delete(ctx, id)
}

// Invalidate evicts a product whose stock changed outside this repository.
func (r *ProductRepository) Invalidate(id uuid.UUID) {
	r.byID.Delete(productKey(id))
}

func categoryKey(id uuid.UUID) string { return fmt.Sprintf("category:%s", id) }
func productKey(id uuid.UUID) string  { return fmt.Sprintf("product:%s", id) }
