package service

import (
	"context"
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

type catalogFixture struct {
	service    *CatalogService
	categories *mocks.MockCategoryRepository
	products   *mocks.MockProductRepository
	images     *mocks.MockImageService
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		categories: new(mocks.MockCategoryRepository),
		products:   new(mocks.MockProductRepository),
		images:     new(mocks.MockImageService),
	}
	f.service = NewCatalogService(f.categories, f.products, f.images, zerolog.Nop())
	return f
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	categoryID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		f := newCatalogFixture()
		f.categories.On("GetByID", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil).Once()
		f.products.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		product, err := f.service.CreateProduct(ctx, models.ProductRequest{
			Name:        "<b>Mug</b>",
			Description: "Large",
			Price:       12.5,
			Stock:       4,
			CategoryID:  categoryID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Mug", product.Name)
		assert.True(t, product.IsActive)
		assert.Equal(t, 12.5, product.Price)
	})

	t.Run("Draft", func(t *testing.T) {
		f := newCatalogFixture()
		inactive := false
		f.categories.On("GetByID", ctx, categoryID).Return(&models.Category{ID: categoryID}, nil).Once()
		f.products.On("Create", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

		product, err := f.service.CreateProduct(ctx, models.ProductRequest{Name: "Mug", Price: 1, CategoryID: categoryID, IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, product.IsActive)
	})

	t.Run("Unknown_Category", func(t *testing.T) {
		f := newCatalogFixture()
		f.categories.On("GetByID", ctx, categoryID).Return(nil, apperr.NotFound("category not found")).Once()

		_, err := f.service.CreateProduct(ctx, models.ProductRequest{Name: "Mug", Price: 1, CategoryID: categoryID})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestListProductsPriceRange(t *testing.T) {
	f := newCatalogFixture()
	low, high := 50.0, 10.0

	_, _, err := f.service.ListProducts(context.Background(), models.ProductFilter{MinPrice: &low, MaxPrice: &high}, models.PageRequest{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	f.products.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProductAttachesImages(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	id := uuid.New()
	images := []models.Image{{ID: uuid.New(), ProductID: id, IsPrimary: true}}
	f.products.On("GetByID", ctx, id).Return(&models.Product{ID: id}, nil).Once()
	f.images.On("ListByProduct", ctx, id).Return(images, nil).Once()

	product, err := f.service.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, images, product.Images)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes_Image_Objects", func(t *testing.T) {
		f := newCatalogFixture()
		id := uuid.New()
		images := []models.Image{{ID: uuid.New(), ObjectKey: "products/a.png"}}
		f.images.On("ListByProduct", ctx, id).Return(images, nil).Once()
		f.products.On("Delete", ctx, id).Return(nil).Once()
		f.images.On("RemoveObjects", ctx, images).Return().Once()

		require.NoError(t, f.service.DeleteProduct(ctx, id))
		f.images.AssertExpectations(t)
	})

	t.Run("Referenced_By_Orders", func(t *testing.T) {
		f := newCatalogFixture()
		id := uuid.New()
		f.images.On("ListByProduct", ctx, id).Return([]models.Image{}, nil).Once()
		f.products.On("Delete", ctx, id).Return(apperr.Conflict("product is still referenced")).Once()

		err := f.service.DeleteProduct(ctx, id)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		f.images.AssertNotCalled(t, "RemoveObjects", mock.Anything, mock.Anything)
	})
}

func TestUpdateCategorySanitizes(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	id := uuid.New()
	f.categories.On("GetByID", ctx, id).Return(&models.Category{ID: id, Name: "Old"}, nil).Once()
	f.categories.On("Update", ctx, mock.AnythingOfType("*models.Category")).Return(nil).Once()

	category, err := f.service.UpdateCategory(ctx, id, models.CategoryRequest{Name: "<script>x</script>Kitchen "})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", category.Name)
}
