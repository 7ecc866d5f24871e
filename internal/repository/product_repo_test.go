package repository

import (
	"testing"

	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestProductWhere(t *testing.T) {
	categoryID := uuid.New()
	minPrice, maxPrice := 5.0, 20.0

	w := productWhere(models.ProductFilter{
		CategoryID: &categoryID,
		Search:     "mug",
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
	})

	assert.Equal(t,
		" WHERE is_active = true AND category_id = $1 AND name ILIKE $2 AND price >= $3 AND price <= $4",
		w.String())
	assert.Equal(t, []any{categoryID, "%mug%", 5.0, 20.0}, w.args)

	drafts := productWhere(models.ProductFilter{IncludeDraft: true})
	assert.Equal(t, "", drafts.String())

	literal := productWhere(models.ProductFilter{IncludeDraft: true, Search: `100%_off\`})
	assert.Equal(t, " WHERE name ILIKE $1", literal.String())
	assert.Equal(t, []any{`%100\%\_off\\%`}, literal.args)
}

func TestUserWhereEscapesSearch(t *testing.T) {
	w := userWhere(models.UserFilter{Search: "a_b"})
	assert.Equal(t, " WHERE u.is_active = true AND (u.username ILIKE $1 OR u.email ILIKE $2)", w.String())
	assert.Equal(t, []any{`%a\_b%`, `%a\_b%`}, w.args)
}

func TestProductOrderBy(t *testing.T) {
	assert.Equal(t, " ORDER BY name ASC, id", productOrderBy(models.ProductFilter{}))
	assert.Equal(t, " ORDER BY price DESC, id", productOrderBy(models.ProductFilter{SortBy: "price", Order: "DESC"}))
	assert.Equal(t, " ORDER BY name ASC, id", productOrderBy(models.ProductFilter{SortBy: "price; DROP TABLE shop.products"}))
}

func TestOrderWhere(t *testing.T) {
	userID := uuid.New()
	status := models.OrderPaid

	w := orderWhere(models.OrderFilter{UserID: &userID, Status: &status})
	assert.Equal(t, " WHERE user_id = $1 AND status = $2", w.String())
	assert.Equal(t, []any{userID, "Paid"}, w.args)
}
