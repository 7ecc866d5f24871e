package repository

import (
	"context"
	"strings"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var productText = errText{
	notFound:  "product not found",
	duplicate: "product already exists",
	reference: "product is referenced by an order or its category does not exist",
}

const productColumns = `id, name, description, price, stock, category_id, is_active, created_at, updated_at`

// productSortColumns whitelists the sortable columns.
var productSortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

type PostgresProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) core.ProductRepository {
	return &PostgresProductRepository{db: db}
}

func scanProduct(row pgx.Row) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostgresProductRepository) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO shop.products (id, name, description, price, stock, category_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Stock, product.CategoryID, product.IsActive,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	return translate("products.create", err, errText{reference: "category does not exist"})
}

func (r *PostgresProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, "SELECT "+productColumns+" FROM shop.products WHERE id = $1", id))
	if err != nil {
		return nil, translate("products.get", err, productText)
	}
	return &p, nil
}

func (r *PostgresProductRepository) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE shop.products
		SET name = $1, description = $2, price = $3, stock = $4, category_id = $5, is_active = $6
		WHERE id = $7
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		product.Name, product.Description, product.Price, product.Stock, product.CategoryID, product.IsActive, product.ID,
	).Scan(&product.UpdatedAt)
	return translate("products.update", err, errText{notFound: productText.notFound, reference: "category does not exist"})
}

// Delete fails with Conflict while order lines still reference the product.
func (r *PostgresProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM shop.products WHERE id = $1", id)
	if err != nil {
		return translate("products.delete", err, errText{reference: "product is referenced by an order"})
	}
	return requireRow(tag, "products.delete", productText)
}

func productWhere(filter models.ProductFilter) *whereClause {
	w := &whereClause{}
	if !filter.IncludeDraft {
		w.add("is_active = true")
	}
	if filter.CategoryID != nil {
		w.add("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		w.add("name ILIKE ?", containsPattern(filter.Search))
	}
	if filter.MinPrice != nil {
		w.add("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		w.add("price <= ?", *filter.MaxPrice)
	}
	return w
}

func productOrderBy(filter models.ProductFilter) string {
	column, ok := productSortColumns[filter.SortBy]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if strings.EqualFold(filter.Order, "desc") {
		direction = "DESC"
	}
	return " ORDER BY " + column + " " + direction + ", id"
}

func (r *PostgresProductRepository) List(ctx context.Context, filter models.ProductFilter, page models.PageRequest) ([]models.Product, error) {
	w := productWhere(filter)
	query := "SELECT " + productColumns + " FROM shop.products" + w.String() + productOrderBy(filter) +
		" LIMIT " + w.next(page.Limit) + " OFFSET " + w.next(page.Offset())
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, translate("products.list", err, productText)
	}
	products, err := collect(rows, scanProduct)
	return products, translate("products.list", err, productText)
}

func (r *PostgresProductRepository) Count(ctx context.Context, filter models.ProductFilter) (int, error) {
	w := productWhere(filter)
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM shop.products"+w.String(), w.args...).Scan(&count)
	return count, translate("products.count", err, productText)
}
