package repository

import (
	"context"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var categoryText = errText{
	notFound:  "category not found",
	duplicate: "a category with this name already exists",
	reference: "category still has products",
}

type PostgresCategoryRepository struct {
	db *pgxpool.Pool
}

func NewCategoryRepository(db *pgxpool.Pool) core.CategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

func scanCategory(row pgx.Row) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	return c, err
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	err := r.db.QueryRow(ctx,
		"INSERT INTO shop.categories (id, name, description) VALUES ($1, $2, $3) RETURNING created_at",
		category.ID, category.Name, category.Description).Scan(&category.CreatedAt)
	return translate("categories.create", err, categoryText)
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx,
		"SELECT id, name, description, created_at FROM shop.categories WHERE id = $1", id))
	if err != nil {
		return nil, translate("categories.get", err, categoryText)
	}
	return &c, nil
}

func (r *PostgresCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE shop.categories SET name = $1, description = $2 WHERE id = $3",
		category.Name, category.Description, category.ID)
	if err != nil {
		return translate("categories.update", err, categoryText)
	}
	return requireRow(tag, "categories.update", categoryText)
}

// Delete fails with Conflict while products still reference the category.
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM shop.categories WHERE id = $1", id)
	if err != nil {
		return translate("categories.delete", err, categoryText)
	}
	return requireRow(tag, "categories.delete", categoryText)
}

func (r *PostgresCategoryRepository) List(ctx context.Context, page models.PageRequest) ([]models.Category, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, name, description, created_at FROM shop.categories ORDER BY name LIMIT $1 OFFSET $2",
		page.Limit, page.Offset())
	if err != nil {
		return nil, translate("categories.list", err, categoryText)
	}
	categories, err := collect(rows, scanCategory)
	return categories, translate("categories.list", err, categoryText)
}

func (r *PostgresCategoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM shop.categories").Scan(&count)
	return count, translate("categories.count", err, categoryText)
}
