package repository

import (
	"context"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var imageText = errText{
	notFound:  "image not found",
	duplicate: "image already exists",
	reference: "product not found",
}

const imageColumns = `id, product_id, file_name, object_key, content_type, size_bytes, is_primary, created_at`

type PostgresImageRepository struct {
	db beginner
}

func NewImageRepository(db *pgxpool.Pool) core.ImageRepository {
	return &PostgresImageRepository{db: db}
}

func scanImage(row pgx.Row) (models.Image, error) {
	var img models.Image
	err := row.Scan(&img.ID, &img.ProductID, &img.FileName, &img.ObjectKey, &img.ContentType, &img.SizeBytes, &img.IsPrimary, &img.CreatedAt)
	return img, err
}

func (r *PostgresImageRepository) Create(ctx context.Context, image *models.Image) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if image.IsPrimary {
			if _, err := tx.Exec(ctx,
				"UPDATE shop.images SET is_primary = false WHERE product_id = $1 AND is_primary", image.ProductID); err != nil {
				return err
			}
		}
		query := `
			INSERT INTO shop.images (id, product_id, file_name, object_key, content_type, size_bytes, is_primary)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at`
		return tx.QueryRow(ctx, query,
			image.ID, image.ProductID, image.FileName, image.ObjectKey, image.ContentType, image.SizeBytes, image.IsPrimary,
		).Scan(&image.CreatedAt)
	})
	return translate("images.create", err, imageText)
}

func (r *PostgresImageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	img, err := scanImage(r.db.QueryRow(ctx, "SELECT "+imageColumns+" FROM shop.images WHERE id = $1", id))
	if err != nil {
		return nil, translate("images.get", err, imageText)
	}
	return &img, nil
}

func (r *PostgresImageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Image, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+imageColumns+" FROM shop.images WHERE product_id = $1 ORDER BY is_primary DESC, created_at",
		productID)
	if err != nil {
		return nil, translate("images.list", err, imageText)
	}
	images, err := collect(rows, scanImage)
	return images, translate("images.list", err, imageText)
}

// Delete removes the image. When it was the primary one, the product's oldest
// remaining image takes its place.
func (r *PostgresImageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var productID uuid.UUID
		var wasPrimary bool
		if err := tx.QueryRow(ctx,
			"DELETE FROM shop.images WHERE id = $1 RETURNING product_id, is_primary", id,
		).Scan(&productID, &wasPrimary); err != nil {
			return err
		}
		if !wasPrimary {
			return nil
		}
		_, err := tx.Exec(ctx, `
			UPDATE shop.images SET is_primary = true
			WHERE id = (SELECT id FROM shop.images WHERE product_id = $1 ORDER BY created_at, id LIMIT 1)`,
			productID)
		return err
	})
	return translate("images.delete", err, imageText)
}
