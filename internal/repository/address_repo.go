package repository

import (
	"context"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var addressText = errText{
	notFound:  "address not found",
	duplicate: "address already exists",
	reference: "address is used by an order",
}

const addressColumns = `id, user_id, street, house_number, postal_code, city, country, is_default, created_at`

type PostgresAddressRepository struct {
	db beginner
}

func NewAddressRepository(db *pgxpool.Pool) core.AddressRepository {
	return &PostgresAddressRepository{db: db}
}

func scanAddress(row pgx.Row) (models.Address, error) {
	var a models.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Street, &a.HouseNumber, &a.PostalCode, &a.City, &a.Country, &a.IsDefault, &a.CreatedAt)
	return a, err
}

// clearDefault unsets the default flag on the user's other addresses.
func clearDefault(ctx context.Context, q querier, userID, keep uuid.UUID) error {
	_, err := q.Exec(ctx,
		"UPDATE shop.addresses SET is_default = false WHERE user_id = $1 AND id <> $2 AND is_default",
		userID, keep)
	return err
}

func (r *PostgresAddressRepository) Create(ctx context.Context, address *models.Address) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if address.IsDefault {
			if err := clearDefault(ctx, tx, address.UserID, address.ID); err != nil {
				return err
			}
		}
		query := `
			INSERT INTO shop.addresses (id, user_id, street, house_number, postal_code, city, country, is_default)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at`
		return tx.QueryRow(ctx, query,
			address.ID, address.UserID, address.Street, address.HouseNumber, address.PostalCode,
			address.City, address.Country, address.IsDefault).Scan(&address.CreatedAt)
	})
	return translate("addresses.create", err, errText{reference: "user not found"})
}

func (r *PostgresAddressRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	a, err := scanAddress(r.db.QueryRow(ctx, "SELECT "+addressColumns+" FROM shop.addresses WHERE id = $1", id))
	if err != nil {
		return nil, translate("addresses.get", err, addressText)
	}
	return &a, nil
}

func (r *PostgresAddressRepository) Update(ctx context.Context, address *models.Address) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if address.IsDefault {
			if err := clearDefault(ctx, tx, address.UserID, address.ID); err != nil {
				return err
			}
		}
		query := `
			UPDATE shop.addresses
			SET user_id = $1, street = $2, house_number = $3, postal_code = $4, city = $5, country = $6, is_default = $7
			WHERE id = $8`
		tag, err := tx.Exec(ctx, query,
			address.UserID, address.Street, address.HouseNumber, address.PostalCode,
			address.City, address.Country, address.IsDefault, address.ID)
		if err != nil {
			return err
		}
		return requireRow(tag, "addresses.update", addressText)
	})
	return translate("addresses.update", err, errText{notFound: addressText.notFound, reference: "user not found"})
}

func (r *PostgresAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM shop.addresses WHERE id = $1", id)
	if err != nil {
		return translate("addresses.delete", err, addressText)
	}
	return requireRow(tag, "addresses.delete", addressText)
}

func addressWhere(filter models.AddressFilter) *whereClause {
	w := &whereClause{}
	if filter.UserID != nil {
		w.add("user_id = ?", *filter.UserID)
	}
	return w
}

func (r *PostgresAddressRepository) List(ctx context.Context, filter models.AddressFilter, page models.PageRequest) ([]models.Address, error) {
	w := addressWhere(filter)
	query := "SELECT " + addressColumns + " FROM shop.addresses" + w.String() +
		" ORDER BY is_default DESC, created_at DESC LIMIT " + w.next(page.Limit) + " OFFSET " + w.next(page.Offset())
	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, translate("addresses.list", err, addressText)
	}
	addresses, err := collect(rows, scanAddress)
	return addresses, translate("addresses.list", err, addressText)
}

func (r *PostgresAddressRepository) Count(ctx context.Context, filter models.AddressFilter) (int, error) {
	w := addressWhere(filter)
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM shop.addresses"+w.String(), w.args...).Scan(&count)
	return count, translate("addresses.count", err, addressText)
}
