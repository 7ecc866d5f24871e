package repository

import (
	"context"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var companyText = errText{
	notFound:  "company not found",
	duplicate: "a company with this name already exists",
	reference: "company still has users",
}

const companyColumns = `id, name, vat_number, email, phone_number, website, created_at`

type PostgresCompanyRepository struct {
	db *pgxpool.Pool
}

func NewCompanyRepository(db *pgxpool.Pool) core.CompanyRepository {
	return &PostgresCompanyRepository{db: db}
}

func scanCompany(row pgx.Row) (models.Company, error) {
	var c models.Company
	err := row.Scan(&c.ID, &c.Name, &c.VatNumber, &c.Email, &c.PhoneNumber, &c.Website, &c.CreatedAt)
	return c, err
}

func (r *PostgresCompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO shop.companies (id, name, vat_number, email, phone_number, website)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		company.ID, company.Name, company.VatNumber, company.Email, company.PhoneNumber, company.Website,
	).Scan(&company.CreatedAt)
	return translate("companies.create", err, companyText)
}

func (r *PostgresCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	c, err := scanCompany(r.db.QueryRow(ctx, "SELECT "+companyColumns+" FROM shop.companies WHERE id = $1", id))
	if err != nil {
		return nil, translate("companies.get", err, companyText)
	}
	return &c, nil
}

func (r *PostgresCompanyRepository) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE shop.companies
		SET name = $1, vat_number = $2, email = $3, phone_number = $4, website = $5
		WHERE id = $6`
	tag, err := r.db.Exec(ctx, query,
		company.Name, company.VatNumber, company.Email, company.PhoneNumber, company.Website, company.ID)
	if err != nil {
		return translate("companies.update", err, companyText)
	}
	return requireRow(tag, "companies.update", companyText)
}

func (r *PostgresCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM shop.companies WHERE id = $1", id)
	if err != nil {
		return translate("companies.delete", err, companyText)
	}
	return requireRow(tag, "companies.delete", companyText)
}

func (r *PostgresCompanyRepository) List(ctx context.Context, page models.PageRequest) ([]models.Company, error) {
	rows, err := r.db.Query(ctx,
		"SELECT "+companyColumns+" FROM shop.companies ORDER BY name LIMIT $1 OFFSET $2",
		page.Limit, page.Offset())
	if err != nil {
		return nil, translate("companies.list", err, companyText)
	}
	companies, err := collect(rows, scanCompany)
	return companies, translate("companies.list", err, companyText)
}

func (r *PostgresCompanyRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM shop.companies").Scan(&count)
	return count, translate("companies.count", err, companyText)
}
