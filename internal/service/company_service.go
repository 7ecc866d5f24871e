package service

import (
	"context"

	"webshop/internal/core"
	"webshop/internal/models"
	"webshop/internal/validation"

	"github.com/google/uuid"
)

type CompanyService struct {
	repo core.CompanyRepository
}

func NewCompanyService(repo core.CompanyRepository) *CompanyService {
	return &CompanyService{repo: repo}
}

func (s *CompanyService) List(ctx context.Context, page models.PageRequest) ([]models.Company, *models.PaginationMetadata, error) {
	page = page.Normalize()
	companies, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, nil, err
	}
	totalCount, err := s.repo.Count(ctx)
	if err != nil {
		return nil, nil, err
	}
	return companies, models.NewPaginationMetadata(page, totalCount), nil
}

func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CompanyService) Create(ctx context.Context, req models.CompanyRequest) (*models.Company, error) {
	company := &models.Company{ID: uuid.New()}
	applyCompany(company, req)
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, req models.CompanyRequest) (*models.Company, error) {
	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCompany(company, req)
	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// Delete fails with Conflict while users belong to the company.
func (s *CompanyService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func applyCompany(company *models.Company, req models.CompanyRequest) {
	company.Name = validation.SanitizeString(req.Name)
	company.VatNumber = validation.SanitizeString(req.VatNumber)
	company.Email = req.Email
	company.PhoneNumber = validation.SanitizeString(req.PhoneNumber)
	company.Website = req.Website
}
