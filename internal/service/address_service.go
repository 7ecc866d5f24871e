package service

import (
	"context"

	"webshop/internal/apperr"
	"webshop/internal/core"
	"webshop/internal/models"
	"webshop/internal/validation"

	"github.com/google/uuid"
)

type AddressService struct {
	repo core.AddressRepository
}

func NewAddressService(repo core.AddressRepository) *AddressService {
	return &AddressService{repo: repo}
}

// List shows customers their own addresses; administrators see all and may filter by user.
func (s *AddressService) List(ctx context.Context, actor models.Actor, filter models.AddressFilter, page models.PageRequest) ([]models.Address, *models.PaginationMetadata, error) {
	page = page.Normalize()
	if !actor.IsAdmin() {
		filter.UserID = &actor.UserID
	}

	addresses, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, nil, err
	}
	totalCount, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return addresses, models.NewPaginationMetadata(page, totalCount), nil
}

func (s *AddressService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Address, error) {
	address, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(address.UserID) {
		return nil, apperr.Forbidden("you can only access your own addresses").WithOp("addresses.get")
	}
	return address, nil
}

func (s *AddressService) Create(ctx context.Context, actor models.Actor, req models.AddressRequest) (*models.Address, error) {
	owner, err := addressOwner(actor, actor.UserID, req.UserID)
	if err != nil {
		return nil, err
	}

	address := &models.Address{ID: uuid.New(), UserID: owner}
	applyAddress(address, req)

	if err := s.repo.Create(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, req models.AddressRequest) (*models.Address, error) {
	address, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	owner, err := addressOwner(actor, address.UserID, req.UserID)
	if err != nil {
		return nil, err
	}
	address.UserID = owner
	applyAddress(address, req)

	if err := s.repo.Update(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

func (s *AddressService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// addressOwner resolves who owns the address; only administrators may pick another user.
func addressOwner(actor models.Actor, current uuid.UUID, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == current {
		return current, nil
	}
	if !actor.IsAdmin() {
		return uuid.Nil, apperr.Forbidden("you can only manage your own addresses").WithOp("addresses.owner")
	}
	return *requested, nil
}

func applyAddress(address *models.Address, req models.AddressRequest) {
	address.Street = validation.SanitizeString(req.Street)
	address.HouseNumber = validation.SanitizeString(req.HouseNumber)
	address.PostalCode = validation.SanitizeString(req.PostalCode)
	address.City = validation.SanitizeString(req.City)
	address.Country = validation.SanitizeString(req.Country)
	address.IsDefault = req.IsDefault
}
