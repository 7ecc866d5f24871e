package service

import (
	"context"

	"webshop/internal/apperr"
	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
)

type RoleService struct {
	repo core.RoleRepository
}

func NewRoleService(repo core.RoleRepository) *RoleService {
	return &RoleService{repo: repo}
}

func isBuiltinRole(name string) bool {
	return name == models.RoleAdmin || name == models.RoleCustomer
}

func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	return s.repo.List(ctx)
}

func (s *RoleService) Get(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *RoleService) Create(ctx context.Context, req models.RoleRequest) (*models.Role, error) {
	role := &models.Role{ID: uuid.New(), Name: req.Name}
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// Update renames a role. The built-in roles keep their names.
func (s *RoleService) Update(ctx context.Context, id uuid.UUID, req models.RoleRequest) (*models.Role, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if isBuiltinRole(role.Name) && role.Name != req.Name {
		return nil, apperr.Conflict("built-in role " + role.Name + " cannot be renamed").WithOp("roles.update")
	}

	role.Name = req.Name
	if err := s.repo.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if isBuiltinRole(role.Name) {
		return apperr.Conflict("built-in role " + role.Name + " cannot be deleted").WithOp("roles.delete")
	}
	return s.repo.Delete(ctx, id)
}
