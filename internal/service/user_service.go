package service

import (
	"context"
	"time"

	"webshop/internal/apperr"
	"webshop/internal/core"
	"webshop/internal/models"
	"webshop/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	repo   core.UserRepository
	roles  core.RoleRepository
	tokens core.TokenRepository
}

func NewUserService(repo core.UserRepository, roles core.RoleRepository, tokens core.TokenRepository) *UserService {
	return &UserService{repo: repo, roles: roles, tokens: tokens}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// Get returns a user; customers may only read themselves.
func (s *UserService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error) {
	if !actor.CanAccess(id) {
		return nil, apperr.Forbidden("you can only view your own account").WithOp("users.get")
	}
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, filter models.UserFilter, page models.PageRequest) ([]models.User, *models.PaginationMetadata, error) {
	page = page.Normalize()
	filter.Search = validation.SanitizeString(filter.Search)

	users, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, nil, err
	}

	totalCount, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	return users, models.NewPaginationMetadata(page, totalCount), nil
}

// Create is the administrative account creation. Without roles the account becomes a Customer.
func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	existing, err := s.repo.GetByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("user with this email or username already exists").WithOp("users.create")
	}

	roles := req.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleCustomer}
	}
	for _, name := range roles {
		if _, err := s.roles.GetByName(ctx, name); err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return nil, apperr.Validation("unknown role " + name).WithOp("users.create")
			}
			return nil, err
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("users.create", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    validation.SanitizeString(req.FirstName),
		LastName:     validation.SanitizeString(req.LastName),
		PhoneNumber:  validation.SanitizeString(req.PhoneNumber),
		CompanyID:    req.CompanyID,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user, roles); err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

// Update applies the non-nil fields of req; customers may only update themselves.
func (s *UserService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, req models.UpdateUserRequest) (*models.User, error) {
	if !actor.CanAccess(id) {
		return nil, apperr.Forbidden("you can only update your own account").WithOp("users.update")
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = validation.SanitizeString(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = validation.SanitizeString(*req.LastName)
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = validation.SanitizeString(*req.PhoneNumber)
	}
	if req.CompanyID != nil {
		user.CompanyID = req.CompanyID
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete deactivates the account and revokes its refresh tokens.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, id)
}

// ChangePassword verifies the current password and signs the user out everywhere.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, req models.ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperr.Unauthorized("current password is incorrect").WithOp("users.change_password")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Internal("users.change_password", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(newHash)); err != nil {
		return err
	}
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *UserService) AssignRole(ctx context.Context, userID uuid.UUID, role string) error {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.roles.AssignToUser(ctx, userID, role)
}

func (s *UserService) RemoveRole(ctx context.Context, userID uuid.UUID, role string) error {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.roles.RemoveFromUser(ctx, userID, role)
}
