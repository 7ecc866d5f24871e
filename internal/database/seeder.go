package database

import (
	"context"

	"webshop/internal/apperr"
	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Seeder creates the data a fresh installation needs: the built-in roles and,
// in development, an administrator account.
type Seeder struct {
	roles  core.RoleRepository
	users  core.UserRepository
	create func(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
	logger zerolog.Logger
}

func NewSeeder(roles core.RoleRepository, users core.UserRepository, userService core.UserService, logger zerolog.Logger) *Seeder {
	return &Seeder{roles: roles, users: users, create: userService.Create, logger: logger}
}

// SeedRoles makes sure the Admin and Customer roles exist.
func (s *Seeder) SeedRoles(ctx context.Context) error {
	for _, name := range []string{models.RoleAdmin, models.RoleCustomer} {
		_, err := s.roles.GetByName(ctx, name)
		if err == nil {
			continue
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return err
		}

		if err := s.roles.Create(ctx, &models.Role{ID: uuid.New(), Name: name}); err != nil && !apperr.Is(err, apperr.KindConflict) {
			return err
		}
		s.logger.Info().Str("role", name).Msg("Role created")
	}
	return nil
}

// EnsureAdmin creates an administrator unless a user with that username or email exists.
func (s *Seeder) EnsureAdmin(ctx context.Context, username, email, password string) error {
	existing, err := s.users.GetByEmailOrUsername(ctx, email, username)
	if err != nil {
		return err
	}
	if existing != nil {
		s.logger.Info().Str("username", existing.Username).Msg("Default admin already exists")
		return nil
	}

	user, err := s.create(ctx, models.CreateUserRequest{
		Username: username,
		Email:    email,
		Password: password,
		Roles:    []string{models.RoleAdmin, models.RoleCustomer},
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("username", user.Username).Msg("Default admin created successfully")
	return nil
}
