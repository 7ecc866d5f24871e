package service

import (
	"context"
	"testing"

	"webshop/internal/apperr"
	"webshop/internal/mocks"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newUserFixture() (*UserService, *mocks.MockUserRepository, *mocks.MockRoleRepository, *mocks.MockTokenRepository) {
	users := new(mocks.MockUserRepository)
	roles := new(mocks.MockRoleRepository)
	tokens := new(mocks.MockTokenRepository)
	return NewUserService(users, roles, tokens), users, roles, tokens
}

func TestUserCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults_To_Customer", func(t *testing.T) {
		service, users, roles, _ := newUserFixture()
		users.On("GetByEmailOrUsername", ctx, "bob@example.com", "bob").Return(nil, nil).Once()
		roles.On("GetByName", ctx, models.RoleCustomer).Return(&models.Role{Name: models.RoleCustomer}, nil).Once()
		users.On("Create", ctx, mock.AnythingOfType("*models.User"), []string{models.RoleCustomer}).Return(nil).Once()

		user, err := service.Create(ctx, models.CreateUserRequest{Username: "bob", Email: "bob@example.com", Password: "Secret123!"})
		require.NoError(t, err)
		assert.Equal(t, []string{models.RoleCustomer}, user.Roles)
		assert.True(t, user.IsActive)
		roles.AssertExpectations(t)
		roles.AssertNotCalled(t, "AssignToUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown_Role", func(t *testing.T) {
		service, users, roles, _ := newUserFixture()
		users.On("GetByEmailOrUsername", ctx, "bob@example.com", "bob").Return(nil, nil).Once()
		roles.On("GetByName", ctx, "Wizard").Return(nil, apperr.NotFound("role not found")).Once()

		_, err := service.Create(ctx, models.CreateUserRequest{
			Username: "bob", Email: "bob@example.com", Password: "Secret123!", Roles: []string{"Wizard"},
		})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserAccess(t *testing.T) {
	ctx := context.Background()
	me := uuid.New()
	customer := models.Actor{UserID: me, Roles: []string{models.RoleCustomer}}

	t.Run("Customer_Reads_Self", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		users.On("GetByID", ctx, me).Return(&models.User{ID: me}, nil).Once()

		user, err := service.Get(ctx, customer, me)
		require.NoError(t, err)
		assert.Equal(t, me, user.ID)
	})

	t.Run("Customer_Cannot_Read_Others", func(t *testing.T) {
		service, users, _, _ := newUserFixture()

		_, err := service.Get(ctx, customer, uuid.New())
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("Update_Applies_Set_Fields", func(t *testing.T) {
		service, users, _, _ := newUserFixture()
		users.On("GetByID", ctx, me).Return(&models.User{ID: me, Username: "old", Email: "old@example.com"}, nil).Once()
		users.On("Update", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

		first := "Grace"
		user, err := service.Update(ctx, customer, me, models.UpdateUserRequest{FirstName: &first})
		require.NoError(t, err)
		assert.Equal(t, "Grace", user.FirstName)
		assert.Equal(t, "old", user.Username)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Success_Revokes_Sessions", func(t *testing.T) {
		service, users, _, tokens := newUserFixture()
		users.On("GetByID", ctx, id).Return(&models.User{ID: id, PasswordHash: hashPassword(t, "Old12345!")}, nil).Once()
		users.On("UpdatePassword", ctx, id, mock.AnythingOfType("string")).Return(nil).Once()
		tokens.On("RevokeAllForUser", ctx, id).Return(nil).Once()

		err := service.ChangePassword(ctx, id, models.ChangePasswordRequest{CurrentPassword: "Old12345!", NewPassword: "New12345!"})
		require.NoError(t, err)
		tokens.AssertExpectations(t)
	})

	t.Run("Wrong_Current_Password", func(t *testing.T) {
		service, users, _, tokens := newUserFixture()
		users.On("GetByID", ctx, id).Return(&models.User{ID: id, PasswordHash: hashPassword(t, "Old12345!")}, nil).Once()

		err := service.ChangePassword(ctx, id, models.ChangePasswordRequest{CurrentPassword: "Nope1234!", NewPassword: "New12345!"})
		assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
		users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
		tokens.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
	})
}

func TestUserDeleteDeactivates(t *testing.T) {
	ctx := context.Background()
	service, users, _, tokens := newUserFixture()
	id := uuid.New()
	users.On("Deactivate", ctx, id).Return(nil).Once()
	tokens.On("RevokeAllForUser", ctx, id).Return(nil).Once()

	require.NoError(t, service.Delete(ctx, id))
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestGetUsersPagination(t *testing.T) {
	ctx := context.Background()
	service, users, _, _ := newUserFixture()
	page := models.PageRequest{Page: 2, Limit: 10}
	users.On("List", ctx, models.UserFilter{}, page).Return([]models.User{{Username: "a"}}, nil).Once()
	users.On("Count", ctx, models.UserFilter{}).Return(25, nil).Once()

	list, meta, err := service.List(ctx, models.UserFilter{}, page)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasPrev)
}

func TestRoleServiceProtectsBuiltins(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockRoleRepository)
	service := NewRoleService(repo)
	adminID := uuid.New()
	repo.On("GetByID", ctx, adminID).Return(&models.Role{ID: adminID, Name: models.RoleAdmin}, nil)

	err := service.Delete(ctx, adminID)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = service.Update(ctx, adminID, models.RoleRequest{Name: "Root"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
