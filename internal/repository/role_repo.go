package repository

import (
	"context"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var roleText = errText{
	notFound:  "role not found",
	duplicate: "role already exists",
	reference: "role is still assigned to users",
}

type PostgresRoleRepository struct {
	db *pgxpool.Pool
}

func NewRoleRepository(db *pgxpool.Pool) core.RoleRepository {
	return &PostgresRoleRepository{db: db}
}

func scanRole(row pgx.Row) (models.Role, error) {
	var role models.Role
	err := row.Scan(&role.ID, &role.Name, &role.CreatedAt)
	return role, err
}

func (r *PostgresRoleRepository) List(ctx context.Context) ([]models.Role, error) {
	rows, err := r.db.Query(ctx, "SELECT id, name, created_at FROM auth.roles ORDER BY name")
	if err != nil {
		return nil, translate("roles.list", err, roleText)
	}
	roles, err := collect(rows, scanRole)
	return roles, translate("roles.list", err, roleText)
}

func (r *PostgresRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role, err := scanRole(r.db.QueryRow(ctx, "SELECT id, name, created_at FROM auth.roles WHERE id = $1", id))
	if err != nil {
		return nil, translate("roles.get", err, roleText)
	}
	return &role, nil
}

func (r *PostgresRoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	role, err := scanRole(r.db.QueryRow(ctx, "SELECT id, name, created_at FROM auth.roles WHERE name = $1", name))
	if err != nil {
		return nil, translate("roles.get_by_name", err, roleText)
	}
	return &role, nil
}

func (r *PostgresRoleRepository) Create(ctx context.Context, role *models.Role) error {
	err := r.db.QueryRow(ctx,
		"INSERT INTO auth.roles (id, name) VALUES ($1, $2) RETURNING created_at",
		role.ID, role.Name).Scan(&role.CreatedAt)
	return translate("roles.create", err, roleText)
}

func (r *PostgresRoleRepository) Update(ctx context.Context, role *models.Role) error {
	tag, err := r.db.Exec(ctx, "UPDATE auth.roles SET name = $1 WHERE id = $2", role.Name, role.ID)
	if err != nil {
		return translate("roles.update", err, roleText)
	}
	return requireRow(tag, "roles.update", roleText)
}

func (r *PostgresRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM auth.roles WHERE id = $1", id)
	if err != nil {
		return translate("roles.delete", err, roleText)
	}
	return requireRow(tag, "roles.delete", roleText)
}

// --- Assignments ---

// AssignToUser is idempotent; an unknown role name yields NotFound.
func (r *PostgresRoleRepository) AssignToUser(ctx context.Context, userID uuid.UUID, roleName string) error {
	return assignRole(ctx, r.db, userID, roleName)
}

func assignRole(ctx context.Context, q querier, userID uuid.UUID, roleName string) error {
	var roleID uuid.UUID
	if err := q.QueryRow(ctx, "SELECT id FROM auth.roles WHERE name = $1", roleName).Scan(&roleID); err != nil {
		return translate("roles.assign", err, roleText)
	}

	_, err := q.Exec(ctx,
		"INSERT INTO auth.user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		userID, roleID)
	return translate("roles.assign", err, errText{reference: "user not found"})
}

func (r *PostgresRoleRepository) RemoveFromUser(ctx context.Context, userID uuid.UUID, roleName string) error {
	query := `
		DELETE FROM auth.user_roles ur
		USING auth.roles r
		WHERE ur.role_id = r.id AND ur.user_id = $1 AND r.name = $2`
	tag, err := r.db.Exec(ctx, query, userID, roleName)
	if err != nil {
		return translate("roles.remove", err, roleText)
	}
	return requireRow(tag, "roles.remove", errText{notFound: "user does not have this role"})
}

func (r *PostgresRoleRepository) RolesForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	query := `
		SELECT r.name FROM auth.user_roles ur
		JOIN auth.roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 ORDER BY r.name`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, translate("roles.for_user", err, roleText)
	}
	names, err := collect(rows, func(row pgx.Row) (string, error) {
		var name string
		err := row.Scan(&name)
		return name, err
	})
	return names, translate("roles.for_user", err, roleText)
}
