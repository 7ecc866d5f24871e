package repository

import (
	"context"
	"errors"
	"time"

	"webshop/internal/core"
	"webshop/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var userText = errText{
	notFound:  "user not found",
	duplicate: "username or email already exists",
	reference: "company does not exist",
}

const userColumns = `
	u.id, u.username, u.email, u.first_name, u.last_name, u.phone_number, u.company_id,
	u.password_hash, u.is_active, u.created_at, u.updated_at, u.last_login,
	ARRAY(SELECT r.name FROM auth.user_roles ur JOIN auth.roles r ON r.id = ur.role_id
	      WHERE ur.user_id = u.id ORDER BY r.name)`

type PostgresUserRepository struct {
	db beginner
}

func NewUserRepository(db *pgxpool.Pool) core.UserRepository {
	return &PostgresUserRepository{db: db}
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.PhoneNumber, &user.CompanyID,
		&user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt, &user.LastLogin,
		&user.Roles)
	return user, err
}

// --- Auth & Basic ---

// Create inserts the user and its role assignments in one transaction.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User, roles []string) error {
	query := `
		INSERT INTO auth.users (id, username, email, first_name, last_name, phone_number, company_id,
		                        password_hash, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query,
			user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.PhoneNumber, user.CompanyID,
			user.PasswordHash, user.IsActive, user.CreatedAt, user.UpdatedAt); err != nil {
			return err
		}
		for _, name := range roles {
			if err := assignRole(ctx, tx, user.ID, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return translate("users.create", err, userText)
	}
	user.Roles = roles
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM auth.users u WHERE u.id = $1 AND u.is_active = true`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("users.get", err, userText)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	query := `SELECT` + userColumns + `
		FROM auth.users u WHERE (u.username = $1 OR u.email = $2) AND u.is_active = true
		LIMIT 1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translate("users.get_by_login", err, userText)
	}
	return &user, nil
}

// --- User Management ---

func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE auth.users
		SET username = $1, email = $2, first_name = $3, last_name = $4, phone_number = $5, company_id = $6
		WHERE id = $7 AND is_active = true`
	tag, err := r.db.Exec(ctx, query,
		user.Username, user.Email, user.FirstName, user.LastName, user.PhoneNumber, user.CompanyID, user.ID)
	if err != nil {
		return translate("users.update", err, userText)
	}
	return requireRow(tag, "users.update", userText)
}

func (r *PostgresUserRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := r.db.Exec(ctx, "UPDATE auth.users SET password_hash = $1 WHERE id = $2 AND is_active = true", hash, userID)
	if err != nil {
		return translate("users.update_password", err, userText)
	}
	return requireRow(tag, "users.update_password", userText)
}

func (r *PostgresUserRepository) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, "UPDATE auth.users SET last_login = $1 WHERE id = $2", time.Now().UTC(), userID)
	return translate("users.update_last_login", err, userText)
}

// Deactivate soft-deletes the account; orders keep referencing it.
func (r *PostgresUserRepository) Deactivate(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, "UPDATE auth.users SET is_active = false WHERE id = $1 AND is_active = true", userID)
	if err != nil {
		return translate("users.deactivate", err, userText)
	}
	return requireRow(tag, "users.deactivate", userText)
}

func userWhere(filter models.UserFilter) *whereClause {
	w := &whereClause{}
	w.add("u.is_active = true")
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		w.add("(u.username ILIKE ? OR u.email ILIKE ?)", pattern, pattern)
	}
	if filter.CompanyID != nil {
		w.add("u.company_id = ?", *filter.CompanyID)
	}
	return w
}

func (r *PostgresUserRepository) List(ctx context.Context, filter models.UserFilter, page models.PageRequest) ([]models.User, error) {
	w := userWhere(filter)
	query := `SELECT` + userColumns + ` FROM auth.users u` + w.String() +
		` ORDER BY u.created_at DESC LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset())

	rows, err := r.db.Query(ctx, query, w.args...)
	if err != nil {
		return nil, translate("users.list", err, userText)
	}
	users, err := collect(rows, scanUser)
	return users, translate("users.list", err, userText)
}

func (r *PostgresUserRepository) Count(ctx context.Context, filter models.UserFilter) (int, error) {
	w := userWhere(filter)
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM auth.users u"+w.String(), w.args...).Scan(&count)
	return count, translate("users.count", err, userText)
}
