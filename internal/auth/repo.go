package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helios-energy/helios-admin/internal/shared"
)

// Repository defines the persistence operations needed by the auth service.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetPrincipal(ctx context.Context, userID int64) (*shared.Principal, error)
}

// PgRepository provides PostgreSQL backed persistence.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// FindByEmail loads an account by email.
func (r *PgRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, role_id, is_active, created_at, updated_at
		 FROM users WHERE lower(email) = lower($1)`, email).
		Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.RoleID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetPrincipal resolves a user into a principal with role and permissions.
func (r *PgRepository) GetPrincipal(ctx context.Context, userID int64) (*shared.Principal, error) {
	var p shared.Principal
	err := r.pool.QueryRow(ctx,
		`SELECT u.id, u.name, u.email, r.id, r.slug, r.name
		 FROM users u JOIN roles r ON r.id = u.role_id
		 WHERE u.id = $1 AND u.is_active`, userID).
		Scan(&p.ID, &p.Name, &p.Email, &p.Role.ID, &p.Role.Slug, &p.Role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT p.name FROM permissions p
		 JOIN role_permissions rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1 ORDER BY p.name`, p.Role.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		p.Role.Permissions = append(p.Role.Permissions, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}
