package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codetrio/codetrio-web/internal/model"
)

// RoleRepository handles user role data access.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// UserRole returns the role of userID. Admin wins over any other row; a
// user with no rows is a student.
func (r *RoleRepository) UserRole(ctx context.Context, _ string, userID string) (model.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT role::text FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	role := model.RoleStudent
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", err
		}
		if model.ParseRole(name) == model.RoleAdmin {
			role = model.RoleAdmin
		}
	}
	return role, rows.Err()
}

// Grant gives userID the role. Granting an existing role is a no-op.
func (r *RoleRepository) Grant(ctx context.Context, userID string, role model.Role) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_roles (user_id, role)
		 VALUES ($1, $2::app_role)
		 ON CONFLICT (user_id, role) DO NOTHING`,
		userID, string(role),
	)
	return err
}

// FindUserIDByEmail looks up an account in the auth schema.
func (r *RoleRepository) FindUserIDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `SELECT id::text FROM auth.users WHERE lower(email) = lower($1)`, email).Scan(&id)
	return id, err
}
