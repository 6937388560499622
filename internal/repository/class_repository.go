package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codetrio/codetrio-web/internal/model"
)

// ClassRepository handles class data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// ListClassSummaries retrieves every class with its student count. The
// connection is trusted, so the access token is not used.
func (r *ClassRepository) ListClassSummaries(ctx context.Context, _ string) ([]model.ClassSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, c.description, c.language, COUNT(s.id)
		 FROM classes c
		 LEFT JOIN students s ON s.class_id = c.id
		 GROUP BY c.id
		 ORDER BY c.created_at, c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.ClassSummary{}
	for rows.Next() {
		var c model.ClassSummary
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Language, &c.StudentCount); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, c *model.Class) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, description, language)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		c.Name, c.Description, c.Language,
	).Scan(&c.ID)
}

// FindByName retrieves a class id by its name.
func (r *ClassRepository) FindByName(ctx context.Context, name string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `SELECT id FROM classes WHERE name = $1`, name).Scan(&id)
	return id, err
}
