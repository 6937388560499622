package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codetrio/codetrio-web/internal/model"
)

// StudentRepository handles student data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// BulkCreate inserts students in one round trip using COPY.
func (r *StudentRepository) BulkCreate(ctx context.Context, students []model.Student) (int64, error) {
	rows := make([][]any, len(students))
	for i, s := range students {
		rows[i] = []any{s.ClassID, s.FullName, s.Points}
	}
	return r.pool.CopyFrom(ctx,
		pgx.Identifier{"students"},
		[]string{"class_id", "full_name", "points"},
		pgx.CopyFromRows(rows),
	)
}
