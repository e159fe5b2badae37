package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// QualificationRepository reads the qualification catalog.
type QualificationRepository struct {
	db *sqlx.DB
}

// NewQualificationRepository constructs the repository.
func NewQualificationRepository(db *sqlx.DB) *QualificationRepository {
	return &QualificationRepository{db: db}
}

// List returns all qualifications ordered by priority rank.
func (r *QualificationRepository) List(ctx context.Context) ([]models.Qualification, error) {
	const query = `SELECT id, label, priority_rank, active, created_at, updated_at
FROM qualifications ORDER BY priority_rank ASC, id ASC`
	var qualifications []models.Qualification
	if err := r.db.SelectContext(ctx, &qualifications, query); err != nil {
		return nil, fmt.Errorf("list qualifications: %w", err)
	}
	return qualifications, nil
}
