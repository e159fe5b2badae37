package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/shift-coverage-api/internal/models"
)

// DemandRuleRepository reads staffing demand rules.
type DemandRuleRepository struct {
	db *sqlx.DB
}

// NewDemandRuleRepository constructs the repository.
func NewDemandRuleRepository(db *sqlx.DB) *DemandRuleRepository {
	return &DemandRuleRepository{db: db}
}

// ListForRange returns the unit's rules whose validity window intersects [from, to].
func (r *DemandRuleRepository) ListForRange(ctx context.Context, unitID string, from, to time.Time) ([]models.DemandRule, error) {
	const query = `SELECT id, unit_id, qualification_id, required_count, valid_from, valid_to, continuous,
       weekday_pattern, shift_restriction, start_shift, end_shift
FROM demand_rules
WHERE unit_id = $1 AND valid_from <= $3 AND (valid_to IS NULL OR valid_to >= $2)
ORDER BY valid_from ASC, id ASC`
	var rules []models.DemandRule
	if err := r.db.SelectContext(ctx, &rules, query, unitID, from, to); err != nil {
		return nil, fmt.Errorf("list demand rules: %w", err)
	}
	return rules, nil
}
