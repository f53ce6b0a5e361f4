package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omegabiochem/WebApp-sub000/internal/models"
)

// StatusHistoryRepository reads the report status audit trail.
type StatusHistoryRepository struct {
	db *sqlx.DB
}

// NewStatusHistoryRepository constructs the repository.
func NewStatusHistoryRepository(db *sqlx.DB) *StatusHistoryRepository {
	return &StatusHistoryRepository{db: db}
}

// ListByReport returns a report's transitions oldest first.
func (r *StatusHistoryRepository) ListByReport(ctx context.Context, reportID string) ([]models.StatusHistory, error) {
	const query = `SELECT id, report_id, from_status, to_status, actor_id, actor_role, reason, created_at
	FROM report_status_history WHERE report_id = $1 ORDER BY created_at ASC`
	var rows []models.StatusHistory
	if err := r.db.SelectContext(ctx, &rows, query, reportID); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return rows, nil
}

func insertStatusHistory(ctx context.Context, tx *sqlx.Tx, entry *models.StatusHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	const query = `INSERT INTO report_status_history (id, report_id, from_status, to_status, actor_id, actor_role, reason, created_at)
	VALUES (:id, :report_id, :from_status, :to_status, :actor_id, :actor_role, :reason, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}
	return nil
}
