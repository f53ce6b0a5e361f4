package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
)

// ErrCorrectionResolved is returned when a resolve finds the item no longer OPEN.
var ErrCorrectionResolved = errors.New("correction already resolved")

const correctionColumns = `id, report_id, field_key, message, status, requested_by_role, requested_by, old_value,
	target_status, reason, position, created_at, resolved_at, resolved_by_role, resolved_by, resolution_note`

// CorrectionRepository persists the append-only correction ledger.
type CorrectionRepository struct {
	db *sqlx.DB
}

// NewCorrectionRepository constructs the repository.
func NewCorrectionRepository(db *sqlx.DB) *CorrectionRepository {
	return &CorrectionRepository{db: db}
}

// CreateBatch inserts every item or none.
func (r *CorrectionRepository) CreateBatch(ctx context.Context, items []models.Correction) (err error) {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin correction batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = insertCorrections(ctx, tx, items); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit correction batch: %w", err)
	}
	return nil
}

// ListByReport returns every item of a report in creation order.
func (r *CorrectionRepository) ListByReport(ctx context.Context, reportID string) ([]models.Correction, error) {
	const query = `SELECT ` + correctionColumns + ` FROM report_corrections
	WHERE report_id = $1 ORDER BY created_at ASC, position ASC`
	var items []models.Correction
	if err := r.db.SelectContext(ctx, &items, query, reportID); err != nil {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	return items, nil
}

// ResolveCorrectionParams stamps resolution metadata on one item.
type ResolveCorrectionParams struct {
	ReportID       string
	ID             string
	ResolvedBy     string
	ResolvedByRole workflow.Role
	ResolvedAt     time.Time
	Note           *string
}

// Resolve flips an OPEN item to RESOLVED. It returns sql.ErrNoRows when the
// item does not belong to the report and ErrCorrectionResolved when another
// caller resolved it first.
func (r *CorrectionRepository) Resolve(ctx context.Context, params ResolveCorrectionParams) (*models.Correction, error) {
	query := fmt.Sprintf(`UPDATE report_corrections
	SET status = '%s', resolved_at = $1, resolved_by_role = $2, resolved_by = $3, resolution_note = $4
	WHERE id = $5 AND report_id = $6 AND status = '%s'
	RETURNING %s`, models.CorrectionStatusResolved, models.CorrectionStatusOpen, correctionColumns)
	var item models.Correction
	err := r.db.GetContext(ctx, &item, query, params.ResolvedAt, params.ResolvedByRole, params.ResolvedBy, params.Note, params.ID, params.ReportID)
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resolve correction: %w", err)
	}
	var status models.CorrectionStatus
	const lookup = `SELECT status FROM report_corrections WHERE id = $1 AND report_id = $2`
	if err := r.db.GetContext(ctx, &status, lookup, params.ID, params.ReportID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lookup correction: %w", err)
	}
	return nil, ErrCorrectionResolved
}

func insertCorrections(ctx context.Context, tx *sqlx.Tx, items []models.Correction) error {
	const query = `INSERT INTO report_corrections (` + correctionColumns + `)
	VALUES (:id, :report_id, :field_key, :message, :status, :requested_by_role, :requested_by, :old_value,
	:target_status, :reason, :position, :created_at, :resolved_at, :resolved_by_role, :resolved_by, :resolution_note)`
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Status == "" {
			item.Status = models.CorrectionStatusOpen
		}
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert correction %s: %w", item.FieldKey, err)
		}
	}
	return nil
}
