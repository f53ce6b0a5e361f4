package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
)

const reportColumns = `id, kind, form_number, client_code, status, version, field_values, created_by, created_at, updated_at`

// ReportRepository persists reports with optimistic version checks.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report at version 1.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = report.CreatedAt
	if report.Version == 0 {
		report.Version = 1
	}
	if len(report.Values) == 0 {
		report.Values = types.JSONText(`{}`)
	}
	const query = `INSERT INTO reports (` + reportColumns + `)
	VALUES (:id, :kind, :form_number, :client_code, :status, :version, :field_values, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// GetByID fetches a report by identifier.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateReportStatusParams describes one guarded status change.
type UpdateReportStatusParams struct {
	ID              string
	From            workflow.Status
	To              workflow.Status
	ExpectedVersion int64
	UpdatedAt       time.Time
	History         models.StatusHistory
	Corrections     []models.Correction
}

// UpdateStatus moves a report to a new status when its version and status
// still match, recording history and any correction batch in the same
// transaction. sql.ErrNoRows signals a stale version.
func (r *ReportRepository) UpdateStatus(ctx context.Context, params UpdateReportStatusParams) (version int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin report status transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE reports SET status = $1, version = version + 1, updated_at = $2
	WHERE id = $3 AND version = $4 AND status = $5 RETURNING version`
	if err = tx.GetContext(ctx, &version, query, params.To, params.UpdatedAt, params.ID, params.ExpectedVersion, params.From); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("update report status: %w", err)
	}
	if err = insertStatusHistory(ctx, tx, &params.History); err != nil {
		return 0, err
	}
	if err = insertCorrections(ctx, tx, params.Corrections); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit report status: %w", err)
	}
	return version, nil
}

// UpdateReportValuesParams describes one guarded field save.
type UpdateReportValuesParams struct {
	ID              string
	ExpectedVersion int64
	Values          types.JSONText
	UpdatedAt       time.Time
}

// UpdateValues replaces the stored values when the version still matches.
// sql.ErrNoRows signals a stale version.
func (r *ReportRepository) UpdateValues(ctx context.Context, params UpdateReportValuesParams) (int64, error) {
	const query = `UPDATE reports SET field_values = $1, version = version + 1, updated_at = $2
	WHERE id = $3 AND version = $4 RETURNING version`
	var version int64
	if err := r.db.GetContext(ctx, &version, query, params.Values, params.UpdatedAt, params.ID, params.ExpectedVersion); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("update report values: %w", err)
	}
	return version, nil
}
