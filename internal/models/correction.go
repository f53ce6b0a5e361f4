package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
)

// CorrectionStatus captures whether a flagged field still awaits rework.
type CorrectionStatus string

const (
	CorrectionStatusOpen     CorrectionStatus = "OPEN"
	CorrectionStatusResolved CorrectionStatus = "RESOLVED"
)

// Correction is one field-scoped rework request. Rows are never deleted.
type Correction struct {
	ID              string           `db:"id" json:"id"`
	ReportID        string           `db:"report_id" json:"reportId"`
	FieldKey        string           `db:"field_key" json:"fieldKey"`
	Message         string           `db:"message" json:"message"`
	Status          CorrectionStatus `db:"status" json:"status"`
	RequestedByRole workflow.Role    `db:"requested_by_role" json:"requestedByRole"`
	RequestedBy     string           `db:"requested_by" json:"requestedBy"`
	OldValue        *types.JSONText  `db:"old_value" json:"oldValue,omitempty"`
	TargetStatus    *workflow.Status `db:"target_status" json:"targetStatus,omitempty"`
	Reason          *string          `db:"reason" json:"reason,omitempty"`
	Position        int              `db:"position" json:"-"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	ResolvedAt      *time.Time       `db:"resolved_at" json:"resolvedAt,omitempty"`
	ResolvedByRole  *workflow.Role   `db:"resolved_by_role" json:"resolvedByRole,omitempty"`
	ResolvedBy      *string          `db:"resolved_by" json:"resolvedBy,omitempty"`
	ResolutionNote  *string          `db:"resolution_note" json:"resolutionNote,omitempty"`
}
