package models

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
)

// Report is the stored lab test report the lifecycle engine acts on.
type Report struct {
	ID         string              `db:"id" json:"id"`
	Kind       workflow.ReportKind `db:"kind" json:"kind"`
	FormNumber string              `db:"form_number" json:"formNumber"`
	ClientCode string              `db:"client_code" json:"clientCode"`
	Status     workflow.Status     `db:"status" json:"status"`
	Version    int64               `db:"version" json:"version"`
	Values     types.JSONText      `db:"field_values" json:"values"`
	CreatedBy  string              `db:"created_by" json:"createdBy"`
	CreatedAt  time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time           `db:"updated_at" json:"updatedAt"`
}

// FieldValues decodes the stored values column.
func (r *Report) FieldValues() (workflow.Values, error) {
	values := workflow.Values{}
	if len(r.Values) == 0 {
		return values, nil
	}
	if err := r.Values.Unmarshal(&values); err != nil {
		return nil, fmt.Errorf("decode report %s values: %w", r.ID, err)
	}
	return values, nil
}

// StatusHistory records one committed status change.
type StatusHistory struct {
	ID         string          `db:"id" json:"id"`
	ReportID   string          `db:"report_id" json:"reportId"`
	FromStatus workflow.Status `db:"from_status" json:"fromStatus"`
	ToStatus   workflow.Status `db:"to_status" json:"toStatus"`
	ActorID    string          `db:"actor_id" json:"actorId"`
	ActorRole  workflow.Role   `db:"actor_role" json:"actorRole"`
	Reason     *string         `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}
