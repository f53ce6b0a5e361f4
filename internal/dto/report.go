package dto

import (
	"encoding/json"

	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
)

// CreateReportRequest opens a new DRAFT report.
type CreateReportRequest struct {
	Kind       workflow.ReportKind `json:"kind" validate:"required"`
	FormNumber string              `json:"formNumber" validate:"required,max=64"`
	ClientCode string              `json:"clientCode" validate:"required,max=64"`
	Values     workflow.Values     `json:"values"`
}

// TransitionRequest moves a report to a new status. Corrections, when
// present, are recorded atomically with the move.
type TransitionRequest struct {
	ToStatus        workflow.Status         `json:"toStatus" validate:"required"`
	ExpectedVersion int64                   `json:"expectedVersion" validate:"required,min=1"`
	Reason          string                  `json:"reason" validate:"max=1000"`
	Corrections     []CorrectionItemRequest `json:"corrections" validate:"omitempty,dive"`
}

// UpdateFieldsRequest saves field values. Draft skips blocking validation.
type UpdateFieldsRequest struct {
	ExpectedVersion int64           `json:"expectedVersion" validate:"required,min=1"`
	Values          workflow.Values `json:"values" validate:"required,min=1"`
	Draft           bool            `json:"draft"`
}

// ValidateReportRequest runs the validation engine without saving. Values
// are merged over the stored report; Required overrides the resolver.
type ValidateReportRequest struct {
	Values   workflow.Values `json:"values"`
	Phase    workflow.Phase  `json:"phase"`
	Required []string        `json:"required"`
}

// ReportPermissions is everything a form needs to render one report for the caller.
type ReportPermissions struct {
	ReportID     string            `json:"reportId"`
	Kind         string            `json:"kind"`
	Status       workflow.Status   `json:"status"`
	Phase        workflow.Phase    `json:"phase,omitempty"`
	Version      int64             `json:"version"`
	Terminal     bool              `json:"terminal"`
	Editable     []string          `json:"editable"`
	Required     []string          `json:"required"`
	NextStatuses []workflow.Status `json:"nextStatuses"`
	Validation   workflow.Result   `json:"validation"`
}

// UpdateFieldsResponse reports what a field save applied.
type UpdateFieldsResponse struct {
	Version    int64                     `json:"version"`
	Applied    []string                  `json:"applied"`
	Rejected   []workflow.FieldRejection `json:"rejected"`
	Validation workflow.Result           `json:"validation"`
}

// TransitionResponse reports a committed status change.
type TransitionResponse struct {
	ReportID    string          `json:"reportId"`
	FromStatus  workflow.Status `json:"fromStatus"`
	ToStatus    workflow.Status `json:"toStatus"`
	Version     int64           `json:"version"`
	Corrections int             `json:"corrections"`
}

// CorrectionItemRequest flags one field for rework.
type CorrectionItemRequest struct {
	FieldKey string          `json:"fieldKey" validate:"required"`
	Message  string          `json:"message" validate:"required,max=2000"`
	OldValue json.RawMessage `json:"oldValue,omitempty" swaggertype:"object"`
}

// CreateCorrectionsRequest appends a batch of correction items.
type CreateCorrectionsRequest struct {
	Items        []CorrectionItemRequest `json:"items" validate:"required,min=1,dive"`
	TargetStatus *workflow.Status        `json:"targetStatus,omitempty"`
	Reason       string                  `json:"reason" validate:"max=1000"`
}

// ResolveCorrectionRequest closes one correction item.
type ResolveCorrectionRequest struct {
	Note string `json:"note" validate:"max=2000"`
}
