package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
	appErrors "github.com/omegabiochem/WebApp-sub000/pkg/errors"
)

type reportReader interface {
	GetByID(ctx context.Context, id string) (*models.Report, error)
}

// loadedReport pairs a stored report with its family schema and decoded values.
type loadedReport struct {
	report *models.Report
	schema *workflow.Schema
	values workflow.Values
}

// loadReport fetches a report the actor may see. An id that is not a UUID
// cannot name a stored report and is reported as not found. Stored rows whose
// kind or status fall outside the catalog are reported as internal errors.
func loadReport(ctx context.Context, repo reportReader, catalog *workflow.Catalog, id string, actor *models.JWTClaims) (*loadedReport, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !validID(id) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	report, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if actor.Role == workflow.RoleClient && report.CreatedBy != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another client")
	}
	schema, err := catalog.Schema(report.Kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "report has an unknown kind")
	}
	if !schema.Graph().Contains(report.Status) {
		return nil, appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("report %s has status %s outside the %s workflow", report.ID, report.Status, report.Kind))
	}
	values, err := report.FieldValues()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode report values")
	}
	return &loadedReport{report: report, schema: schema, values: values}, nil
}

// validatePayload runs struct tags and reports each failing field.
func validatePayload(v *validator.Validate, payload interface{}) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Namespace()] = fe.Tag()
	}
	return appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "invalid payload"), details)
}

// validID accepts only the hyphenated 36-character form Postgres stores.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func mergeValues(base, overlay workflow.Values) workflow.Values {
	out := make(workflow.Values, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func encodeValues(values workflow.Values) (types.JSONText, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode report values: %w", err)
	}
	return types.JSONText(raw), nil
}

func optionalString(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

// requiredFieldsError carries the validation result the form uses to focus
// the first missing input.
func requiredFieldsError(result workflow.Result) error {
	return appErrors.WithDetails(appErrors.ErrRequiredFieldMissing, map[string]interface{}{
		"errors": result.Errors,
		"focus":  result.Focus,
	})
}
