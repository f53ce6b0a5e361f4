package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/omegabiochem/WebApp-sub000/internal/dto"
	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/internal/repository"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
	appErrors "github.com/omegabiochem/WebApp-sub000/pkg/errors"
)

type reportStore interface {
	reportReader
	Create(ctx context.Context, report *models.Report) error
	UpdateStatus(ctx context.Context, params repository.UpdateReportStatusParams) (int64, error)
	UpdateValues(ctx context.Context, params repository.UpdateReportValuesParams) (int64, error)
}

type statusHistoryReader interface {
	ListByReport(ctx context.Context, reportID string) ([]models.StatusHistory, error)
}

// ReportService drives reports through their lifecycle: it answers what a
// role may see and edit, validates completeness and commits field saves and
// status transitions under optimistic version checks.
type ReportService struct {
	repo      reportStore
	history   statusHistoryReader
	catalog   *workflow.Catalog
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// ReportServiceOption configures the service.
type ReportServiceOption func(*ReportService)

// WithReportMetrics records transition and validation counters.
func WithReportMetrics(metrics *MetricsService) ReportServiceOption {
	return func(s *ReportService) {
		s.metrics = metrics
	}
}

// WithReportCache lets transitions evict cached correction lists.
func WithReportCache(cache *CacheService) ReportServiceOption {
	return func(s *ReportService) {
		s.cache = cache
	}
}

// WithReportClock overrides the time source.
func WithReportClock(now func() time.Time) ReportServiceOption {
	return func(s *ReportService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewReportService constructs the report lifecycle service.
func NewReportService(repo reportStore, history statusHistoryReader, catalog *workflow.Catalog, validate *validator.Validate, logger *zap.Logger, opts ...ReportServiceOption) *ReportService {
	if catalog == nil {
		catalog = workflow.DefaultCatalog()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ReportService{
		repo:      repo,
		history:   history,
		catalog:   catalog,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create opens a DRAFT report. Initial values pass through the DRAFT edit gate.
func (s *ReportService) Create(ctx context.Context, req dto.CreateReportRequest, actor *models.JWTClaims) (*models.Report, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := validatePayload(s.validator, req); err != nil {
		return nil, err
	}
	kind, err := workflow.ParseReportKind(string(req.Kind))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report kind")
	}
	schema, err := s.catalog.Schema(kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported report kind")
	}
	if !schema.Graph().IsEditable(actor.Role, workflow.StatusDraft) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("%s may not open reports", actor.Role))
	}
	writable, rejected := schema.ClassifyWrites(actor.Role, workflow.StatusDraft, req.Values)
	if len(rejected) > 0 {
		return nil, appErrors.WithDetails(appErrors.ErrFieldNotWritable, rejected)
	}
	encoded, err := encodeValues(writable)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode values")
	}
	report := &models.Report{
		Kind:       kind,
		FormNumber: req.FormNumber,
		ClientCode: req.ClientCode,
		Status:     workflow.StatusDraft,
		Version:    1,
		Values:     encoded,
		CreatedBy:  actor.UserID,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report")
	}
	return report, nil
}

// Get returns a report the actor may see.
func (s *ReportService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Report, error) {
	loaded, err := loadReport(ctx, s.repo, s.catalog, id, actor)
	if err != nil {
		return nil, err
	}
	return loaded.report, nil
}

// Permissions describes what the actor may do with a report in its current status.
func (s *ReportService) Permissions(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ReportPermissions, error) {
	loaded, err := loadReport(ctx, s.repo, s.catalog, id, actor)
	if err != nil {
		return nil, err
	}
	report, schema := loaded.report, loaded.schema
	opts := workflow.RequiredOptions{Status: report.Status}
	phase, _ := schema.Phase(report.Status)
	return &dto.ReportPermissions{
		ReportID:     report.ID,
		Kind:         string(report.Kind),
		Status:       report.Status,
		Phase:        phase,
		Version:      report.Version,
		Terminal:     schema.Graph().IsTerminal(report.Status),
		Editable:     schema.EditableFields(actor.Role, report.Status),
		Required:     schema.ResolveRequired(actor.Role, opts),
		NextStatuses: schema.Graph().NextFor(actor.Role, report.Status),
		Validation:   schema.Validate(actor.Role, loaded.values, opts),
	}, nil
}

// Validate checks required fields for the actor against the stored values
// overlaid with any unsaved values in req. It never fails on missing fields;
// the result carries them.
func (s *ReportService) Validate(ctx context.Context, id string, req dto.ValidateReportRequest, actor *models.JWTClaims) (*workflow.Result, error) {
	loaded, err := loadReport(ctx, s.repo, s.catalog, id, actor)
	if err != nil {
		return nil, err
	}
	if req.Phase != "" && !req.Phase.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown phase %q", req.Phase))
	}
	opts := workflow.RequiredOptions{Override: req.Required, Phase: req.Phase, Status: loaded.report.Status}
	result := loaded.schema.Validate(actor.Role, mergeValues(loaded.values, req.Values), opts)
	if !result.OK {
		s.metrics.RecordValidationFailure(string(loaded.report.Kind), string(actor.Role))
	}
	return &result, nil
}

// UpdateFields applies the writable subset of req.Values. Fields the gate
// refuses are reported back; a batch with nothing writable fails. Unless
// req.Draft is set the merged values must pass validation.
func (s *ReportService) UpdateFields(ctx context.Context, id string, req dto.UpdateFieldsRequest, actor *models.JWTClaims) (*dto.UpdateFieldsResponse, error) {
	if err := validatePayload(s.validator, req); err != nil {
		return nil, err
	}
	loaded, err := loadReport(ctx, s.repo, s.catalog, id, actor)
	if err != nil {
		return nil, err
	}
	report, schema := loaded.report, loaded.schema
	if report.Version != req.ExpectedVersion {
		return nil, appErrors.ErrVersionConflict
	}
	writable, rejected := schema.ClassifyWrites(actor.Role, report.Status, req.Values)
	if len(writable) == 0 {
		return nil, appErrors.WithDetails(appErrors.ErrFieldNotWritable, rejected)
	}
	merged := mergeValues(loaded.values, writable)
	result := schema.Validate(actor.Role, merged, workflow.RequiredOptions{Status: report.Status})
	if !result.OK {
		s.metrics.RecordValidationFailure(string(report.Kind), string(actor.Role))
		if !req.Draft {
			return nil, requiredFieldsError(result)
		}
	}
	encoded, err := encodeValues(merged)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode values")
	}
	version, err := s.repo.UpdateValues(ctx, repository.UpdateReportValuesParams{
		ID:              report.ID,
		ExpectedVersion: req.ExpectedVersion,
		Values:          encoded,
		UpdatedAt:       s.now(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrVersionConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save values")
	}
	applied := make([]string, 0, len(writable))
	for key := range writable {
		applied = append(applied, key)
	}
	sort.Strings(applied)
	if rejected == nil {
		rejected = []workflow.FieldRejection{}
	}
	return &dto.UpdateFieldsResponse{Version: version, Applied: applied, Rejected: rejected, Validation: result}, nil
}

// Transition moves a report to req.ToStatus when the actor's role may set it.
// Correction items in the request are stored in the same transaction.
func (s *ReportService) Transition(ctx context.Context, id string, req dto.TransitionRequest, actor *models.JWTClaims) (*dto.TransitionResponse, error) {
	req.Corrections = trimCorrectionItems(req.Corrections)
	if err := validatePayload(s.validator, req); err != nil {
		return nil, err
	}
	if !req.ToStatus.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.ToStatus))
	}
	loaded, err := loadReport(ctx, s.repo, s.catalog, id, actor)
	if err != nil {
		return nil, err
	}
	report, schema := loaded.report, loaded.schema
	if report.Version != req.ExpectedVersion {
		return nil, appErrors.ErrVersionConflict
	}
	if err := schema.Graph().CheckTransition(actor.Role, report.Status, req.ToStatus); err != nil {
		return nil, err
	}
	now := s.now()
	var corrections []models.Correction
	if len(req.Corrections) > 0 {
		target := req.ToStatus
		corrections, err = buildCorrections(loaded, req.Corrections, &target, req.Reason, actor, now)
		if err != nil {
			return nil, err
		}
	}
	version, err := s.repo.UpdateStatus(ctx, repository.UpdateReportStatusParams{
		ID:              report.ID,
		From:            report.Status,
		To:              req.ToStatus,
		ExpectedVersion: req.ExpectedVersion,
		UpdatedAt:       now,
		History: models.StatusHistory{
			ReportID:   report.ID,
			FromStatus: report.Status,
			ToStatus:   req.ToStatus,
			ActorID:    actor.UserID,
			ActorRole:  actor.Role,
			Reason:     optionalString(req.Reason),
			CreatedAt:  now,
		},
		Corrections: corrections,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrVersionConflict
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change report status")
	}
	if len(corrections) > 0 {
		invalidateCorrectionList(ctx, s.cache, report.ID)
		s.metrics.RecordCorrectionsCreated(string(report.Kind), len(corrections))
	}
	s.metrics.RecordTransition(string(report.Kind), string(report.Status), string(req.ToStatus))
	s.logger.Info("report status changed",
		zap.String("report_id", report.ID),
		zap.String("from", string(report.Status)),
		zap.String("to", string(req.ToStatus)),
		zap.String("role", string(actor.Role)),
		zap.Int64("version", version),
	)
	return &dto.TransitionResponse{
		ReportID:    report.ID,
		FromStatus:  report.Status,
		ToStatus:    req.ToStatus,
		Version:     version,
		Corrections: len(corrections),
	}, nil
}

// History lists a report's committed transitions oldest first.
func (s *ReportService) History(ctx context.Context, id string, actor *models.JWTClaims) ([]models.StatusHistory, error) {
	if _, err := loadReport(ctx, s.repo, s.catalog, id, actor); err != nil {
		return nil, err
	}
	rows, err := s.history.ListByReport(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load status history")
	}
	if rows == nil {
		rows = []models.StatusHistory{}
	}
	return rows, nil
}
