package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/omegabiochem/WebApp-sub000/internal/dto"
	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/internal/repository"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
	appErrors "github.com/omegabiochem/WebApp-sub000/pkg/errors"
)

type correctionStore interface {
	CreateBatch(ctx context.Context, items []models.Correction) error
	ListByReport(ctx context.Context, reportID string) ([]models.Correction, error)
	Resolve(ctx context.Context, params repository.ResolveCorrectionParams) (*models.Correction, error)
}

// CorrectionService maintains the per-report correction ledger.
type CorrectionService struct {
	repo      correctionStore
	reports   reportReader
	catalog   *workflow.Catalog
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
}

// CorrectionServiceOption configures the service.
type CorrectionServiceOption func(*CorrectionService)

// WithCorrectionCache enables caching of correction lists.
func WithCorrectionCache(cache *CacheService, ttl time.Duration) CorrectionServiceOption {
	return func(s *CorrectionService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithCorrectionMetrics records ledger counters.
func WithCorrectionMetrics(metrics *MetricsService) CorrectionServiceOption {
	return func(s *CorrectionService) {
		s.metrics = metrics
	}
}

// WithCorrectionClock overrides the time source.
func WithCorrectionClock(now func() time.Time) CorrectionServiceOption {
	return func(s *CorrectionService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewCorrectionService constructs the ledger service.
func NewCorrectionService(repo correctionStore, reports reportReader, catalog *workflow.Catalog, validate *validator.Validate, logger *zap.Logger, opts ...CorrectionServiceOption) *CorrectionService {
	if catalog == nil {
		catalog = workflow.DefaultCatalog()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CorrectionService{
		repo:      repo,
		reports:   reports,
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

// Create appends a batch of OPEN items. Either every item is stored or none.
func (s *CorrectionService) Create(ctx context.Context, reportID string, req dto.CreateCorrectionsRequest, actor *models.JWTClaims) ([]models.Correction, error) {
	req.Items = trimCorrectionItems(req.Items)
	if err := validatePayload(s.validator, req); err != nil {
		return nil, err
	}
	loaded, err := loadReport(ctx, s.reports, s.catalog, reportID, actor)
	if err != nil {
		return nil, err
	}
	items, err := buildCorrections(loaded, req.Items, req.TargetStatus, req.Reason, actor, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateBatch(ctx, items); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record corrections")
	}
	s.invalidate(ctx, reportID)
	s.metrics.RecordCorrectionsCreated(string(loaded.report.Kind), len(items))
	s.logger.Info("corrections recorded",
		zap.String("report_id", reportID),
		zap.Int("items", len(items)),
		zap.String("role", string(actor.Role)),
	)
	return items, nil
}

// List returns every item of a report in creation order.
func (s *CorrectionService) List(ctx context.Context, reportID string, actor *models.JWTClaims) ([]models.Correction, error) {
	if _, err := loadReport(ctx, s.reports, s.catalog, reportID, actor); err != nil {
		return nil, err
	}
	// The generation is read before the ledger so a list loaded before a
	// concurrent write lands under a key that write has already retired.
	gen, cacheable := s.cache.Generation(ctx, correctionGenerationKey(reportID))
	key := correctionListKey(reportID, gen)
	var cached []models.Correction
	if cacheable && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	items, err := s.repo.ListByReport(ctx, reportID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list corrections")
	}
	if items == nil {
		items = []models.Correction{}
	}
	if cacheable {
		s.cache.Set(ctx, key, items, s.cacheTTL)
	}
	return items, nil
}

// Resolve moves one OPEN item to RESOLVED. Of concurrent callers exactly one
// succeeds; the rest see ErrCorrectionAlreadyResolved.
func (s *CorrectionService) Resolve(ctx context.Context, reportID, correctionID string, req dto.ResolveCorrectionRequest, actor *models.JWTClaims) (*models.Correction, error) {
	if err := validatePayload(s.validator, req); err != nil {
		return nil, err
	}
	loaded, err := loadReport(ctx, s.reports, s.catalog, reportID, actor)
	if err != nil {
		return nil, err
	}
	if !validID(correctionID) {
		return nil, appErrors.ErrCorrectionNotFound
	}
	item, err := s.repo.Resolve(ctx, repository.ResolveCorrectionParams{
		ReportID:       reportID,
		ID:             correctionID,
		ResolvedBy:     actor.UserID,
		ResolvedByRole: actor.Role,
		ResolvedAt:     s.now(),
		Note:           optionalString(req.Note),
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.ErrCorrectionNotFound
		case errors.Is(err, repository.ErrCorrectionResolved):
			return nil, appErrors.ErrCorrectionAlreadyResolved
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve correction")
		}
	}
	s.invalidate(ctx, reportID)
	s.metrics.RecordCorrectionResolved(string(loaded.report.Kind))
	return item, nil
}

func (s *CorrectionService) invalidate(ctx context.Context, reportID string) {
	invalidateCorrectionList(ctx, s.cache, reportID)
}

// invalidateCorrectionList retires every cached list of reportID. Call it
// only after the write has committed.
func invalidateCorrectionList(ctx context.Context, cache *CacheService, reportID string) {
	cache.Bump(ctx, correctionGenerationKey(reportID))
}

func correctionGenerationKey(reportID string) string {
	return "lims:corrections:" + reportID + ":gen"
}

func correctionListKey(reportID string, gen int64) string {
	return fmt.Sprintf("lims:corrections:%s:v%d", reportID, gen)
}

// trimCorrectionItems strips surrounding whitespace from keys and messages so
// a blank message fails the required check.
func trimCorrectionItems(items []dto.CorrectionItemRequest) []dto.CorrectionItemRequest {
	if items == nil {
		return nil
	}
	out := make([]dto.CorrectionItemRequest, len(items))
	for i, item := range items {
		item.FieldKey = strings.TrimSpace(item.FieldKey)
		item.Message = strings.TrimSpace(item.Message)
		out[i] = item
	}
	return out
}

// buildCorrections turns request items into ledger rows. Every item must name
// a field the report's schema knows, and a target status must belong to the
// report's family.
func buildCorrections(loaded *loadedReport, reqItems []dto.CorrectionItemRequest, target *workflow.Status, reason string, actor *models.JWTClaims, now time.Time) ([]models.Correction, error) {
	if target != nil && !loaded.schema.Graph().Contains(*target) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("target status %s is not part of the %s workflow", *target, loaded.report.Kind))
	}
	items := make([]models.Correction, 0, len(reqItems))
	for i, in := range reqItems {
		if _, ok := loaded.schema.Field(in.FieldKey); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown field %q", in.FieldKey))
		}
		oldValue, err := correctionOldValue(in, loaded.values)
		if err != nil {
			return nil, err
		}
		items = append(items, models.Correction{
			ReportID:        loaded.report.ID,
			FieldKey:        in.FieldKey,
			Message:         in.Message,
			Status:          models.CorrectionStatusOpen,
			RequestedByRole: actor.Role,
			RequestedBy:     actor.UserID,
			OldValue:        oldValue,
			TargetStatus:    target,
			Reason:          optionalString(reason),
			Position:        i,
			CreatedAt:       now,
		})
	}
	return items, nil
}

func correctionOldValue(in dto.CorrectionItemRequest, current workflow.Values) (*types.JSONText, error) {
	if len(in.OldValue) > 0 {
		if !json.Valid(in.OldValue) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("oldValue for %s is not valid JSON", in.FieldKey))
		}
		v := types.JSONText(append([]byte(nil), in.OldValue...))
		return &v, nil
	}
	value, ok := current[in.FieldKey]
	if !ok {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot current value")
	}
	v := types.JSONText(raw)
	return &v, nil
}
