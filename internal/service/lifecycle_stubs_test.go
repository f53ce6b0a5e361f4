package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/internal/repository"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
	appErrors "github.com/omegabiochem/WebApp-sub000/pkg/errors"
)

const (
	reportOne = "3f2b8c1e-6a4d-4e7b-9c21-0d5f8a9e1b01"
	reportTwo = "3f2b8c1e-6a4d-4e7b-9c21-0d5f8a9e1b02"
)

type reportRepoStub struct {
	mu          sync.Mutex
	reports     map[string]*models.Report
	history     []models.StatusHistory
	corrections []models.Correction
	statusErr   error
}

func newReportRepoStub(reports ...*models.Report) *reportRepoStub {
	stub := &reportRepoStub{reports: make(map[string]*models.Report)}
	for _, r := range reports {
		stub.reports[r.ID] = r
	}
	return stub
}

func (s *reportRepoStub) Create(ctx context.Context, report *models.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	copy := *report
	s.reports[report.ID] = &copy
	return nil
}

func (s *reportRepoStub) GetByID(ctx context.Context, id string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *r
	return &copy, nil
}

func (s *reportRepoStub) UpdateStatus(ctx context.Context, params repository.UpdateReportStatusParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return 0, s.statusErr
	}
	r, ok := s.reports[params.ID]
	if !ok || r.Version != params.ExpectedVersion || r.Status != params.From {
		return 0, sql.ErrNoRows
	}
	r.Status = params.To
	r.Version++
	r.UpdatedAt = params.UpdatedAt
	s.history = append(s.history, params.History)
	s.corrections = append(s.corrections, params.Corrections...)
	return r.Version, nil
}

func (s *reportRepoStub) UpdateValues(ctx context.Context, params repository.UpdateReportValuesParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[params.ID]
	if !ok || r.Version != params.ExpectedVersion {
		return 0, sql.ErrNoRows
	}
	r.Values = params.Values
	r.Version++
	return r.Version, nil
}

func (s *reportRepoStub) ListByReport(ctx context.Context, reportID string) ([]models.StatusHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.StatusHistory
	for _, h := range s.history {
		if h.ReportID == reportID {
			out = append(out, h)
		}
	}
	return out, nil
}

type correctionRepoStub struct {
	mu        sync.Mutex
	items     []models.Correction
	// afterList runs once the list snapshot is taken, outside the lock.
	afterList func()
}

func (s *correctionRepoStub) CreateBatch(ctx context.Context, items []models.Correction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range items {
		items[i].ID = uuid.NewString()
		s.items = append(s.items, items[i])
	}
	return nil
}

func (s *correctionRepoStub) ListByReport(ctx context.Context, reportID string) ([]models.Correction, error) {
	s.mu.Lock()
	var out []models.Correction
	for _, item := range s.items {
		if item.ReportID == reportID {
			out = append(out, item)
		}
	}
	hook := s.afterList
	s.afterList = nil
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *correctionRepoStub) Resolve(ctx context.Context, params repository.ResolveCorrectionParams) (*models.Correction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		item := &s.items[i]
		if item.ID != params.ID || item.ReportID != params.ReportID {
			continue
		}
		if item.Status != models.CorrectionStatusOpen {
			return nil, repository.ErrCorrectionResolved
		}
		item.Status = models.CorrectionStatusResolved
		resolvedAt := params.ResolvedAt
		role := params.ResolvedByRole
		by := params.ResolvedBy
		item.ResolvedAt = &resolvedAt
		item.ResolvedByRole = &role
		item.ResolvedBy = &by
		item.ResolutionNote = params.Note
		copy := *item
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if raw, ok := m.entries[key]; ok {
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, err
		}
	}
	n++
	raw, err := json.Marshal(n)
	if err != nil {
		return 0, err
	}
	m.entries[key] = raw
	return n, nil
}

// listCached reports whether the current generation of reportID's
// correction list is cached.
func (m *memoryCacheRepo) listCached(reportID string) bool {
	return m.has(correctionListKey(reportID, m.generation(reportID)))
}

func (m *memoryCacheRepo) generation(reportID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	if raw, ok := m.entries[correctionGenerationKey(reportID)]; ok {
		_ = json.Unmarshal(raw, &n)
	}
	return n
}

func (m *memoryCacheRepo) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok
}

func newReport(id string, kind workflow.ReportKind, status workflow.Status, createdBy string, values workflow.Values) *models.Report {
	raw, _ := json.Marshal(values)
	return &models.Report{
		ID:         id,
		Kind:       kind,
		FormNumber: "F-" + id,
		ClientCode: "ACME",
		Status:     status,
		Version:    1,
		Values:     types.JSONText(raw),
		CreatedBy:  createdBy,
	}
}

func actor(id string, role workflow.Role) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: role}
}
