package service

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omegabiochem/WebApp-sub000/internal/dto"
	"github.com/omegabiochem/WebApp-sub000/internal/models"
	"github.com/omegabiochem/WebApp-sub000/internal/workflow"
	appErrors "github.com/omegabiochem/WebApp-sub000/pkg/errors"
)

func standardClientValues() workflow.Values {
	return workflow.Values{
		"client":      "ACME Cosmetics",
		"dateSent":    "2026-10-01",
		"typeOfTest":  "MICRO",
		"sampleType":  "LOTION",
		"formulaNo":   "F-100",
		"description": "Hand lotion",
		"lotNo":       "L-42",
	}
}

func newTestReportService(repo *reportRepoStub, opts ...ReportServiceOption) *ReportService {
	return NewReportService(repo, repo, nil, nil, nil, opts...)
}

func TestReportServiceCreateOpensDraft(t *testing.T) {
	repo := newReportRepoStub()
	svc := newTestReportService(repo)

	report, err := svc.Create(context.Background(), dto.CreateReportRequest{
		Kind:       workflow.KindStandard,
		FormNumber: "STD-1",
		ClientCode: "ACME",
		Values:     workflow.Values{"lotNo": "L-1"},
	}, actor("client-1", workflow.RoleClient))
	require.NoError(t, err)
	require.Equal(t, workflow.StatusDraft, report.Status)
	require.Equal(t, int64(1), report.Version)
	require.Equal(t, "client-1", report.CreatedBy)

	values, err := report.FieldValues()
	require.NoError(t, err)
	require.Equal(t, "L-1", values["lotNo"])
}

func TestReportServiceCreateRejectsNonClientAndForeignFields(t *testing.T) {
	svc := newTestReportService(newReportRepoStub())
	req := dto.CreateReportRequest{Kind: workflow.KindMicroMix, FormNumber: "MM-1", ClientCode: "ACME"}

	_, err := svc.Create(context.Background(), req, actor("fd-1", workflow.RoleFrontDesk))
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	req.Values = workflow.Values{"tbc_result": "<10"}
	_, err = svc.Create(context.Background(), req, actor("client-1", workflow.RoleClient))
	require.ErrorIs(t, err, appErrors.ErrFieldNotWritable)

	_, err = svc.Create(context.Background(), dto.CreateReportRequest{Kind: "CHEM", FormNumber: "X", ClientCode: "ACME"}, actor("client-1", workflow.RoleClient))
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportServicePermissionsForMicroDuringPrelim(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindMicroMix, workflow.StatusUnderPreliminaryTestingReview, "client-1", workflow.Values{}))
	svc := newTestReportService(repo)

	perms, err := svc.Permissions(context.Background(), reportOne, actor("micro-1", workflow.RoleMicro))
	require.NoError(t, err)
	require.Equal(t, workflow.PhasePrelim, perms.Phase)
	require.False(t, perms.Terminal)
	require.Contains(t, perms.Editable, "tbc_result")
	require.NotContains(t, perms.Editable, "lotNo")
	require.ElementsMatch(t, []string{"testSopNo", "dateTested", "preliminaryResults", "preliminaryResultsDate", "tbc_dilution", "tbc_result", "testedBy"}, perms.Required)
	require.ElementsMatch(t, []workflow.Status{
		workflow.StatusPreliminaryTestingOnHold,
		workflow.StatusClientNeedsPreliminaryCorrection,
		workflow.StatusUnderClientPreliminaryReview,
	}, perms.NextStatuses)
	require.False(t, perms.Validation.OK)
	require.Equal(t, "testSopNo", perms.Validation.Focus)

	perms, err = svc.Permissions(context.Background(), reportOne, actor("client-1", workflow.RoleClient))
	require.NoError(t, err)
	require.Empty(t, perms.Editable)
	require.Empty(t, perms.NextStatuses)
}

func TestReportServiceScopesClientsToOwnReports(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusDraft, "client-1", nil))
	svc := newTestReportService(repo)

	_, err := svc.Get(context.Background(), reportOne, actor("client-2", workflow.RoleClient))
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Get(context.Background(), reportTwo, actor("qa-1", workflow.RoleQA))
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Get(context.Background(), reportOne, nil)
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
}

func TestReportServiceRejectsStatusOutsideFamily(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusUnderPreliminaryTestingReview, "client-1", nil))
	svc := newTestReportService(repo)

	_, err := svc.Permissions(context.Background(), reportOne, actor("admin-1", workflow.RoleAdmin))
	require.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestReportServiceValidateClientDraft(t *testing.T) {
	values := standardClientValues()
	delete(values, "description")
	delete(values, "lotNo")
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusDraft, "client-1", values))
	metrics := NewMetricsService()
	svc := newTestReportService(repo, WithReportMetrics(metrics))

	result, err := svc.Validate(context.Background(), reportOne, dto.ValidateReportRequest{}, actor("client-1", workflow.RoleClient))
	require.NoError(t, err)
	require.False(t, result.OK)
	require.Equal(t, map[string]string{"description": workflow.MessageRequired, "lotNo": workflow.MessageRequired}, result.Errors)

	result, err = svc.Validate(context.Background(), reportOne, dto.ValidateReportRequest{
		Values: workflow.Values{"description": "Hand lotion", "lotNo": "L-42"},
	}, actor("client-1", workflow.RoleClient))
	require.NoError(t, err)
	require.True(t, result.OK)
}

func TestReportServiceValidateExplicitPhaseAndOverride(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindMicroMix, workflow.StatusUnderPreliminaryTestingReview, "client-1", workflow.Values{}))
	svc := newTestReportService(repo)
	micro := actor("micro-1", workflow.RoleMicro)

	result, err := svc.Validate(context.Background(), reportOne, dto.ValidateReportRequest{Phase: workflow.PhaseFinal}, micro)
	require.NoError(t, err)
	require.Contains(t, result.Errors, "tmy_result")

	result, err = svc.Validate(context.Background(), reportOne, dto.ValidateReportRequest{Required: []string{}}, micro)
	require.NoError(t, err)
	require.True(t, result.OK)

	_, err = svc.Validate(context.Background(), reportOne, dto.ValidateReportRequest{Phase: "INTERIM"}, micro)
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportServiceUpdateFieldsAppliesWritableSubset(t *testing.T) {
	values := standardClientValues()
	delete(values, "lotNo")
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusDraft, "client-1", values))
	svc := newTestReportService(repo)

	resp, err := svc.UpdateFields(context.Background(), reportOne, dto.UpdateFieldsRequest{
		ExpectedVersion: 1,
		Values:          workflow.Values{"lotNo": "L-7", "tbc_result": "<10"},
	}, actor("client-1", workflow.RoleClient))
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Version)
	require.Equal(t, []string{"lotNo"}, resp.Applied)
	require.Len(t, resp.Rejected, 1)
	require.Equal(t, "tbc_result", resp.Rejected[0].Field)
	require.True(t, resp.Validation.OK)

	stored, err := repo.GetByID(context.Background(), reportOne)
	require.NoError(t, err)
	storedValues, err := stored.FieldValues()
	require.NoError(t, err)
	require.Equal(t, "L-7", storedValues["lotNo"])
	require.NotContains(t, storedValues, "tbc_result")
}

func TestReportServiceUpdateFieldsRejectsWhenNothingWritable(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindMicroMix, workflow.StatusUnderQAReview, "client-1", nil))
	svc := newTestReportService(repo)

	_, err := svc.UpdateFields(context.Background(), reportOne, dto.UpdateFieldsRequest{
		ExpectedVersion: 1,
		Values:          workflow.Values{"tbc_result": "<10"},
	}, actor("qa-1", workflow.RoleQA))
	require.ErrorIs(t, err, appErrors.ErrFieldNotWritable)
	rejected, ok := appErrors.FromError(err).Details.([]workflow.FieldRejection)
	require.True(t, ok)
	require.Equal(t, "tbc_result", rejected[0].Field)
}

func TestReportServiceUpdateFieldsRequiresCompleteValuesUnlessDraft(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusDraft, "client-1", nil))
	svc := newTestReportService(repo)
	client := actor("client-1", workflow.RoleClient)

	_, err := svc.UpdateFields(context.Background(), reportOne, dto.UpdateFieldsRequest{
		ExpectedVersion: 1,
		Values:          workflow.Values{"lotNo": "L-7"},
	}, client)
	require.ErrorIs(t, err, appErrors.ErrRequiredFieldMissing)
	details, ok := appErrors.FromError(err).Details.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "client", details["focus"])

	resp, err := svc.UpdateFields(context.Background(), reportOne, dto.UpdateFieldsRequest{
		ExpectedVersion: 1,
		Values:          workflow.Values{"lotNo": "L-7"},
		Draft:           true,
	}, client)
	require.NoError(t, err)
	require.False(t, resp.Validation.OK)
	require.Equal(t, int64(2), resp.Version)
}

func TestReportServiceRejectsMalformedReportID(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusDraft, "client-1", nil))
	svc := newTestReportService(repo)
	qa := actor("qa-1", workflow.RoleQA)

	for _, id := range []string{"missing", "1", reportOne + "x", "{" + reportOne + "}"} {
		_, err := svc.Get(context.Background(), id, qa)
		require.ErrorIs(t, err, appErrors.ErrNotFound, id)

		_, err = svc.Permissions(context.Background(), id, qa)
		require.ErrorIs(t, err, appErrors.ErrNotFound, id)
	}
}

func TestReportServiceUpdateFieldsRejectsEmptyBatch(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusDraft, "client-1", standardClientValues()))
	svc := newTestReportService(repo)

	_, err := svc.UpdateFields(context.Background(), reportOne, dto.UpdateFieldsRequest{
		ExpectedVersion: 1,
		Values:          workflow.Values{},
	}, actor("client-1", workflow.RoleClient))
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	stored, err := repo.GetByID(context.Background(), reportOne)
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.Version)
}

func TestReportServiceUpdateFieldsStaleVersion(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusDraft, "client-1", standardClientValues()))
	svc := newTestReportService(repo)

	_, err := svc.UpdateFields(context.Background(), reportOne, dto.UpdateFieldsRequest{
		ExpectedVersion: 4,
		Values:          workflow.Values{"lotNo": "L-7"},
	}, actor("client-1", workflow.RoleClient))
	require.ErrorIs(t, err, appErrors.ErrVersionConflict)
}

func TestReportServiceTransitionRecordsHistory(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusDraft, "client-1", standardClientValues()))
	svc := newTestReportService(repo, WithReportMetrics(NewMetricsService()))

	resp, err := svc.Transition(context.Background(), reportOne, dto.TransitionRequest{
		ToStatus:        workflow.StatusSubmittedByClient,
		ExpectedVersion: 1,
		Reason:          "ready",
	}, actor("client-1", workflow.RoleClient))
	require.NoError(t, err)
	require.Equal(t, workflow.StatusDraft, resp.FromStatus)
	require.Equal(t, int64(2), resp.Version)

	history, err := svc.History(context.Background(), reportOne, actor("fd-1", workflow.RoleFrontDesk))
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, workflow.RoleClient, history[0].ActorRole)
	require.Equal(t, "ready", *history[0].Reason)
}

func TestReportServiceTransitionDeniedForRole(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusSubmittedByClient, "client-1", nil))
	svc := newTestReportService(repo)

	_, err := svc.Transition(context.Background(), reportOne, dto.TransitionRequest{
		ToStatus:        workflow.StatusReceivedByFrontDesk,
		ExpectedVersion: 1,
	}, actor("micro-1", workflow.RoleMicro))
	require.ErrorIs(t, err, appErrors.ErrInvalidTransition)

	_, err = svc.Transition(context.Background(), reportOne, dto.TransitionRequest{
		ToStatus:        "SHIPPED",
		ExpectedVersion: 1,
	}, actor("fd-1", workflow.RoleFrontDesk))
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportServiceTransitionFromLockedFails(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindMicroMix, workflow.StatusLocked, "client-1", nil))
	svc := newTestReportService(repo)

	_, err := svc.Transition(context.Background(), reportOne, dto.TransitionRequest{
		ToStatus:        workflow.StatusDraft,
		ExpectedVersion: 1,
	}, actor("client-1", workflow.RoleClient))
	require.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}

func TestReportServiceTransitionWithCorrectionsIsAtomic(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusSubmittedByClient, "client-1", standardClientValues()))
	cacheRepo := newMemoryCacheRepo()
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	cache.Set(context.Background(), correctionListKey(reportOne, 0), []models.Correction{}, 0)
	svc := newTestReportService(repo, WithReportCache(cache))
	frontDesk := actor("fd-1", workflow.RoleFrontDesk)

	_, err := svc.Transition(context.Background(), reportOne, dto.TransitionRequest{
		ToStatus:        workflow.StatusClientNeedsCorrection,
		ExpectedVersion: 1,
		Corrections:     []dto.CorrectionItemRequest{{FieldKey: "nope", Message: "bad"}},
	}, frontDesk)
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Transition(context.Background(), reportOne, dto.TransitionRequest{
		ToStatus:        workflow.StatusClientNeedsCorrection,
		ExpectedVersion: 1,
		Corrections:     []dto.CorrectionItemRequest{{FieldKey: "lotNo", Message: " \t "}},
	}, frontDesk)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Empty(t, repo.corrections)
	require.Empty(t, repo.history)
	require.Equal(t, int64(0), cacheRepo.generation(reportOne))

	resp, err := svc.Transition(context.Background(), reportOne, dto.TransitionRequest{
		ToStatus:        workflow.StatusClientNeedsCorrection,
		ExpectedVersion: 1,
		Reason:          "label mismatch",
		Corrections:     []dto.CorrectionItemRequest{{FieldKey: "lotNo", Message: "illegible"}},
	}, frontDesk)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Corrections)
	require.Len(t, repo.corrections, 1)
	item := repo.corrections[0]
	require.Equal(t, models.CorrectionStatusOpen, item.Status)
	require.Equal(t, workflow.StatusClientNeedsCorrection, *item.TargetStatus)
	require.JSONEq(t, `"L-42"`, string(*item.OldValue))
	require.Equal(t, int64(1), cacheRepo.generation(reportOne))
	require.False(t, cacheRepo.listCached(reportOne))
}

func TestReportServiceConcurrentTransitionsOneWins(t *testing.T) {
	repo := newReportRepoStub(newReport(reportOne, workflow.KindStandard, workflow.StatusSubmittedByClient, "client-1", nil))
	svc := newTestReportService(repo)
	frontDesk := actor("fd-1", workflow.RoleFrontDesk)

	targets := []workflow.Status{workflow.StatusReceivedByFrontDesk, workflow.StatusFrontDeskOnHold}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target workflow.Status) {
			defer wg.Done()
			_, errs[i] = svc.Transition(context.Background(), reportOne, dto.TransitionRequest{ToStatus: target, ExpectedVersion: 1}, frontDesk)
		}(i, target)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case appErrors.FromError(err).Code == appErrors.ErrVersionConflict.Code:
			conflicts++
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, 1, conflicts)
	require.Len(t, repo.history, 1)
}
