package workflow

import (
	"fmt"
	"strings"
)

// Status is a report's position in its approval lifecycle.
type Status string

// Statuses shared by both report families.
const (
	StatusDraft                Status = "DRAFT"
	StatusSubmittedByClient    Status = "SUBMITTED_BY_CLIENT"
	StatusReceivedByFrontDesk  Status = "RECEIVED_BY_FRONTDESK"
	StatusFrontDeskOnHold      Status = "FRONTDESK_ON_HOLD"
	StatusFrontDeskRejected    Status = "FRONTDESK_REJECTED"
	StatusUnderQAReview        Status = "UNDER_QA_REVIEW"
	StatusQANeedsCorrection    Status = "QA_NEEDS_CORRECTION"
	StatusQARejected           Status = "QA_REJECTED"
	StatusUnderAdminReview     Status = "UNDER_ADMIN_REVIEW"
	StatusAdminNeedsCorrection Status = "ADMIN_NEEDS_CORRECTION"
	StatusAdminRejected        Status = "ADMIN_REJECTED"
	StatusLocked               Status = "LOCKED"
)

// Statuses used only by the one-phase standard form.
const (
	StatusClientNeedsCorrection Status = "CLIENT_NEEDS_CORRECTION"
	StatusUnderTestingReview    Status = "UNDER_TESTING_REVIEW"
	StatusTestingOnHold         Status = "TESTING_ON_HOLD"
	StatusTestingRejected       Status = "TESTING_REJECTED"
	StatusApproved              Status = "APPROVED"
)

// Statuses used only by the two-phase microbiology form.
const (
	StatusUnderPreliminaryTestingReview     Status = "UNDER_PRELIMINARY_TESTING_REVIEW"
	StatusPreliminaryTestingOnHold          Status = "PRELIMINARY_TESTING_ON_HOLD"
	StatusClientNeedsPreliminaryCorrection  Status = "CLIENT_NEEDS_PRELIMINARY_CORRECTION"
	StatusPreliminaryResubmissionByClient   Status = "PRELIMINARY_RESUBMISSION_BY_CLIENT"
	StatusUnderClientPreliminaryReview      Status = "UNDER_CLIENT_PRELIMINARY_REVIEW"
	StatusPreliminaryTestingNeedsCorrection Status = "PRELIMINARY_TESTING_NEEDS_CORRECTION"
	StatusPreliminaryResubmissionByTesting  Status = "PRELIMINARY_RESUBMISSION_BY_TESTING"
	StatusPreliminaryApproved               Status = "PRELIMINARY_APPROVED"
	StatusUnderFinalTestingReview           Status = "UNDER_FINAL_TESTING_REVIEW"
	StatusFinalTestingOnHold                Status = "FINAL_TESTING_ON_HOLD"
	StatusClientNeedsFinalCorrection        Status = "CLIENT_NEEDS_FINAL_CORRECTION"
	StatusFinalResubmissionByClient         Status = "FINAL_RESUBMISSION_BY_CLIENT"
	StatusUnderClientFinalReview            Status = "UNDER_CLIENT_FINAL_REVIEW"
	StatusFinalTestingNeedsCorrection       Status = "FINAL_TESTING_NEEDS_CORRECTION"
	StatusFinalResubmissionByTesting        Status = "FINAL_RESUBMISSION_BY_TESTING"
	StatusFinalApproved                     Status = "FINAL_APPROVED"
)

// Valid reports whether s belongs to the enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmittedByClient, StatusReceivedByFrontDesk, StatusFrontDeskOnHold,
		StatusFrontDeskRejected, StatusUnderQAReview, StatusQANeedsCorrection, StatusQARejected,
		StatusUnderAdminReview, StatusAdminNeedsCorrection, StatusAdminRejected, StatusLocked,
		StatusClientNeedsCorrection, StatusUnderTestingReview, StatusTestingOnHold,
		StatusTestingRejected, StatusApproved,
		StatusUnderPreliminaryTestingReview, StatusPreliminaryTestingOnHold,
		StatusClientNeedsPreliminaryCorrection, StatusPreliminaryResubmissionByClient,
		StatusUnderClientPreliminaryReview, StatusPreliminaryTestingNeedsCorrection,
		StatusPreliminaryResubmissionByTesting, StatusPreliminaryApproved,
		StatusUnderFinalTestingReview, StatusFinalTestingOnHold, StatusClientNeedsFinalCorrection,
		StatusFinalResubmissionByClient, StatusUnderClientFinalReview,
		StatusFinalTestingNeedsCorrection, StatusFinalResubmissionByTesting, StatusFinalApproved:
		return true
	default:
		return false
	}
}

// absorbing reports whether s is terminal by convention: LOCKED or any rejection.
func (s Status) absorbing() bool {
	return s == StatusLocked || strings.HasSuffix(string(s), "_REJECTED")
}

// ParseStatus normalises raw input into a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown report status %q", raw)
	}
	return s, nil
}
