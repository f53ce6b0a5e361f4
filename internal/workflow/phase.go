package workflow

import "fmt"

// Phase is the microbiology testing sub-stage derived from a report status.
type Phase string

const (
	PhasePrelim Phase = "PRELIM"
	PhaseFinal  Phase = "FINAL"
)

// Valid reports whether p is PRELIM or FINAL.
func (p Phase) Valid() bool {
	return p == PhasePrelim || p == PhaseFinal
}

var prelimStatuses = statusSet(
	StatusUnderPreliminaryTestingReview,
	StatusPreliminaryTestingOnHold,
	StatusClientNeedsPreliminaryCorrection,
	StatusPreliminaryResubmissionByClient,
	StatusUnderClientPreliminaryReview,
	StatusPreliminaryTestingNeedsCorrection,
	StatusPreliminaryResubmissionByTesting,
)

var finalStatuses = statusSet(
	StatusPreliminaryApproved,
	StatusUnderFinalTestingReview,
	StatusFinalTestingOnHold,
	StatusClientNeedsFinalCorrection,
	StatusFinalResubmissionByClient,
	StatusUnderClientFinalReview,
	StatusFinalTestingNeedsCorrection,
	StatusFinalResubmissionByTesting,
	StatusUnderQAReview,
	StatusQANeedsCorrection,
	StatusUnderAdminReview,
	StatusAdminNeedsCorrection,
	StatusFinalApproved,
)

func init() {
	for s := range prelimStatuses {
		if _, ok := finalStatuses[s]; ok {
			panic(fmt.Sprintf("workflow: status %s is both PRELIM and FINAL", s))
		}
	}
}

// DerivePhase projects a status onto its microbiology phase. The boolean is
// false for statuses outside both phase sets; callers treat those as
// phase-insensitive.
func DerivePhase(s Status) (Phase, bool) {
	if _, ok := prelimStatuses[s]; ok {
		return PhasePrelim, true
	}
	if _, ok := finalStatuses[s]; ok {
		return PhaseFinal, true
	}
	return "", false
}

func statusSet(statuses ...Status) map[Status]struct{} {
	set := make(map[Status]struct{}, len(statuses))
	for _, s := range statuses {
		if !s.Valid() {
			panic(fmt.Sprintf("workflow: unknown status %q", s))
		}
		set[s] = struct{}{}
	}
	return set
}
