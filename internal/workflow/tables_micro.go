package workflow

var microMixStatuses = []Status{
	StatusDraft,
	StatusSubmittedByClient,
	StatusReceivedByFrontDesk,
	StatusFrontDeskOnHold,
	StatusFrontDeskRejected,
	StatusUnderPreliminaryTestingReview,
	StatusPreliminaryTestingOnHold,
	StatusClientNeedsPreliminaryCorrection,
	StatusPreliminaryResubmissionByClient,
	StatusUnderClientPreliminaryReview,
	StatusPreliminaryTestingNeedsCorrection,
	StatusPreliminaryResubmissionByTesting,
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
	StatusQARejected,
	StatusUnderAdminReview,
	StatusAdminNeedsCorrection,
	StatusAdminRejected,
	StatusFinalApproved,
	StatusLocked,
}

func microMixEdges() map[Status]Edge {
	micro := []Role{RoleMicro}
	client := []Role{RoleClient}
	return map[Status]Edge{
		StatusDraft: {
			CanSet:  client,
			Next:    []Status{StatusSubmittedByClient},
			CanEdit: client,
		},
		StatusSubmittedByClient: {
			CanSet:  []Role{RoleFrontDesk},
			Next:    []Status{StatusReceivedByFrontDesk, StatusFrontDeskOnHold, StatusFrontDeskRejected, StatusClientNeedsPreliminaryCorrection},
			CanEdit: []Role{RoleFrontDesk},
		},
		StatusReceivedByFrontDesk: {
			CanSet:  []Role{RoleFrontDesk, RoleMicro},
			Next:    []Status{StatusUnderPreliminaryTestingReview, StatusFrontDeskOnHold},
			CanEdit: []Role{RoleFrontDesk},
		},
		StatusFrontDeskOnHold: {
			CanSet:  []Role{RoleFrontDesk},
			Next:    []Status{StatusReceivedByFrontDesk, StatusFrontDeskRejected},
			CanEdit: []Role{RoleFrontDesk},
		},
		StatusFrontDeskRejected: {},

		// preliminary sub-workflow
		StatusUnderPreliminaryTestingReview: {
			CanSet:  micro,
			Next:    []Status{StatusPreliminaryTestingOnHold, StatusClientNeedsPreliminaryCorrection, StatusUnderClientPreliminaryReview},
			CanEdit: micro,
		},
		StatusPreliminaryTestingOnHold: {
			CanSet:  micro,
			Next:    []Status{StatusUnderPreliminaryTestingReview},
			CanEdit: micro,
		},
		StatusClientNeedsPreliminaryCorrection: {
			CanSet:  client,
			Next:    []Status{StatusPreliminaryResubmissionByClient},
			CanEdit: client,
		},
		StatusPreliminaryResubmissionByClient: {
			CanSet:  micro,
			Next:    []Status{StatusUnderPreliminaryTestingReview},
			CanEdit: micro,
		},
		StatusUnderClientPreliminaryReview: {
			CanSet:  client,
			Next:    []Status{StatusPreliminaryApproved, StatusPreliminaryTestingNeedsCorrection},
			CanEdit: client,
		},
		StatusPreliminaryTestingNeedsCorrection: {
			CanSet:  micro,
			Next:    []Status{StatusPreliminaryResubmissionByTesting},
			CanEdit: micro,
		},
		StatusPreliminaryResubmissionByTesting: {
			CanSet:  client,
			Next:    []Status{StatusUnderClientPreliminaryReview, StatusPreliminaryApproved},
			CanEdit: micro,
		},
		StatusPreliminaryApproved: {
			CanSet:  micro,
			Next:    []Status{StatusUnderFinalTestingReview},
			CanEdit: micro,
		},

		// final sub-workflow
		StatusUnderFinalTestingReview: {
			CanSet:  micro,
			Next:    []Status{StatusFinalTestingOnHold, StatusClientNeedsFinalCorrection, StatusUnderClientFinalReview},
			CanEdit: micro,
		},
		StatusFinalTestingOnHold: {
			CanSet:  micro,
			Next:    []Status{StatusUnderFinalTestingReview},
			CanEdit: micro,
		},
		StatusClientNeedsFinalCorrection: {
			CanSet:  client,
			Next:    []Status{StatusFinalResubmissionByClient},
			CanEdit: client,
		},
		StatusFinalResubmissionByClient: {
			CanSet:  micro,
			Next:    []Status{StatusUnderFinalTestingReview},
			CanEdit: micro,
		},
		StatusUnderClientFinalReview: {
			CanSet:  client,
			Next:    []Status{StatusFinalTestingNeedsCorrection, StatusUnderQAReview},
			CanEdit: client,
		},
		StatusFinalTestingNeedsCorrection: {
			CanSet:  micro,
			Next:    []Status{StatusFinalResubmissionByTesting},
			CanEdit: micro,
		},
		StatusFinalResubmissionByTesting: {
			CanSet:  client,
			Next:    []Status{StatusUnderClientFinalReview, StatusUnderQAReview},
			CanEdit: micro,
		},

		StatusUnderQAReview: {
			CanSet:  []Role{RoleQA},
			Next:    []Status{StatusQANeedsCorrection, StatusQARejected, StatusUnderAdminReview},
			CanEdit: []Role{RoleQA},
		},
		StatusQANeedsCorrection: {
			CanSet:  micro,
			Next:    []Status{StatusUnderQAReview},
			CanEdit: micro,
		},
		StatusQARejected: {},
		StatusUnderAdminReview: {
			CanSet:  admins,
			Next:    []Status{StatusAdminNeedsCorrection, StatusAdminRejected, StatusFinalApproved},
			CanEdit: admins,
		},
		StatusAdminNeedsCorrection: {
			CanSet:  []Role{RoleQA},
			Next:    []Status{StatusUnderAdminReview},
			CanEdit: []Role{RoleQA},
		},
		StatusAdminRejected: {},
		StatusFinalApproved: {
			CanSet:  admins,
			Next:    []Status{StatusLocked},
			CanEdit: admins,
		},
		StatusLocked: {},
	}
}

var microMixFields = []FieldSpec{
	{Key: "client", Kind: FieldText},
	{Key: "dateSent", Kind: FieldDate},
	{Key: "typeOfTest", Kind: FieldText},
	{Key: "sampleType", Kind: FieldText},
	{Key: "formulaNo", Kind: FieldText},
	{Key: "description", Kind: FieldText},
	{Key: "lotNo", Kind: FieldText},
	{Key: "samplingDate", Kind: FieldLenientDate},
	{Key: "dateReceived", Kind: FieldDate},
	{Key: "testSopNo", Kind: FieldText},
	{Key: "dateTested", Kind: FieldDate},
	{Key: "preliminaryResults", Kind: FieldText},
	{Key: "preliminaryResultsDate", Kind: FieldDate},
	{Key: "tbc_dilution", Kind: FieldText},
	{Key: "tbc_gram_stain", Kind: FieldText},
	{Key: "tbc_result", Kind: FieldText},
	{Key: "tmy_dilution", Kind: FieldText},
	{Key: "tmy_result", Kind: FieldText},
	{Key: "pathogens", Kind: FieldPathogens},
	{Key: "testedBy", Kind: FieldText},
	{Key: "comments", Kind: FieldOptional},
	{Key: "dateCompleted", Kind: FieldDate},
	{Key: "reviewedBy", Kind: FieldText},
}

func microMixAccess() FieldAccess {
	return NewFieldAccess(map[Role][]string{
		RoleSystemAdmin: {Wildcard},
		RoleAdmin:       {Wildcard},
		RoleClient:      {"client", "dateSent", "typeOfTest", "sampleType", "formulaNo", "description", "lotNo", "samplingDate"},
		RoleFrontDesk:   {"dateReceived"},
		RoleMicro: {
			"testSopNo", "dateTested", "preliminaryResults", "preliminaryResultsDate",
			"tbc_dilution", "tbc_gram_stain", "tbc_result", "tmy_dilution", "tmy_result",
			"pathogens", "testedBy", "comments",
		},
		RoleQA: {"dateCompleted", "reviewedBy"},
	})
}

func microMixPhases() map[Role]map[Phase][]string {
	return map[Role]map[Phase][]string{
		RoleMicro: {
			PhasePrelim: {"testSopNo", "dateTested", "preliminaryResults", "preliminaryResultsDate", "tbc_dilution", "tbc_result", "testedBy"},
			PhaseFinal:  {"testSopNo", "dateTested", "tbc_dilution", "tbc_gram_stain", "tbc_result", "tmy_dilution", "tmy_result", "pathogens", "testedBy"},
		},
	}
}

func newMicroMixSchema() *Schema {
	graph := NewGraph(string(KindMicroMix), microMixStatuses, microMixEdges())
	return NewSchema(KindMicroMix, microMixFields, microMixAccess(), graph, microMixPhases())
}
