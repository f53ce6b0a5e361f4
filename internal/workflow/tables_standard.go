package workflow

var standardStatuses = []Status{
	StatusDraft,
	StatusSubmittedByClient,
	StatusClientNeedsCorrection,
	StatusReceivedByFrontDesk,
	StatusFrontDeskOnHold,
	StatusFrontDeskRejected,
	StatusUnderTestingReview,
	StatusTestingOnHold,
	StatusTestingRejected,
	StatusUnderQAReview,
	StatusQANeedsCorrection,
	StatusQARejected,
	StatusUnderAdminReview,
	StatusAdminNeedsCorrection,
	StatusAdminRejected,
	StatusApproved,
	StatusLocked,
}

var testers = []Role{RoleMicro, RoleChemistry}
var admins = []Role{RoleAdmin, RoleSystemAdmin}

func standardEdges() map[Status]Edge {
	return map[Status]Edge{
		StatusDraft: {
			CanSet:  []Role{RoleClient},
			Next:    []Status{StatusSubmittedByClient},
			CanEdit: []Role{RoleClient},
		},
		StatusSubmittedByClient: {
			CanSet:  []Role{RoleFrontDesk},
			Next:    []Status{StatusReceivedByFrontDesk, StatusFrontDeskOnHold, StatusFrontDeskRejected, StatusClientNeedsCorrection},
			CanEdit: []Role{RoleFrontDesk},
		},
		StatusClientNeedsCorrection: {
			CanSet:  []Role{RoleClient},
			Next:    []Status{StatusSubmittedByClient},
			CanEdit: []Role{RoleClient},
		},
		StatusReceivedByFrontDesk: {
			CanSet:  []Role{RoleFrontDesk, RoleMicro, RoleChemistry},
			Next:    []Status{StatusUnderTestingReview, StatusFrontDeskOnHold},
			CanEdit: []Role{RoleFrontDesk},
		},
		StatusFrontDeskOnHold: {
			CanSet:  []Role{RoleFrontDesk},
			Next:    []Status{StatusReceivedByFrontDesk, StatusFrontDeskRejected},
			CanEdit: []Role{RoleFrontDesk},
		},
		StatusFrontDeskRejected: {},
		StatusUnderTestingReview: {
			CanSet:  testers,
			Next:    []Status{StatusTestingOnHold, StatusTestingRejected, StatusClientNeedsCorrection, StatusUnderQAReview},
			CanEdit: testers,
		},
		StatusTestingOnHold: {
			CanSet:  testers,
			Next:    []Status{StatusUnderTestingReview, StatusTestingRejected},
			CanEdit: testers,
		},
		StatusTestingRejected: {},
		StatusUnderQAReview: {
			CanSet:  []Role{RoleQA},
			Next:    []Status{StatusQANeedsCorrection, StatusQARejected, StatusUnderAdminReview},
			CanEdit: []Role{RoleQA},
		},
		StatusQANeedsCorrection: {
			CanSet:  testers,
			Next:    []Status{StatusUnderQAReview},
			CanEdit: testers,
		},
		StatusQARejected: {},
		StatusUnderAdminReview: {
			CanSet:  admins,
			Next:    []Status{StatusAdminNeedsCorrection, StatusAdminRejected, StatusApproved},
			CanEdit: admins,
		},
		StatusAdminNeedsCorrection: {
			CanSet:  []Role{RoleQA},
			Next:    []Status{StatusUnderAdminReview},
			CanEdit: []Role{RoleQA},
		},
		StatusAdminRejected: {},
		StatusApproved: {
			CanSet:  admins,
			Next:    []Status{StatusLocked},
			CanEdit: admins,
		},
		StatusLocked: {},
	}
}

var standardFields = []FieldSpec{
	{Key: "client", Kind: FieldText},
	{Key: "dateSent", Kind: FieldDate},
	{Key: "typeOfTest", Kind: FieldText},
	{Key: "sampleType", Kind: FieldText},
	{Key: "formulaNo", Kind: FieldText},
	{Key: "description", Kind: FieldText},
	{Key: "lotNo", Kind: FieldText},
	{Key: "manufactureDate", Kind: FieldLenientDate},
	{Key: "dateReceived", Kind: FieldDate},
	{Key: "testSopNo", Kind: FieldText},
	{Key: "dateTested", Kind: FieldDate},
	{Key: "tbc_dilution", Kind: FieldText},
	{Key: "tbc_result", Kind: FieldText},
	{Key: "tmy_dilution", Kind: FieldText},
	{Key: "tmy_result", Kind: FieldText},
	{Key: "pathogens", Kind: FieldPathogens},
	{Key: "testedBy", Kind: FieldText},
	{Key: "comments", Kind: FieldOptional},
	{Key: "chemSopNo", Kind: FieldText},
	{Key: "chemDateTested", Kind: FieldDate},
	{Key: "phResult", Kind: FieldText},
	{Key: "assayResult", Kind: FieldText},
	{Key: "chemTestedBy", Kind: FieldText},
	{Key: "dateCompleted", Kind: FieldDate},
	{Key: "reviewedBy", Kind: FieldText},
}

func standardAccess() FieldAccess {
	return NewFieldAccess(map[Role][]string{
		RoleSystemAdmin: {Wildcard},
		RoleAdmin:       {Wildcard},
		RoleClient:      {"client", "dateSent", "typeOfTest", "sampleType", "formulaNo", "description", "lotNo", "manufactureDate"},
		RoleFrontDesk:   {"dateReceived"},
		RoleMicro:       {"testSopNo", "dateTested", "tbc_dilution", "tbc_result", "tmy_dilution", "tmy_result", "pathogens", "testedBy", "comments"},
		RoleChemistry:   {"chemSopNo", "chemDateTested", "phResult", "assayResult", "chemTestedBy"},
		RoleQA:          {"dateCompleted", "reviewedBy"},
	})
}

func newStandardSchema() *Schema {
	graph := NewGraph(string(KindStandard), standardStatuses, standardEdges())
	return NewSchema(KindStandard, standardFields, standardAccess(), graph, nil)
}
