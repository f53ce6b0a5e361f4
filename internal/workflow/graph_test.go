package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	appErrors "github.com/omegabiochem/WebApp-sub000/pkg/errors"
)

func schemas(t *testing.T) []*Schema {
	t.Helper()
	out := make([]*Schema, 0, 2)
	for _, kind := range DefaultCatalog().Kinds() {
		s, err := DefaultCatalog().Schema(kind)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func mustSchema(t *testing.T, kind ReportKind) *Schema {
	t.Helper()
	s, err := DefaultCatalog().Schema(kind)
	require.NoError(t, err)
	return s
}

func TestEveryNonTerminalStatusHasAnEditor(t *testing.T) {
	for _, s := range schemas(t) {
		g := s.Graph()
		for _, st := range g.Statuses() {
			if g.IsTerminal(st) {
				continue
			}
			editors := 0
			for _, r := range Roles() {
				if g.IsEditable(r, st) {
					editors++
				}
			}
			require.Positive(t, editors, "%s/%s has no editor", s.Kind(), st)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	for _, s := range schemas(t) {
		g := s.Graph()
		terminals := 0
		for _, st := range g.Statuses() {
			if !g.IsTerminal(st) {
				continue
			}
			terminals++
			require.True(t, st == StatusLocked || st.absorbing(), "%s unexpectedly terminal", st)
			require.Empty(t, g.Next(st))
			for _, r := range Roles() {
				require.Empty(t, g.NextFor(r, st))
				for _, to := range g.Statuses() {
					require.False(t, g.CanTransition(r, st, to), "%s: %s -> %s by %s", s.Kind(), st, to, r)
				}
			}
		}
		require.GreaterOrEqual(t, terminals, 2)
	}
}

func TestLockedIsNeverLeft(t *testing.T) {
	for _, s := range schemas(t) {
		require.False(t, s.Graph().CanTransition(RoleClient, StatusLocked, StatusDraft))
		err := s.Graph().CheckTransition(RoleClient, StatusLocked, StatusDraft)
		require.ErrorIs(t, err, appErrors.ErrInvalidTransition)
	}
}

func TestCanTransitionNeedsEdgeAndRole(t *testing.T) {
	g := mustSchema(t, KindStandard).Graph()
	require.True(t, g.CanTransition(RoleClient, StatusDraft, StatusSubmittedByClient))
	require.False(t, g.CanTransition(RoleFrontDesk, StatusDraft, StatusSubmittedByClient))
	require.False(t, g.CanTransition(RoleClient, StatusDraft, StatusLocked))
	require.True(t, g.CanTransition(RoleQA, StatusUnderQAReview, StatusQANeedsCorrection))
	require.False(t, g.CanTransition(RoleMicro, StatusUnderQAReview, StatusUnderAdminReview))
	require.NoError(t, g.CheckTransition(RoleAdmin, StatusApproved, StatusLocked))

	micro := mustSchema(t, KindMicroMix).Graph()
	require.True(t, micro.CanTransition(RoleMicro, StatusPreliminaryApproved, StatusUnderFinalTestingReview))
	require.True(t, micro.CanTransition(RoleClient, StatusUnderClientPreliminaryReview, StatusPreliminaryTestingNeedsCorrection))
	require.False(t, micro.CanTransition(RoleQA, StatusUnderFinalTestingReview, StatusUnderQAReview))
}

func TestNextEditableByIsDerivedFromTargets(t *testing.T) {
	g := mustSchema(t, KindStandard).Graph()
	tr := g.Transition(StatusSubmittedByClient)
	require.Equal(t, []Role{RoleFrontDesk}, tr.CanSet)
	require.Equal(t, []Role{RoleFrontDesk, RoleClient}, tr.NextEditableBy)
	require.Len(t, tr.Next, 4)

	tr = g.Transition(StatusApproved)
	require.Empty(t, tr.NextEditableBy)
}

func TestGraphLookupOutsideFamilyPanics(t *testing.T) {
	g := mustSchema(t, KindStandard).Graph()
	require.False(t, g.Contains(StatusPreliminaryApproved))
	require.Panics(t, func() { g.IsEditable(RoleMicro, StatusPreliminaryApproved) })
	require.Panics(t, func() { g.CanTransition(RoleMicro, StatusPreliminaryApproved, StatusLocked) })
}

func TestNewGraphRejectsMalformedTables(t *testing.T) {
	client := []Role{RoleClient}
	cases := map[string]struct {
		statuses []Status
		edges    map[Status]Edge
	}{
		"missing edge": {
			statuses: []Status{StatusDraft, StatusLocked},
			edges:    map[Status]Edge{StatusDraft: {CanSet: client, Next: []Status{StatusLocked}, CanEdit: client}},
		},
		"dangling target": {
			statuses: []Status{StatusDraft, StatusLocked},
			edges: map[Status]Edge{
				StatusDraft:  {CanSet: client, Next: []Status{StatusSubmittedByClient}, CanEdit: client},
				StatusLocked: {},
			},
		},
		"terminal with exits": {
			statuses: []Status{StatusDraft, StatusLocked},
			edges: map[Status]Edge{
				StatusDraft:  {CanSet: client, Next: []Status{StatusLocked}, CanEdit: client},
				StatusLocked: {CanSet: client, Next: []Status{StatusDraft}, CanEdit: client},
			},
		},
		"dead end": {
			statuses: []Status{StatusDraft, StatusLocked},
			edges: map[Status]Edge{
				StatusDraft:  {CanSet: client, CanEdit: client},
				StatusLocked: {},
			},
		},
		"no editor": {
			statuses: []Status{StatusDraft, StatusLocked},
			edges: map[Status]Edge{
				StatusDraft:  {CanSet: client, Next: []Status{StatusLocked}},
				StatusLocked: {},
			},
		},
		"unknown status": {
			statuses: []Status{"ARCHIVED"},
			edges:    map[Status]Edge{"ARCHIVED": {}},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.Panics(t, func() { NewGraph("test", tc.statuses, tc.edges) })
		})
	}
}

func TestEditorsHoldFieldGrants(t *testing.T) {
	for _, s := range schemas(t) {
		for _, st := range s.Graph().Statuses() {
			for _, r := range s.Graph().Editors(st) {
				require.True(t, s.Access().HasGrant(r), "%s edits %s without grants", r, st)
			}
		}
	}
}

func TestNewSchemaRejectsInconsistentTables(t *testing.T) {
	client := []Role{RoleClient}
	graph := NewGraph("test", []Status{StatusDraft, StatusLocked}, map[Status]Edge{
		StatusDraft:  {CanSet: client, Next: []Status{StatusLocked}, CanEdit: []Role{RoleClient, RoleQA}},
		StatusLocked: {},
	})
	fields := []FieldSpec{{Key: "lotNo"}, {Key: "dateCompleted", Kind: FieldDate}}

	require.Panics(t, func() {
		NewSchema("TEST", fields, NewFieldAccess(map[Role][]string{RoleClient: {"lotNo"}}), graph, nil)
	}, "QA edits without a grant")

	require.Panics(t, func() {
		NewSchema("TEST", fields, NewFieldAccess(map[Role][]string{
			RoleClient: {"lotNo"},
			RoleQA:     {"lotNo"},
		}), graph, nil)
	}, "two editors share a field in one status")

	require.Panics(t, func() {
		NewSchema("TEST", fields, NewFieldAccess(map[Role][]string{
			RoleClient: {"lotNo", "batch"},
			RoleQA:     {"dateCompleted"},
		}), graph, nil)
	}, "grant names an unknown field")

	require.NotPanics(t, func() {
		NewSchema("TEST", fields, NewFieldAccess(map[Role][]string{
			RoleClient: {"lotNo"},
			RoleQA:     {"dateCompleted"},
		}), graph, nil)
	})
}

func TestWildcardReservedForAdmins(t *testing.T) {
	require.Panics(t, func() { NewFieldAccess(map[Role][]string{RoleQA: {Wildcard}}) })
	require.NotPanics(t, func() { NewFieldAccess(map[Role][]string{RoleAdmin: {Wildcard}}) })
}

func TestParseEnums(t *testing.T) {
	r, err := ParseRole(" micro ")
	require.NoError(t, err)
	require.Equal(t, RoleMicro, r)
	_, err = ParseRole("LAB")
	require.Error(t, err)

	st, err := ParseStatus("under_qa_review")
	require.NoError(t, err)
	require.Equal(t, StatusUnderQAReview, st)
	_, err = ParseStatus("ARCHIVED")
	require.Error(t, err)

	k, err := ParseReportKind("micro_mix")
	require.NoError(t, err)
	require.Equal(t, KindMicroMix, k)
	_, err = DefaultCatalog().Schema("CHEM")
	require.Error(t, err)
}
