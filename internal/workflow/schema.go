package workflow

import (
	"fmt"
	"strings"
)

// ReportKind selects the form family a report belongs to.
type ReportKind string

const (
	// KindStandard is the one-phase test report.
	KindStandard ReportKind = "STANDARD"
	// KindMicroMix is the two-phase microbiology report.
	KindMicroMix ReportKind = "MICRO_MIX"
)

// ParseReportKind normalises raw input into a ReportKind.
func ParseReportKind(raw string) (ReportKind, error) {
	k := ReportKind(strings.ToUpper(strings.TrimSpace(raw)))
	switch k {
	case KindStandard, KindMicroMix:
		return k, nil
	default:
		return "", fmt.Errorf("unknown report kind %q", raw)
	}
}

// FieldKind selects the emptiness predicate applied to a field.
type FieldKind int

const (
	// FieldText is missing when absent, blank or whitespace only.
	FieldText FieldKind = iota
	// FieldDate is missing when absent. Malformed values count as present.
	FieldDate
	// FieldLenientDate is never missing: blank and "NA" are both accepted.
	FieldLenientDate
	// FieldOptional is never missing.
	FieldOptional
	// FieldPathogens is a checklist that needs a result on each checked row
	// during the FINAL phase.
	FieldPathogens
)

// FieldSpec describes one form field.
type FieldSpec struct {
	Key  string
	Kind FieldKind
}

// Schema describes one report family: its fields, who may write them, its
// status graph and, for phase-sensitive roles, per-phase required lists.
type Schema struct {
	kind   ReportKind
	fields []FieldSpec
	index  map[string]FieldSpec
	keys   []string
	access FieldAccess
	graph  *Graph
	phased map[Role]map[Phase][]string
}

// NewSchema assembles and cross-checks a schema. It panics when the tables
// disagree with each other.
func NewSchema(kind ReportKind, fields []FieldSpec, access FieldAccess, graph *Graph, phased map[Role]map[Phase][]string) *Schema {
	s := &Schema{
		kind:   kind,
		fields: append([]FieldSpec(nil), fields...),
		index:  make(map[string]FieldSpec, len(fields)),
		keys:   make([]string, 0, len(fields)),
		access: access,
		graph:  graph,
		phased: make(map[Role]map[Phase][]string, len(phased)),
	}
	for _, f := range fields {
		if f.Key == "" || f.Key == Wildcard {
			panic(fmt.Sprintf("workflow: %s schema has an invalid field key %q", kind, f.Key))
		}
		if _, dup := s.index[f.Key]; dup {
			panic(fmt.Sprintf("workflow: %s schema declares %s twice", kind, f.Key))
		}
		s.index[f.Key] = f
		s.keys = append(s.keys, f.Key)
	}
	for role, keys := range access.grants {
		for _, k := range keys {
			if _, ok := s.index[k]; !ok && k != Wildcard {
				panic(fmt.Sprintf("workflow: %s schema grants %s unknown field %s", kind, role, k))
			}
		}
	}
	for role, byPhase := range phased {
		mustRole(role)
		lists := make(map[Phase][]string, len(byPhase))
		for phase, keys := range byPhase {
			if !phase.Valid() {
				panic(fmt.Sprintf("workflow: %s schema has unknown phase %q", kind, phase))
			}
			for _, k := range keys {
				if !access.Allows(role, k, s.keys) {
					panic(fmt.Sprintf("workflow: %s schema requires %s from %s without a grant", kind, k, role))
				}
			}
			lists[phase] = append([]string(nil), keys...)
		}
		if len(lists[PhasePrelim]) == 0 || len(lists[PhaseFinal]) == 0 {
			panic(fmt.Sprintf("workflow: %s schema phase lists for %s are incomplete", kind, role))
		}
		s.phased[role] = lists
	}
	for _, st := range graph.Statuses() {
		editors := graph.Editors(st)
		owner := make(map[string]Role)
		for _, role := range editors {
			if !access.HasGrant(role) {
				panic(fmt.Sprintf("workflow: %s schema lets %s edit in %s without any field grant", kind, role, st))
			}
			if access.wildcard(role) {
				continue
			}
			for _, k := range access.grants[role] {
				if prev, clash := owner[k]; clash {
					panic(fmt.Sprintf("workflow: %s schema lets both %s and %s write %s in %s", kind, prev, role, k, st))
				}
				owner[k] = role
			}
		}
	}
	return s
}

// Kind returns the family this schema describes.
func (s *Schema) Kind() ReportKind { return s.kind }

// Graph returns the family's status graph.
func (s *Schema) Graph() *Graph { return s.graph }

// Access returns the family's field access table.
func (s *Schema) Access() FieldAccess { return s.access }

// Fields returns every field key in declaration order.
func (s *Schema) Fields() []string {
	return append([]string(nil), s.keys...)
}

// Field looks up a field spec.
func (s *Schema) Field(key string) (FieldSpec, bool) {
	f, ok := s.index[key]
	return f, ok
}

// PhaseSensitive reports whether role's required set depends on phase.
func (s *Schema) PhaseSensitive(role Role) bool {
	_, ok := s.phased[role]
	return ok
}

// Phase returns the phase a report in status sits in, or false for
// one-phase schemas and phase-insensitive statuses.
func (s *Schema) Phase(status Status) (Phase, bool) {
	if len(s.phased) == 0 {
		return "", false
	}
	return DerivePhase(status)
}

// WritableBy expands role's field access entry against this schema.
func (s *Schema) WritableBy(role Role) []string {
	return s.access.WritableBy(role, s.keys)
}

// phaseFields returns the fixed list for role in phase.
func (s *Schema) phaseFields(role Role, phase Phase) []string {
	return append([]string(nil), s.phased[role][phase]...)
}
