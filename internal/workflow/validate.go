package workflow

import (
	"strings"
	"time"
)

// MessageRequired is the error text recorded for every missing field.
const MessageRequired = "Required"

// NotApplicable is the sentinel accepted by lenient date fields.
const NotApplicable = "NA"

// Pathogen results that count as definitive.
const (
	PathogenAbsent  = "ABSENT"
	PathogenPresent = "PRESENT"
)

// Values holds a report's field values keyed by field key.
type Values map[string]interface{}

// PathogenRow is one line of the pathogen checklist.
type PathogenRow struct {
	Key     string `json:"key"`
	Checked bool   `json:"checked"`
	Result  string `json:"result"`
}

// Result is the outcome of one validation pass.
type Result struct {
	Errors map[string]string `json:"errors"`
	OK     bool              `json:"ok"`
	// Focus is the first missing field in resolver order.
	Focus string `json:"focus,omitempty"`
}

// Validate checks every field ResolveRequired returns for role against values.
func (s *Schema) Validate(role Role, values Values, opts RequiredOptions) Result {
	required := s.ResolveRequired(role, opts)
	phase, phaseKnown := s.effectivePhase(opts)
	res := Result{Errors: make(map[string]string)}
	for _, key := range required {
		spec, ok := s.index[key]
		if !ok {
			spec = FieldSpec{Key: key, Kind: FieldText}
		}
		if !s.missing(spec, values[key], phase, phaseKnown) {
			continue
		}
		res.Errors[key] = MessageRequired
		if res.Focus == "" {
			res.Focus = key
		}
	}
	res.OK = len(res.Errors) == 0
	return res
}

func (s *Schema) missing(spec FieldSpec, value interface{}, phase Phase, phaseKnown bool) bool {
	switch spec.Kind {
	case FieldText:
		return blank(value)
	case FieldDate:
		return absentDate(value)
	case FieldLenientDate, FieldOptional:
		return false
	case FieldPathogens:
		if !phaseKnown || phase != PhaseFinal {
			return false
		}
		return pathogensIncomplete(value)
	default:
		return blank(value)
	}
}

func blank(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}

func absentDate(value interface{}) bool {
	switch v := value.(type) {
	case time.Time:
		return v.IsZero()
	case *time.Time:
		return v == nil || v.IsZero()
	default:
		return blank(value)
	}
}

// pathogensIncomplete reports whether a checked row lacks a definitive
// result. An unchecked checklist is never incomplete.
func pathogensIncomplete(value interface{}) bool {
	for _, row := range pathogenRows(value) {
		if !row.Checked {
			continue
		}
		switch strings.ToUpper(strings.TrimSpace(row.Result)) {
		case PathogenAbsent, PathogenPresent:
		default:
			return true
		}
	}
	return false
}

func pathogenRows(value interface{}) []PathogenRow {
	switch v := value.(type) {
	case []PathogenRow:
		return v
	case []map[string]interface{}:
		rows := make([]PathogenRow, 0, len(v))
		for _, m := range v {
			rows = append(rows, rowFromMap(m))
		}
		return rows
	case []interface{}:
		rows := make([]PathogenRow, 0, len(v))
		for _, item := range v {
			switch r := item.(type) {
			case PathogenRow:
				rows = append(rows, r)
			case map[string]interface{}:
				rows = append(rows, rowFromMap(r))
			}
		}
		return rows
	default:
		return nil
	}
}

func rowFromMap(m map[string]interface{}) PathogenRow {
	row := PathogenRow{}
	row.Key, _ = m["key"].(string)
	row.Checked, _ = m["checked"].(bool)
	row.Result, _ = m["result"].(string)
	return row
}
