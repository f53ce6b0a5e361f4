package workflow

import (
	"fmt"
	"sort"

	appErrors "github.com/omegabiochem/WebApp-sub000/pkg/errors"
)

// CanEdit reports whether role may write field while the report is in status.
// Both the status edit right and the field grant are required.
func (s *Schema) CanEdit(role Role, status Status, field string) bool {
	if !s.graph.IsEditable(role, status) {
		return false
	}
	return s.access.Allows(role, field, s.keys)
}

// EditableFields lists what role may write in status, in schema order.
func (s *Schema) EditableFields(role Role, status Status) []string {
	if !s.graph.IsEditable(role, status) {
		return []string{}
	}
	granted := s.WritableBy(role)
	allowed := make(map[string]struct{}, len(granted))
	for _, k := range granted {
		allowed[k] = struct{}{}
	}
	out := make([]string, 0, len(granted))
	for _, k := range s.keys {
		if _, ok := allowed[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// FieldRejection names one field the gate refused.
type FieldRejection struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ClassifyWrites splits a batch of writes into those the gate permits and
// per-field rejections. It does not decide whether a partial batch commits.
func (s *Schema) ClassifyWrites(role Role, status Status, values Values) (Values, []FieldRejection) {
	writable := make(Values, len(values))
	var rejected []FieldRejection
	for key, v := range values {
		if _, known := s.index[key]; !known {
			rejected = append(rejected, FieldRejection{Field: key, Code: appErrors.ErrFieldNotWritable.Code, Message: "unknown field"})
			continue
		}
		if !s.CanEdit(role, status, key) {
			rejected = append(rejected, FieldRejection{
				Field:   key,
				Code:    appErrors.ErrFieldNotWritable.Code,
				Message: fmt.Sprintf("%s may not write %s while report is %s", role, key, status),
			})
			continue
		}
		writable[key] = v
	}
	sort.Slice(rejected, func(i, j int) bool { return rejected[i].Field < rejected[j].Field })
	return writable, rejected
}
