package workflow

// RequiredOptions narrows which required-field shape applies.
type RequiredOptions struct {
	// Override, when non-nil, is returned as-is.
	Override []string
	// Phase selects a phase list for phase-sensitive roles.
	Phase Phase
	// Status derives the phase when Phase is empty.
	Status Status
}

// ResolveRequired lists the fields role must fill for a save to succeed.
// The first matching rule wins: explicit override, explicit phase, phase
// derived from status, then the role's flat field access entry.
func (s *Schema) ResolveRequired(role Role, opts RequiredOptions) []string {
	if opts.Override != nil {
		return append([]string(nil), opts.Override...)
	}
	if s.PhaseSensitive(role) {
		if opts.Phase.Valid() {
			return s.phaseFields(role, opts.Phase)
		}
		if opts.Status != "" {
			if phase, ok := DerivePhase(opts.Status); ok {
				return s.phaseFields(role, phase)
			}
		}
	}
	return s.access.defaults(role)
}

// effectivePhase decides which phase conditional fields are judged in.
// One-phase schemas always judge as FINAL.
func (s *Schema) effectivePhase(opts RequiredOptions) (Phase, bool) {
	if len(s.phased) == 0 {
		return PhaseFinal, true
	}
	if opts.Phase.Valid() {
		return opts.Phase, true
	}
	if opts.Status != "" {
		return DerivePhase(opts.Status)
	}
	return "", false
}
