package models

// Professional is a minimal view of a salon professional, sourced from the
// external professionals directory.
type Professional struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Services []string `json:"services"`
}

// ChoiceKind discriminates a ProfessionalChoice.
type ChoiceKind string

const (
	ChoiceSpecific     ChoiceKind = "specific"
	ChoiceAnyAvailable ChoiceKind = "any"
)

// ProfessionalChoice is a tagged variant: either a specific professional by id
// or "any available" with no preference.
type ProfessionalChoice struct {
	Kind           ChoiceKind `json:"kind"`
	ProfessionalID string     `json:"professionalId,omitempty"`
}

// Specific returns a choice pinned to one professional.
func Specific(professionalID string) ProfessionalChoice {
	return ProfessionalChoice{Kind: ChoiceSpecific, ProfessionalID: professionalID}
}

// AnyAvailable returns the no-preference choice.
func AnyAvailable() ProfessionalChoice {
	return ProfessionalChoice{Kind: ChoiceAnyAvailable}
}

// IsSpecific reports whether the choice names a concrete professional.
func (c ProfessionalChoice) IsSpecific() bool {
	return c.Kind == ChoiceSpecific && c.ProfessionalID != ""
}

// ProfessionalAssignment maps a ServiceItem (by name, unique within one
// session) to a professional choice.
type ProfessionalAssignment struct {
	ServiceName string             `json:"serviceName"`
	Choice      ProfessionalChoice `json:"choice"`
}
