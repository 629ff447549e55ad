package models

// FormFillResult summarizes a PDF form fill operation
type FormFillResult struct {
	FormName         string             `json:"form_name"`
	FilledFields     map[string]string  `json:"filled_fields"`
	MissingFields    []string           `json:"missing_fields"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	FieldSources     map[string]string  `json:"field_sources"`
	Status           string             `json:"status"` // completed, partial, empty
}

// WebForm is a form discovered in an HTML document
type WebForm struct {
	Selector string            `json:"selector"`
	Action   string            `json:"action,omitempty"`
	Method   string            `json:"method,omitempty"`
	Fields   []FieldDescriptor `json:"fields"`
}

// WebAutofillResult maps CSS selectors to values the caller can apply to
// the page. No DOM manipulation happens server side.
type WebAutofillResult struct {
	Values           map[string]string  `json:"values"`
	ConfidenceScores map[string]float64 `json:"confidence_scores"`
	FieldSources     map[string]string  `json:"field_sources"`
	MissingFields    []string           `json:"missing_fields"`
	TotalFields      int                `json:"total_fields"`
	FilledCount      int                `json:"filled_count"`
}

// Form fill statuses
const (
	FillStatusCompleted = "completed"
	FillStatusPartial   = "partial"
	FillStatusEmpty     = "empty"
)
