package models

// FieldDescriptor describes a single form field to be matched against the
// owner's indexed documents. Selector is populated for fields discovered in
// web forms.
type FieldDescriptor struct {
	Name        string   `json:"name"`
	Label       string   `json:"label,omitempty"`
	Type        string   `json:"type,omitempty"`
	Context     string   `json:"context,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Selector    string   `json:"selector,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// FieldMatch is the outcome of matching one field against indexed content
type FieldMatch struct {
	FieldName  string  `json:"field_name"`
	Matched    bool    `json:"matched"`
	Value      string  `json:"value,omitempty"`
	Confidence float64 `json:"confidence"`
	FieldType  string  `json:"field_type"`
	Source     string  `json:"source,omitempty"`
	DocID      string  `json:"doc_id,omitempty"`
	ChunkID    string  `json:"chunk_id,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// BulkMatchResult aggregates per-field outcomes for a batch request.
// MatchedFields is keyed by field name and has one entry per requested
// field; unmatched names are additionally listed in MissingFields.
type BulkMatchResult struct {
	MatchedFields map[string]FieldMatch `json:"matched_fields"`
	MissingFields []string              `json:"missing_fields"`
	MatchedCount  int                   `json:"matched_count"`
	TotalFields   int                   `json:"total_fields"`
}
