package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"autofill-platform/models"
)

// FormFiller fills PDF AcroForm fields with values matched from the
// owner's documents. Unmatched fields are left blank and reported in
// missing_fields. Filling is deterministic for a given set of matches.
type FormFiller struct {
	matcher FieldMatchingService
}

func NewFormFiller(matcher FieldMatchingService) *FormFiller {
	return &FormFiller{matcher: matcher}
}

// acroForm mirrors the JSON shape pdfcpu uses for form export and fill
type acroForm struct {
	Forms []acroFormEntry `json:"forms"`
}

type acroFormEntry struct {
	TextFields []acroTextField `json:"textfield,omitempty"`
}

type acroTextField struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Default   string `json:"default,omitempty"`
	Multiline bool   `json:"multiline,omitempty"`
	Locked    bool   `json:"locked"`
}

// FillPDF discovers the form's text fields, matches each against the
// owner's index, and returns the fill summary plus the filled PDF bytes.
func (f *FormFiller) FillPDF(ctx context.Context, ownerID, formName string, pdfData []byte) (*models.FormFillResult, []byte, error) {
	fields, err := listFormFields(pdfData, formName)
	if err != nil {
		return nil, nil, err
	}
	if len(fields) == 0 {
		return nil, nil, fmt.Errorf("%w: PDF has no fillable text fields", models.ErrInvalidInput)
	}

	bulk := f.matcher.MatchFields(ctx, ownerID, fields)

	result := &models.FormFillResult{
		FormName:         formName,
		FilledFields:     make(map[string]string),
		MissingFields:    []string{},
		ConfidenceScores: make(map[string]float64),
		FieldSources:     make(map[string]string),
	}

	textFields := make([]acroTextField, 0, len(fields))
	for _, field := range fields {
		match, ok := bulk.MatchedFields[field.Name]
		if !ok {
			continue
		}
		result.ConfidenceScores[match.FieldName] = match.Confidence
		if match.Matched {
			result.FilledFields[match.FieldName] = match.Value
			result.FieldSources[match.FieldName] = match.Source
			textFields = append(textFields, acroTextField{
				Name:  match.FieldName,
				Value: match.Value,
			})
		}
	}
	result.MissingFields = append(result.MissingFields, bulk.MissingFields...)

	switch {
	case len(result.FilledFields) == 0:
		result.Status = models.FillStatusEmpty
	case len(result.MissingFields) == 0:
		result.Status = models.FillStatusCompleted
	default:
		result.Status = models.FillStatusPartial
	}

	if len(textFields) == 0 {
		return result, pdfData, nil
	}

	fillJSON, err := json.Marshal(acroForm{Forms: []acroFormEntry{{TextFields: textFields}}})
	if err != nil {
		return nil, nil, err
	}

	var out bytes.Buffer
	if err := api.FillForm(bytes.NewReader(pdfData), bytes.NewReader(fillJSON), &out, nil); err != nil {
		return nil, nil, fmt.Errorf("form fill failed: %w", err)
	}

	return result, out.Bytes(), nil
}

// listFormFields exports the PDF's AcroForm and converts its text fields
// into field descriptors for matching
func listFormFields(pdfData []byte, formName string) ([]models.FieldDescriptor, error) {
	var exported bytes.Buffer
	if err := api.ExportFormJSON(bytes.NewReader(pdfData), &exported, formName, nil); err != nil {
		return nil, fmt.Errorf("%w: not a fillable PDF form: %v", models.ErrInvalidInput, err)
	}

	var form acroForm
	if err := json.Unmarshal(exported.Bytes(), &form); err != nil {
		return nil, fmt.Errorf("%w: unreadable form structure: %v", models.ErrInvalidInput, err)
	}

	var fields []models.FieldDescriptor
	for _, entry := range form.Forms {
		for _, tf := range entry.TextFields {
			fields = append(fields, models.FieldDescriptor{
				Name:  tf.Name,
				Label: prettifyFieldName(tf.Name),
				Type:  textFieldType(tf),
			})
		}
	}
	return fields, nil
}

func textFieldType(tf acroTextField) string {
	if tf.Multiline {
		return "textarea"
	}
	return "text"
}

// prettifyFieldName turns identifiers like "first_name" or "firstName"
// into a readable label
func prettifyFieldName(name string) string {
	replaced := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name)

	var sb strings.Builder
	for i, r := range replaced {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(replaced[i-1])
			if prev != ' ' && !(prev >= 'A' && prev <= 'Z') {
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}
