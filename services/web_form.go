package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"autofill-platform/models"
)

// WebFormService analyzes HTML forms and produces selector to value maps
// for client-side autofill. No DOM manipulation happens here; the caller
// applies the values.
type WebFormService struct {
	matcher FieldMatchingService
}

func NewWebFormService(matcher FieldMatchingService) *WebFormService {
	return &WebFormService{matcher: matcher}
}

// AnalyzeHTML discovers forms and their fillable fields in an HTML
// document
func AnalyzeHTML(html string) ([]models.WebForm, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable HTML: %v", models.ErrInvalidInput, err)
	}

	var forms []models.WebForm
	doc.Find("form").Each(func(formIdx int, formSel *goquery.Selection) {
		form := models.WebForm{
			Selector: formSelector(formSel, formIdx),
			Action:   formSel.AttrOr("action", ""),
			Method:   strings.ToUpper(formSel.AttrOr("method", "GET")),
		}

		formSel.Find("input, textarea, select").Each(func(_ int, el *goquery.Selection) {
			field, ok := describeElement(el)
			if !ok {
				return
			}
			form.Fields = append(form.Fields, field)
		})

		if len(form.Fields) > 0 {
			forms = append(forms, form)
		}
	})

	return forms, nil
}

// Autofill analyzes the HTML, matches every discovered field and returns
// a pure selector to value map
func (s *WebFormService) Autofill(ctx context.Context, ownerID, html string) (*models.WebAutofillResult, error) {
	forms, err := AnalyzeHTML(html)
	if err != nil {
		return nil, err
	}

	var fields []models.FieldDescriptor
	for _, form := range forms {
		fields = append(fields, form.Fields...)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no fillable fields found", models.ErrInvalidInput)
	}

	bulk := s.matcher.MatchFields(ctx, ownerID, fields)

	result := &models.WebAutofillResult{
		Values:           make(map[string]string),
		ConfidenceScores: make(map[string]float64),
		FieldSources:     make(map[string]string),
		MissingFields:    []string{},
		TotalFields:      bulk.TotalFields,
		FilledCount:      bulk.MatchedCount,
	}

	for _, f := range fields {
		match, ok := bulk.MatchedFields[f.Name]
		if !ok {
			continue
		}
		selector := f.Selector
		result.ConfidenceScores[selector] = match.Confidence
		if match.Matched {
			result.Values[selector] = match.Value
			result.FieldSources[selector] = match.Source
		} else {
			result.MissingFields = append(result.MissingFields, selector)
		}
	}
	sort.Strings(result.MissingFields)

	return result, nil
}

// describeElement converts a form control into a field descriptor.
// Hidden, submit and button controls are not fillable.
func describeElement(el *goquery.Selection) (models.FieldDescriptor, bool) {
	tag := goquery.NodeName(el)
	inputType := strings.ToLower(el.AttrOr("type", "text"))

	switch tag {
	case "input":
		switch inputType {
		case "hidden", "submit", "button", "image", "reset", "file", "password":
			return models.FieldDescriptor{}, false
		}
	case "textarea":
		inputType = "textarea"
	case "select":
		inputType = "select"
	}

	name := el.AttrOr("name", "")
	id := el.AttrOr("id", "")
	if name == "" && id == "" {
		return models.FieldDescriptor{}, false
	}

	_, required := el.Attr("required")
	field := models.FieldDescriptor{
		Name:        firstNonEmpty(name, id),
		Type:        inputType,
		Placeholder: el.AttrOr("placeholder", ""),
		Required:    required,
		Selector:    elementSelector(id, name),
		Label:       elementLabel(el, id),
	}

	if tag == "select" {
		el.Find("option").Each(func(_ int, opt *goquery.Selection) {
			if v := strings.TrimSpace(opt.Text()); v != "" {
				field.Options = append(field.Options, v)
			}
		})
	}

	return field, true
}

// elementLabel resolves the human label for a control: an explicit
// label[for], a wrapping label, or nothing
func elementLabel(el *goquery.Selection, id string) string {
	if id != "" {
		doc := el.Parents().Last()
		label := strings.TrimSpace(doc.Find(fmt.Sprintf("label[for=%q]", id)).First().Text())
		if label != "" {
			return label
		}
	}

	parentLabel := el.ParentsFiltered("label").First()
	if parentLabel.Length() > 0 {
		return strings.TrimSpace(parentLabel.Text())
	}

	return ""
}

func elementSelector(id, name string) string {
	if id != "" {
		return "#" + id
	}
	return fmt.Sprintf("[name='%s']", name)
}

func formSelector(formSel *goquery.Selection, idx int) string {
	if id := formSel.AttrOr("id", ""); id != "" {
		return "#" + id
	}
	return fmt.Sprintf("form:nth-of-type(%d)", idx+1)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
