package services

import (
	"context"
	"sort"
	"testing"

	"autofill-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFormHTML = `
<html><body>
<form id="application" action="/apply" method="post">
  <label for="first">First Name</label>
  <input type="text" id="first" name="first_name" required>

  <label for="email">Email Address</label>
  <input type="email" id="email" name="email">

  <label>Phone
    <input type="tel" name="phone" placeholder="(555) 555-5555">
  </label>

  <label for="state">State</label>
  <select id="state" name="state">
    <option value="">Choose</option>
    <option>California</option>
    <option>Oregon</option>
  </select>

  <textarea name="cover_letter" placeholder="Tell us about yourself"></textarea>

  <input type="hidden" name="csrf" value="token">
  <input type="password" name="secret">
  <input type="submit" value="Apply">
  <input type="text">
</form>
</body></html>`

func TestAnalyzeHTML(t *testing.T) {
	forms, err := AnalyzeHTML(sampleFormHTML)
	require.NoError(t, err)
	require.Len(t, forms, 1)

	form := forms[0]
	assert.Equal(t, "#application", form.Selector)
	assert.Equal(t, "/apply", form.Action)
	assert.Equal(t, "POST", form.Method)

	// Hidden, password, submit and anonymous inputs are dropped
	require.Len(t, form.Fields, 5)

	first := form.Fields[0]
	assert.Equal(t, "first_name", first.Name)
	assert.Equal(t, "First Name", first.Label)
	assert.Equal(t, "#first", first.Selector)
	assert.True(t, first.Required)

	phone := form.Fields[2]
	assert.Equal(t, "phone", phone.Name)
	assert.Equal(t, "tel", phone.Type)
	assert.Equal(t, "[name='phone']", phone.Selector)
	assert.Contains(t, phone.Label, "Phone")

	state := form.Fields[3]
	assert.Equal(t, "select", state.Type)
	assert.Equal(t, []string{"Choose", "California", "Oregon"}, state.Options)

	letter := form.Fields[4]
	assert.Equal(t, "textarea", letter.Type)
	assert.Equal(t, "Tell us about yourself", letter.Placeholder)
}

func TestAnalyzeHTMLNoForms(t *testing.T) {
	forms, err := AnalyzeHTML("<html><body><p>nothing here</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, forms)
}

func TestAnalyzeHTMLFormWithoutFillableFields(t *testing.T) {
	forms, err := AnalyzeHTML(`<form><input type="submit"></form>`)
	require.NoError(t, err)
	assert.Empty(t, forms)
}

func TestAnalyzeHTMLUnnamedForm(t *testing.T) {
	forms, err := AnalyzeHTML(`<form><input type="text" name="one"></form>`)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "form:nth-of-type(1)", forms[0].Selector)
}

type stubMatcher struct {
	matches map[string]models.FieldMatch
}

func (s *stubMatcher) MatchField(ctx context.Context, ownerID string, field models.FieldDescriptor) models.FieldMatch {
	if m, ok := s.matches[field.Name]; ok {
		m.FieldName = field.Name
		return m
	}
	return models.FieldMatch{FieldName: field.Name}
}

func (s *stubMatcher) MatchFields(ctx context.Context, ownerID string, fields []models.FieldDescriptor) models.BulkMatchResult {
	result := models.BulkMatchResult{
		MatchedFields: make(map[string]models.FieldMatch, len(fields)),
		MissingFields: []string{},
		TotalFields:   len(fields),
	}
	for _, f := range fields {
		m := s.MatchField(ctx, ownerID, f)
		if m.Matched {
			result.MatchedCount++
		} else {
			result.MissingFields = append(result.MissingFields, f.Name)
		}
		result.MatchedFields[f.Name] = m
	}
	sort.Strings(result.MissingFields)
	return result
}

func TestWebFormAutofill(t *testing.T) {
	matcher := &stubMatcher{matches: map[string]models.FieldMatch{
		"first_name": {Matched: true, Value: "Jane", Confidence: 0.9, Source: "resume.pdf"},
		"email":      {Matched: true, Value: "jane@example.com", Confidence: 0.92, Source: "resume.pdf"},
	}}
	svc := NewWebFormService(matcher)

	result, err := svc.Autofill(context.Background(), "owner-1", sampleFormHTML)
	require.NoError(t, err)

	assert.Equal(t, 5, result.TotalFields)
	assert.Equal(t, 2, result.FilledCount)
	assert.Equal(t, "Jane", result.Values["#first"])
	assert.Equal(t, "jane@example.com", result.Values["#email"])
	assert.Equal(t, "resume.pdf", result.FieldSources["#email"])
	assert.InDelta(t, 0.92, result.ConfidenceScores["#email"], 0.001)

	// Unmatched selectors land in missing fields
	assert.Contains(t, result.MissingFields, "[name='phone']")
	assert.Contains(t, result.MissingFields, "[name='cover_letter']")
	assert.Contains(t, result.MissingFields, "#state")
}

func TestWebFormAutofillNoFields(t *testing.T) {
	svc := NewWebFormService(&stubMatcher{})

	_, err := svc.Autofill(context.Background(), "owner-1", "<html><body></body></html>")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
