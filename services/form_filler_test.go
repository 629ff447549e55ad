package services

import (
	"context"
	"testing"

	"autofill-platform/models"

	"github.com/stretchr/testify/assert"
)

func TestFillPDFRejectsNonPDFInput(t *testing.T) {
	filler := NewFormFiller(&stubMatcher{})

	_, _, err := filler.FillPDF(context.Background(), "owner-1", "form.pdf", []byte("not a pdf"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestPrettifyFieldName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"first_name", "first name"},
		{"firstName", "first Name"},
		{"applicant-email", "applicant email"},
		{"contact.phone", "contact phone"},
		{"Name", "Name"},
		{"ZIP", "ZIP"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, prettifyFieldName(tt.in), "input %q", tt.in)
	}
}

func TestTextFieldType(t *testing.T) {
	assert.Equal(t, "text", textFieldType(acroTextField{Name: "email"}))
	assert.Equal(t, "textarea", textFieldType(acroTextField{Name: "cover_letter", Multiline: true}))
}
