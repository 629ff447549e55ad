package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPatternEmail(t *testing.T) {
	value, ok := ExtractPattern(PurposeEmail, "Reach me at jane.doe+work@example.co.uk or by phone.")
	require.True(t, ok)
	assert.Equal(t, "jane.doe+work@example.co.uk", value)
}

func TestExtractPatternPhone(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"Call (415) 555-0132 anytime", "(415) 555-0132"},
		{"Phone: 415-555-0132", "415-555-0132"},
		{"Phone: +1 415 555 0132", "+1 415 555 0132"},
		{"Short form 555-0100 listed", "555-0100"},
	}
	for _, tt := range tests {
		value, ok := ExtractPattern(PurposePhone, tt.text)
		require.True(t, ok, "no match in %q", tt.text)
		assert.Equal(t, tt.expected, value)
	}
}

func TestExtractPatternZip(t *testing.T) {
	value, ok := ExtractPattern(PurposeZipCode, "San Francisco, CA 94107-1234")
	require.True(t, ok)
	assert.Equal(t, "94107-1234", value)
}

func TestExtractPatternLinkedIn(t *testing.T) {
	value, ok := ExtractPattern(PurposeLinkedIn, "Profile: https://www.linkedin.com/in/jane-doe and more")
	require.True(t, ok)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", value)
}

func TestExtractPatternDate(t *testing.T) {
	value, ok := ExtractPattern(PurposeDate, "Graduated May 15, 2020 with honors")
	require.True(t, ok)
	assert.Equal(t, "May 15, 2020", value)

	value, ok = ExtractPattern(PurposeDate, "DOB: 01/02/1990")
	require.True(t, ok)
	assert.Equal(t, "01/02/1990", value)
}

func TestExtractPatternNoMatch(t *testing.T) {
	_, ok := ExtractPattern(PurposeEmail, "no contact details here")
	assert.False(t, ok)
}

func TestExtractPatternUnknownPurpose(t *testing.T) {
	_, ok := ExtractPattern(PurposeSkills, "Go, Python, SQL")
	assert.False(t, ok)
}

func TestValidateValue(t *testing.T) {
	assert.True(t, ValidateValue(PurposeEmail, "jane@example.com"))
	assert.False(t, ValidateValue(PurposeEmail, "not an email"))

	assert.True(t, ValidateValue(PurposePhone, "(415) 555-0132"))
	assert.False(t, ValidateValue(PurposePhone, "call me"))

	assert.True(t, ValidateValue(PurposeZipCode, "94107"))
	assert.False(t, ValidateValue(PurposeZipCode, "abcde"))

	assert.True(t, ValidateValue(PurposeWebsite, "https://example.com"))
	assert.False(t, ValidateValue(PurposeWebsite, "localhost"))

	// Open-ended purposes only require a non-empty value
	assert.True(t, ValidateValue(PurposeSkills, "Go, distributed systems"))
	assert.False(t, ValidateValue(PurposeSkills, ""))
}
