package services

import (
	"testing"

	"autofill-platform/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFieldPriority(t *testing.T) {
	tests := []struct {
		name     string
		field    models.FieldDescriptor
		expected string
	}{
		{"first name beats bare name", models.FieldDescriptor{Name: "first_name", Label: "First Name"}, PurposeFirstName},
		{"last name beats bare name", models.FieldDescriptor{Name: "last_name", Label: "Last Name"}, PurposeLastName},
		{"surname", models.FieldDescriptor{Name: "surname"}, PurposeLastName},
		{"bare name falls through to full name", models.FieldDescriptor{Name: "name", Label: "Name"}, PurposeFullName},
		{"full name", models.FieldDescriptor{Label: "Full Name"}, PurposeFullName},
		{"email by label", models.FieldDescriptor{Label: "Email Address"}, PurposeEmail},
		{"phone by label", models.FieldDescriptor{Label: "Mobile Number"}, PurposePhone},
		{"zip", models.FieldDescriptor{Name: "zip"}, PurposeZipCode},
		{"postal code", models.FieldDescriptor{Label: "Postal Code"}, PurposeZipCode},
		{"linkedin", models.FieldDescriptor{Name: "linkedin_url"}, PurposeLinkedIn},
		{"github", models.FieldDescriptor{Label: "GitHub Profile"}, PurposeGitHub},
		{"cover letter", models.FieldDescriptor{Label: "Cover Letter"}, PurposeCoverLetter},
		{"why join is cover letter", models.FieldDescriptor{Label: "Why do you want to join us?"}, PurposeCoverLetter},
		{"skills", models.FieldDescriptor{Label: "Relevant Skills"}, PurposeSkills},
		{"experience", models.FieldDescriptor{Label: "Work Experience"}, PurposeExperience},
		{"education", models.FieldDescriptor{Label: "Education"}, PurposeEducation},
		{"placeholder is considered", models.FieldDescriptor{Name: "f1", Placeholder: "your email"}, PurposeEmail},
		{"context is considered", models.FieldDescriptor{Name: "f2", Context: "Enter your phone below"}, PurposePhone},
		{"unknown falls back to text", models.FieldDescriptor{Name: "fax"}, PurposeText},
		{"empty descriptor is text", models.FieldDescriptor{}, PurposeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyField(tt.field))
		})
	}
}

func TestClassifyFieldInputTypeHints(t *testing.T) {
	assert.Equal(t, PurposeEmail, ClassifyField(models.FieldDescriptor{Name: "contact", Type: "email"}))
	assert.Equal(t, PurposePhone, ClassifyField(models.FieldDescriptor{Name: "contact", Type: "tel"}))
	assert.Equal(t, PurposeWebsite, ClassifyField(models.FieldDescriptor{Name: "link", Type: "url"}))
	assert.Equal(t, PurposeDate, ClassifyField(models.FieldDescriptor{Name: "start", Type: "date"}))
}

func TestClassifyFieldCaseInsensitive(t *testing.T) {
	assert.Equal(t, PurposeEmail, ClassifyField(models.FieldDescriptor{Label: "EMAIL"}))
	assert.Equal(t, PurposeFirstName, ClassifyField(models.FieldDescriptor{Label: "FIRST NAME"}))
}

func TestBuildFieldQuery(t *testing.T) {
	field := models.FieldDescriptor{Name: "email", Label: "Email Address", Context: "Contact details"}
	query := BuildFieldQuery(field, PurposeEmail)

	assert.Contains(t, query, "Email Address")
	assert.Contains(t, query, "Contact details")
	assert.Contains(t, query, "email address contact")
}

func TestBuildFieldQueryFallsBackToName(t *testing.T) {
	field := models.FieldDescriptor{Name: "applicant_city"}
	query := BuildFieldQuery(field, PurposeCity)

	assert.Contains(t, query, "applicant_city")
	assert.Contains(t, query, "city town")
}
