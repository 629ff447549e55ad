package services

import (
	"strings"

	"autofill-platform/models"
)

// Canonical field purposes
const (
	PurposeEmail       = "email"
	PurposeFirstName   = "first_name"
	PurposeLastName    = "last_name"
	PurposeFullName    = "full_name"
	PurposePhone       = "phone"
	PurposeAddress     = "address"
	PurposeCity        = "city"
	PurposeState       = "state"
	PurposeZipCode     = "zip_code"
	PurposeLinkedIn    = "linkedin"
	PurposeGitHub      = "github"
	PurposeWebsite     = "website"
	PurposeCoverLetter = "cover_letter"
	PurposeSkills      = "skills"
	PurposeExperience  = "experience"
	PurposeEducation   = "education"
	PurposeDate        = "date"
	PurposeText        = "text"
)

// classifierRule maps field text to a canonical purpose. tokenGroups is a
// list of alternatives; a group matches when every token in it appears.
// inputTypes match the HTML input type attribute directly.
type classifierRule struct {
	purpose     string
	tokenGroups [][]string
	inputTypes  []string
}

// Rules are checked in order, so specific purposes must come before the
// generic ones they overlap with ("first name" before "name").
var classifierRules = []classifierRule{
	{purpose: PurposeFirstName, tokenGroups: [][]string{{"first", "name"}, {"fname"}, {"given", "name"}, {"forename"}}},
	{purpose: PurposeLastName, tokenGroups: [][]string{{"last", "name"}, {"lname"}, {"surname"}, {"family", "name"}}},
	{purpose: PurposeEmail, tokenGroups: [][]string{{"email"}, {"e-mail"}}, inputTypes: []string{"email"}},
	{purpose: PurposePhone, tokenGroups: [][]string{{"phone"}, {"mobile"}, {"telephone"}, {"cell"}}, inputTypes: []string{"tel"}},
	{purpose: PurposeZipCode, tokenGroups: [][]string{{"zip"}, {"postal"}, {"postcode"}}},
	{purpose: PurposeCity, tokenGroups: [][]string{{"city"}, {"town"}}},
	{purpose: PurposeState, tokenGroups: [][]string{{"state"}, {"province"}, {"region"}}},
	{purpose: PurposeAddress, tokenGroups: [][]string{{"address"}, {"street"}}},
	{purpose: PurposeLinkedIn, tokenGroups: [][]string{{"linkedin"}}},
	{purpose: PurposeGitHub, tokenGroups: [][]string{{"github"}}},
	{purpose: PurposeWebsite, tokenGroups: [][]string{{"website"}, {"portfolio"}, {"homepage"}, {"personal", "site"}}, inputTypes: []string{"url"}},
	{purpose: PurposeCoverLetter, tokenGroups: [][]string{{"cover", "letter"}, {"motivation"}, {"why", "join"}, {"why", "interested"}}},
	{purpose: PurposeSkills, tokenGroups: [][]string{{"skill"}, {"qualification"}, {"expertise"}}},
	{purpose: PurposeExperience, tokenGroups: [][]string{{"experience"}, {"work", "history"}, {"employment"}}},
	{purpose: PurposeEducation, tokenGroups: [][]string{{"education"}, {"degree"}, {"university"}, {"school"}}},
	{purpose: PurposeDate, tokenGroups: [][]string{{"date"}, {"dob"}, {"birth"}}, inputTypes: []string{"date"}},
	{purpose: PurposeFullName, tokenGroups: [][]string{{"full", "name"}, {"name"}}},
}

// ClassifyField resolves a field descriptor to a canonical purpose.
// Classification is deterministic: rule order decides ties.
func ClassifyField(field models.FieldDescriptor) string {
	text := strings.ToLower(strings.Join([]string{
		field.Name, field.Label, field.Placeholder, field.Context,
	}, " "))
	inputType := strings.ToLower(field.Type)

	for _, rule := range classifierRules {
		for _, t := range rule.inputTypes {
			if inputType == t {
				return rule.purpose
			}
		}
		for _, group := range rule.tokenGroups {
			if containsAll(text, group) {
				return rule.purpose
			}
		}
	}

	return PurposeText
}

func containsAll(text string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(text, token) {
			return false
		}
	}
	return true
}

// purposeSynonyms expands a purpose into retrieval query terms
var purposeSynonyms = map[string]string{
	PurposeEmail:       "email address contact e-mail",
	PurposeFirstName:   "first name given name",
	PurposeLastName:    "last name surname family name",
	PurposeFullName:    "full name",
	PurposePhone:       "phone number mobile telephone contact",
	PurposeAddress:     "street address home address mailing address",
	PurposeCity:        "city town location",
	PurposeState:       "state province",
	PurposeZipCode:     "zip code postal code",
	PurposeLinkedIn:    "linkedin profile url",
	PurposeGitHub:      "github profile repository",
	PurposeWebsite:     "website portfolio personal site url",
	PurposeCoverLetter: "cover letter motivation summary objective",
	PurposeSkills:      "skills qualifications technologies expertise",
	PurposeExperience:  "work experience employment history job role",
	PurposeEducation:   "education degree university school studies",
	PurposeDate:        "date",
}

// patternPurposes are synthesized by regex extraction over retrieved text
var patternPurposes = map[string]bool{
	PurposeEmail:    true,
	PurposePhone:    true,
	PurposeZipCode:  true,
	PurposeLinkedIn: true,
	PurposeGitHub:   true,
	PurposeWebsite:  true,
	PurposeDate:     true,
}

// openEndedPurposes need free-text synthesis rather than a single fact
var openEndedPurposes = map[string]bool{
	PurposeCoverLetter: true,
	PurposeSkills:      true,
	PurposeExperience:  true,
	PurposeEducation:   true,
	PurposeText:        true,
}

// BuildFieldQuery composes the retrieval query for a field from its label,
// surrounding context and purpose synonyms
func BuildFieldQuery(field models.FieldDescriptor, purpose string) string {
	parts := make([]string, 0, 4)
	if field.Label != "" {
		parts = append(parts, field.Label)
	} else if field.Name != "" {
		parts = append(parts, field.Name)
	}
	if field.Context != "" {
		parts = append(parts, field.Context)
	}
	if syn, ok := purposeSynonyms[purpose]; ok {
		parts = append(parts, syn)
	}
	return strings.Join(parts, " ")
}
