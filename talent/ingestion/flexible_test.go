package ingestion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringFieldNormalizesKeyStyles(t *testing.T) {
	docs := []FlexibleResumeDocument{
		{"full_name": "Maria Santos"},
		{"Full Name": "Maria Santos"},
		{"fullName": "Maria Santos"},
	}

	for _, doc := range docs {
		got, ok := doc.StringField("full_name")
		require.True(t, ok)
		assert.Equal(t, "Maria Santos", got)
	}
}

func TestStringFieldSkipsEmptyAndMissing(t *testing.T) {
	doc := FlexibleResumeDocument{"name": "  ", "title": "Engineer"}

	_, ok := doc.StringField("name")
	assert.False(t, ok)

	got, ok := doc.StringField("name", "title")
	require.True(t, ok)
	assert.Equal(t, "Engineer", got)

	_, ok = FlexibleResumeDocument{}.StringField("anything")
	assert.False(t, ok)
}

func TestViewsReadNestedContactBlock(t *testing.T) {
	raw := `{
		"contact_information": {
			"name": "Jose Rizal",
			"email": "jose@example.com",
			"phone": "+63 900 000 0000"
		},
		"work_experience": [{"company": "ABC Corp"}]
	}`
	var doc FlexibleResumeDocument
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	name, ok := doc.Name()
	require.True(t, ok)
	assert.Equal(t, "Jose Rizal", name)

	email, ok := doc.Email()
	require.True(t, ok)
	assert.Equal(t, "jose@example.com", email)

	phone, ok := doc.Phone()
	require.True(t, ok)
	assert.Equal(t, "+63 900 000 0000", phone)
}

func TestSchemaVariesWithSource(t *testing.T) {
	// One resume has volunteer work, one doesn't; both are valid documents
	withVolunteer := FlexibleResumeDocument{
		"name":           "A",
		"volunteer_work": []any{map[string]any{"organization": "Red Cross"}},
	}
	withoutVolunteer := FlexibleResumeDocument{"name": "B"}

	assert.True(t, withVolunteer.HasField("volunteer_work"))
	assert.False(t, withoutVolunteer.HasField("volunteer_work"))
}

func TestFlattenTextIsDeterministic(t *testing.T) {
	doc := FlexibleResumeDocument{
		"skills": []any{"Go", "SQL"},
		"name":   "A",
		"education": map[string]any{
			"school": "XYZ University",
			"degree": "BS CS",
		},
	}

	first := doc.FlattenText()
	assert.Equal(t, first, doc.FlattenText())

	assert.Contains(t, first, "name: A")
	assert.Contains(t, first, "skills: Go")
	assert.Contains(t, first, "skills: SQL")
	assert.Contains(t, first, "education.school: XYZ University")
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Full Name", "full_name"},
		{"fullName", "full_name"},
		{"full-name", "full_name"},
		{"FULL_NAME", "full_name"},
		{"email", "email"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeKey(tt.in), tt.in)
	}
}
