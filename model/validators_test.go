package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	for _, username := range []string{"alice", "Bob-99", "under_score", "dot.ted", "abc"} {
		assert.Nil(t, ValidateUsername(username), username)
	}

	// length bounds
	assert.NotNil(t, ValidateUsername("ab"))
	assert.NotNil(t, ValidateUsername("a234567890123456789012345678901"))

	// reserved names, case-insensitively
	for _, username := range []string{"admin", "Admin", "LOCALHOST", "noreply", "settings", "moderator"} {
		assert.NotNil(t, ValidateUsername(username), username)
	}
	assert.NotNil(t, ValidateUsername(".well-known-ish"))

	// disallowed characters
	for _, username := range []string{"has space", "emoji🙂name", "semi;colon", "at@sign"} {
		assert.NotNil(t, ValidateUsername(username), username)
	}
}

func TestReportCategoryValidation(t *testing.T) {
	assert.True(t, CategorySpam.Valid())
	assert.True(t, CategoryFalseInfo.Valid())
	assert.False(t, ReportCategory("???").Valid())
	assert.Equal(t, "Spam", CategoryDisplayNames[CategorySpam])
}

func TestParseContentType(t *testing.T) {
	for raw, want := range map[string]ContentType{
		"pulse":   ContentTypePulse,
		"reply":   ContentTypeReply,
		"profile": ContentTypeProfile,
	} {
		got, err := ParseContentType(raw)
		assert.Nil(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseContentType("column")
	assert.NotNil(t, err)
}
