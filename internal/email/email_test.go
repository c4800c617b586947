package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikiguide/ikiguide/internal/ikigai"
)

func TestValidate(t *testing.T) {
	assert.True(t, Validate("user@example.com"))
	assert.True(t, Validate("  user@example.com  "))
	assert.True(t, Validate("first.last+tag@sub.example.co"))

	assert.False(t, Validate(""))
	assert.False(t, Validate("   "))
	assert.False(t, Validate("not-an-email"))
	assert.False(t, Validate("user@"))
	assert.False(t, Validate("@example.com"))
	assert.False(t, Validate("user@example"))
}

func TestRenderResults(t *testing.T) {
	body, err := RenderResults([]ikigai.Entry{
		{Kind: ikigai.KindPath, Title: "COMMUNITY EDUCATOR", Description: "Teach practical skills."},
		{Kind: ikigai.KindPath, Title: "REPAIR ADVOCATE", Description: "Champion repair culture."},
		{Kind: ikigai.KindSummary, Description: "These paths combine your strengths."},
	}, "")
	require.NoError(t, err)

	assert.Contains(t, body, "COMMUNITY EDUCATOR")
	assert.Contains(t, body, "Champion repair culture.")
	assert.Contains(t, body, "These paths combine your strengths.")
	assert.Contains(t, body, "<html>")
	assert.NotContains(t, body, "Additional Message")
}

func TestRenderResultsWithNote(t *testing.T) {
	body, err := RenderResults([]ikigai.Entry{
		{Kind: ikigai.KindPath, Title: "A", Description: "desc A"},
	}, "please forward to my mentor")
	require.NoError(t, err)

	assert.Contains(t, body, "Additional Message")
	assert.Contains(t, body, "please forward to my mentor")
}

func TestRenderResultsEscapesNote(t *testing.T) {
	body, err := RenderResults([]ikigai.Entry{
		{Kind: ikigai.KindPath, Title: "A", Description: "desc A"},
	}, "<img src=x onerror=alert(1)>")
	require.NoError(t, err)
	assert.NotContains(t, body, "<img")
}

func TestRenderResultsEscapesMarkup(t *testing.T) {
	body, err := RenderResults([]ikigai.Entry{
		{Kind: ikigai.KindPath, Title: "<script>alert(1)</script>", Description: "desc"},
	}, "")
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestRenderResultsNoSummary(t *testing.T) {
	body, err := RenderResults([]ikigai.Entry{
		{Kind: ikigai.KindPath, Title: "A", Description: "desc A"},
	}, "")
	require.NoError(t, err)
	assert.NotContains(t, body, "Summary")
}
