package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQuestionsMissingFileFallsBack(t *testing.T) {
	qs, err := LoadQuestions(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Len(t, qs.Questions, 4)

	q, ok := qs.ByID(1)
	require.True(t, ok)
	assert.Equal(t, "good_at", q.Key)
}

func TestLoadQuestionsFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
questions:
  - id: 1
    key: good_at
    prompt: "Custom prompt one"
  - id: 2
    key: love
    prompt: "Custom prompt two"
`), 0o644))

	qs, err := LoadQuestions(path)
	require.NoError(t, err)
	require.Len(t, qs.Questions, 2)

	q, ok := qs.ByID(2)
	require.True(t, ok)
	assert.Equal(t, "Custom prompt two", q.Prompt)

	_, ok = qs.ByID(9)
	assert.False(t, ok)
}

func TestOriginsSplitsAndTrims(t *testing.T) {
	cfg := &Config{CORSOrigins: "http://localhost:3000, https://ikiguide.example.com ,"}
	assert.Equal(t,
		[]string{"http://localhost:3000", "https://ikiguide.example.com"},
		cfg.Origins())
}
