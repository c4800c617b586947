package ikigai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntriesPairsAndSummary(t *testing.T) {
	entries := ParseEntries([]string{"A", "desc A", "B", "desc B", "SUMMARY: wrap-up"})

	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Kind: KindPath, Title: "A", Description: "desc A"}, entries[0])
	assert.Equal(t, Entry{Kind: KindPath, Title: "B", Description: "desc B"}, entries[1])
	assert.Equal(t, Entry{Kind: KindSummary, Description: "wrap-up"}, entries[2])
}

func TestParseEntriesExcludesNoPathElements(t *testing.T) {
	entries := ParseEntries([]string{"A", "desc A", "NO PATH: nothing suitable", "B", "desc B"})

	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotContains(t, e.Title, "NO PATH")
		assert.NotContains(t, e.Description, "NO PATH")
	}
	assert.Equal(t, "B", entries[1].Title)
}

func TestParseEntriesDropsUnpairedTail(t *testing.T) {
	entries := ParseEntries([]string{"A", "desc A", "B", "desc B", "orphan"})

	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Title)
	assert.Equal(t, "B", entries[1].Title)
}

func TestParseEntriesEmptyInput(t *testing.T) {
	assert.Empty(t, ParseEntries(nil))
	assert.Empty(t, ParseEntries([]string{}))
}

func TestParseEntriesSummaryOnly(t *testing.T) {
	entries := ParseEntries([]string{"SUMMARY: just a synthesis"})

	require.Len(t, entries, 1)
	assert.Equal(t, KindSummary, entries[0].Kind)
	assert.Equal(t, "just a synthesis", entries[0].Description)
}

func TestParseEntriesNoSummary(t *testing.T) {
	entries := ParseEntries([]string{"A", "desc A"})

	require.Len(t, entries, 1)
	assert.Equal(t, KindPath, entries[0].Kind)
}

func TestParseEntriesIgnoresBlankElements(t *testing.T) {
	entries := ParseEntries([]string{"", "A", "  ", "desc A"})

	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Kind: KindPath, Title: "A", Description: "desc A"}, entries[0])
}

func TestAnswersFromResponses(t *testing.T) {
	answers, err := AnswersFromResponses(map[int]string{
		1: "teaching", 2: "music", 3: "calm", 4: "workshops",
	})
	require.NoError(t, err)
	assert.Equal(t, "teaching", answers.GoodAt)
	assert.Equal(t, "music", answers.Love)
	assert.Equal(t, "calm", answers.WorldNeeds)
	assert.Equal(t, "workshops", answers.PaidFor)

	_, err = AnswersFromResponses(map[int]string{1: "teaching", 2: "music"})
	assert.Error(t, err)
}

func TestFillPromptInterpolatesAllAnswers(t *testing.T) {
	prompt := fillPrompt(Answers{
		GoodAt:     "systems thinking",
		Love:       "gardens",
		WorldNeeds: "repair culture",
		PaidFor:    "consulting",
	})

	assert.Contains(t, prompt, "systems thinking")
	assert.Contains(t, prompt, "gardens")
	assert.Contains(t, prompt, "repair culture")
	assert.Contains(t, prompt, "consulting")
	assert.NotContains(t, prompt, "{good_at}")
	assert.NotContains(t, prompt, "{passions}")
}

func TestSplitPathsDropsBlankLines(t *testing.T) {
	paths := splitPaths("A\n\ndesc A\n  \nB\ndesc B\n")
	assert.Equal(t, []string{"A", "desc A", "B", "desc B"}, paths)
}
