package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Question is one step of the guided questionnaire.
type Question struct {
	ID     int    `yaml:"id"`
	Key    string `yaml:"key"`
	Prompt string `yaml:"prompt"`
}

// QuestionSet is the ordered list of questionnaire steps.
type QuestionSet struct {
	Questions []Question `yaml:"questions"`
}

// DefaultQuestions returns the four ikigai questions in their fixed order.
// The keys match what the results generator expects.
func DefaultQuestions() QuestionSet {
	return QuestionSet{Questions: []Question{
		{ID: 1, Key: "good_at", Prompt: "What are you good at?"},
		{ID: 2, Key: "love", Prompt: "What do you love?"},
		{ID: 3, Key: "world_needs", Prompt: "What does the world need?"},
		{ID: 4, Key: "paid_for", Prompt: "What can you be paid for?"},
	}}
}

// LoadQuestions loads the question set from a YAML file, falling back to the
// defaults when the file does not exist.
func LoadQuestions(filepath string) (QuestionSet, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultQuestions(), nil
		}
		return QuestionSet{}, fmt.Errorf("error reading questions file: %w", err)
	}

	var qs QuestionSet
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return QuestionSet{}, fmt.Errorf("error parsing questions YAML: %w", err)
	}
	if len(qs.Questions) == 0 {
		return DefaultQuestions(), nil
	}
	return qs, nil
}

// ByID returns the question with the given id, or false when out of range.
func (q QuestionSet) ByID(id int) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}
