// Package ikigai generates career path suggestions from the four
// questionnaire answers, and parses the flat generated output into
// structured entries for display.
package ikigai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/ikiguide/ikiguide/internal/config"
	"github.com/ikiguide/ikiguide/internal/logger"
)

const systemPrompt = "You are a career path advisor specializing in Ikigai."

const promptTemplate = `
INSTRUCTIONS

Using the below USER RESPONSES to the Ikigai elements, identify and generate five unique career directions for the user.

USER RESPONSES

    - Skills: {good_at}
    - Passions: {passions}
    - World Needs: {world_needs}
    - Income Potential: {paid_for}

GUIDANCE

 For each path:

    - Generate a title that aligns with the USER RESPONSES.
        - Provide a title that avoids frivolity and quotes.
        - All CAPS.
        - Do not repeat USER RESPONSES
        - Do no include quotes
        - Do not include the word "Career"
        - Do not include "[]" brackets
        - Do not include the word "Title" or "Path"
    - Generate a two-sentence description that highlights:
        - How this path leverages the user's unique skills and aligns with the USER RESPONSES.
        - The deeper purpose and passion that fuels it.
        - Tangible ways it fulfills societal needs.
        - Innovative methods for sustainable income generation.

SUMMARY

After listing the career directions, include a reflective summary prefixed with "SUMMARY:" that:

    - Aligns with the USER RESPONSES to the Ikigai elements.
    - Explains how the paths provide personal fulfillment, societal impact, and sustainable career opportunities.
    - Summarizes how they holistically address societal needs and income potential.

EXAMPLE OUTPUT

[PATH NAME 1]
[Description]

[PATH NAME 2]
[Description]

[PATH NAME 3]
[Description]

[PATH NAME 4]
[Description]

[PATH NAME 5]
[Description]

SUMMARY: [Summary]
`

// Answers holds the four ikigai element responses.
type Answers struct {
	GoodAt     string
	Love       string
	WorldNeeds string
	PaidFor    string
}

// AnswersFromResponses maps question ids 1..4 onto the ikigai elements.
// All four answers must be present and non-empty.
func AnswersFromResponses(responses map[int]string) (Answers, error) {
	a := Answers{
		GoodAt:     responses[1],
		Love:       responses[2],
		WorldNeeds: responses[3],
		PaidFor:    responses[4],
	}
	if a.GoodAt == "" || a.Love == "" || a.WorldNeeds == "" || a.PaidFor == "" {
		return Answers{}, fmt.Errorf("incomplete user responses")
	}
	return a, nil
}

// Map returns the answers keyed the way the API exposes them.
func (a Answers) Map() map[string]string {
	return map[string]string{
		"good_at":     a.GoodAt,
		"love":        a.Love,
		"world_needs": a.WorldNeeds,
		"paid_for":    a.PaidFor,
	}
}

// Generator produces the flat path list for a set of answers.
type Generator interface {
	Paths(ctx context.Context, answers Answers) ([]string, error)
}

// ModelGenerator generates paths with an eino chat model.
type ModelGenerator struct {
	cfg   config.ModelConfig
	model model.BaseChatModel
}

// NewModelGenerator creates the chat model for the configured provider.
func NewModelGenerator(ctx context.Context, cfg config.ModelConfig) (*ModelGenerator, error) {
	var (
		chatModel model.BaseChatModel
		err       error
	)

	switch cfg.Provider {
	case "openai", "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		maxTokens := cfg.MaxTokens
		temperature := float32(cfg.Temperature)
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
		})
	case "ollama":
		chatModel, err = ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
	default:
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	return &ModelGenerator{cfg: cfg, model: chatModel}, nil
}

// Paths asks the model for five career directions plus a summary and splits
// the response into a flat list of non-empty lines.
func (g *ModelGenerator) Paths(ctx context.Context, answers Answers) ([]string, error) {
	start := time.Now()

	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fillPrompt(answers)),
	}

	out, err := g.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("error generating ikigai paths: %w", err)
	}

	paths := splitPaths(out.Content)

	logger.Info().
		Int("paths", len(paths)).
		Dur("generation_time", time.Since(start)).
		Msg("generated ikigai paths")

	return paths, nil
}

func fillPrompt(a Answers) string {
	prompt := strings.ReplaceAll(promptTemplate, "{good_at}", a.GoodAt)
	prompt = strings.ReplaceAll(prompt, "{passions}", a.Love)
	prompt = strings.ReplaceAll(prompt, "{world_needs}", a.WorldNeeds)
	prompt = strings.ReplaceAll(prompt, "{paid_for}", a.PaidFor)
	return prompt
}

func splitPaths(content string) []string {
	var paths []string
	for _, line := range strings.Split(strings.TrimSpace(content), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paths = append(paths, line)
		}
	}
	return paths
}
