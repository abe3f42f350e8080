package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	baseMaxOutputTokens  int64 = 512
	limitMaxOutputTokens int64 = 2048
	maxInputRunes              = 8000

	systemPrompt = `Describe the article for a list of faith resources in one or two short sentences.

Rules:
- At most 40 words, at most 200 characters.
- Say what the reader will find: topic, key people, events or dates.
- Warm but neutral tone, no preaching, no calls to action.
- No lists, emojis, hashtags or links.
- Output plain text in the same language as the input.`
)

var errEmptyInput = errors.New("input is empty")

// OpenAISummarizer calls OpenAI's Responses API to produce descriptions.
type OpenAISummarizer struct {
	client openai.Client
}

// NewOpenAISummarizer builds a new summarizer instance. Extra options are
// passed to the OpenAI client.
func NewOpenAISummarizer(apiKey string, opts ...option.RequestOption) *OpenAISummarizer {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAISummarizer{
		client: openai.NewClient(opts...),
	}
}

// Summarize produces a single description for a resource listing.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text := truncateRunes(strings.TrimSpace(input.Text), maxInputRunes)
	if text == "" {
		return "", errEmptyInput
	}

	userPromptBuilder := strings.Builder{}
	if title := strings.TrimSpace(input.Title); title != "" {
		userPromptBuilder.WriteString("Title:\n")
		userPromptBuilder.WriteString(title)
		userPromptBuilder.WriteString("\n")
	}
	if sourceURL := strings.TrimSpace(input.SourceURL); sourceURL != "" {
		userPromptBuilder.WriteString("Source:\n")
		userPromptBuilder.WriteString(sourceURL)
		userPromptBuilder.WriteString("\n")
	}
	userPromptBuilder.WriteString("Content:\n")
	userPromptBuilder.WriteString(text)

	maxOutputTokens := baseMaxOutputTokens
	for {
		resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           openai.ChatModelGPT5Mini2025_08_07,
			ServiceTier:     responses.ResponseNewParamsServiceTierFlex,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Reasoning: responses.ReasoningParam{
				Effort: openai.ReasoningEffortLow,
			},
			Instructions: openai.String(systemPrompt),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(userPromptBuilder.String()),
			},
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens *= 2
				if maxOutputTokens > limitMaxOutputTokens {
					maxOutputTokens = limitMaxOutputTokens
				}
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		description := strings.Join(strings.Fields(resp.OutputText()), " ")
		if description == "" {
			return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}
		return description, nil
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
