package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// PersonalizeRequest carries the context the model needs to draft a short
// personalized paragraph for one school.
type PersonalizeRequest struct {
	SchoolName   string
	CoachNames   []string
	AthleteNotes string
}

// Personalizer produces the text bound to the personalized-message token.
type Personalizer interface {
	Personalize(ctx context.Context, req PersonalizeRequest) (string, error)
}

const personalizerSystemPrompt = "You write one short paragraph (2-3 sentences) " +
	"that a high-school athlete adds to a recruiting email to a college coach. " +
	"Mention the school specifically, stay factual to the athlete's notes, and " +
	"keep the tone respectful and direct. Return only the paragraph, no greeting " +
	"and no signature."

// OpenAIPersonalizer drafts personalized paragraphs with a chat completion
// model.
type OpenAIPersonalizer struct {
	client *openai.Client
	model  string
}

// OpenAIPersonalizerOption configures an OpenAIPersonalizer.
type OpenAIPersonalizerOption func(*OpenAIPersonalizer)

// WithModel overrides the completion model.
func WithModel(model string) OpenAIPersonalizerOption {
	return func(p *OpenAIPersonalizer) {
		if model != "" {
			p.model = model
		}
	}
}

// WithOpenAIClient injects a preconfigured client, used in tests to point at
// a stub server.
func WithOpenAIClient(client *openai.Client) OpenAIPersonalizerOption {
	return func(p *OpenAIPersonalizer) {
		if client != nil {
			p.client = client
		}
	}
}

// NewOpenAIPersonalizer creates a personalizer authenticated with the given
// API key.
func NewOpenAIPersonalizer(apiKey string, opts ...OpenAIPersonalizerOption) *OpenAIPersonalizer {
	p := &OpenAIPersonalizer{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4oMini,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Personalize drafts one paragraph for the given school. Provider failures
// and empty completions are wrapped in ErrPersonalizationFailed so callers
// can distinguish them from quota denials.
func (p *OpenAIPersonalizer) Personalize(ctx context.Context, req PersonalizeRequest) (string, error) {
	if strings.TrimSpace(req.SchoolName) == "" {
		return "", errors.Join(ErrPersonalizationFailed, errors.New("school name is required"))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "School: %s\n", req.SchoolName)
	if len(req.CoachNames) > 0 {
		fmt.Fprintf(&sb, "Coaches: %s\n", strings.Join(req.CoachNames, ", "))
	}
	if req.AthleteNotes != "" {
		fmt.Fprintf(&sb, "Athlete notes: %s\n", req.AthleteNotes)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: personalizerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return "", errors.Join(ErrPersonalizationFailed, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Join(ErrPersonalizationFailed, errors.New("empty completion"))
	}

	message := strings.TrimSpace(resp.Choices[0].Message.Content)
	if message == "" {
		return "", errors.Join(ErrPersonalizationFailed, errors.New("empty completion"))
	}
	return message, nil
}
