package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/envutil"
	"github.com/timlawrenz/fluffy-train-sub000/internal/platform/logger"
)

// CaptionBrief is the content brief handed to the text generator.
type CaptionBrief struct {
	PersonaName  string
	ClusterName  string
	PhotoSummary string
	// Style carries the persona's caption style hints decoded from
	// Persona.CaptionStyle, when present.
	Style map[string]any
}

// TextGenerator produces caption text for a brief. May fail; callers must
// have a deterministic fallback.
type TextGenerator interface {
	Generate(ctx context.Context, brief CaptionBrief) (string, error)
}

type disabledTextGenerator struct{}

// NewDisabledTextGenerator always fails, forcing the caption fallback
// path. Wired when no OpenAI credentials are configured.
func NewDisabledTextGenerator() TextGenerator {
	return disabledTextGenerator{}
}

func (disabledTextGenerator) Generate(ctx context.Context, brief CaptionBrief) (string, error) {
	return "", fmt.Errorf("caption generation disabled")
}

type openAICaptionService struct {
	log    *logger.Logger
	client *openai.Client
	model  string
}

// NewOpenAICaptionService builds the production TextGenerator.
func NewOpenAICaptionService(log *logger.Logger) (TextGenerator, error) {
	apiKey := strings.TrimSpace(envutil.GetEnv("OPENAI_API_KEY", "", log))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	model := envutil.GetEnv("OPENAI_MODEL", openai.GPT4oMini, log)

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(envutil.GetEnv("OPENAI_BASE_URL", "", log)); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &openAICaptionService{
		log:    log.With("service", "OpenAICaptionService"),
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (s *openAICaptionService) Generate(ctx context.Context, brief CaptionBrief) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write short, natural social media captions. Output only the caption text, no hashtags, no quotes.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildCaptionPrompt(brief),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("caption generation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("caption generation: empty response")
	}
	caption := strings.TrimSpace(resp.Choices[0].Message.Content)
	if caption == "" {
		return "", fmt.Errorf("caption generation: blank caption")
	}
	return caption, nil
}

func buildCaptionPrompt(brief CaptionBrief) string {
	var b strings.Builder
	b.WriteString("Write a caption for a photo post.\n")
	if brief.PersonaName != "" {
		b.WriteString("Account: " + brief.PersonaName + "\n")
	}
	if brief.ClusterName != "" {
		b.WriteString("Theme: " + brief.ClusterName + "\n")
	}
	if brief.PhotoSummary != "" {
		b.WriteString("Photo: " + brief.PhotoSummary + "\n")
	}
	if tone, ok := brief.Style["tone"].(string); ok && tone != "" {
		b.WriteString("Tone: " + tone + "\n")
	}
	b.WriteString("Keep it under 2 sentences.")
	return b.String()
}
