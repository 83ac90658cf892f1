package llmservice

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"finrag/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// generation stays close to deterministic so repeated questions over
// the same context give comparable answers
const temperature = 0.2

// Generator produces a completion for a grounding prompt.
type Generator struct {
	llm llms.Model
}

func NewGenerator(cfg *config.LLMConfig) (*Generator, error) {
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}

	switch cfg.Provider {
	case "openai":
		llm, err := openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
			openai.WithHTTPClient(client),
		)
		if err != nil {
			return nil, fmt.Errorf("init openai llm: %w", err)
		}
		return &Generator{llm: llm}, nil
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(client),
		)
		if err != nil {
			return nil, fmt.Errorf("init ollama llm: %w", err)
		}
		return &Generator{llm: llm}, nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := g.llm.GenerateContent(ctx, messages, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("generate: no choices returned")
	}
	return res.Choices[0].Content, nil
}
