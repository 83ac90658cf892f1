package embedding

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"finrag/internal/config"
	"finrag/internal/models"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder is the narrow gateway surface the pipeline needs. The
// langchaingo EmbedderImpl satisfies it.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// New builds an embedder for the configured provider. Ingestion issues
// many sequential calls, so the HTTP client carries the long budget
// from the config.
func New(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	client := &http.Client{Timeout: time.Duration(cfg.TimeoutSecs) * time.Second}

	switch cfg.Provider {
	case "openai":
		llm, err := openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
			openai.WithEmbeddingModel(cfg.Model),
			openai.WithHTTPClient(client),
		)
		if err != nil {
			return nil, fmt.Errorf("init openai embedder: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(client),
		)
		if err != nil {
			return nil, fmt.Errorf("init ollama embedder: %w", err)
		}
		return embeddings.NewEmbedder(llm)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// EmbedChunks embeds one file's chunk texts into records. A chunk whose
// embedding comes back empty is dropped rather than failing the run; a
// gateway error aborts with the partial work discarded.
func EmbedChunks(ctx context.Context, embedder Embedder, source string, texts []string) ([]models.ChunkRecord, int, error) {
	if len(texts) == 0 {
		return nil, 0, nil
	}

	base := filepath.Base(source)
	var records []models.ChunkRecord
	dropped := 0
	for i, text := range texts {
		vec, err := embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, dropped, fmt.Errorf("embed chunk %d of %s: %w", i, source, err)
		}
		if len(vec) == 0 {
			dropped++
			continue
		}
		records = append(records, models.ChunkRecord{
			ID:        fmt.Sprintf("%s-%d", base, i),
			Source:    source,
			Text:      text,
			Embedding: vec,
		})
	}
	if dropped > 0 {
		log.Warn().Str("source", source).Int("dropped", dropped).Msg("Chunks dropped with empty embeddings")
	}
	return records, dropped, nil
}
