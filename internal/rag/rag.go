package rag

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"finrag/internal/chunker"
	"finrag/internal/config"
	"finrag/internal/embedding"
	"finrag/internal/index"
	"finrag/internal/models"
)

// Generator is the generation gateway surface the composer needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DocumentReader extracts plain text from corpus files.
type DocumentReader interface {
	Supported(path string) bool
	Read(path string) (string, error)
}

// RAG ties the pipeline together: corpus ingestion into the index
// store, similarity retrieval, and grounded answer composition.
type RAG struct {
	store     *index.Store
	chunker   *chunker.Chunker
	embedder  embedding.Embedder
	generator Generator
	reader    DocumentReader
	cfg       *config.Config

	ingestMu sync.Mutex
}

func NewRAG(store *index.Store, ch *chunker.Chunker, embedder embedding.Embedder, generator Generator, reader DocumentReader, cfg *config.Config) *RAG {
	return &RAG{
		store:     store,
		chunker:   ch,
		embedder:  embedder,
		generator: generator,
		reader:    reader,
		cfg:       cfg,
	}
}

// Ingest rebuilds the whole index from the corpus directory. The store
// is only touched once the full snapshot is assembled; a gateway
// failure leaves the previous snapshot in place. Concurrent calls are
// serialized.
func (r *RAG) Ingest(ctx context.Context) (models.IngestStats, error) {
	r.ingestMu.Lock()
	defer r.ingestMu.Unlock()

	var stats models.IngestStats
	root := r.cfg.RAG.DataDir

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if r.reader.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walk corpus %s: %w", root, err)
	}

	next := []models.ChunkRecord{}
	for _, path := range files {
		stats.FilesProcessed++

		text, err := r.reader.Read(path)
		if err != nil {
			// unreadable content of a supported type is an empty file,
			// not a failed run
			log.Warn().Err(err).Str("file", path).Msg("Skipping unreadable document")
			continue
		}

		source, err := filepath.Rel(root, path)
		if err != nil {
			source = path
		}
		source = filepath.ToSlash(source)

		chunks := r.chunker.Split(text)
		records, _, err := embedding.EmbedChunks(ctx, r.embedder, source, chunks)
		if err != nil {
			return models.IngestStats{}, err
		}
		next = append(next, records...)
	}

	if err := r.store.Replace(next); err != nil {
		return models.IngestStats{}, err
	}
	stats.IndexedChunks = len(next)
	log.Info().Int("chunks", stats.IndexedChunks).Int("files", stats.FilesProcessed).Msg("Index rebuilt")
	return stats, nil
}

// Retrieve embeds the query and ranks every indexed chunk by cosine
// similarity. An empty index short-circuits without a gateway call.
// The sort is stable, so ties keep their ingestion order.
func (r *RAG) Retrieve(ctx context.Context, query string, topK int) ([]models.ScoredMatch, error) {
	snapshot := r.store.Snapshot()
	if len(snapshot) == 0 {
		return nil, nil
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored := make([]models.ScoredMatch, len(snapshot))
	for i, rec := range snapshot {
		scored[i] = models.ScoredMatch{
			ChunkRecord: rec,
			Score:       cosineSimilarity(queryVec, rec.Embedding),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}

// Answer retrieves grounding chunks for the question, renders the
// prompt and delegates to the generation gateway. Generation failures
// surface to the caller; there is no retry.
func (r *RAG) Answer(ctx context.Context, question string, history []models.ChatMessage, topK int) (models.ChatResult, error) {
	retrieved, err := r.Retrieve(ctx, question, topK)
	if err != nil {
		return models.ChatResult{}, err
	}

	prompt := buildPrompt(question, history, retrieved)
	answer, err := r.generator.Generate(ctx, prompt)
	if err != nil {
		return models.ChatResult{}, err
	}

	citations := make([]models.Citation, len(retrieved))
	for i, match := range retrieved {
		citations[i] = models.Citation{
			Source: match.Source,
			Score:  math.Round(match.Score*1e4) / 1e4,
		}
	}
	return models.ChatResult{
		Answer:          answer,
		Citations:       citations,
		RetrievedChunks: len(retrieved),
	}, nil
}

func buildPrompt(question string, history []models.ChatMessage, retrieved []models.ScoredMatch) string {
	contextBlocks := make([]string, len(retrieved))
	for i, match := range retrieved {
		contextBlocks[i] = fmt.Sprintf(models.ContextBlockTemplate, match.Source, match.Text)
	}

	if len(history) > models.HistoryTail {
		history = history[len(history)-models.HistoryTail:]
	}
	historyLines := make([]string, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "" {
			role = "user"
		}
		historyLines[i] = fmt.Sprintf("%s: %s", role, msg.Content)
	}

	return fmt.Sprintf(models.GroundingPromptTemplate,
		strings.Join(historyLines, "\n"),
		strings.Join(contextBlocks, "\n\n"),
		question)
}

// cosineSimilarity scores 0.0 for zero-norm vectors and mismatched
// dimensions instead of faulting on malformed legacy data.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
