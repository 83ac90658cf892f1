package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"finrag/internal/chunker"
	"finrag/internal/config"
	"finrag/internal/embedding"
	"finrag/internal/helper"
	"finrag/internal/index"
	"finrag/internal/parser"
	"finrag/internal/rag"
)

const configFilePath = "./configs/config.yaml"

// reindex rebuilds the full snapshot from the corpus directory without
// starting the server.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	if err := helper.CreateFolder(cfg.RAG.DataDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating data folder")
	}
	if err := helper.CreateFolder(cfg.RAG.IndexDir); err != nil {
		log.Fatal().Err(err).Msg("Error creating index folder")
	}

	store, err := index.Open(cfg.IndexFile())
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading index snapshot")
	}

	ch, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chunker")
	}

	embedder, err := embedding.New(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	service := rag.NewRAG(store, ch, embedder, nil, parser.Reader{}, cfg)
	stats, err := service.Ingest(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Error ingesting corpus")
	}

	fmt.Printf("Indexed chunks: %d\n", stats.IndexedChunks)
	fmt.Printf("Files processed: %d\n", stats.FilesProcessed)
}
