package main

import (
	"flag"
	"fmt"
	"net/http"
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
	"finrag/internal/llmservice"
	"finrag/internal/parser"
	"finrag/internal/rag"
	"finrag/internal/server"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	// gateway keys may live in a .env next to the binary
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

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
	log.Info().Int("chunks", store.Size()).Msg("Index snapshot loaded")

	ch, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chunker")
	}

	embedder, err := embedding.New(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llmservice.NewGenerator(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generator")
	}

	service := rag.NewRAG(store, ch, embedder, generator, parser.Reader{}, cfg)
	srv := server.New(service, store, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("Starting server")

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
