package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("expected explicit port 9000, got %d", cfg.Server.Port)
	}
	if cfg.RAG.ChunkSize != 900 || cfg.RAG.ChunkOverlap != 150 {
		t.Fatalf("expected default chunk window 900/150, got %d/%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.TopK != 4 {
		t.Fatalf("expected default top_k 4, got %d", cfg.RAG.TopK)
	}
	if cfg.EmbedLLM.Provider != "ollama" || cfg.EmbedLLM.Model != "nomic-embed-text" {
		t.Fatalf("unexpected embed defaults: %+v", cfg.EmbedLLM)
	}
	if cfg.EmbedLLM.TimeoutSecs != 120 || cfg.ChatLLM.TimeoutSecs != 300 {
		t.Fatalf("unexpected timeout defaults: %d/%d", cfg.EmbedLLM.TimeoutSecs, cfg.ChatLLM.TimeoutSecs)
	}
	if cfg.IndexFile() != filepath.Join("store", "vector_index.json") {
		t.Fatalf("unexpected index file: %s", cfg.IndexFile())
	}
}

func TestLoadConfig_RejectsBadWindow(t *testing.T) {
	path := writeConfig(t, "rag:\n  chunk_size: 100\n  chunk_overlap: 100\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for overlap >= chunk_size")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadConfig_KeyFromEnv(t *testing.T) {
	t.Setenv("FINRAG_TEST_KEY", "secret-token")
	path := writeConfig(t, "chat_llm:\n  provider: openai\n  key_env: FINRAG_TEST_KEY\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ChatLLM.Key != "secret-token" {
		t.Fatalf("expected key from env, got %q", cfg.ChatLLM.Key)
	}
}
