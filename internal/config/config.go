package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LLMConfig configures one model gateway (embedding or chat).
type LLMConfig struct {
	Provider    string `yaml:"provider"` // "ollama" or "openai"
	BaseURL     string `yaml:"base_url"`
	Key         string `yaml:"key"`
	KeyEnv      string `yaml:"key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type RAGConfig struct {
	DataDir      string `yaml:"data_dir"`
	IndexDir     string `yaml:"index_dir"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
}

type Config struct {
	Server   ServerConfig `yaml:"server"`
	EmbedLLM LLMConfig    `yaml:"embed_llm"`
	ChatLLM  LLMConfig    `yaml:"chat_llm"`
	RAG      RAGConfig    `yaml:"rag"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IndexFile is the snapshot location inside the index directory.
func (c *Config) IndexFile() string {
	return filepath.Join(c.RAG.IndexDir, "vector_index.json")
}

// Validate rejects configurations that cannot run: a chunk window that
// makes no forward progress is a startup error, not a runtime fault.
func (c *Config) Validate() error {
	if c.RAG.ChunkSize <= 0 {
		return fmt.Errorf("config: chunk_size must be positive, got %d", c.RAG.ChunkSize)
	}
	if c.RAG.ChunkOverlap < 0 || c.RAG.ChunkOverlap >= c.RAG.ChunkSize {
		return fmt.Errorf("config: chunk_overlap must be in [0, chunk_size), got %d with chunk_size %d",
			c.RAG.ChunkOverlap, c.RAG.ChunkSize)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("config: server port must be positive, got %d", c.Server.Port)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	applyLLMDefaults(&cfg.EmbedLLM, "nomic-embed-text", 120)
	applyLLMDefaults(&cfg.ChatLLM, "llama3.1:8b", 300)
	if cfg.RAG.DataDir == "" {
		cfg.RAG.DataDir = "data"
	}
	if cfg.RAG.IndexDir == "" {
		cfg.RAG.IndexDir = "store"
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 900
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 150
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 4
	}
}

func applyLLMDefaults(llm *LLMConfig, model string, timeoutSecs int) {
	if llm.Provider == "" {
		llm.Provider = "ollama"
	}
	if llm.BaseURL == "" {
		llm.BaseURL = "http://localhost:11434"
	}
	if llm.Model == "" {
		llm.Model = model
	}
	if llm.TimeoutSecs == 0 {
		llm.TimeoutSecs = timeoutSecs
	}
	if llm.Key == "" && llm.KeyEnv != "" {
		llm.Key = os.Getenv(llm.KeyEnv)
	}
}
