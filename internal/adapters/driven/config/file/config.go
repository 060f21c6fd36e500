// Package file provides TOML-based configuration loading for casedex.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/casedex/internal/core/domain"
)

// Backend names accepted in [store].
const (
	BackendMemory = "memory"
	BackendQdrant = "qdrant"
)

// Config is the full application configuration.
type Config struct {
	Store     StoreConfig     `toml:"store"`
	Embedding EmbeddingConfig `toml:"embedding"`
	OCR       OCRConfig       `toml:"ocr"`
	LLM       LLMConfig       `toml:"llm"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Retry     RetryConfig     `toml:"retry"`
}

// StoreConfig selects and configures the storage backend.
type StoreConfig struct {
	// Backend is "memory" (ephemeral) or "qdrant" (persistent).
	Backend string `toml:"backend"`

	// QdrantAddr is the Qdrant gRPC address for the qdrant backend.
	QdrantAddr string `toml:"qdrant_addr"`

	// QdrantCollection is the collection name for the qdrant backend.
	QdrantCollection string `toml:"qdrant_collection"`

	// DataDir holds the document registry database for the qdrant
	// backend. Empty means ~/.casedex/data.
	DataDir string `toml:"data_dir"`
}

// EmbeddingConfig configures the embedding service.
type EmbeddingConfig struct {
	// APIKey authenticates against the embeddings API. Falls back to
	// the OPENAI_API_KEY environment variable when empty.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the API endpoint for compatible services.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// Dimensions overrides the model's embedding width.
	Dimensions int `toml:"dimensions"`

	// BatchSize caps texts per embedding request.
	BatchSize int `toml:"batch_size"`

	// RequestsPerMinute caps outgoing requests.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// OCRConfig configures the optional OCR service.
type OCRConfig struct {
	// BaseURL is the OCR service address. Empty disables OCR.
	BaseURL string `toml:"base_url"`

	// TimeoutSeconds bounds a recognition request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// LLMConfig configures the optional answer-generation service.
type LLMConfig struct {
	// APIKey authenticates against the chat API. Falls back to the
	// OPENAI_API_KEY environment variable when empty.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the API endpoint for compatible services.
	BaseURL string `toml:"base_url"`

	// Model is the chat model name.
	Model string `toml:"model"`
}

// ChunkingConfig configures the chunker.
type ChunkingConfig struct {
	// ChunkSize is the target chunk size in characters.
	ChunkSize int `toml:"chunk_size"`

	// Overlap is the overlap between consecutive chunks in characters.
	Overlap int `toml:"overlap"`
}

// RetrievalConfig configures retrieval.
type RetrievalConfig struct {
	// TopK is the default result limit.
	TopK int `toml:"top_k"`

	// MinScore is the similarity cutoff.
	MinScore float64 `toml:"min_score"`
}

// RetryConfig configures bounded retry for the embedding pipeline.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `toml:"max_attempts"`

	// InitialBackoffMS is the wait before the first retry, in
	// milliseconds.
	InitialBackoffMS int `toml:"initial_backoff_ms"`

	// Multiplier scales the backoff after each failed attempt.
	Multiplier float64 `toml:"multiplier"`

	// MaxBackoffMS caps the wait between attempts, in milliseconds.
	MaxBackoffMS int `toml:"max_backoff_ms"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	retry := domain.DefaultRetryPolicy()
	return Config{
		Store: StoreConfig{
			Backend:          BackendMemory,
			QdrantAddr:       "localhost:6334",
			QdrantCollection: "casedex",
		},
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			BatchSize: 100,
		},
		OCR: OCRConfig{
			TimeoutSeconds: 300,
		},
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
		Chunking: ChunkingConfig{
			ChunkSize: 1000,
			Overlap:   100,
		},
		Retrieval: RetrievalConfig{
			TopK:     10,
			MinScore: 0.25,
		},
		Retry: RetryConfig{
			MaxAttempts:      retry.MaxAttempts,
			InitialBackoffMS: int(retry.InitialBackoff / time.Millisecond),
			Multiplier:       retry.Multiplier,
			MaxBackoffMS:     int(retry.MaxBackoff / time.Millisecond),
		},
	}
}

// DefaultPath returns ~/.casedex/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".casedex", "config.toml"), nil
}

// Load reads the configuration at path. A missing file yields defaults;
// fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Store.Backend != BackendMemory && cfg.Store.Backend != BackendQdrant {
		return cfg, fmt.Errorf("%w: unknown store backend %q", domain.ErrInvalidInput, cfg.Store.Backend)
	}

	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// RetryPolicy converts the retry section into the domain policy.
func (c RetryConfig) RetryPolicy() domain.RetryPolicy {
	return domain.RetryPolicy{
		MaxAttempts:    c.MaxAttempts,
		InitialBackoff: time.Duration(c.InitialBackoffMS) * time.Millisecond,
		Multiplier:     c.Multiplier,
		MaxBackoff:     time.Duration(c.MaxBackoffMS) * time.Millisecond,
	}
}

// OCRTimeout returns the OCR timeout as a duration.
func (c OCRConfig) OCRTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
