// Package cli provides the command line interface for casedex.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/casedex/internal/adapters/driven/config/file"
	embeddingopenai "github.com/custodia-labs/casedex/internal/adapters/driven/embedding/openai"
	llmopenai "github.com/custodia-labs/casedex/internal/adapters/driven/llm/openai"
	ocrremote "github.com/custodia-labs/casedex/internal/adapters/driven/ocr/remote"
	storagememory "github.com/custodia-labs/casedex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/casedex/internal/adapters/driven/storage/sqlite"
	vectormemory "github.com/custodia-labs/casedex/internal/adapters/driven/vectorstore/memory"
	vectorqdrant "github.com/custodia-labs/casedex/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/casedex/internal/chunker"
	"github.com/custodia-labs/casedex/internal/core/ports/driven"
	"github.com/custodia-labs/casedex/internal/core/ports/driving"
	"github.com/custodia-labs/casedex/internal/core/services"
	"github.com/custodia-labs/casedex/internal/extractors/docx"
	"github.com/custodia-labs/casedex/internal/extractors/image"
	"github.com/custodia-labs/casedex/internal/extractors/pdf"
	"github.com/custodia-labs/casedex/internal/extractors/plaintext"
	"github.com/custodia-labs/casedex/internal/logger"
)

var (
	configPath string
	verbose    bool

	cfg              configfile.Config
	ingestService    driving.IngestService
	retrievalService driving.RetrievalService
	llmService       driven.LLMService
	ocrService       driven.OCRService

	closers []io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "casedex",
	Short: "Index and search case documents",
	Long: `Casedex ingests case documents (PDF, DOCX, plain text, scanned
images), splits them into passages, embeds them and makes them searchable
by meaning. Results always cite the source document and page.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.casedex/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the CLI.
func Execute() error {
	defer closeServices()
	return rootCmd.Execute()
}

// initServices wires adapters and services from configuration.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	// version and help need no services.
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	// Already wired, either by a previous run or by tests.
	if ingestService != nil && retrievalService != nil {
		return nil
	}

	path := configPath
	if path == "" {
		var err error
		if path, err = configfile.DefaultPath(); err != nil {
			return err
		}
	}

	var err error
	if cfg, err = configfile.Load(path); err != nil {
		return err
	}
	logger.Debug("Config loaded from %s (backend=%s)", path, cfg.Store.Backend)

	embeddingService, err := buildEmbeddingService()
	if err != nil {
		return err
	}
	closers = append(closers, embeddingService)

	if cfg.OCR.BaseURL != "" {
		if ocrService, err = ocrremote.New(ocrremote.Config{
			BaseURL: cfg.OCR.BaseURL,
			Timeout: cfg.OCR.OCRTimeout(),
		}); err != nil {
			return err
		}
	}

	vectorStore, docStore, err := buildStores(cmd, embeddingService.Dimensions())
	if err != nil {
		return err
	}

	embedder := services.NewBatchEmbedder(embeddingService, cfg.Embedding.BatchSize, cfg.Retry.RetryPolicy())

	ingestService = services.NewIngestService(
		buildExtractors(),
		chunker.New(
			chunker.WithChunkSize(cfg.Chunking.ChunkSize),
			chunker.WithOverlap(cfg.Chunking.Overlap),
		),
		embedder,
		docStore,
		vectorStore,
	)

	retrievalService = services.NewRetrievalService(
		docStore,
		vectorStore,
		embedder,
		services.WithTopK(cfg.Retrieval.TopK),
		services.WithMinScore(cfg.Retrieval.MinScore),
	)

	if key := apiKey(cfg.LLM.APIKey); key != "" {
		svc, err := llmopenai.New(llmopenai.Config{
			APIKey:  key,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		})
		if err != nil {
			return err
		}
		llmService = svc
		closers = append(closers, svc)
	}

	return nil
}

// buildEmbeddingService creates the configured embedding client.
func buildEmbeddingService() (driven.EmbeddingService, error) {
	key := apiKey(cfg.Embedding.APIKey)
	if key == "" {
		return nil, fmt.Errorf("no embedding API key: set embedding.api_key or OPENAI_API_KEY")
	}

	return embeddingopenai.New(embeddingopenai.Config{
		APIKey:            key,
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Dimensions:        cfg.Embedding.Dimensions,
		RequestsPerMinute: cfg.Embedding.RequestsPerMinute,
	})
}

// buildStores creates the vector store and document registry pair for the
// configured backend.
func buildStores(cmd *cobra.Command, dims int) (driven.VectorStore, driven.DocumentStore, error) {
	switch cfg.Store.Backend {
	case configfile.BackendQdrant:
		vectorStore, err := vectorqdrant.New(cmd.Context(), cfg.Store.QdrantAddr, cfg.Store.QdrantCollection, dims)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, vectorStore)

		docStore, err := sqlite.NewStore(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, docStore)
		return vectorStore, docStore, nil

	default:
		vectorStore, err := vectormemory.New(dims)
		if err != nil {
			return nil, nil, err
		}
		return vectorStore, storagememory.NewDocumentStore(), nil
	}
}

// buildExtractors registers one extractor per supported format. The OCR
// service may be nil; image extraction and scanned-PDF fallback then
// report OCR as unavailable.
func buildExtractors() *services.ExtractorRegistry {
	return services.NewExtractorRegistry(
		plaintext.New(),
		docx.New(),
		pdf.New(ocrService),
		image.New(ocrService),
	)
}

// apiKey falls back to the OPENAI_API_KEY environment variable.
func apiKey(configured string) string {
	if configured != "" {
		return configured
	}
	return os.Getenv("OPENAI_API_KEY")
}

// closeServices closes adapters in reverse wiring order.
func closeServices() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warn("Close failed: %v", err)
		}
	}
	closers = nil
}
