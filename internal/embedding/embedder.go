// Package embedding constructs the chunk-embedding function backing the
// similarity index. The index is an enhancement, not a dependency: when no
// embedding endpoint is configured the rest of the pipeline runs unchanged.
package embedding

import (
	"context"
	"os"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// NewEmbeddingFunc builds a chromem embedding function over an
// OpenAI-compatible endpoint configured by EMBEDDING_BASE_URL,
// EMBEDDING_API_KEY and EMBEDDING_MODEL. It returns nil when the endpoint is
// not configured, which disables the similarity index.
func NewEmbeddingFunc() chromem.EmbeddingFunc {
	baseURL := os.Getenv("EMBEDDING_BASE_URL")
	model := os.Getenv("EMBEDDING_MODEL")
	if baseURL == "" || model == "" {
		log.Warn().Msg("EMBEDDING_BASE_URL/EMBEDDING_MODEL not set; similarity index disabled")
		return nil
	}

	llm, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(strings.TrimPrefix(os.Getenv("EMBEDDING_API_KEY"), "Bearer ")),
		openai.WithModel(model),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize embedding LLM; similarity index disabled")
		return nil
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		log.Warn().Err(err).Msg("failed to create embedder; similarity index disabled")
		return nil
	}

	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
}
