// Package index holds the ingested chunks and an optional nearest-neighbor
// index over their embeddings. Context selection is uniform random; the
// similarity index exists as the extension point for topic-targeted
// retrieval.
package index

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"skillsync/internal/models"
)

// DefaultContext is returned by SelectContext when no document has been
// ingested, so downstream generation never operates on an undefined context.
const DefaultContext = "Standard safety protocols for industrial machinery."

const collectionName = "chunks"

// Store is the process-wide content index. The chunk list is replaced, never
// appended, on each upload.
type Store struct {
	embed chromem.EmbeddingFunc

	mu         sync.RWMutex
	chunks     []models.Chunk
	db         *chromem.DB
	collection *chromem.Collection
}

// NewStore creates an empty index. A nil embedding function disables the
// similarity index but not the chunk list.
func NewStore(embed chromem.EmbeddingFunc) *Store {
	return &Store{embed: embed}
}

// Replace swaps in a fresh chunk list, discarding any previous document
// state including the similarity index.
func (s *Store) Replace(chunks []models.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = chunks
	s.db = nil
	s.collection = nil
}

// Len reports the current chunk count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// SelectContext picks one chunk uniformly at random. Repeats across calls
// are expected; each quiz request is independent. An empty store yields the
// fixed default context on page 0.
func (s *Store) SelectContext() models.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.chunks) == 0 {
		return models.Chunk{Text: DefaultContext, Page: 0}
	}
	return s.chunks[rand.Intn(len(s.chunks))]
}

// RebuildIndex computes embeddings for every current chunk and builds a
// fresh similarity index, row order matching chunk insertion order. It is a
// no-op without an embedding function and an error leaves the chunk list
// fully usable.
func (s *Store) RebuildIndex(ctx context.Context) error {
	if s.embed == nil {
		return nil
	}

	s.mu.RLock()
	chunks := s.chunks
	s.mu.RUnlock()
	if len(chunks) == 0 {
		return nil
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, s.embed)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:      strconv.Itoa(i),
			Content: chunk.Text,
			Metadata: map[string]string{
				"page": strconv.Itoa(chunk.Page),
			},
		})
	}
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}

	s.mu.Lock()
	s.db = db
	s.collection = collection
	s.mu.Unlock()

	log.Info().Int("chunks", len(chunks)).Msg("similarity index rebuilt")
	return nil
}

// Similar returns the k chunks nearest to the query. It is the hook for
// topic-targeted retrieval; the quiz workflow does not call it yet.
func (s *Store) Similar(ctx context.Context, query string, k int) ([]models.Chunk, error) {
	s.mu.RLock()
	collection := s.collection
	chunks := s.chunks
	s.mu.RUnlock()

	if collection == nil {
		return nil, fmt.Errorf("similarity index not built")
	}
	if k > len(chunks) {
		k = len(chunks)
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	out := make([]models.Chunk, 0, len(results))
	for _, res := range results {
		row, err := strconv.Atoi(res.ID)
		if err != nil || row < 0 || row >= len(chunks) {
			continue
		}
		out = append(out, chunks[row])
	}
	return out, nil
}
