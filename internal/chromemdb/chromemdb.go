package chromemdb

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"sec-filing-rag/internal/models"
)

const compress = false

// Store encapsulates the chromem-go database holding one collection of
// filing chunks. Indexing is a destructive rebuild and must not run
// concurrently with query serving.
type Store struct {
	db             *chromem.DB
	collection     *chromem.Collection
	collectionName string
}

// NewStore opens (or creates) the persistent database at dbPath and
// binds the named collection.
func NewStore(dbPath, collectionName string, inMemory bool) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	s := &Store{db: db, collectionName: collectionName}
	if err := s.bind(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) bind() error {
	c, err := s.db.GetOrCreateCollection(s.collectionName, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create/get collection: %v", err)
	}
	s.collection = c
	return nil
}

// Reset drops and recreates the collection.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.db.DeleteCollection(s.collectionName); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	return s.bind()
}

// Add stores chunks with their precomputed embeddings. Chunk metadata is
// flattened to the string map chromem persists per record.
func (s *Store) Add(ctx context.Context, chunks []models.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	docs := make([]chromem.Document, len(chunks))
	for i, c := range chunks {
		docs[i] = chromem.Document{
			ID:        c.ID,
			Content:   c.Text,
			Metadata:  chunkMetadata(c),
			Embedding: embeddings[i],
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Search performs a dense nearest-neighbor query, optionally restricted
// by a metadata where-filter. An empty collection yields an empty result
// rather than an error; n is clamped to the number of stored records.
func (s *Store) Search(ctx context.Context, embedding []float32, n int, where map[string]string) ([]models.ScoredChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if n > count {
		n = count
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       n,
		Where:          where,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, r := range results {
		scored = append(scored, models.ScoredChunk{
			Chunk: chunkFromResult(r),
			Score: float64(r.Similarity),
		})
	}
	return scored, nil
}

// Count reports the number of stored chunks.
func (s *Store) Count() int {
	return s.collection.Count()
}

func chunkMetadata(c models.Chunk) map[string]string {
	return map[string]string{
		models.MetaDocument: c.Document,
		models.MetaPage:     strconv.Itoa(c.Page),
		models.MetaIsTable:  strconv.FormatBool(c.IsTable),
		models.MetaSection:  string(c.Section),
		models.MetaCompany:  string(c.Company),
	}
}

func chunkFromResult(r chromem.Result) models.Chunk {
	page, err := strconv.Atoi(r.Metadata[models.MetaPage])
	if err != nil {
		log.Warn().Str("id", r.ID).Msg("Stored chunk has non-numeric page metadata")
	}
	isTable, _ := strconv.ParseBool(r.Metadata[models.MetaIsTable])
	return models.Chunk{
		ID:       r.ID,
		Text:     r.Content,
		Document: r.Metadata[models.MetaDocument],
		Page:     page,
		IsTable:  isTable,
		Section:  models.Section(r.Metadata[models.MetaSection]),
		Company:  models.Company(r.Metadata[models.MetaCompany]),
	}
}
