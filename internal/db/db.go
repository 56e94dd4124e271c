package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"sec-filing-rag/internal/models"
)

// ChunkRecord is the pgvector-backed row for one indexed chunk. The
// embedding column requires the pgvector extension.
type ChunkRecord struct {
	bun.BaseModel `bun:"table:chunks,alias:c"`
	ID            string    `bun:"id,pk"`
	Text          string    `bun:"text,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
	Document      string    `bun:"document,notnull"`
	Page          int       `bun:"page,notnull"`
	IsTable       bool      `bun:"is_table,notnull"`
	Section       string    `bun:"section,notnull"`
	Company       string    `bun:"company"`
}

// Store is the Postgres/pgvector implementation of the chunk store,
// selectable by config as an alternative to the embedded chromem store.
type Store struct {
	db *bun.DB
}

func ConnectDB(url, key string) (*sql.DB, error) {
	dsn := url + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(key))), nil
}

func NewStore(sqldb *sql.DB, debug bool) *Store {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Reset drops and recreates the chunks table.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.NewDropTable().Model((*ChunkRecord)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to drop chunks table: %v", err)
	}
	if _, err := s.db.NewCreateTable().Model((*ChunkRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create chunks table: %v", err)
	}
	return nil
}

// Add inserts chunks with their precomputed embeddings.
func (s *Store) Add(ctx context.Context, chunks []models.Chunk, embeddings [][]float32) error {
	if len(chunks) != len(embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(embeddings))
	}

	records := make([]ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = ChunkRecord{
			ID:        c.ID,
			Text:      c.Text,
			Embedding: embeddings[i],
			Document:  c.Document,
			Page:      c.Page,
			IsTable:   c.IsTable,
			Section:   string(c.Section),
			Company:   string(c.Company),
		}
	}

	if _, err := s.db.NewInsert().Model(&records).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert chunks: %v", err)
	}
	return nil
}

// Search orders chunks by embedding distance, optionally filtered by the
// document metadata key. Result order carries the relevance; downstream
// boosting and reranking assign their own scores.
func (s *Store) Search(ctx context.Context, embedding []float32, n int, where map[string]string) ([]models.ScoredChunk, error) {
	var records []ChunkRecord
	q := s.db.NewSelect().Model(&records)
	if doc, ok := where[models.MetaDocument]; ok {
		q = q.Where("document = ?", doc)
	}
	err := q.
		OrderExpr("embedding <-> ?", embedding).
		Limit(n).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %v", err)
	}

	scored := make([]models.ScoredChunk, 0, len(records))
	for _, r := range records {
		scored = append(scored, models.ScoredChunk{
			Chunk: models.Chunk{
				ID:       r.ID,
				Text:     r.Text,
				Document: r.Document,
				Page:     r.Page,
				IsTable:  r.IsTable,
				Section:  models.Section(r.Section),
				Company:  models.Company(r.Company),
			},
		})
	}
	return scored, nil
}
