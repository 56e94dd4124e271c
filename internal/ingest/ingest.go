// Package ingest turns the filing PDFs into indexed chunks: load pages,
// chunk, embed, and store. Indexing is a destructive rebuild of the
// collection and must not run while queries are being served.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"sec-filing-rag/internal/embedding"
	"sec-filing-rag/internal/models"
	"sec-filing-rag/internal/parser"
)

const addBatchSize = 50

// ChunkStore is the write surface of the vector store.
type ChunkStore interface {
	Reset(ctx context.Context) error
	Add(ctx context.Context, chunks []models.Chunk, embeddings [][]float32) error
}

// detectCompany matches a filename to a filer by substring against the
// configured document map.
func detectCompany(filename string, documents map[string]string) models.Company {
	for company, doc := range documents {
		if strings.Contains(filename, doc) || strings.Contains(doc, filename) {
			return models.Company(company)
		}
	}
	lower := strings.ToLower(filename)
	if strings.Contains(lower, "tsla") || strings.Contains(lower, "tesla") {
		return models.CompanyTesla
	}
	if strings.Contains(lower, "aapl") || strings.Contains(lower, "apple") || strings.Contains(lower, "10-q") {
		return models.CompanyApple
	}
	return models.CompanyNone
}

// BuildDocuments walks the data folder and chunks every PDF in it.
// Chunk IDs are stable: {file}_p{page}_{index}.
func BuildDocuments(chunker *parser.Chunker, dataDir string, documents map[string]string) ([]models.Chunk, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data folder: %v", err)
	}

	var all []models.Chunk
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}

		path := filepath.Join(dataDir, entry.Name())
		log.Info().Str("file", entry.Name()).Msg("Processing PDF")

		pages, err := parser.LoadPDF(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %v", entry.Name(), err)
		}

		company := detectCompany(entry.Name(), documents)
		chunks := chunker.SmartChunk(pages)
		for i := range chunks {
			chunks[i].ID = fmt.Sprintf("%s_p%d_%d", entry.Name(), chunks[i].Page, i)
			chunks[i].Document = entry.Name()
			chunks[i].Company = company
		}
		all = append(all, chunks...)
	}

	log.Info().Int("chunks", len(all)).Msg("Built documents")
	return all, nil
}

// IndexDocuments rebuilds the collection from the data folder: embed all
// chunks, then store them in batches. A failed batch is retried record
// by record and surviving failures are logged, not propagated; indexing
// is best-effort, never all-or-nothing.
func IndexDocuments(ctx context.Context, store ChunkStore, embedder embeddings.Embedder, chunker *parser.Chunker, dataDir string, documents map[string]string) error {
	chunks, err := BuildDocuments(chunker, dataDir, documents)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks produced from %s", dataDir)
	}

	log.Info().Msg("Generating embeddings")
	vectors, err := embedding.EmbedChunks(ctx, embedder, chunks)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		return err
	}

	log.Info().Int("chunks", len(chunks)).Msg("Storing vectors")
	for start := 0; start < len(chunks); start += addBatchSize {
		end := min(start+addBatchSize, len(chunks))
		if err := store.Add(ctx, chunks[start:end], vectors[start:end]); err != nil {
			log.Warn().Err(err).Int("start", start).Msg("Batch insert failed, retrying per record")
			for i := start; i < end; i++ {
				if err := store.Add(ctx, chunks[i:i+1], vectors[i:i+1]); err != nil {
					log.Error().Err(err).Str("id", chunks[i].ID).Msg("Failed to index chunk")
				}
			}
		}
	}

	log.Info().Int("chunks", len(chunks)).Msg("Indexing complete")
	return nil
}
