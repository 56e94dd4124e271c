package parser

import (
	"strings"

	"sec-filing-rag/internal/models"
)

const (
	minTableChunkChars = 40
	minTextChunkChars  = 20
)

// Chunker splits pages into table chunks and overlapping word-window
// chunks. ChunkSize and Overlap are word counts.
type Chunker struct {
	ChunkSize int
	Overlap   int
}

func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 600
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{ChunkSize: chunkSize, Overlap: overlap}
}

// SmartChunk produces chunks for every page: detected table blocks are
// emitted whole (never re-split), then a fixed-size word window with
// overlap slides over the non-table residue of the page. Tables carry
// position-sensitive figures on adjacent lines, so windowing them would
// break associations like current vs non-current debt.
func (c *Chunker) SmartChunk(pages []models.Page) []models.Chunk {
	var chunks []models.Chunk

	for _, p := range pages {
		tables := ExtractTableBlocks(p.Text)

		tableLines := make(map[int]bool)
		for _, t := range tables {
			for ln := t.StartLine; ln < t.EndLine; ln++ {
				tableLines[ln] = true
			}
		}

		for _, t := range tables {
			if len(t.Text) <= minTableChunkChars {
				continue
			}
			chunks = append(chunks, models.Chunk{
				Text:    t.Text,
				Page:    p.Number,
				Section: DetectSection(t.Text),
				IsTable: true,
			})
		}

		lines := strings.Split(p.Text, "\n")
		var nonTable []string
		for i, line := range lines {
			if tableLines[i] || strings.TrimSpace(line) == "" {
				continue
			}
			nonTable = append(nonTable, line)
		}

		words := strings.Fields(strings.Join(nonTable, "\n"))

		start := 0
		for start < len(words) {
			end := min(start+c.ChunkSize, len(words))
			text := strings.Join(words[start:end], " ")

			if len(strings.TrimSpace(text)) > minTextChunkChars {
				chunks = append(chunks, models.Chunk{
					Text:    text,
					Page:    p.Number,
					Section: DetectSection(text),
					IsTable: false,
				})
			}

			if end == len(words) {
				break
			}
			start = end - c.Overlap
		}
	}

	return chunks
}
