// Package pipeline wires retrieval, dedup, ordering, context building,
// extraction, and LLM fallback into a single question-answering call.
package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"sec-filing-rag/internal/extract"
	"sec-filing-rag/internal/models"
	"sec-filing-rag/internal/query"
)

// state tracks the orchestrator's progress through one question.
type state string

const (
	stateReceived     state = "received"
	stateRetrieved    state = "retrieved"
	stateDeduped      state = "deduped"
	stateOrdered      state = "ordered"
	stateContextBuilt state = "context_built"
	stateAnswered     state = "answered"
	stateSuccess      state = "success"
	stateRefused      state = "refused"
	stateError        state = "error"
)

const (
	pipelineDedupPrefixLen = 300
	sourceCount            = 5
)

// Retriever is the retrieval stage consumed by the pipeline.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) ([]models.Chunk, models.Analysis, error)
}

// Generator is the LLM fallback consumed when extraction misses.
type Generator interface {
	Answer(ctx context.Context, question, contextText string) (string, error)
}

// Pipeline answers questions over the indexed filings. Single-threaded
// and synchronous: one retrieval call, then at most one generation call.
type Pipeline struct {
	retriever       Retriever
	generator       Generator
	ranges          *extract.Ranges
	topK            int
	maxContextChars int
}

func New(retriever Retriever, generator Generator, ranges *extract.Ranges, topK, maxContextChars int) *Pipeline {
	return &Pipeline{
		retriever:       retriever,
		generator:       generator,
		ranges:          ranges,
		topK:            topK,
		maxContextChars: maxContextChars,
	}
}

func transition(from, to state) state {
	log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("Pipeline transition")
	return to
}

// AnswerQuestion runs the full pipeline for one question. It always
// returns a well-formed answer: every failure path degrades to one of
// the two fixed refusal strings rather than surfacing an error.
func (p *Pipeline) AnswerQuestion(ctx context.Context, question string) models.Answer {
	st := stateReceived
	log.Info().Str("question", question).Msg("Answering question")

	classification := query.Classify(question)
	if classification.Type == models.QueryOutOfScope {
		transition(st, stateRefused)
		return models.Answer{Answer: models.RefusalOutOfScope, Sources: []models.Source{}}
	}

	chunks, _, err := p.retriever.Retrieve(ctx, question, p.topK)
	if err != nil {
		log.Error().Err(err).Msg("Retrieval failed")
		transition(st, stateError)
		return models.Answer{Answer: models.RefusalOutOfScope, Sources: []models.Source{}}
	}
	if len(chunks) == 0 {
		transition(st, stateRefused)
		return models.Answer{Answer: models.RefusalOutOfScope, Sources: []models.Source{}}
	}
	st = transition(st, stateRetrieved)

	chunks = dedupChunks(chunks)
	st = transition(st, stateDeduped)

	chunks = reorderChunks(chunks, question)
	st = transition(st, stateOrdered)

	contextText := BuildContext(chunks, p.maxContextChars)
	st = transition(st, stateContextBuilt)

	sources := collectSources(chunks)

	answer := extract.Dispatch(extract.Request{
		Context:        contextText,
		Question:       question,
		Classification: classification,
		Ranges:         p.ranges,
	})
	if answer != "" {
		st = transition(st, stateAnswered)
		transition(st, stateSuccess)
		return models.Answer{Answer: answer, Sources: sources}
	}

	// extraction miss is expected and frequent; escalate to the model
	answer, err = p.generator.Answer(ctx, question, contextText)
	if err != nil {
		log.Error().Err(err).Msg("Generation failed")
		transition(st, stateError)
		return models.Answer{Answer: models.RefusalNotSpecified, Sources: sources}
	}
	st = transition(st, stateAnswered)
	transition(st, stateSuccess)
	return models.Answer{Answer: strings.TrimSpace(answer), Sources: sources}
}

// dedupChunks collapses near-identical chunks by text prefix, keeping
// first occurrences.
func dedupChunks(chunks []models.Chunk) []models.Chunk {
	seen := make(map[string]bool)
	var unique []models.Chunk
	for _, c := range chunks {
		key := c.Text
		if len(key) > pipelineDedupPrefixLen {
			key = key[:pipelineDedupPrefixLen]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}
	return unique
}

// reorderChunks applies domain ordering before context assembly:
// financial questions read tables first, vehicle questions read chunks
// naming a model first.
func reorderChunks(chunks []models.Chunk, question string) []models.Chunk {
	q := strings.ToLower(question)

	if strings.Contains(q, "revenue") || strings.Contains(q, "shares") || strings.Contains(q, "debt") {
		var tables, nonTables []models.Chunk
		for _, c := range chunks {
			if c.IsTable {
				tables = append(tables, c)
			} else {
				nonTables = append(nonTables, c)
			}
		}
		chunks = append(tables, nonTables...)
	}

	if strings.Contains(q, "vehicle") {
		var withModels, others []models.Chunk
		for _, c := range chunks {
			text := strings.ToLower(c.Text)
			named := false
			for _, m := range models.VehicleModels {
				if strings.Contains(text, strings.ToLower(m)) {
					named = true
					break
				}
			}
			if named {
				withModels = append(withModels, c)
			} else {
				others = append(others, c)
			}
		}
		if len(withModels) > 0 {
			chunks = append(withModels, others...)
		}
	}

	return chunks
}

// collectSources cites the leading chunks that fed the context,
// regardless of which path produced the answer.
func collectSources(chunks []models.Chunk) []models.Source {
	n := min(sourceCount, len(chunks))
	sources := make([]models.Source, 0, n)
	for _, c := range chunks[:n] {
		sources = append(sources, models.Source{Document: c.Document, Page: c.Page})
	}
	return sources
}
