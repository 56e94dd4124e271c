package retriever

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"sec-filing-rag/internal/models"
	"sec-filing-rag/internal/query"
)

const (
	poolSize       = 300
	rerankWindow   = 80
	poolCapDefault = 60
	poolCapLenient = 100
	dedupPrefixLen = 200
)

// ChunkStore is the dense nearest-neighbor surface the retriever
// consumes; satisfied by both the chromem and pgvector stores.
type ChunkStore interface {
	Search(ctx context.Context, embedding []float32, n int, where map[string]string) ([]models.ScoredChunk, error)
}

// QueryEmbedder embeds a single query string.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Retriever routes a question through dense retrieval, keyword
// filtering, heuristic boosting, dedup, and cross-encoder reranking.
type Retriever struct {
	store     ChunkStore
	embedder  QueryEmbedder
	reranker  Reranker
	documents map[string]string // company -> source filename
}

func New(store ChunkStore, embedder QueryEmbedder, reranker Reranker, documents map[string]string) *Retriever {
	return &Retriever{
		store:     store,
		embedder:  embedder,
		reranker:  reranker,
		documents: documents,
	}
}

var calendarDateRe = regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`)

// keywordFilter discards candidates lacking required keywords for a
// query shape, but only when something survives: an empty filtered set
// falls back to the unfiltered pool (fail-open, never fail-closed).
type keywordFilter struct {
	name    string
	applies func(q string) bool
	keep    func(q string, text string) bool
}

var keywordFilters = []keywordFilter{
	{
		name:    "term_debt",
		applies: func(q string) bool { return strings.Contains(q, "term debt") },
		keep: func(q, text string) bool {
			return strings.Contains(text, "term debt")
		},
	},
	{
		name: "vehicles",
		applies: func(q string) bool {
			return strings.Contains(q, "vehicle") || strings.Contains(q, "produce") || strings.Contains(q, "deliver")
		},
		keep: func(q, text string) bool {
			for _, m := range models.VehicleModels {
				if strings.Contains(text, strings.ToLower(m)) {
					return true
				}
			}
			return false
		},
	},
	{
		name: "shares_outstanding",
		applies: func(q string) bool {
			return strings.Contains(q, "shares") && strings.Contains(q, "outstanding")
		},
		keep: func(q, text string) bool {
			if !strings.Contains(text, "shares") || !strings.Contains(text, "outstanding") {
				return false
			}
			// a dated question needs a dated candidate
			if calendarDateRe.MatchString(q) {
				return calendarDateRe.MatchString(text)
			}
			return true
		},
	},
	{
		name: "automotive_percentage",
		applies: func(q string) bool {
			return (strings.Contains(q, "percentage") || strings.Contains(q, "%")) && strings.Contains(q, "automotive")
		},
		keep: func(q, text string) bool {
			return strings.Contains(text, "automotive")
		},
	},
	{
		name: "revenue",
		applies: func(q string) bool {
			return strings.Contains(q, "revenue") && !strings.Contains(q, "percentage")
		},
		keep: func(q, text string) bool {
			return strings.Contains(text, "revenue") || strings.Contains(text, "net sales")
		},
	},
}

func applyKeywordFilters(chunks []models.ScoredChunk, q string) []models.ScoredChunk {
	for _, f := range keywordFilters {
		if !f.applies(q) {
			continue
		}
		var filtered []models.ScoredChunk
		for _, c := range chunks {
			if f.keep(q, strings.ToLower(c.Chunk.Text)) {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			log.Debug().Str("filter", f.name).Int("before", len(chunks)).Int("after", len(filtered)).Msg("Strict keyword filter applied")
			chunks = filtered
		}
	}
	return chunks
}

// boostScore computes the additive heuristic score for one candidate
// under the given query.
func boostScore(c models.Chunk, q string, a models.Analysis) float64 {
	text := strings.ToLower(c.Text)
	var boost float64

	switch {
	case strings.Contains(q, "term debt"):
		if c.IsTable {
			boost += 300
		}
		if c.Page >= 30 && c.Page <= 40 {
			boost += 200
		}
		if strings.Contains(text, "total term debt") {
			boost += 300
		}
		if a.PreferBalanceSheet && c.Section == models.SectionBalanceSheet {
			boost += 150
		}

	case strings.Contains(q, "vehicle") || strings.Contains(q, "produce") || strings.Contains(q, "deliver"):
		if c.Page >= 8 && c.Page <= 25 {
			boost += 200
		}
		for _, m := range models.VehicleModels {
			if strings.Contains(text, strings.ToLower(m)) {
				boost += 500
				break
			}
		}

	case strings.Contains(q, "shares") && strings.Contains(q, "outstanding"):
		if c.Page <= 5 {
			boost += 200
		}
		if a.PreferBalanceSheet && c.Section == models.SectionBalanceSheet {
			boost += 150
		}

	case strings.Contains(q, "revenue"):
		if c.IsTable {
			boost += 150
		}
		if strings.Contains(text, "total") && (strings.Contains(text, "revenue") || strings.Contains(text, "sales")) {
			boost += 100
		}
	}

	// occurrence count of the analysis keywords, capped so it stays a
	// tie-breaker relative to the shape boosts above
	var kwBoost float64
	for _, kw := range a.Keywords {
		kwBoost += float64(strings.Count(text, kw)) * 10
	}
	if kwBoost > 100 {
		kwBoost = 100
	}

	return boost + kwBoost
}

func removeTOCChunks(chunks []models.ScoredChunk) []models.ScoredChunk {
	var filtered []models.ScoredChunk
	for _, c := range chunks {
		if strings.Contains(strings.ToLower(strings.TrimSpace(c.Chunk.Text)), "table of contents") {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func dedupByPrefix(chunks []models.ScoredChunk, prefixLen int) []models.ScoredChunk {
	seen := make(map[string]bool)
	var unique []models.ScoredChunk
	for _, c := range chunks {
		key := c.Chunk.Text
		if len(key) > prefixLen {
			key = key[:prefixLen]
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}
	return unique
}

// Retrieve returns the topK most relevant chunks for a question plus
// the analysis used to route it. An empty store, an unanswerable future
// question, or a company filter matching nothing all yield an empty
// result; the caller treats that as unanswerable.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int) ([]models.Chunk, models.Analysis, error) {
	analysis := query.Analyze(question)
	q := strings.ToLower(question)

	if analysis.Future {
		return nil, analysis, nil
	}

	queryEmb, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, analysis, err
	}

	var where map[string]string
	if analysis.Company != models.CompanyNone {
		if doc, ok := r.documents[string(analysis.Company)]; ok {
			where = map[string]string{models.MetaDocument: doc}
		}
	}

	candidates, err := r.store.Search(ctx, queryEmb, poolSize, where)
	if err != nil {
		return nil, analysis, err
	}
	if len(candidates) == 0 {
		return nil, analysis, nil
	}

	candidates = applyKeywordFilters(candidates, q)

	// heuristic boosting: boosted candidates ahead of the rest, highest
	// boost first, original retrieval order preserved on ties
	var boosted, others []models.ScoredChunk
	for _, c := range candidates {
		score := boostScore(c.Chunk, q, analysis)
		if score > 0 {
			boosted = append(boosted, models.ScoredChunk{Chunk: c.Chunk, Score: score})
		} else {
			others = append(others, models.ScoredChunk{Chunk: c.Chunk})
		}
	}
	sort.SliceStable(boosted, func(i, j int) bool { return boosted[i].Score > boosted[j].Score })
	ordered := append(boosted, others...)
	log.Debug().Int("boosted", len(boosted)).Msg("Applied heuristic boosts")

	if analysis.PreferTables {
		var tables, nonTables []models.ScoredChunk
		for _, c := range ordered {
			if c.Chunk.IsTable {
				tables = append(tables, c)
			} else {
				nonTables = append(nonTables, c)
			}
		}
		ordered = append(tables, nonTables...)
	}

	ordered = removeTOCChunks(ordered)
	ordered = dedupByPrefix(ordered, dedupPrefixLen)

	poolCap := poolCapDefault
	if strings.Contains(q, "revenue") || strings.Contains(q, "shares") {
		poolCap = poolCapLenient
	}
	if len(ordered) > poolCap {
		ordered = ordered[:poolCap]
	}

	ordered = r.rerank(ctx, question, ordered)

	if len(ordered) > topK {
		ordered = ordered[:topK]
	}

	final := make([]models.Chunk, 0, len(ordered))
	for _, c := range ordered {
		final = append(final, c.Chunk)
	}
	return final, analysis, nil
}

// rerank scores the leading candidates against the query with the
// cross-encoder and reorders them. On reranker failure the heuristic
// order stands.
func (r *Retriever) rerank(ctx context.Context, question string, ordered []models.ScoredChunk) []models.ScoredChunk {
	if r.reranker == nil || len(ordered) == 0 {
		return ordered
	}

	window := ordered
	if len(window) > rerankWindow {
		window = window[:rerankWindow]
	}

	texts := make([]string, len(window))
	for i, c := range window {
		texts[i] = c.Chunk.Text
	}

	scores, err := r.reranker.Rerank(ctx, question, texts)
	if err != nil || len(scores) != len(window) {
		log.Warn().Err(err).Msg("Cross-encoder rerank failed, keeping heuristic order")
		return ordered
	}

	reranked := make([]models.ScoredChunk, len(window))
	for i, c := range window {
		reranked[i] = models.ScoredChunk{Chunk: c.Chunk, Score: scores[i]}
	}
	sort.SliceStable(reranked, func(i, j int) bool { return reranked[i].Score > reranked[j].Score })
	return reranked
}
