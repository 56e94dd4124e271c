package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sec-filing-rag/internal/extract"
	"sec-filing-rag/internal/models"
)

type fakeRetriever struct {
	chunks []models.Chunk
	err    error
	calls  int
}

func (r *fakeRetriever) Retrieve(ctx context.Context, question string, topK int) ([]models.Chunk, models.Analysis, error) {
	r.calls++
	return r.chunks, models.Analysis{}, r.err
}

type fakeGenerator struct {
	answer string
	err    error
	calls  int
}

func (g *fakeGenerator) Answer(ctx context.Context, question, contextText string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func newTestPipeline(r Retriever, g Generator) *Pipeline {
	return New(r, g, extract.NewRanges(nil), 20, 15000)
}

func TestAnswerQuestionOutOfScopeSkipsRetrieval(t *testing.T) {
	retriever := &fakeRetriever{chunks: []models.Chunk{{ID: "c1", Text: "irrelevant"}}}
	generator := &fakeGenerator{answer: "should never run"}
	p := newTestPipeline(retriever, generator)

	got := p.AnswerQuestion(context.Background(), "What color is the Cybertruck?")
	if got.Answer != models.RefusalOutOfScope {
		t.Errorf("Answer = %q, want %q", got.Answer, models.RefusalOutOfScope)
	}
	if len(got.Sources) != 0 {
		t.Errorf("Sources = %v, want empty", got.Sources)
	}
	if got.Sources == nil {
		t.Error("Sources is nil, want empty slice")
	}
	if retriever.calls != 0 || generator.calls != 0 {
		t.Errorf("out-of-scope question reached retrieval (%d) or generation (%d)", retriever.calls, generator.calls)
	}
}

func TestAnswerQuestionEmptyRetrievalRefuses(t *testing.T) {
	generator := &fakeGenerator{answer: "should never run"}
	p := newTestPipeline(&fakeRetriever{}, generator)

	got := p.AnswerQuestion(context.Background(), "What was Apple's total net sales?")
	if got.Answer != models.RefusalOutOfScope {
		t.Errorf("Answer = %q, want %q", got.Answer, models.RefusalOutOfScope)
	}
	if generator.calls != 0 {
		t.Error("generator invoked despite empty retrieval")
	}
}

func TestAnswerQuestionRetrievalErrorRefuses(t *testing.T) {
	p := newTestPipeline(&fakeRetriever{err: errors.New("store unavailable")}, &fakeGenerator{})

	got := p.AnswerQuestion(context.Background(), "What was Apple's total net sales?")
	if got.Answer != models.RefusalOutOfScope {
		t.Errorf("Answer = %q, want %q", got.Answer, models.RefusalOutOfScope)
	}
}

func TestAnswerQuestionExtractorPath(t *testing.T) {
	retriever := &fakeRetriever{chunks: []models.Chunk{
		{
			ID:       "cover",
			Text:     "15,115,823,000 shares of common stock were issued and outstanding as of October 18, 2024.",
			Document: "10-Q4-2024-As-Filed.pdf",
			Page:     1,
		},
	}}
	generator := &fakeGenerator{answer: "model answer"}
	p := newTestPipeline(retriever, generator)

	got := p.AnswerQuestion(context.Background(),
		"How many shares of common stock were issued and outstanding as of October 18, 2024?")
	if got.Answer != "15,115,823,000 shares" {
		t.Errorf("Answer = %q, want %q", got.Answer, "15,115,823,000 shares")
	}
	if generator.calls != 0 {
		t.Error("generator invoked despite an extractor hit")
	}
	if len(got.Sources) != 1 || got.Sources[0].Document != "10-Q4-2024-As-Filed.pdf" || got.Sources[0].Page != 1 {
		t.Errorf("Sources = %v, want the cover page citation", got.Sources)
	}
}

func TestAnswerQuestionGeneratorFallback(t *testing.T) {
	retriever := &fakeRetriever{chunks: []models.Chunk{
		{ID: "c1", Text: "Narrative text with no extractable figure.", Document: "tsla-20231231-gen.pdf", Page: 12},
	}}
	generator := &fakeGenerator{answer: "  The filing discusses supply chain risk.  "}
	p := newTestPipeline(retriever, generator)

	got := p.AnswerQuestion(context.Background(), "What was Tesla's total revenue in 2023?")
	if got.Answer != "The filing discusses supply chain risk." {
		t.Errorf("Answer = %q, want the trimmed generator answer", got.Answer)
	}
	if generator.calls != 1 {
		t.Errorf("generator calls = %d, want 1", generator.calls)
	}
}

func TestAnswerQuestionGeneratorErrorRefusesWithSources(t *testing.T) {
	retriever := &fakeRetriever{chunks: []models.Chunk{
		{ID: "c1", Text: "Narrative text with no extractable figure.", Document: "tsla-20231231-gen.pdf", Page: 12},
	}}
	p := newTestPipeline(retriever, &fakeGenerator{err: errors.New("model timeout")})

	got := p.AnswerQuestion(context.Background(), "What was Tesla's total revenue in 2023?")
	if got.Answer != models.RefusalNotSpecified {
		t.Errorf("Answer = %q, want %q", got.Answer, models.RefusalNotSpecified)
	}
	if len(got.Sources) != 1 {
		t.Errorf("Sources = %v, want the retrieved citation kept on refusal", got.Sources)
	}
}

func TestDedupChunks(t *testing.T) {
	chunks := []models.Chunk{
		{ID: "a", Text: "Cash and cash equivalents were materially unchanged."},
		{ID: "b", Text: "Cash and cash equivalents were materially unchanged."},
		{ID: "c", Text: "Deferred tax assets rose during the period."},
	}
	got := dedupChunks(chunks)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("dedupChunks() = %v, want first occurrences [a c]", chunkIDs(got))
	}
}

func TestReorderChunks(t *testing.T) {
	tests := []struct {
		name     string
		question string
		chunks   []models.Chunk
		want     []string
	}{
		{
			name:     "financial question reads tables first",
			question: "What was Apple's total term debt?",
			chunks: []models.Chunk{
				{ID: "narrative", Text: "Discussion of liquidity"},
				{ID: "table", Text: "Term debt  96,662", IsTable: true},
			},
			want: []string{"table", "narrative"},
		},
		{
			name:     "vehicle question reads model-naming chunks first",
			question: "Which vehicle models does Tesla produce?",
			chunks: []models.Chunk{
				{ID: "plain", Text: "Our manufacturing footprint"},
				{ID: "named", Text: "We produce the Model Y in Texas"},
			},
			want: []string{"named", "plain"},
		},
		{
			name:     "other questions keep retrieval order",
			question: "What happened to liquidity?",
			chunks: []models.Chunk{
				{ID: "a", Text: "first"},
				{ID: "b", Text: "second", IsTable: true},
			},
			want: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reorderChunks(tt.chunks, tt.question)
			if len(got) != len(tt.want) {
				t.Fatalf("reorderChunks() = %v, want %v", chunkIDs(got), tt.want)
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("chunk[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestBuildContext(t *testing.T) {
	chunks := []models.Chunk{
		{Text: "First chunk body.", Document: "a.pdf", Page: 3},
		{Text: "Second chunk body.", Document: "b.pdf", Page: 7},
	}

	got := BuildContext(chunks, 15000)
	if !strings.Contains(got, "[1] a.pdf, p. 3\nFirst chunk body.") {
		t.Errorf("BuildContext() missing first annotated chunk:\n%s", got)
	}
	if !strings.Contains(got, "[2] b.pdf, p. 7\nSecond chunk body.") {
		t.Errorf("BuildContext() missing second annotated chunk:\n%s", got)
	}
}

func TestBuildContextBudgetNeverSplitsChunks(t *testing.T) {
	chunks := []models.Chunk{
		{Text: strings.Repeat("x", 100), Document: "a.pdf", Page: 1},
		{Text: strings.Repeat("y", 100), Document: "a.pdf", Page: 2},
	}

	got := BuildContext(chunks, 150)
	if strings.Contains(got, "y") {
		t.Errorf("BuildContext() included a chunk past the budget:\n%s", got)
	}
	if !strings.Contains(got, strings.Repeat("x", 100)) {
		t.Error("BuildContext() split or dropped the first chunk")
	}
}

func TestCollectSourcesCapped(t *testing.T) {
	var chunks []models.Chunk
	for i := 0; i < 8; i++ {
		chunks = append(chunks, models.Chunk{Document: "a.pdf", Page: i + 1})
	}
	got := collectSources(chunks)
	if len(got) != 5 {
		t.Errorf("collectSources() returned %d sources, want 5", len(got))
	}
	if got[0].Page != 1 || got[4].Page != 5 {
		t.Errorf("collectSources() = %v, want the first five pages in order", got)
	}
}

func chunkIDs(chunks []models.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.ID
	}
	return out
}
