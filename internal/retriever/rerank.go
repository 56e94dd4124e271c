package retriever

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sec-filing-rag/internal/config"
)

// Reranker scores (query, text) pairs jointly for second-stage ranking,
// with higher precision than the initial dense retrieval.
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string) ([]float64, error)
}

// HTTPReranker calls a cross-encoder served over HTTP (a TEI-style
// /rerank endpoint).
type HTTPReranker struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewHTTPReranker(cfg *config.RerankerConfig) *HTTPReranker {
	return &HTTPReranker{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (r *HTTPReranker) Rerank(ctx context.Context, query string, texts []string) ([]float64, error) {
	payload := struct {
		Model string   `json:"model,omitempty"`
		Query string   `json:"query"`
		Texts []string `json:"texts"`
	}{
		Model: r.model,
		Query: query,
		Texts: texts,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/rerank", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rerank request failed: %d, %s", resp.StatusCode, string(body))
	}

	var results []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}

	scores := make([]float64, len(texts))
	for _, res := range results {
		if res.Index >= 0 && res.Index < len(scores) {
			scores[res.Index] = res.Score
		}
	}
	return scores, nil
}
