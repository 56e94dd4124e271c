package llmservice

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"sec-filing-rag/internal/config"
	"sec-filing-rag/internal/models"
)

const (
	maxNewTokens = 400
	temperature  = 0.1
)

// Client wraps the local instruction-tuned model behind an
// OpenAI-compatible endpoint. It is the designed safety net for any
// question the rule-based extractors cannot resolve.
type Client struct {
	cfg *config.LLMConfig
}

func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{cfg: cfg}
}

// generate runs one bounded, low-temperature completion.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	llm, err := openai.New(
		openai.WithBaseURL(c.cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(c.cfg.Key, "Bearer ")),
		openai.WithModel(c.cfg.Model),
	)
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxNewTokens),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("generation returned no choices")
	}
	return res.Choices[0].Content, nil
}

var answerFieldRe = regexp.MustCompile(`"answer"\s*:\s*"([^"]+)"`)

// parseAnswer pulls the answer string out of the model's raw output.
// The model is asked for JSON but routinely wraps or mangles it, so the
// JSON substring is repaired before unmarshaling, with a bare regex as
// the last resort.
func parseAnswer(raw string) string {
	// strip any instruction echo
	if idx := strings.LastIndex(raw, "[/INST]"); idx >= 0 {
		raw = raw[idx+len("[/INST]"):]
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		candidate := raw[start : end+1]
		if repaired, err := jsonrepair.RepairJSON(candidate); err == nil {
			var parsed struct {
				Answer string `json:"answer"`
			}
			if err := json.Unmarshal([]byte(repaired), &parsed); err == nil && parsed.Answer != "" {
				return strings.TrimSpace(parsed.Answer)
			}
		}
	}

	if m := answerFieldRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// degenerate reports answers too short or hedging to be worth
// returning verbatim.
func degenerate(answer string) bool {
	if len(strings.TrimSpace(answer)) < 2 {
		return true
	}
	lower := strings.ToLower(answer)
	return strings.Contains(lower, "not specified") || strings.Contains(lower, "cannot")
}

// Answer builds the instruction prompt around the context and question,
// generates a completion, and parses out an answer string. Degenerate
// output is replaced with the fixed refusal; a failed generation call
// returns the error for the orchestrator to map.
func (c *Client) Answer(ctx context.Context, question, contextText string) (string, error) {
	prompt := fmt.Sprintf(models.AnswerPromptTemplate, contextText, question)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}

	answer := parseAnswer(raw)
	if degenerate(answer) {
		log.Debug().Str("raw", raw).Msg("Degenerate model output, substituting refusal")
		return models.RefusalNotSpecified, nil
	}
	return answer, nil
}
