package extract

import (
	"strings"

	"sec-filing-rag/internal/models"
)

// Request bundles everything an extractor may consult.
type Request struct {
	Context        string
	Question       string
	Classification models.Classification
	Ranges         *Ranges
}

// dispatchRule routes a classification to one extractor. Rules are
// evaluated in order; the first whose match accepts the classification
// runs, and its result (possibly a miss) is final.
type dispatchRule struct {
	name  string
	match func(c models.Classification) bool
	run   func(req Request) string
}

func hasKeyword(c models.Classification, kw string) bool {
	for _, k := range c.Keywords {
		if strings.Contains(strings.ToLower(k), kw) {
			return true
		}
	}
	return false
}

var dispatchRules = []dispatchRule{
	{
		name:  "yes_no",
		match: func(c models.Classification) bool { return c.ExpectedOutput == models.ExpectYesNo },
		run:   func(r Request) string { return YesNo(r.Context, r.Classification.Keywords) },
	},
	{
		name:  "date",
		match: func(c models.Classification) bool { return c.ExpectedOutput == models.ExpectDate },
		run:   func(r Request) string { return Date(r.Context) },
	},
	{
		name:  "percentage",
		match: func(c models.Classification) bool { return c.Type == models.QueryCalculation },
		run:   func(r Request) string { return Percentage(r.Context, r.Ranges) },
	},
	{
		name: "debt",
		match: func(c models.Classification) bool {
			return c.Type == models.QueryNumerical && hasKeyword(c, "term debt")
		},
		run: func(r Request) string { return Debt(r.Context) },
	},
	{
		name: "shares",
		match: func(c models.Classification) bool {
			return c.Type == models.QueryNumerical && hasKeyword(c, "shares")
		},
		run: func(r Request) string {
			return Shares(r.Context, r.Question, r.Classification.Company, r.Ranges)
		},
	},
	{
		name:  "revenue",
		match: func(c models.Classification) bool { return c.Type == models.QueryNumerical },
		run: func(r Request) string {
			return Revenue(r.Context, r.Classification.Company, r.Ranges)
		},
	},
	{
		name:  "reasoning",
		match: func(c models.Classification) bool { return c.Type == models.QueryReasoning },
		run:   func(r Request) string { return Reasoning(r.Context, r.Classification.Keywords) },
	},
	{
		name:  "factual",
		match: func(c models.Classification) bool { return c.Type == models.QueryFactual },
		run:   func(r Request) string { return Factual(r.Context, r.Classification.Keywords) },
	},
}

// Dispatch routes the request to the extractor matching its
// classification and returns the extracted answer, or "" when no rule
// matches or the extractor misses.
func Dispatch(req Request) string {
	for _, rule := range dispatchRules {
		if rule.match(req.Classification) {
			return rule.run(req)
		}
	}
	return ""
}
