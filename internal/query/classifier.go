package query

import (
	"regexp"
	"strings"

	"sec-filing-rag/internal/models"
)

// rule is one entry in the classification cascade: the first rule whose
// match predicate accepts the lower-cased question wins.
type rule struct {
	name  string
	match func(q string) bool
	build func(q string, c *models.Classification)
}

var yearRe = regexp.MustCompile(`20\d{2}`)

func containsAny(q string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(q, t) {
			return true
		}
	}
	return false
}

// classifyRules is the ordered decision table. Ordering is load-bearing:
// the percentage rule must precede the revenue rule, otherwise automotive
// percentage questions get misrouted to plain revenue extraction.
var classifyRules = []rule{
	{
		name: "out_of_scope",
		match: func(q string) bool {
			return containsAny(q, "forecast", "future", "prediction", "stock price", "color", "weather")
		},
		build: func(q string, c *models.Classification) {
			c.Type = models.QueryOutOfScope
		},
	},
	{
		name: "shares_outstanding",
		match: func(q string) bool {
			return strings.Contains(q, "shares") && strings.Contains(q, "outstanding")
		},
		build: func(q string, c *models.Classification) {
			c.Type = models.QueryNumerical
			c.Keywords = []string{"shares", "outstanding", "common stock"}
			c.ExpectedOutput = models.ExpectNumber
		},
	},
	{
		name: "term_debt",
		match: func(q string) bool {
			return strings.Contains(q, "term debt")
		},
		build: func(q string, c *models.Classification) {
			c.Type = models.QueryNumerical
			c.Keywords = []string{"term debt", "current", "non-current"}
			c.ExpectedOutput = models.ExpectNumber
		},
	},
	{
		name: "percentage",
		match: func(q string) bool {
			return containsAny(q, "percentage", "%")
		},
		build: func(q string, c *models.Classification) {
			c.Type = models.QueryCalculation
			c.Keywords = []string{"automotive sales", "total revenue"}
			c.ExpectedOutput = models.ExpectPercentage
		},
	},
	{
		name: "revenue",
		match: func(q string) bool {
			return containsAny(q, "revenue", "net sales", "sales")
		},
		build: func(q string, c *models.Classification) {
			c.Type = models.QueryNumerical
			c.Keywords = []string{"total net sales", "revenue"}
			c.ExpectedOutput = models.ExpectNumber
		},
	},
	{
		name: "reasoning",
		match: func(q string) bool {
			return containsAny(q, "why", "reason", "purpose")
		},
		build: func(q string, c *models.Classification) {
			c.Type = models.QueryReasoning
			if strings.Contains(q, "elon musk") {
				c.Keywords = []string{"elon musk", "dependent", "leadership", "strategy"}
			}
		},
	},
	{
		name: "vehicles",
		match: func(q string) bool {
			return containsAny(q, "vehicle", "produce", "deliver")
		},
		build: func(q string, c *models.Classification) {
			c.Type = models.QueryFactual
			for _, m := range models.VehicleModels {
				c.Keywords = append(c.Keywords, strings.ToLower(m))
			}
		},
	},
	{
		name: "staff_comments",
		match: func(q string) bool {
			return strings.Contains(q, "staff comments")
		},
		build: func(q string, c *models.Classification) {
			c.Type = models.QueryFactual
			c.Keywords = []string{"staff comments", "sec"}
			c.ExpectedOutput = models.ExpectYesNo
		},
	},
	{
		name: "date",
		match: func(q string) bool {
			return containsAny(q, "what date", "when was", "when did", "fiscal year end")
		},
		build: func(q string, c *models.Classification) {
			c.Type = models.QueryFactual
			c.ExpectedOutput = models.ExpectDate
		},
	},
}

// Classify maps a raw question to its query type, keyword list, and
// expected output shape. Total over any input: the default is a factual
// classification with no keywords.
func Classify(question string) models.Classification {
	q := strings.ToLower(question)

	c := models.Classification{
		Type:           models.QueryFactual,
		ExpectedOutput: models.ExpectText,
	}

	// company and year are orthogonal to the type rules
	if strings.Contains(q, "apple") {
		c.Company = models.CompanyApple
	} else if strings.Contains(q, "tesla") {
		c.Company = models.CompanyTesla
	}
	if m := yearRe.FindString(question); m != "" {
		c.Year = m
	}

	for _, r := range classifyRules {
		if r.match(q) {
			r.build(q, &c)
			return c
		}
	}
	return c
}
