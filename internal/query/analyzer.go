package query

import (
	"strings"

	"sec-filing-rag/internal/models"
)

var futureTerms = []string{"forecast", "prediction", "future", "2025", "2026"}

var numericTerms = []string{
	"revenue", "debt", "shares", "percentage",
	"amount", "total", "income", "cash", "assets",
}

var keyTerms = []string{
	"revenue", "automotive", "debt", "shares",
	"staff comments", "vehicles", "lease",
}

// Analyze derives the retrieval-side view of a question: company filter,
// year, and the flags the retriever keys its boosting off. Deliberately
// re-derived rather than reusing Classify, since retrieval cares about
// different signals than extractor dispatch.
func Analyze(question string) models.Analysis {
	q := strings.ToLower(question)

	a := models.Analysis{}

	if containsAny(q, futureTerms...) {
		a.Future = true
		return a
	}

	if strings.Contains(q, "apple") {
		a.Company = models.CompanyApple
	} else if strings.Contains(q, "tesla") {
		a.Company = models.CompanyTesla
	}

	a.Numeric = containsAny(q, numericTerms...)

	if m := yearRe.FindString(question); m != "" {
		a.Year = m
	}

	for _, k := range keyTerms {
		if strings.Contains(q, k) {
			a.Keywords = append(a.Keywords, k)
		}
	}

	if containsAny(q, "vehicle", "produce", "deliver") {
		a.PreferEarlyPages = true
	}
	if strings.Contains(q, "term debt") {
		a.PreferTables = true
		a.PreferBalanceSheet = true
	}
	if strings.Contains(q, "shares") && strings.Contains(q, "outstanding") {
		a.PreferBalanceSheet = true
	}

	return a
}
