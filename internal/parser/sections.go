package parser

import (
	"strings"

	"sec-filing-rag/internal/models"
)

// sectionRules is the ordered phrase table behind DetectSection. First
// match wins, so more specific statement names come before the generic
// item headings.
var sectionRules = []struct {
	phrases []string
	label   models.Section
}{
	{[]string{"balance sheet"}, models.SectionBalanceSheet},
	{[]string{"statement of operations", "statements of operations", "income statement"}, models.SectionIncomeStatement},
	{[]string{"cash flow"}, models.SectionCashFlow},
	{[]string{"item 8"}, models.SectionItem8},
	{[]string{"item 7"}, models.SectionItem7},
	{[]string{"item 1a"}, models.SectionItem1A},
}

// DetectSection maps chunk text to a coarse section label. Always
// returns a label; the default is general.
func DetectSection(text string) models.Section {
	lower := strings.ToLower(text)
	for _, rule := range sectionRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(lower, phrase) {
				return rule.label
			}
		}
	}
	return models.SectionGeneral
}
