package parser

import (
	"regexp"
	"strings"
)

// TableBlock is a run of contiguous table-row lines within one page,
// treated as one atomic chunk. StartLine/EndLine index into the page's
// lines, end exclusive.
type TableBlock struct {
	Text      string
	StartLine int
	EndLine   int
}

const minTableRows = 2

var (
	dollarAmountRe = regexp.MustCompile(`\$\s*[\d,]+`)
	numberTokenRe  = regexp.MustCompile(`\d{1,3}(?:,\d{3})*`)
	wideSpacingRe  = regexp.MustCompile(`\s{2,}`)
)

// financialKeywords mark lines that belong to financial statements even
// when PDF extraction mangled the numeric columns.
var financialKeywords = []string{
	"assets", "liabilities", "equity", "revenue", "sales",
	"income", "cash", "debt", "total", "net", "balance",
	"current", "non-current", "shares", "common stock",
	"term debt", "accounts payable", "inventory",
}

func hasDollarAmount(line string) bool {
	return dollarAmountRe.MatchString(line)
}

func hasMultipleNumbers(line string) bool {
	return len(numberTokenRe.FindAllString(line, -1)) >= 2
}

// hasWideSpacing reports runs of two or more whitespace characters, the
// residue of column separation lost during PDF text extraction.
func hasWideSpacing(line string) bool {
	return wideSpacingRe.MatchString(line)
}

func hasFinancialKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range financialKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isTableRow classifies a single line as part of a financial table.
func isTableRow(line string) bool {
	if len(strings.TrimSpace(line)) < 5 {
		return false
	}

	dollars := hasDollarAmount(line)
	numbers := hasMultipleNumbers(line)
	spacing := hasWideSpacing(line)
	keyword := hasFinancialKeyword(line)

	if dollars && spacing {
		return true
	}
	if numbers && spacing {
		return true
	}
	if keyword && (numbers || spacing || dollars) {
		return true
	}
	return false
}

// ExtractTableBlocks scans a page's text line by line, accumulating
// consecutive table rows and closing a block on the first non-table or
// blank line. Blocks shorter than minTableRows are discarded. Pages with
// no tables simply yield nothing.
func ExtractTableBlocks(text string) []TableBlock {
	lines := strings.Split(text, "\n")

	var blocks []TableBlock
	var current []string
	inTable := false

	closeBlock := func(end int) {
		if len(current) >= minTableRows {
			blocks = append(blocks, TableBlock{
				Text:      strings.Join(current, "\n"),
				StartLine: end - len(current),
				EndLine:   end,
			})
		}
		current = nil
		inTable = false
	}

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			if inTable {
				closeBlock(i)
			}
			current = nil
			inTable = false
			continue
		}

		if isTableRow(line) {
			inTable = true
			current = append(current, stripped)
			continue
		}
		closeBlock(i)
	}
	closeBlock(len(lines))

	return blocks
}
