package query

import (
	"testing"

	"sec-filing-rag/internal/models"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     models.Analysis
	}{
		{
			name:     "future question short-circuits",
			question: "What is the revenue prediction for 2026?",
			want:     models.Analysis{Future: true},
		},
		{
			name:     "term debt prefers tables and balance sheet",
			question: "What was Apple's total term debt?",
			want: models.Analysis{
				Company:            models.CompanyApple,
				Numeric:            true,
				Keywords:           []string{"debt"},
				PreferTables:       true,
				PreferBalanceSheet: true,
			},
		},
		{
			name:     "vehicles prefer early pages",
			question: "Which vehicles does Tesla produce?",
			want: models.Analysis{
				Company:          models.CompanyTesla,
				Keywords:         []string{"vehicles"},
				PreferEarlyPages: true,
			},
		},
		{
			name:     "year extraction",
			question: "What was Tesla's total revenue for 2023?",
			want: models.Analysis{
				Company:  models.CompanyTesla,
				Numeric:  true,
				Year:     "2023",
				Keywords: []string{"revenue"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.question)
			if got.Future != tt.want.Future {
				t.Errorf("future = %v, want %v", got.Future, tt.want.Future)
			}
			if got.Company != tt.want.Company {
				t.Errorf("company = %q, want %q", got.Company, tt.want.Company)
			}
			if got.Numeric != tt.want.Numeric {
				t.Errorf("numeric = %v, want %v", got.Numeric, tt.want.Numeric)
			}
			if got.Year != tt.want.Year {
				t.Errorf("year = %q, want %q", got.Year, tt.want.Year)
			}
			if got.PreferTables != tt.want.PreferTables {
				t.Errorf("preferTables = %v, want %v", got.PreferTables, tt.want.PreferTables)
			}
			if got.PreferEarlyPages != tt.want.PreferEarlyPages {
				t.Errorf("preferEarlyPages = %v, want %v", got.PreferEarlyPages, tt.want.PreferEarlyPages)
			}
			if got.PreferBalanceSheet != tt.want.PreferBalanceSheet {
				t.Errorf("preferBalanceSheet = %v, want %v", got.PreferBalanceSheet, tt.want.PreferBalanceSheet)
			}
			if len(got.Keywords) != len(tt.want.Keywords) {
				t.Errorf("keywords = %v, want %v", got.Keywords, tt.want.Keywords)
			}
		})
	}
}
