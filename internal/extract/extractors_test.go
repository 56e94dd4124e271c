package extract

import (
	"fmt"
	"strings"
	"testing"

	"sec-filing-rag/internal/models"
)

func testRanges() *Ranges {
	return NewRanges(nil)
}

func TestDebtBothComponents(t *testing.T) {
	tests := []struct {
		current    int
		nonCurrent int
		want       string
	}{
		{10912, 85750, "$96,662 million"},
		{9822, 95281, "$105,103 million"},
		{1000, 2000, "$3,000 million"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			context := fmt.Sprintf(
				"Current portion of term debt  %s\nTerm debt, net of current portion  %s\n",
				formatGrouped(tt.current), formatGrouped(tt.nonCurrent),
			)
			if got := Debt(context); got != tt.want {
				t.Errorf("Debt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDebtPartialComponentRejected(t *testing.T) {
	// one component alone is untrustworthy and must yield a miss
	tests := []struct {
		name    string
		context string
	}{
		{"current only", "Current portion of term debt  10,912\n"},
		{"non-current only", "Term debt, net of current portion  85,750\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Debt(tt.context); got != "" {
				t.Errorf("Debt() = %q, want miss", got)
			}
		})
	}
}

func TestDebtTotalLineFallback(t *testing.T) {
	context := "Total term debt  96,662\n"
	if got := Debt(context); got != "$96,662 million" {
		t.Errorf("Debt() = %q, want $96,662 million", got)
	}
}

func TestSharesAcceptsIssuedAndOutstanding(t *testing.T) {
	context := "15,115,823,000 shares of common stock were issued and outstanding as of October 18, 2024."
	question := "How many shares of common stock were issued and outstanding as of October 18, 2024?"

	got := Shares(context, question, models.CompanyApple, testRanges())
	if got != "15,115,823,000 shares" {
		t.Errorf("Shares() = %q, want %q", got, "15,115,823,000 shares")
	}
}

func TestSharesRejectsShareholdersOfRecord(t *testing.T) {
	// a holders-of-record count is a different, much smaller figure
	context := "As of October 18, 2024 there were 23,301 shareholders of record. " +
		"No shares issued and outstanding figures appear here."
	if got := Shares(context, "", models.CompanyApple, testRanges()); got != "" {
		t.Errorf("Shares() = %q, want miss", got)
	}
}

func TestSharesRejectsOutOfRange(t *testing.T) {
	// four comma groups but an order of magnitude off for this filer
	context := "1,115,823,000 shares issued and outstanding as of October 18, 2024."
	if got := Shares(context, "", models.CompanyApple, testRanges()); got != "" {
		t.Errorf("Shares() = %q, want miss for out-of-range figure", got)
	}
}

func TestSharesBalanceSheetFormat(t *testing.T) {
	context := "Common stock: 15,115,823,000 and 15,550,061,000 shares issued and outstanding, respectively"
	got := Shares(context, "", models.CompanyApple, testRanges())
	if got != "15,115,823,000 shares" {
		t.Errorf("Shares() = %q, want first figure", got)
	}
}

func TestPercentage(t *testing.T) {
	context := "Automotive sales $ 78,509\nTotal revenues $ 96,773\n"
	got := Percentage(context, testRanges())
	if got == "" {
		t.Fatal("Percentage() missed")
	}
	if !strings.Contains(got, "81.1%") {
		t.Errorf("Percentage() = %q, want 81.1%% in it", got)
	}
	// both absolute figures must be echoed
	if !strings.Contains(got, "78,509") || !strings.Contains(got, "96,773") {
		t.Errorf("Percentage() = %q, want both dollar figures echoed", got)
	}
}

func TestPercentageSanityChecks(t *testing.T) {
	tests := []struct {
		name    string
		context string
	}{
		{"total not greater than component", "Automotive sales $ 96,773\nTotal revenues $ 78,509\n"},
		{"component out of range", "Automotive sales $ 8,509\nTotal revenues $ 96,773\n"},
		{"missing total", "Automotive sales $ 78,509\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentage(tt.context, testRanges()); got != "" {
				t.Errorf("Percentage() = %q, want miss", got)
			}
		})
	}
}

func TestRevenue(t *testing.T) {
	tests := []struct {
		name    string
		context string
		company models.Company
		want    string
	}{
		{
			name:    "apple net sales",
			context: "Net sales $ 391,036\nCost of sales 210,352\n",
			company: models.CompanyApple,
			want:    "$391,036 million",
		},
		{
			name:    "tesla total revenues",
			context: "Total revenues $ 96,773\n",
			company: models.CompanyTesla,
			want:    "$96,773 million",
		},
		{
			name:    "apple out-of-range rejected",
			context: "Net sales $ 12,036\n",
			company: models.CompanyApple,
			want:    "",
		},
		{
			name:    "unknown company unbounded",
			context: "Total revenues $ 12,345\n",
			company: models.CompanyNone,
			want:    "$12,345 million",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Revenue(tt.context, tt.company, testRanges()); got != tt.want {
				t.Errorf("Revenue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRevenueStackedNumbersFallback(t *testing.T) {
	context := "391,036\n383,285\n394,328\n"
	if got := Revenue(context, models.CompanyApple, testRanges()); got != "$391,036 million" {
		t.Errorf("Revenue() = %q, want stacked-column fallback", got)
	}
}

func TestFactual(t *testing.T) {
	context := "We currently manufacture the Model S, Model 3, Model X and Model Y, " +
		"and began deliveries of Cybertruck in 2023. We also produce the Model Y at Gigafactory Texas."
	got := Factual(context, nil)
	want := "Model S, Model 3, Model X, Model Y, Cybertruck"
	if got != want {
		t.Errorf("Factual() = %q, want %q (deduped, vocabulary order)", got, want)
	}
}

func TestFactualMiss(t *testing.T) {
	if got := Factual("No products are described in this passage.", nil); got != "" {
		t.Errorf("Factual() = %q, want miss", got)
	}
}

func TestReasoningMuskDisclosure(t *testing.T) {
	context := "Risk factors follow. In particular, we are highly dependent on the services of " +
		"Elon Musk, Technoking of Tesla and our Chief Executive Officer. Other risks exist."
	got := Reasoning(context, []string{"elon musk", "dependent", "leadership", "strategy"})
	if got == "" {
		t.Fatal("Reasoning() missed the dependency disclosure")
	}
	if !strings.Contains(got, "highly dependent on the services of Elon Musk") {
		t.Errorf("Reasoning() = %q, want the disclosure sentence", got)
	}
	if !strings.Contains(got, "strategy, innovation and leadership") {
		t.Errorf("Reasoning() = %q, want the synthesized clause appended", got)
	}
}

func TestReasoningTermScoringFallback(t *testing.T) {
	context := "The weather was mild. Our leadership team drives strategy and innovation across " +
		"segments. Unrelated trailing sentence."
	got := Reasoning(context, nil)
	if !strings.Contains(got, "leadership") {
		t.Errorf("Reasoning() = %q, want the term-dense sentence", got)
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name    string
		context string
		want    string
	}{
		{"plain", "as of October 18, 2024 the registrant had", "October 18, 2024"},
		{"no comma", "fiscal year ended September 28 2024", "September 28, 2024"},
		{"case normalized", "ON JANUARY 5, 2023 THE BOARD", "January 5, 2023"},
		{"miss", "no dates here", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Date(tt.context); got != tt.want {
				t.Errorf("Date(%q) = %q, want %q", tt.context, got, tt.want)
			}
		})
	}
}

func TestYesNo(t *testing.T) {
	keywords := []string{"staff comments", "sec"}

	if got := YesNo("Item 1B. Unresolved Staff Comments\nNone.", keywords); got != "No" {
		t.Errorf("YesNo() = %q, want No", got)
	}
	// the token match is case-sensitive
	if got := YesNo("none of the comments were resolved", keywords); got != "" {
		t.Errorf("YesNo() = %q, want miss on lower-case none", got)
	}
	if got := YesNo("Item 1B. None.", []string{"vehicles"}); got != "" {
		t.Errorf("YesNo() = %q, want miss without sec keywords", got)
	}
}

func TestFormatGrouped(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{96662, "96,662"},
		{15115823000, "15,115,823,000"},
	}
	for _, tt := range tests {
		if got := formatGrouped(tt.in); got != tt.want {
			t.Errorf("formatGrouped(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
