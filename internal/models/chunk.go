package models

// Section is the coarse document section a chunk was detected in.
type Section string

const (
	SectionBalanceSheet    Section = "balance_sheet"
	SectionIncomeStatement Section = "income_statement"
	SectionCashFlow        Section = "cash_flow"
	SectionItem8           Section = "item_8"
	SectionItem7           Section = "item_7"
	SectionItem1A          Section = "item_1a"
	SectionGeneral         Section = "general"
)

// Company identifies which filer a chunk or question refers to.
type Company string

const (
	CompanyApple Company = "apple"
	CompanyTesla Company = "tesla"
	CompanyNone  Company = ""
)

// Page is one page of raw text extracted from a source PDF.
type Page struct {
	Number int
	Text   string
}

// Chunk is a unit of indexed text with its source metadata. Chunks are
// created during ingestion and immutable afterwards; each one maps to a
// single vector-store record.
type Chunk struct {
	ID       string
	Text     string
	Document string
	Page     int
	IsTable  bool
	Section  Section
	Company  Company
}

// ScoredChunk carries a chunk together with a relevance score. The score
// meaning depends on the stage: store similarity, heuristic boost, or
// cross-encoder score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Source is a (document, page) citation attached to an answer.
type Source struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
}

// Answer is the terminal output of the pipeline for one question.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
