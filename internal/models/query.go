package models

// QueryType is the routing category a question falls into.
type QueryType string

const (
	QueryFactual     QueryType = "factual"
	QueryNumerical   QueryType = "numerical"
	QueryCalculation QueryType = "calculation"
	QueryReasoning   QueryType = "reasoning"
	QueryOutOfScope  QueryType = "out_of_scope"
)

// ExpectedOutput is the shape of answer a question calls for.
type ExpectedOutput string

const (
	ExpectText       ExpectedOutput = "text"
	ExpectNumber     ExpectedOutput = "number"
	ExpectDate       ExpectedOutput = "date"
	ExpectYesNo      ExpectedOutput = "yes_no"
	ExpectPercentage ExpectedOutput = "percentage"
)

// Classification is the result of classifying a raw question. Derived
// fresh per question, never persisted.
type Classification struct {
	Type           QueryType
	Keywords       []string
	Company        Company
	Year           string
	ExpectedOutput ExpectedOutput
}

// Analysis carries the retrieval-side signals re-derived from a question.
// It overlaps with Classification on purpose: the retriever keys its
// boosting and filtering off these flags alone.
type Analysis struct {
	Future             bool
	Company            Company
	Numeric            bool
	Year               string
	Keywords           []string
	PreferTables       bool
	PreferEarlyPages   bool
	PreferBalanceSheet bool
}
