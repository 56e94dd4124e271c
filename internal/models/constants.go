package models

const (
	// RefusalOutOfScope is returned for questions the corpus cannot
	// answer: out-of-scope classification or empty retrieval.
	RefusalOutOfScope = "This question cannot be answered based on the provided documents."

	// RefusalNotSpecified is returned when retrieval succeeded but
	// neither extraction nor generation produced a usable answer.
	RefusalNotSpecified = "Not specified in the document."
)

// Metadata keys used for vector-store records.
const (
	MetaDocument = "document"
	MetaPage     = "page"
	MetaIsTable  = "is_table"
	MetaSection  = "section"
	MetaCompany  = "company"
)

// VehicleModels is the fixed product vocabulary for Tesla vehicle
// questions, shared by the retriever filters and the factual extractor.
var VehicleModels = []string{"Model S", "Model 3", "Model X", "Model Y", "Cybertruck"}

var (
	AnswerPromptTemplate = `[INST] Extract the exact answer from context.

CONTEXT:
%s

QUESTION: %s

Return JSON: {"answer": "exact value with units"}

JSON: [/INST]`
)
