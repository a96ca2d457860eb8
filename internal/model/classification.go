package model

type QuestionType string

const (
	QuestionTypeTechnical  QuestionType = "technical"
	QuestionTypeBehavioral QuestionType = "behavioral"
	QuestionTypeCompany    QuestionType = "company"
	QuestionTypeGeneral    QuestionType = "general"
)

type Complexity string

const (
	ComplexityBeginner     Complexity = "beginner"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
)

// ContextClassification is derived purely from the question text and is
// immutable once computed.
type ContextClassification struct {
	Type       QuestionType `json:"type"`
	Complexity Complexity   `json:"complexity"`
	Topics     []string     `json:"topics"`
	Confidence float64      `json:"confidence"`
}
