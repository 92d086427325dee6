package model

// QuestionType classifies an extracted question.
type QuestionType string

const (
	QuestionTypeOpenEnded      QuestionType = "open_ended"
	QuestionTypeSingleChoice   QuestionType = "single_choice"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeYesNo          QuestionType = "yes_no"
	QuestionTypeNumeric        QuestionType = "numeric"
	QuestionTypeInteger        QuestionType = "integer"
	QuestionTypeDecimal        QuestionType = "decimal"
	QuestionTypeGrouped        QuestionType = "grouped"
)

// ParseQuestionType maps a type string from an extraction response to a
// QuestionType, defaulting to open_ended for unrecognized values.
func ParseQuestionType(s string) QuestionType {
	switch QuestionType(s) {
	case QuestionTypeOpenEnded, QuestionTypeSingleChoice, QuestionTypeMultipleChoice,
		QuestionTypeYesNo, QuestionTypeNumeric, QuestionTypeInteger,
		QuestionTypeDecimal, QuestionTypeGrouped:
		return QuestionType(s)
	}
	return QuestionTypeOpenEnded
}

// ConditionType describes how a dependency's answer value is compared.
type ConditionType string

const (
	ConditionEquals   ConditionType = "equals"
	ConditionContains ConditionType = "contains"
	ConditionNotEmpty ConditionType = "not_empty"
)

// DependencyAction describes what a satisfied dependency does.
type DependencyAction string

const (
	ActionShow DependencyAction = "show"
	ActionSkip DependencyAction = "skip"
)

// QuestionDependency is a conditional show/skip relationship to another
// question. QuestionID starts as the raw locator from the extraction
// response and is rewritten to the target's assigned identifier when
// resolution succeeds; unresolved locators are kept verbatim.
type QuestionDependency struct {
	QuestionID    string           `json:"question_id"`
	AnswerValue   string           `json:"answer_value,omitempty"`
	ConditionType ConditionType    `json:"condition_type"`
	Action        DependencyAction `json:"action"`
	OriginalText  string           `json:"original_text,omitempty"`
}

// SourceLocation records where in the workbook a question was found.
type SourceLocation struct {
	Sheet string `json:"sheet,omitempty"`
	Row   int    `json:"row,omitempty"`
	Seq   string `json:"seq,omitempty"`
}

// ExtractedQuestion is one survey question in its final normalized form.
// The ID is assigned during normalization and is unique within a run.
type ExtractedQuestion struct {
	ID                string               `json:"id"`
	Text              string               `json:"text"`
	Type              QuestionType         `json:"type"`
	HelpText          string               `json:"help_text,omitempty"`
	AnswerOptions     []string             `json:"answer_options,omitempty"`
	ConditionalInputs map[string]string    `json:"conditional_inputs,omitempty"`
	Dependencies      []QuestionDependency `json:"dependencies,omitempty"`
	Source            SourceLocation       `json:"source,omitempty"`
}

// GroundTruthEntry is one hand-labeled question used to score extraction
// output for a given file.
type GroundTruthEntry struct {
	Text string       `json:"text" yaml:"text"`
	Type QuestionType `json:"type,omitempty" yaml:"type,omitempty"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Add merges token usage from another instance.
func (t *TokenUsage) Add(other TokenUsage) {
	t.InputTokens += other.InputTokens
	t.OutputTokens += other.OutputTokens
}
