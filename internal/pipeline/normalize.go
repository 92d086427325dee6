package pipeline

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/survey-cli/internal/model"
)

type questionsXML struct {
	XMLName   xml.Name      `xml:"questions"`
	Questions []questionXML `xml:"q"`
}

type questionXML struct {
	Type     string `xml:"type,attr"`
	Seq      string `xml:"seq,attr"`
	Row      string `xml:"row,attr"`
	Sheet    string `xml:"sheet,attr"`
	Text     string `xml:"text"`
	HelpText string `xml:"help_text"`
	Answers  struct {
		Options []string `xml:"option"`
	} `xml:"answers"`
	ConditionalInputs struct {
		Inputs []conditionalInputXML `xml:"input"`
	} `xml:"conditional_inputs"`
	Dependencies struct {
		DependsOn []dependsOnXML `xml:"depends_on"`
	} `xml:"dependencies"`
}

type conditionalInputXML struct {
	Answer string `xml:"answer,attr"`
	Prompt string `xml:",chardata"`
}

type dependsOnXML struct {
	QuestionID    string `xml:"question_id,attr"`
	QuestionSeq   string `xml:"question_seq,attr"`
	QuestionRow   string `xml:"question_row,attr"`
	AnswerValue   string `xml:"answer_value,attr"`
	ConditionType string `xml:"condition_type,attr"`
	Action        string `xml:"action,attr"`
	OriginalText  string `xml:"original_text,attr"`
}

// rawDependency is a dependency captured in pass 1 with its locator still
// unresolved.
type rawDependency struct {
	questionIdx int
	depIdx      int
	locator     string
	sheet       string
}

// Normalize turns the combined extraction output into the final question
// set. Pass 1 assigns every question a fresh identifier and indexes each
// locator the response exposed for it (sequence number, sheet+row
// composite, bare row). Pass 2 rewrites dependency targets through that
// index; locators with no match are kept verbatim so the dependency stays
// readable even when unlinked. Two passes because the response freely
// forward-references questions that appear later in the document.
func Normalize(combined string) ([]model.ExtractedQuestion, error) {
	block, ok := ExtractElement(cleanResponse(combined), "questions")
	if !ok {
		return nil, eris.New("pipeline: no questions block in combined output")
	}

	var parsed questionsXML
	if err := decodeElement(block, &parsed); err != nil {
		return nil, err
	}

	questions := make([]model.ExtractedQuestion, 0, len(parsed.Questions))
	locators := make(map[string]string)
	var raws []rawDependency

	// Pass 1: create question records, index locators, capture raw deps.
	for _, q := range parsed.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}

		eq := model.ExtractedQuestion{
			ID:       uuid.New().String(),
			Text:     text,
			Type:     model.ParseQuestionType(strings.TrimSpace(q.Type)),
			HelpText: strings.TrimSpace(q.HelpText),
			Source: model.SourceLocation{
				Sheet: strings.TrimSpace(q.Sheet),
				Seq:   strings.TrimSpace(q.Seq),
			},
		}
		if row, err := strconv.Atoi(strings.TrimSpace(q.Row)); err == nil {
			eq.Source.Row = row
		}

		for _, opt := range q.Answers.Options {
			if opt = strings.TrimSpace(opt); opt != "" {
				eq.AnswerOptions = append(eq.AnswerOptions, opt)
			}
		}

		for _, in := range q.ConditionalInputs.Inputs {
			answer := strings.TrimSpace(in.Answer)
			prompt := strings.TrimSpace(in.Prompt)
			if answer == "" || prompt == "" {
				continue
			}
			if eq.ConditionalInputs == nil {
				eq.ConditionalInputs = make(map[string]string)
			}
			eq.ConditionalInputs[answer] = prompt
		}

		idx := len(questions)
		registerLocators(locators, eq)

		for _, d := range q.Dependencies.DependsOn {
			locator := firstNonEmpty(d.QuestionID, d.QuestionSeq, d.QuestionRow)
			if locator == "" {
				continue
			}
			eq.Dependencies = append(eq.Dependencies, model.QuestionDependency{
				QuestionID:    locator,
				AnswerValue:   strings.TrimSpace(d.AnswerValue),
				ConditionType: parseConditionType(d.ConditionType),
				Action:        parseAction(d.Action),
				OriginalText:  strings.TrimSpace(d.OriginalText),
			})
			raws = append(raws, rawDependency{
				questionIdx: idx,
				depIdx:      len(eq.Dependencies) - 1,
				locator:     locator,
				sheet:       eq.Source.Sheet,
			})
		}

		questions = append(questions, eq)
	}

	// Pass 2: rewrite dependency targets via the locator index.
	for _, raw := range raws {
		dep := &questions[raw.questionIdx].Dependencies[raw.depIdx]
		if id, ok := locators[raw.locator]; ok {
			dep.QuestionID = id
			continue
		}
		if raw.sheet != "" {
			if id, ok := locators[raw.sheet+":"+raw.locator]; ok {
				dep.QuestionID = id
			}
		}
		// Unresolved: the raw locator stays in place.
	}

	return questions, nil
}

// registerLocators indexes every locator form the response could later use
// to reference this question. First writer wins on collisions so earlier
// questions keep their locators.
func registerLocators(locators map[string]string, q model.ExtractedQuestion) {
	add := func(key string) {
		if key == "" {
			return
		}
		if _, exists := locators[key]; !exists {
			locators[key] = q.ID
		}
	}
	add(q.Source.Seq)
	if q.Source.Row > 0 {
		row := strconv.Itoa(q.Source.Row)
		add(row)
		if q.Source.Sheet != "" {
			add(q.Source.Sheet + ":" + row)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseConditionType(s string) model.ConditionType {
	switch model.ConditionType(strings.TrimSpace(strings.ToLower(s))) {
	case model.ConditionContains:
		return model.ConditionContains
	case model.ConditionNotEmpty:
		return model.ConditionNotEmpty
	default:
		return model.ConditionEquals
	}
}

func parseAction(s string) model.DependencyAction {
	if model.DependencyAction(strings.TrimSpace(strings.ToLower(s))) == model.ActionSkip {
		return model.ActionSkip
	}
	return model.ActionShow
}

// CountDependencies tallies show/skip dependencies for metrics.
func CountDependencies(questions []model.ExtractedQuestion) (show, skip int) {
	for _, q := range questions {
		for _, d := range q.Dependencies {
			switch d.Action {
			case model.ActionSkip:
				skip++
			default:
				show++
			}
		}
	}
	return show, skip
}
