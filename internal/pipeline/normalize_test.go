package pipeline

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/survey-cli/internal/model"
)

const normalizeFixture = `<questions>
  <q type="yes_no" seq="1" row="2" sheet="Survey">
    <text>Do you smoke?</text>
    <help_text>Cigarettes or vaping.</help_text>
    <answers>
      <option>Yes</option>
      <option>No</option>
      <option>  </option>
    </answers>
    <conditional_inputs>
      <input answer="Yes">How many per day?</input>
      <input answer="">ignored</input>
    </conditional_inputs>
  </q>
  <q type="open_ended" seq="2" row="5" sheet="Survey">
    <text>How many per day?</text>
    <dependencies>
      <depends_on question_seq="1" answer_value="Yes" condition_type="equals" action="show" original_text="if yes, specify"/>
    </dependencies>
  </q>
</questions>`

func TestNormalizeAssignsUniqueIDs(t *testing.T) {
	questions, err := Normalize(normalizeFixture)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	seen := map[string]bool{}
	for _, q := range questions {
		_, parseErr := uuid.Parse(q.ID)
		assert.NoError(t, parseErr)
		assert.False(t, seen[q.ID], "duplicate id")
		seen[q.ID] = true
	}
}

func TestNormalizeFields(t *testing.T) {
	questions, err := Normalize(normalizeFixture)
	require.NoError(t, err)

	q := questions[0]
	assert.Equal(t, "Do you smoke?", q.Text)
	assert.Equal(t, model.QuestionTypeYesNo, q.Type)
	assert.Equal(t, "Cigarettes or vaping.", q.HelpText)
	assert.Equal(t, []string{"Yes", "No"}, q.AnswerOptions)
	assert.Equal(t, map[string]string{"Yes": "How many per day?"}, q.ConditionalInputs)
	assert.Equal(t, "Survey", q.Source.Sheet)
	assert.Equal(t, 2, q.Source.Row)
	assert.Equal(t, "1", q.Source.Seq)
}

func TestNormalizeResolvesSeqDependency(t *testing.T) {
	questions, err := Normalize(normalizeFixture)
	require.NoError(t, err)

	dep := questions[1].Dependencies[0]
	assert.Equal(t, questions[0].ID, dep.QuestionID)
	assert.Equal(t, "Yes", dep.AnswerValue)
	assert.Equal(t, model.ConditionEquals, dep.ConditionType)
	assert.Equal(t, model.ActionShow, dep.Action)
	assert.Equal(t, "if yes, specify", dep.OriginalText)
}

func TestNormalizeResolvesForwardRowDependency(t *testing.T) {
	questions, err := Normalize(`<questions>
  <q seq="1" row="2" sheet="S">
    <text>First</text>
    <dependencies>
      <depends_on question_row="8" answer_value="x" action="skip"/>
    </dependencies>
  </q>
  <q seq="2" row="8" sheet="S">
    <text>Later</text>
  </q>
</questions>`)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	dep := questions[0].Dependencies[0]
	assert.Equal(t, questions[1].ID, dep.QuestionID)
	assert.Equal(t, model.ActionSkip, dep.Action)
}

func TestNormalizeResolvesSheetRowComposite(t *testing.T) {
	questions, err := Normalize(`<questions>
  <q seq="a" row="4" sheet="Other">
    <text>Target</text>
  </q>
  <q seq="b" row="4" sheet="Main">
    <text>Asker</text>
    <dependencies>
      <depends_on question_id="Main:4" answer_value="x"/>
    </dependencies>
  </q>
</questions>`)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	// Bare row "4" indexes the first question; the composite locator still
	// reaches the second.
	assert.Equal(t, questions[1].ID, questions[1].Dependencies[0].QuestionID)
}

func TestNormalizeKeepsUnresolvedLocator(t *testing.T) {
	questions, err := Normalize(`<questions>
  <q seq="1" row="2" sheet="S">
    <text>Only</text>
    <dependencies>
      <depends_on question_seq="99" answer_value="x"/>
    </dependencies>
  </q>
</questions>`)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "99", questions[0].Dependencies[0].QuestionID)
}

func TestNormalizeSkipsEmptyQuestions(t *testing.T) {
	questions, err := Normalize(`<questions>
  <q seq="1" row="2" sheet="S"><text>   </text></q>
  <q seq="2" row="3" sheet="S"><text>Real</text></q>
</questions>`)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "Real", questions[0].Text)
}

func TestNormalizeUnknownTypeDefaultsOpenEnded(t *testing.T) {
	questions, err := Normalize(`<questions>
  <q type="essay" seq="1" row="2" sheet="S"><text>Describe</text></q>
</questions>`)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, model.QuestionTypeOpenEnded, questions[0].Type)
}

func TestNormalizeRecoversMissingClosingTag(t *testing.T) {
	truncated := `<questions>
  <q seq="1" row="2" sheet="S"><text>First</text></q>
  <q seq="2" row="3" sheet="S"><text>Second</text></q>`

	questions, err := Normalize(truncated)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestNormalizeNoQuestionsBlock(t *testing.T) {
	_, err := Normalize("nothing structured at all")
	assert.Error(t, err)
}

func TestCountDependencies(t *testing.T) {
	questions := []model.ExtractedQuestion{
		{Dependencies: []model.QuestionDependency{
			{Action: model.ActionShow},
			{Action: model.ActionSkip},
		}},
		{Dependencies: []model.QuestionDependency{
			{Action: model.ActionShow},
		}},
	}

	show, skip := CountDependencies(questions)
	assert.Equal(t, 2, show)
	assert.Equal(t, 1, skip)
}
