package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractElementPlain(t *testing.T) {
	block, ok := ExtractElement("<questions><q/></questions>", "questions")
	require.True(t, ok)
	assert.Equal(t, "<questions><q/></questions>", block)
}

func TestExtractElementSurroundingProse(t *testing.T) {
	text := "Here is the analysis you asked for:\n<questions>\n<q/>\n</questions>\nLet me know if you need more."
	block, ok := ExtractElement(text, "questions")
	require.True(t, ok)
	assert.Equal(t, "<questions>\n<q/>\n</questions>", block)
}

func TestExtractElementMissingClosingTag(t *testing.T) {
	block, ok := ExtractElement("preamble <questions><q><text>hi</text></q>", "questions")
	require.True(t, ok)
	assert.Equal(t, "<questions><q><text>hi</text></q></questions>", block)
}

func TestExtractElementWithAttributes(t *testing.T) {
	text := `<structure_analysis confidence="0.9"><sheet/></structure_analysis>`
	block, ok := ExtractElement(text, "structure_analysis")
	require.True(t, ok)
	assert.Equal(t, text, block)
}

func TestExtractElementIgnoresPrefixTags(t *testing.T) {
	// <questions_summary> must not satisfy a search for <questions>.
	text := "<questions_summary>5</questions_summary> and then <questions><q/></questions>"
	block, ok := ExtractElement(text, "questions")
	require.True(t, ok)
	assert.Equal(t, "<questions><q/></questions>", block)
}

func TestExtractElementAbsent(t *testing.T) {
	_, ok := ExtractElement("no structured output here", "questions")
	assert.False(t, ok)
}

func TestDecodeElementLenient(t *testing.T) {
	var parsed questionsXML
	// Unescaped ampersand would fail a strict decoder.
	err := decodeElement("<questions><q><text>Cats & dogs?</text></q></questions>", &parsed)
	require.NoError(t, err)
	require.Len(t, parsed.Questions, 1)
}

func TestCleanResponseStripsCodeFence(t *testing.T) {
	text := "```xml\n<questions></questions>\n```"
	assert.Equal(t, "<questions></questions>", cleanResponse(text))
}

func TestCleanResponsePassthrough(t *testing.T) {
	assert.Equal(t, "<questions/>", cleanResponse("  <questions/>\n"))
}
