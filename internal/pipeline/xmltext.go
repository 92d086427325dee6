package pipeline

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractElement pulls the first <tag ...>...</tag> block out of free-form
// model output. Models wrap structured blocks in prose, so the block is
// located by the first opening tag and the last closing tag. A missing
// closing tag is repaired by appending a synthesized one; this is a
// best-effort bound on output variance, not a real XML recovery.
func ExtractElement(text, tag string) (string, bool) {
	open := "<" + tag
	start := -1
	for idx := strings.Index(text, open); idx >= 0; {
		after := idx + len(open)
		if after < len(text) && (text[after] == '>' || text[after] == ' ' || text[after] == '\n' || text[after] == '\t') {
			start = idx
			break
		}
		next := strings.Index(text[after:], open)
		if next < 0 {
			break
		}
		idx = after + next
	}
	if start < 0 {
		return "", false
	}

	closeTag := "</" + tag + ">"
	end := strings.LastIndex(text, closeTag)
	if end < start {
		return text[start:] + closeTag, true
	}
	return text[start : end+len(closeTag)], true
}

// decodeElement unmarshals a pseudo-XML block leniently: unknown entities
// and loose formatting from model output are tolerated rather than rejected.
func decodeElement(block string, v any) error {
	dec := xml.NewDecoder(bytes.NewReader([]byte(block)))
	dec.Strict = false
	if err := dec.Decode(v); err != nil {
		return eris.Wrap(err, "pipeline: decode response block")
	}
	return nil
}

// cleanResponse strips markdown code fences that models sometimes wrap
// around structured output.
func cleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}
