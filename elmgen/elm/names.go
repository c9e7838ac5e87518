package elm

import "strings"

// captureToken stands in for a path capture in synthesized names, so
// GET /books/{id} becomes getBooksBy.
const captureToken = "by"

// SynthesizeName derives the function name for an endpoint from its verb and
// path: the lower-cased verb followed by each segment's token, camel-cased.
// Static segments contribute their text, captures contribute "by".
// The result depends only on its inputs.
func SynthesizeName(method string, segments []Segment) string {
	tokens := make([]string, 0, len(segments)+1)
	tokens = append(tokens, strings.ToLower(method))
	for _, s := range segments {
		if s.Capture {
			tokens = append(tokens, captureToken)
			continue
		}
		tokens = append(tokens, s.Text)
	}
	return escapeReservedWord(camelCase(tokens...))
}
