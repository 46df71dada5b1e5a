package prompt

import (
	"encoding/json"
	"regexp"

	"github.com/bryanwahyu/glowguide/internal/domain/ai"
)

var objectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractJSON pulls the outermost JSON object out of a model reply that may
// carry prose or code fences around it.
func ExtractJSON(reply string) (json.RawMessage, error) {
	m := objectRe.FindString(reply)
	if m == "" || !json.Valid([]byte(m)) {
		return nil, ai.ErrUnparseable
	}
	return json.RawMessage(m), nil
}
