package blocks

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrLegacyContent is returned when a block-level edit is attempted on a
// document stored as legacy markup. Legacy text has no block boundaries
// to edit; the whole body has to be replaced instead.
var ErrLegacyContent = errors.New("content is stored as legacy markup and cannot be edited block-wise")

// noBody is what an empty block sequence encodes to. An empty JSON array
// would work too, but an explicit sentinel keeps "author cleared the page"
// distinguishable from accidental empty strings at a glance in the column.
const noBody = "null"

// Document is the decoded form of a stored text column: exactly one of a
// structured block sequence or opaque legacy markup. The mode is decided
// once at load time and threaded through; nothing re-sniffs the string.
type Document struct {
	Blocks []Block
	Legacy bool
	Raw    string // original stored text, only meaningful when Legacy
}

// Decode sniffs stored content. Text whose first non-whitespace character
// is '[' is parsed as a block sequence; anything else, and any parse
// failure, falls back to legacy mode with the original text untouched.
// This is a best-effort sniff rather than a version tag: it is what lets
// pre-block markup and block documents share a column with no migration.
func Decode(stored string) Document {
	trimmed := strings.TrimSpace(stored)
	if trimmed == "" || trimmed == noBody {
		return Document{Blocks: []Block{}}
	}
	if !strings.HasPrefix(trimmed, "[") {
		return Document{Legacy: true, Raw: stored}
	}

	var parsed []Block
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		// Legacy markup that happens to start with '[' lands here; benign.
		return Document{Legacy: true, Raw: stored}
	}
	return Document{Blocks: parsed}
}

// Encode serializes a block sequence for storage. The empty sequence
// encodes as the explicit no-body sentinel so a later Decode does not
// misread it.
func Encode(list []Block) (string, error) {
	if len(list) == 0 {
		return noBody, nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
