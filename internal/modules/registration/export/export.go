// Package export flattens an event's heterogeneous registration submissions
// into one CSV table. The columns are schema-on-read: derived from the keys
// actually observed across submissions, not from the current form schema
// alone, because the schema can legitimately change between two
// registrations to the same event.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/atrium-events/core/internal/models"
	"github.com/atrium-events/core/internal/modules/registration/schema"
)

// coreHeader is the fixed prefix of every export, in fixed order. The core
// fields are never part of the dynamic schema.
var coreHeader = []string{"First Name", "Last Name", "Email", "Phone"}

// Flatten produces the CSV text for one event's submissions.
//
// Two passes keep the column order stable and deterministic: the first
// collects the union of dynamic keys across every submission, the second
// projects each submission into header order. Keys still present in the
// current schema are ordered and labeled by it; orphaned keys (from schema
// versions since edited away) follow in lexicographic order under a
// humanized fallback label. A submission missing a key yields an empty
// cell, never an error.
func Flatten(sch schema.FieldList, subs []models.SubmissionModel) string {
	keys := dynamicKeys(sch, subs)

	var sb strings.Builder
	header := make([]string, 0, len(coreHeader)+len(keys))
	header = append(header, coreHeader...)
	for _, k := range keys {
		if def, ok := sch.Find(k); ok {
			header = append(header, def.Label)
		} else {
			header = append(header, humanize(k))
		}
	}
	writeRow(&sb, header)

	for _, sub := range subs {
		row := make([]string, 0, len(header))
		row = append(row, sub.FirstName, sub.LastName, sub.Email, sub.Phone)
		for _, k := range keys {
			row = append(row, cell(sub.Answers[k]))
		}
		writeRow(&sb, row)
	}
	return sb.String()
}

// Filename returns the download filename for an event export.
func Filename(slug string) string {
	if slug == "" {
		slug = "event"
	}
	return slug + "-registrations.csv"
}

// dynamicKeys returns the union of answer keys across all submissions:
// current-schema order first, then orphaned keys lexicographically.
func dynamicKeys(sch schema.FieldList, subs []models.SubmissionModel) []string {
	union := map[string]bool{}
	for _, sub := range subs {
		for k := range sub.Answers {
			union[k] = true
		}
	}

	keys := make([]string, 0, len(union))
	for _, def := range sch {
		if union[def.ID] {
			keys = append(keys, def.ID)
			delete(union, def.ID)
		}
	}

	orphans := make([]string, 0, len(union))
	for k := range union {
		orphans = append(orphans, k)
	}
	sort.Strings(orphans)
	return append(keys, orphans...)
}

// cell converts one stored answer to CSV cell text. Strings pass through;
// lists and objects collapse to a compact textual form.
func cell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, cell(item))
		}
		return strings.Join(parts, ", ")
	case float64:
		// JSON numbers decode as float64; keep integral values clean.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		return fmt.Sprintf("%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// writeRow emits one CSV record. Every cell is quote-wrapped with internal
// quotes doubled, so embedded commas, quotes and newlines cannot break
// column alignment.
func writeRow(sb *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(c, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteString("\r\n")
}

// humanize turns a raw answer key into a readable fallback label:
// "tshirt_size" becomes "Tshirt Size".
func humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	if len(words) == 0 {
		return key
	}
	return strings.Join(words, " ")
}
