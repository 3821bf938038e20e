// Package schema models the dynamic registration form attached to an event:
// an ordered list of typed field definitions that drives form rendering,
// the stored submission shape and the CSV export labels.
package schema

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FieldType enumerates the supported form control types.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldFile     FieldType = "file"
	FieldDate     FieldType = "date"
)

// KnownType reports whether t is one of the supported field types.
func KnownType(t FieldType) bool {
	switch t {
	case FieldText, FieldNumber, FieldSelect, FieldCheckbox, FieldFile, FieldDate:
		return true
	}
	return false
}

// NeedsOptions reports whether t requires a non-empty option list.
func NeedsOptions(t FieldType) bool {
	return t == FieldSelect || t == FieldCheckbox
}

// FieldDefinition is one typed, labeled slot in a registration form.
// ID is opaque, unique within the form, and stable across edits; submissions
// key their answers by it.
type FieldDefinition struct {
	ID          string    `json:"id"`
	Type        FieldType `json:"type"`
	Label       string    `json:"label"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
}

// FieldList is the ordered form schema for one event. It serializes as a
// JSON column on the event record.
type FieldList []FieldDefinition

// NewField returns a definition of the given type with a fresh id and a
// type-appropriate default payload.
func NewField(t FieldType) FieldDefinition {
	def := FieldDefinition{
		ID:    uuid.New().String(),
		Type:  t,
		Label: "",
	}
	if NeedsOptions(t) {
		def.Options = []string{"Option 1"}
	}
	return def
}

// Validate checks a definition for authoring-time errors: a missing label,
// an unknown type, or a choice-type field without options.
func Validate(def FieldDefinition) error {
	if strings.TrimSpace(def.Label) == "" {
		return fmt.Errorf("field label is required")
	}
	if !KnownType(def.Type) {
		return fmt.Errorf("unknown field type %q", def.Type)
	}
	if NeedsOptions(def.Type) && len(def.Options) == 0 {
		return fmt.Errorf("field %q requires at least one option", def.Label)
	}
	return nil
}

// Add appends def and returns the new list. On validation failure the
// original list is returned unchanged alongside the error.
func (l FieldList) Add(def FieldDefinition) (FieldList, error) {
	if err := Validate(def); err != nil {
		return l, err
	}
	if def.ID == "" {
		def.ID = uuid.New().String()
	}
	out := make(FieldList, 0, len(l)+1)
	out = append(out, l...)
	return append(out, def), nil
}

// Update replaces the field with the same id. Historical submissions keep
// their stored answers regardless of what changes here.
func (l FieldList) Update(def FieldDefinition) (FieldList, error) {
	if err := Validate(def); err != nil {
		return l, err
	}
	out := make(FieldList, len(l))
	copy(out, l)
	for i := range out {
		if out[i].ID == def.ID {
			out[i] = def
			return out, nil
		}
	}
	return l, fmt.Errorf("field %s not found", def.ID)
}

// Remove filters the field out. Submissions that reference the removed id
// are untouched; their values become orphaned but stay exportable.
func (l FieldList) Remove(id string) FieldList {
	out := make(FieldList, 0, len(l))
	for _, def := range l {
		if def.ID != id {
			out = append(out, def)
		}
	}
	return out
}

// Move swaps the field with its immediate neighbor. delta must be -1 (up)
// or +1 (down); moves past either end are no-ops.
func (l FieldList) Move(id string, delta int) FieldList {
	if delta != -1 && delta != 1 {
		return l
	}
	for i := range l {
		if l[i].ID != id {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(l) {
			return l
		}
		out := make(FieldList, len(l))
		copy(out, l)
		out[i], out[j] = out[j], out[i]
		return out
	}
	return l
}

// Find returns the definition with the given id, if present.
func (l FieldList) Find(id string) (FieldDefinition, bool) {
	for _, def := range l {
		if def.ID == id {
			return def, true
		}
	}
	return FieldDefinition{}, false
}

// MissingRequired returns the labels of required fields that have no answer.
// This is the whole of submission-time validation: required presence only,
// no type or format checks.
func (l FieldList) MissingRequired(answers map[string]interface{}) []string {
	var missing []string
	for _, def := range l {
		if !def.Required {
			continue
		}
		if isEmptyAnswer(answers[def.ID]) {
			missing = append(missing, def.Label)
		}
	}
	return missing
}

func isEmptyAnswer(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	}
	return false
}
