package schema

import "testing"

func TestAddRejectsInvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  FieldDefinition
	}{
		{
			name: "empty label",
			def:  FieldDefinition{Type: FieldText, Label: ""},
		},
		{
			name: "whitespace label",
			def:  FieldDefinition{Type: FieldText, Label: "   "},
		},
		{
			name: "select without options",
			def:  FieldDefinition{Type: FieldSelect, Label: "T-Shirt Size", Options: []string{}},
		},
		{
			name: "checkbox without options",
			def:  FieldDefinition{Type: FieldCheckbox, Label: "Workshops"},
		},
		{
			name: "unknown type",
			def:  FieldDefinition{Type: "slider", Label: "Volume"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := FieldList{{ID: "a", Type: FieldText, Label: "Existing"}}
			got, err := list.Add(tt.def)
			if err == nil {
				t.Fatalf("Add(%+v) succeeded, want error", tt.def)
			}
			if len(got) != len(list) {
				t.Errorf("list length changed on rejected add: got %d, want %d", len(got), len(list))
			}
		})
	}
}

func TestAddAppendsAndAssignsID(t *testing.T) {
	var list FieldList
	got, err := list.Add(FieldDefinition{Type: FieldSelect, Label: "Size", Options: []string{"S", "M"}})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID == "" {
		t.Error("Add did not assign an id")
	}
}

func TestRemoveFiltersByID(t *testing.T) {
	list := FieldList{
		{ID: "a", Type: FieldText, Label: "A"},
		{ID: "b", Type: FieldText, Label: "B"},
		{ID: "c", Type: FieldText, Label: "C"},
	}
	got := list.Remove("b")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("unexpected order after remove: %v", got)
	}
	if _, ok := got.Find("b"); ok {
		t.Error("removed field still findable")
	}
}

func TestMoveSwapsNeighbors(t *testing.T) {
	list := FieldList{
		{ID: "a", Label: "A"},
		{ID: "b", Label: "B"},
		{ID: "c", Label: "C"},
	}

	tests := []struct {
		name  string
		id    string
		delta int
		want  []string
	}{
		{name: "move down", id: "a", delta: 1, want: []string{"b", "a", "c"}},
		{name: "move up", id: "c", delta: -1, want: []string{"a", "c", "b"}},
		{name: "first up is no-op", id: "a", delta: -1, want: []string{"a", "b", "c"}},
		{name: "last down is no-op", id: "c", delta: 1, want: []string{"a", "b", "c"}},
		{name: "bad delta is no-op", id: "b", delta: 2, want: []string{"a", "b", "c"}},
		{name: "unknown id is no-op", id: "x", delta: 1, want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := list.Move(tt.id, tt.delta)
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("order = %v, want %v", ids(got), tt.want)
				}
			}
		})
	}
}

func TestMissingRequired(t *testing.T) {
	list := FieldList{
		{ID: "size", Type: FieldSelect, Label: "Size", Required: true, Options: []string{"S"}},
		{ID: "bio", Type: FieldText, Label: "Bio"},
		{ID: "days", Type: FieldCheckbox, Label: "Days", Required: true, Options: []string{"Sat", "Sun"}},
	}

	tests := []struct {
		name    string
		answers map[string]interface{}
		want    []string
	}{
		{
			name:    "all present",
			answers: map[string]interface{}{"size": "S", "days": []interface{}{"Sat"}},
			want:    nil,
		},
		{
			name:    "blank string counts as missing",
			answers: map[string]interface{}{"size": "  ", "days": []interface{}{"Sun"}},
			want:    []string{"Size"},
		},
		{
			name:    "empty checkbox list counts as missing",
			answers: map[string]interface{}{"size": "M", "days": []interface{}{}},
			want:    []string{"Days"},
		},
		{
			name:    "optional field never reported",
			answers: map[string]interface{}{"size": "M", "days": []interface{}{"Sat"}},
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := list.MissingRequired(tt.answers)
			if len(got) != len(tt.want) {
				t.Fatalf("MissingRequired = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("MissingRequired = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func ids(l FieldList) []string {
	out := make([]string, len(l))
	for i, def := range l {
		out[i] = def.ID
	}
	return out
}
