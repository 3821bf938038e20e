package blocks

import (
	"reflect"
	"strings"
	"testing"
)

func sampleBlocks() []Block {
	return []Block{
		{ID: "b1", Type: TypeHeading, Payload: HeadingPayload{Text: "Annual Gala"}},
		{ID: "b2", Type: TypeParagraph, Payload: ParagraphPayload{Text: "Join us."}},
		{ID: "b3", Type: TypeBulletList, Payload: BulletListPayload{Items: []string{"Dinner", "Awards"}}},
		{ID: "b4", Type: TypeTable, Payload: TablePayload{
			Columns: []string{"Time", "Session"},
			Rows:    [][]string{{"19:00", "Doors"}, {"20:00", "Keynote"}},
		}},
		{ID: "b5", Type: TypeImage, Payload: ImagePayload{URL: "https://cdn.example.com/hall.jpg", Alt: "Hall", AspectRatio: RatioPortrait}},
		{ID: "b6", Type: TypeSlider, Payload: SliderPayload{Images: []string{"a.jpg", "b.jpg"}}},
		{ID: "b7", Type: TypeGrid, Payload: GridPayload{Images: []string{"x.jpg"}}},
		{ID: "b8", Type: TypeLeadershipGrid, Payload: LeadershipGridPayload{Members: []Member{
			{Name: "Dana Reyes", Role: "Chair", Links: &MemberLinks{LinkedIn: "https://linkedin.com/in/dana"}},
		}}},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := sampleBlocks()
	stored, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	doc := Decode(stored)
	if doc.Legacy {
		t.Fatal("round-trip decoded as legacy")
	}
	if !reflect.DeepEqual(doc.Blocks, original) {
		t.Fatalf("round-trip mismatch:\n got %+v\nwant %+v", doc.Blocks, original)
	}
}

func TestEncodeEmptySequence(t *testing.T) {
	stored, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(stored), "[") {
		t.Fatalf("empty sequence encoded as an array: %q", stored)
	}

	doc := Decode(stored)
	if doc.Legacy {
		t.Fatal("empty document decoded as legacy")
	}
	if len(doc.Blocks) != 0 {
		t.Fatalf("empty document decoded %d blocks", len(doc.Blocks))
	}
}

func TestDecodeLegacyFallback(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "markdown", stored: "# Welcome\n\nPlain **markup** body."},
		{name: "html fragment", stored: "<p>old page</p>"},
		{name: "leading whitespace", stored: "\n\n  Some text"},
		{name: "bracket-prefixed markup", stored: "[citation needed] the rest of the page"},
		{name: "malformed array", stored: `[{"id": "x', "type`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Decode(tt.stored)
			if !doc.Legacy {
				t.Fatalf("Decode(%q) not legacy", tt.stored)
			}
			if doc.Raw != tt.stored {
				t.Errorf("legacy raw modified: got %q, want %q", doc.Raw, tt.stored)
			}
		})
	}
}

func TestDecodeUnknownBlockTypeSurvivesReencode(t *testing.T) {
	stored := `[{"id":"b1","type":"heading","data":{"text":"Hi"}},{"id":"b2","type":"countdown","data":{"until":"2026-12-01"}}]`

	doc := Decode(stored)
	if doc.Legacy {
		t.Fatal("decoded as legacy")
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("decoded %d blocks, want 2", len(doc.Blocks))
	}
	if doc.Blocks[1].Payload != nil {
		t.Error("unknown type produced a typed payload")
	}

	reencoded, err := Encode(doc.Blocks)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(reencoded, `"countdown"`) || !strings.Contains(reencoded, "2026-12-01") {
		t.Errorf("unknown block data dropped on re-encode: %s", reencoded)
	}
}
