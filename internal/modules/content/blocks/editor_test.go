package blocks

import (
	"strings"
	"testing"
)

func TestAppendAssignsIDAndDefaults(t *testing.T) {
	list, b, err := Append(nil, TypeTable)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(list) != 1 || b.ID == "" {
		t.Fatalf("Append produced list=%d id=%q", len(list), b.ID)
	}
	p, ok := b.Payload.(TablePayload)
	if !ok || len(p.Columns) == 0 {
		t.Errorf("table default payload missing columns: %+v", b.Payload)
	}

	if _, _, err := Append(nil, BlockType("hologram")); err == nil {
		t.Error("Append accepted an unknown block type")
	}
}

func TestSliderImageCap(t *testing.T) {
	list := []Block{{ID: "s", Type: TypeSlider, Payload: SliderPayload{
		Images: []string{"1.jpg", "2.jpg", "3.jpg", "4.jpg"},
	}}}

	list, err := AddSliderImage(list, "s", "5.jpg")
	if err != nil {
		t.Fatalf("fifth image rejected: %v", err)
	}

	got, err := AddSliderImage(list, "s", "6.jpg")
	if err == nil {
		t.Fatal("sixth image accepted")
	}
	images := got[0].Payload.(SliderPayload).Images
	if len(images) != MaxSliderImages {
		t.Fatalf("image count = %d, want %d", len(images), MaxSliderImages)
	}
}

func TestUpdatePayloadTypeMismatch(t *testing.T) {
	list := []Block{{ID: "h", Type: TypeHeading, Payload: HeadingPayload{Text: "Old"}}}

	got, err := UpdatePayload(list, "h", ParagraphPayload{Text: "New"})
	if err == nil {
		t.Fatal("payload type mismatch accepted")
	}
	if got[0].Payload.(HeadingPayload).Text != "Old" {
		t.Error("rejected update mutated the block")
	}

	got, err = UpdatePayload(list, "h", HeadingPayload{Text: "New"})
	if err != nil {
		t.Fatalf("UpdatePayload: %v", err)
	}
	if got[0].Payload.(HeadingPayload).Text != "New" {
		t.Error("update did not apply")
	}
	if list[0].Payload.(HeadingPayload).Text != "Old" {
		t.Error("update mutated the input list in place")
	}
}

func TestUpdatePayloadEnforcesSliderCap(t *testing.T) {
	list := []Block{{ID: "s", Type: TypeSlider, Payload: SliderPayload{}}}
	_, err := UpdatePayload(list, "s", SliderPayload{
		Images: []string{"1", "2", "3", "4", "5", "6"},
	})
	if err == nil || !strings.Contains(err.Error(), "at most") {
		t.Fatalf("oversized slider payload accepted: %v", err)
	}
}

func TestRemoveAndMove(t *testing.T) {
	list := []Block{
		{ID: "a", Type: TypeHeading, Payload: HeadingPayload{}},
		{ID: "b", Type: TypeParagraph, Payload: ParagraphPayload{}},
		{ID: "c", Type: TypeGrid, Payload: GridPayload{}},
	}

	moved := Move(list, "c", -1)
	if moved[1].ID != "c" || moved[2].ID != "b" {
		t.Errorf("move up failed: %v", blockIDs(moved))
	}
	if same := Move(list, "a", -1); same[0].ID != "a" {
		t.Error("moving first block up should be a no-op")
	}

	removed := Remove(list, "b")
	if len(removed) != 2 || removed[0].ID != "a" || removed[1].ID != "c" {
		t.Errorf("remove failed: %v", blockIDs(removed))
	}
}

func blockIDs(list []Block) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.ID
	}
	return out
}
