package blocks

import (
	"fmt"

	"github.com/google/uuid"
)

// Editing operations over a block list. Each returns a fresh list; callers
// re-encode and save the document wholesale, there is no partial patch.

// NewBlock returns a block of the given type with a fresh id and a
// type-appropriate default payload.
func NewBlock(t BlockType) (Block, error) {
	payload := defaultPayload(t)
	if payload == nil {
		return Block{}, fmt.Errorf("unknown block type %q", t)
	}
	return Block{ID: uuid.New().String(), Type: t, Payload: payload}, nil
}

func defaultPayload(t BlockType) Payload {
	switch t {
	case TypeHeading:
		return HeadingPayload{}
	case TypeParagraph:
		return ParagraphPayload{}
	case TypeBulletList:
		return BulletListPayload{Items: []string{""}}
	case TypeTable:
		return TablePayload{Columns: []string{"Column 1", "Column 2"}, Rows: [][]string{{"", ""}}}
	case TypeImage:
		return ImagePayload{AspectRatio: RatioVideo}
	case TypeSlider:
		return SliderPayload{AspectRatio: RatioVideo}
	case TypeGrid:
		return GridPayload{}
	case TypeLeadershipGrid:
		return LeadershipGridPayload{}
	}
	return nil
}

// Append adds a new block of the given type at the end of the list.
func Append(list []Block, t BlockType) ([]Block, Block, error) {
	b, err := NewBlock(t)
	if err != nil {
		return list, Block{}, err
	}
	out := make([]Block, 0, len(list)+1)
	out = append(out, list...)
	return append(out, b), b, nil
}

// UpdatePayload replaces the payload of the block with the given id. The
// payload's type must match the block's type; a mismatch leaves the list
// unchanged.
func UpdatePayload(list []Block, id string, payload Payload) ([]Block, error) {
	if payload == nil {
		return list, fmt.Errorf("payload is required")
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if payload.blockType() != list[i].Type {
			return list, fmt.Errorf("payload type %q does not match block type %q", payload.blockType(), list[i].Type)
		}
		if err := validatePayload(payload); err != nil {
			return list, err
		}
		out := make([]Block, len(list))
		copy(out, list)
		out[i].Payload = payload
		return out, nil
	}
	return list, fmt.Errorf("block %s not found", id)
}

// validatePayload enforces the authoring-time capacity rules. Everything
// else is tolerated; mismatched table rows, empty image URLs and the like
// are repaired or tolerated at render time instead.
func validatePayload(p Payload) error {
	if s, ok := p.(SliderPayload); ok && len(s.Images) > MaxSliderImages {
		return fmt.Errorf("a slider holds at most %d images", MaxSliderImages)
	}
	return nil
}

// Remove filters the block with the given id out of the list.
func Remove(list []Block, id string) []Block {
	out := make([]Block, 0, len(list))
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

// Move swaps the block with its immediate neighbor. delta must be -1 (up)
// or +1 (down); moves past either end are no-ops.
func Move(list []Block, id string, delta int) []Block {
	if delta != -1 && delta != 1 {
		return list
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(list) {
			return list
		}
		out := make([]Block, len(list))
		copy(out, list)
		out[i], out[j] = out[j], out[i]
		return out
	}
	return list
}

// AddSliderImage appends a URL to a slider block, enforcing the image cap.
// The cap is an authoring-time rule: documents already over it still render.
func AddSliderImage(list []Block, id string, url string) ([]Block, error) {
	for i := range list {
		if list[i].ID != id {
			continue
		}
		p, ok := list[i].Payload.(SliderPayload)
		if !ok {
			return list, fmt.Errorf("block %s is not a slider", id)
		}
		if len(p.Images) >= MaxSliderImages {
			return list, fmt.Errorf("a slider holds at most %d images", MaxSliderImages)
		}
		images := make([]string, 0, len(p.Images)+1)
		images = append(images, p.Images...)
		p.Images = append(images, url)
		out := make([]Block, len(list))
		copy(out, list)
		out[i].Payload = p
		return out, nil
	}
	return list, fmt.Errorf("block %s not found", id)
}
