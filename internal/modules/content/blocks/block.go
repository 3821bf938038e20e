// Package blocks implements the content-document engine: a typed block
// list serialized into the event/page text column, a legacy raw-markup
// fallback, read-only HTML rendering and the authoring edit operations.
package blocks

import (
	"encoding/json"
	"fmt"
)

// BlockType tags the payload variant of a content block.
type BlockType string

const (
	TypeHeading        BlockType = "heading"
	TypeParagraph      BlockType = "paragraph"
	TypeBulletList     BlockType = "bulletList"
	TypeTable          BlockType = "table"
	TypeImage          BlockType = "image"
	TypeSlider         BlockType = "slider"
	TypeGrid           BlockType = "grid"
	TypeLeadershipGrid BlockType = "leadershipGrid"
)

// AspectRatio constrains how image-bearing blocks are framed.
type AspectRatio string

const (
	RatioVideo    AspectRatio = "video" // default
	RatioPortrait AspectRatio = "portrait"
	RatioSquare   AspectRatio = "square"
)

func (r AspectRatio) orDefault() AspectRatio {
	switch r {
	case RatioPortrait, RatioSquare:
		return r
	}
	return RatioVideo
}

// MaxSliderImages is the hard cap on slider images, enforced at authoring
// time only.
const MaxSliderImages = 5

// Payload is the closed set of per-type block data. One implementation per
// block type keeps the renderer's dispatch exhaustive.
type Payload interface {
	blockType() BlockType
}

type HeadingPayload struct {
	Text string `json:"text"`
}

type ParagraphPayload struct {
	Text string `json:"text"`
}

type BulletListPayload struct {
	Items []string `json:"items"`
}

type TablePayload struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type ImagePayload struct {
	URL         string      `json:"url"`
	Alt         string      `json:"alt,omitempty"`
	Caption     string      `json:"caption,omitempty"`
	AspectRatio AspectRatio `json:"aspectRatio,omitempty"`
}

type SliderPayload struct {
	Images      []string    `json:"images"`
	AspectRatio AspectRatio `json:"aspectRatio,omitempty"`
}

type GridPayload struct {
	Images []string `json:"images"`
}

// MemberLinks are the optional social links on a leadership entry.
type MemberLinks struct {
	X        string `json:"x,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// Member is one person on a leadership roster.
type Member struct {
	Name  string       `json:"name"`
	Role  string       `json:"role"`
	Bio   string       `json:"bio,omitempty"`
	Image string       `json:"image,omitempty"`
	Links *MemberLinks `json:"links,omitempty"`
}

type LeadershipGridPayload struct {
	Members []Member `json:"members"`
}

func (HeadingPayload) blockType() BlockType        { return TypeHeading }
func (ParagraphPayload) blockType() BlockType      { return TypeParagraph }
func (BulletListPayload) blockType() BlockType     { return TypeBulletList }
func (TablePayload) blockType() BlockType          { return TypeTable }
func (ImagePayload) blockType() BlockType          { return TypeImage }
func (SliderPayload) blockType() BlockType         { return TypeSlider }
func (GridPayload) blockType() BlockType           { return TypeGrid }
func (LeadershipGridPayload) blockType() BlockType { return TypeLeadershipGrid }

// Block is one typed unit of page content. ID is opaque, unique within its
// document and stable across edits and reorders.
//
// Blocks with an unrecognized type survive decode with a nil Payload and
// the original data retained in raw, so re-encoding a document never drops
// content authored by a newer version.
type Block struct {
	ID      string
	Type    BlockType
	Payload Payload

	raw json.RawMessage
}

type blockEnvelope struct {
	ID   string          `json:"id"`
	Type BlockType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (b Block) MarshalJSON() ([]byte, error) {
	env := blockEnvelope{ID: b.ID, Type: b.Type}
	if b.Payload != nil {
		data, err := json.Marshal(b.Payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	} else if b.raw != nil {
		env.Data = b.raw
	}
	return json.Marshal(env)
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	b.ID = env.ID
	b.Type = env.Type
	b.Payload = nil
	b.raw = nil

	payload := newPayload(env.Type)
	if payload == nil {
		// Forward compatibility: keep unknown payloads verbatim.
		b.raw = append(json.RawMessage(nil), env.Data...)
		return nil
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, payload); err != nil {
			return fmt.Errorf("block %s: %w", env.ID, err)
		}
	}
	b.Payload = deref(payload)
	return nil
}

// ParsePayload decodes raw JSON into the payload type for t. Used by the
// editor endpoints, which receive payloads without an envelope.
func ParsePayload(t BlockType, data []byte) (Payload, error) {
	p := newPayload(t)
	if p == nil {
		return nil, fmt.Errorf("unknown block type %q", t)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, p); err != nil {
			return nil, err
		}
	}
	return deref(p), nil
}

func newPayload(t BlockType) interface{} {
	switch t {
	case TypeHeading:
		return &HeadingPayload{}
	case TypeParagraph:
		return &ParagraphPayload{}
	case TypeBulletList:
		return &BulletListPayload{}
	case TypeTable:
		return &TablePayload{}
	case TypeImage:
		return &ImagePayload{}
	case TypeSlider:
		return &SliderPayload{}
	case TypeGrid:
		return &GridPayload{}
	case TypeLeadershipGrid:
		return &LeadershipGridPayload{}
	}
	return nil
}

func deref(p interface{}) Payload {
	switch v := p.(type) {
	case *HeadingPayload:
		return *v
	case *ParagraphPayload:
		return *v
	case *BulletListPayload:
		return *v
	case *TablePayload:
		return *v
	case *ImagePayload:
		return *v
	case *SliderPayload:
		return *v
	case *GridPayload:
		return *v
	case *LeadershipGridPayload:
		return *v
	}
	return nil
}
