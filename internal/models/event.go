package models

import (
	"time"

	"github.com/atrium-events/core/internal/modules/registration/schema"
)

// EventModel is one event: public page body, registration form schema and
// the scheduling metadata shown on listings.
//
// Text holds the stored content document: either a serialized block
// sequence or legacy raw markup (see modules/content/blocks).
type EventModel struct {
	Base
	Slug        string           `json:"slug"         gorm:"uniqueIndex;not null"`
	Title       string           `json:"title"        gorm:"not null"`
	Subtitle    string           `json:"subtitle"`
	Text        string           `json:"text"         gorm:"type:longtext"`
	FormSchema  schema.FieldList `json:"form_schema"  gorm:"type:longtext;serializer:json"`
	Location    string           `json:"location"`
	StartsAt    *time.Time       `json:"starts_at"    gorm:"index"`
	EndsAt      *time.Time       `json:"ends_at"`
	CoverImage  string           `json:"cover_image"`
	Tags        StringArray      `json:"tags"         gorm:"type:text"`
	IsPublished bool             `json:"is_published" gorm:"default:false;index"`
	Capacity    int              `json:"capacity"     gorm:"default:0"` // 0 = unlimited
}

func (EventModel) TableName() string { return "events" }
