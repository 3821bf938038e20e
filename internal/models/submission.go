package models

// SubmissionModel is one visitor's registration for an event: the fixed
// core fields plus free-form answers keyed by field-definition id.
//
// Answers is schema-on-read: its key set reflects whatever schema was live
// when the visitor registered and is never rewritten by later schema edits.
// Values are strings for text/number/date/select/file fields and string
// lists for checkbox fields.
type SubmissionModel struct {
	Base
	EventID   string                 `json:"event_id"   gorm:"index;not null"`
	FirstName string                 `json:"first_name" gorm:"not null"`
	LastName  string                 `json:"last_name"  gorm:"not null"`
	Email     string                 `json:"email"      gorm:"index;not null"`
	Phone     string                 `json:"phone"`
	Answers   map[string]interface{} `json:"answers"    gorm:"type:longtext;serializer:json"`
}

func (SubmissionModel) TableName() string { return "submissions" }
