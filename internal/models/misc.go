package models

// FileReferenceModel tracks uploaded files and which record uses them.
type FileReferenceModel struct {
	Base
	FileURL  string `json:"file_url"  gorm:"index;not null"`
	FileName string `json:"file_name"`
	Status   string `json:"status"    gorm:"index;default:'pending'"` // pending | active
	RefID    string `json:"ref_id"    gorm:"index"`
	RefType  string `json:"ref_type"  gorm:"index"` // event | page | submission
}

func (FileReferenceModel) TableName() string { return "file_references" }

// OptionModel is a generic key-value store for site settings.
type OptionModel struct {
	ID    uint   `json:"-" gorm:"primaryKey;autoIncrement"`
	Name  string `json:"name"  gorm:"uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:longtext"` // JSON-encoded value
}

func (OptionModel) TableName() string { return "options" }
