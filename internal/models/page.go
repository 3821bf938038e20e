package models

// PageModel is a static page (e.g. About, Contact). Text holds a stored
// content document with the same block/legacy duality as events.
type PageModel struct {
	Base
	Slug     string `json:"slug"     gorm:"uniqueIndex;not null"`
	Title    string `json:"title"    gorm:"not null"`
	Subtitle string `json:"subtitle"`
	Text     string `json:"text"     gorm:"type:longtext"`
	Order    int    `json:"order"    gorm:"column:order_num;default:0"`
}

func (PageModel) TableName() string { return "pages" }
