package models

const (
	MemberStatusPending  = "pending"
	MemberStatusActive   = "active"
	MemberStatusRejected = "rejected"
)

// MemberModel is a membership application/roster entry.
type MemberModel struct {
	Base
	FirstName string `json:"first_name" gorm:"not null"`
	LastName  string `json:"last_name"  gorm:"not null"`
	Email     string `json:"email"      gorm:"uniqueIndex;not null"`
	Phone     string `json:"phone"`
	Status    string `json:"status"     gorm:"index;default:'pending'"` // pending | active | rejected
	Note      string `json:"note"       gorm:"type:text"`
}

func (MemberModel) TableName() string { return "members" }
