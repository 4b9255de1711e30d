package model

import "time"

// Member is one occupied seat in a house. It is a projection of the latest
// intake record for MemberEmail; only Note is meant to be edited by hand.
type Member struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	HouseID        uint       `json:"house_id" gorm:"not null;index"`
	MemberEmail    string     `json:"member_email" gorm:"type:varchar(320);not null;index"`
	ExpirationDate *time.Time `json:"expiration_date" gorm:"type:date"`
	Note           *string    `json:"note" gorm:"type:text"`
	IsActive       bool       `json:"is_active" gorm:"not null"`
	LineID         string     `json:"line_id" gorm:"type:varchar(100)"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Member) TableName() string { return "house_members" }

type NewMember struct {
	HouseID        uint
	MemberEmail    string
	ExpirationDate *time.Time
	Note           *string
	// IsActive defaults to true when nil.
	IsActive *bool
	LineID   string
}

func (n NewMember) Member() Member {
	active := true
	if n.IsActive != nil {
		active = *n.IsActive
	}
	return Member{
		HouseID:        n.HouseID,
		MemberEmail:    n.MemberEmail,
		ExpirationDate: DateOnlyPtr(n.ExpirationDate),
		Note:           n.Note,
		IsActive:       active,
		LineID:         n.LineID,
	}
}

type MemberPatch struct {
	HouseID        *uint
	MemberEmail    *string
	ExpirationDate **time.Time
	Note           **string
	IsActive       *bool
}

// MovesHouse reports whether the patch changes the house reference and so
// needs a capacity check against the target house.
func (p MemberPatch) MovesHouse() bool {
	return p.HouseID != nil
}

func (p MemberPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.HouseID != nil {
		cols["house_id"] = *p.HouseID
	}
	if p.MemberEmail != nil {
		cols["member_email"] = *p.MemberEmail
	}
	if p.ExpirationDate != nil {
		cols["expiration_date"] = DateOnlyPtr(*p.ExpirationDate)
	}
	if p.Note != nil {
		cols["note"] = *p.Note
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	return cols
}

func (p MemberPatch) Empty() bool {
	return len(p.Columns()) == 0
}
