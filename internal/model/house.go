package model

import "time"

// HouseCapacity is the number of seats in every house.
const HouseCapacity = 5

type HouseStatus string

const (
	HouseStatusActive    HouseStatus = "active"
	HouseStatusExpired   HouseStatus = "expired"
	HouseStatusMoved     HouseStatus = "moved"
	HouseStatusCancelled HouseStatus = "cancelled"
)

func (s HouseStatus) Valid() bool {
	switch s {
	case HouseStatusActive, HouseStatusExpired, HouseStatusMoved, HouseStatusCancelled:
		return true
	}
	return false
}

type House struct {
	ID               uint        `json:"id" gorm:"primaryKey"`
	HouseNumber      string      `json:"house_number" gorm:"type:varchar(50);not null;uniqueIndex"`
	AdminEmail       string      `json:"admin_email" gorm:"type:varchar(320)"`
	RegistrationDate *time.Time  `json:"registration_date" gorm:"type:date"`
	Status           HouseStatus `json:"status" gorm:"type:varchar(16);not null;default:active"`
	Note             string      `json:"note" gorm:"type:text"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func (House) TableName() string { return "house_list" }

// HouseWithCount is a house together with the number of seats taken.
type HouseWithCount struct {
	House
	MemberCount int64 `json:"member_count"`
}

func (h HouseWithCount) HasFreeSeat() bool {
	return h.MemberCount < HouseCapacity
}

type HousePatch struct {
	HouseNumber      *string
	AdminEmail       *string
	RegistrationDate **time.Time
	Status           *HouseStatus
	Note             *string
}

func (p HousePatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.HouseNumber != nil {
		cols["house_number"] = *p.HouseNumber
	}
	if p.AdminEmail != nil {
		cols["admin_email"] = *p.AdminEmail
	}
	if p.RegistrationDate != nil {
		cols["registration_date"] = DateOnlyPtr(*p.RegistrationDate)
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Note != nil {
		cols["note"] = *p.Note
	}
	return cols
}
