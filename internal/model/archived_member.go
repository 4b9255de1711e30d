package model

import "time"

const ArchiveReasonExpired = "expired"

// ArchivedMember is an append-only copy of a member removed by the cleanup job.
type ArchivedMember struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	OriginalMemberID *uint      `json:"original_member_id"`
	HouseID          *uint      `json:"house_id"`
	HouseNumber      string     `json:"house_number" gorm:"type:varchar(50)"`
	MemberEmail      string     `json:"member_email" gorm:"type:varchar(320);not null"`
	ExpirationDate   *time.Time `json:"expiration_date" gorm:"type:date"`
	RegistrationDate *time.Time `json:"registration_date" gorm:"type:date"`
	Note             *string    `json:"note" gorm:"type:text"`
	LineID           string     `json:"line_id" gorm:"type:varchar(100)"`
	ArchivedAt       time.Time  `json:"archived_at" gorm:"not null;index"`
	ArchivedReason   string     `json:"archived_reason" gorm:"type:varchar(64)"`
}

func (ArchivedMember) TableName() string { return "expired_members_archive" }

func ArchiveOf(m Member, houseNumber string, registered *time.Time, reason string, at time.Time) ArchivedMember {
	id, houseID := m.ID, m.HouseID
	return ArchivedMember{
		OriginalMemberID: &id,
		HouseID:          &houseID,
		HouseNumber:      houseNumber,
		MemberEmail:      m.MemberEmail,
		ExpirationDate:   m.ExpirationDate,
		RegistrationDate: registered,
		Note:             m.Note,
		LineID:           m.LineID,
		ArchivedAt:       at,
		ArchivedReason:   reason,
	}
}
