package model

import (
	"sort"
	"strings"
	"time"
)

type Channel string

const (
	ChannelLine     Channel = "line"
	ChannelFacebook Channel = "facebook"
	ChannelWalkIn   Channel = "walk-in"
	ChannelOther    Channel = "other"
)

func (c Channel) Valid() bool {
	switch c {
	case "", ChannelLine, ChannelFacebook, ChannelWalkIn, ChannelOther:
		return true
	}
	return false
}

type Lifecycle string

const (
	LifecycleNone      Lifecycle = ""
	LifecycleCancelled Lifecycle = "cancelled"
	LifecycleMoved     Lifecycle = "moved"
)

func (l Lifecycle) Valid() bool {
	switch l {
	case LifecycleNone, LifecycleCancelled, LifecycleMoved:
		return true
	}
	return false
}

type SyncStatus string

const (
	SyncStatusOK      SyncStatus = "ok"
	SyncStatusError   SyncStatus = "error"
	SyncStatusPending SyncStatus = "pending"
)

func (s SyncStatus) Valid() bool {
	switch s {
	case SyncStatusOK, SyncStatusError, SyncStatusPending:
		return true
	}
	return false
}

// IntakeRecord is a raw customer submission coming from an admin or the bot.
// It is the source of truth for house membership.
type IntakeRecord struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	LineID           string     `json:"line_id" gorm:"type:varchar(100)"`
	PhoneNumber      string     `json:"phone_number" gorm:"type:varchar(20)"`
	RegistrationDate *time.Time `json:"registration_date" gorm:"type:date"`
	ExpirationDate   *time.Time `json:"expiration_date" gorm:"type:date"`
	Package          string     `json:"package" gorm:"type:varchar(100)"`
	PackagePrice     *int       `json:"package_price"`
	Email            string     `json:"email" gorm:"type:varchar(320);index"`
	HouseGroup       string     `json:"house_group" gorm:"type:varchar(50)"`
	CustomerName     string     `json:"customer_name" gorm:"type:varchar(255)"`
	Channel          Channel    `json:"channel" gorm:"type:varchar(16)"`
	CancelledOrMoved Lifecycle  `json:"cancelled_or_moved" gorm:"type:varchar(16);default:''"`
	SyncStatus       SyncStatus `json:"sync_status" gorm:"type:varchar(16);not null;default:pending"`
	SyncNote         string     `json:"sync_note" gorm:"type:text"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (IntakeRecord) TableName() string { return "info_log" }

// HasHouseGroup reports whether an admin assigned the record to a house.
func (r IntakeRecord) HasHouseGroup() bool {
	return strings.TrimSpace(r.HouseGroup) != ""
}

// IntakePatch carries the fields of a partial intake update. Nil means "leave as is".
type IntakePatch struct {
	LineID           *string
	PhoneNumber      *string
	RegistrationDate **time.Time
	ExpirationDate   **time.Time
	Package          *string
	PackagePrice     **int
	Email            *string
	HouseGroup       *string
	CustomerName     *string
	Channel          *Channel
	CancelledOrMoved *Lifecycle
	SyncStatus       *SyncStatus
	SyncNote         *string
}

// Columns converts the patch to a column map for gorm Updates.
func (p IntakePatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.LineID != nil {
		cols["line_id"] = *p.LineID
	}
	if p.PhoneNumber != nil {
		cols["phone_number"] = *p.PhoneNumber
	}
	if p.RegistrationDate != nil {
		cols["registration_date"] = DateOnlyPtr(*p.RegistrationDate)
	}
	if p.ExpirationDate != nil {
		cols["expiration_date"] = DateOnlyPtr(*p.ExpirationDate)
	}
	if p.Package != nil {
		cols["package"] = *p.Package
	}
	if p.PackagePrice != nil {
		cols["package_price"] = *p.PackagePrice
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.HouseGroup != nil {
		cols["house_group"] = *p.HouseGroup
	}
	if p.CustomerName != nil {
		cols["customer_name"] = *p.CustomerName
	}
	if p.Channel != nil {
		cols["channel"] = *p.Channel
	}
	if p.CancelledOrMoved != nil {
		cols["cancelled_or_moved"] = *p.CancelledOrMoved
	}
	if p.SyncStatus != nil {
		cols["sync_status"] = *p.SyncStatus
	}
	if p.SyncNote != nil {
		cols["sync_note"] = *p.SyncNote
	}
	return cols
}

// NewerIntake is the total order used to pick the record that drives a
// member projection: updated_at desc, then created_at desc, then id desc.
// Zero timestamps count as missing and lose to any set timestamp.
func NewerIntake(a, b IntakeRecord) bool {
	if c := compareNullableTime(a.UpdatedAt, b.UpdatedAt); c != 0 {
		return c > 0
	}
	if c := compareNullableTime(a.CreatedAt, b.CreatedAt); c != 0 {
		return c > 0
	}
	return a.ID > b.ID
}

// LatestIntake returns the newest record according to NewerIntake.
func LatestIntake(records []IntakeRecord) (IntakeRecord, bool) {
	if len(records) == 0 {
		return IntakeRecord{}, false
	}
	latest := records[0]
	for _, r := range records[1:] {
		if NewerIntake(r, latest) {
			latest = r
		}
	}
	return latest, true
}

func compareNullableTime(a, b time.Time) int {
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return -1
	case b.IsZero():
		return 1
	case a.After(b):
		return 1
	case a.Before(b):
		return -1
	}
	return 0
}

// SortForInbox orders records the way the admin inbox shows them: records
// still waiting for a house group first, then the most recently touched.
func SortForInbox(records []IntakeRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.HasHouseGroup() != b.HasHouseGroup() {
			return !a.HasHouseGroup()
		}
		return touchedAt(a).After(touchedAt(b))
	})
}

func touchedAt(r IntakeRecord) time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}
