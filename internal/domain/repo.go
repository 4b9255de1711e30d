package domain

import (
	"context"
	"time"

	"house_admin/internal/model"
)

type IntakeRepo interface {
	// Fills ID and timestamps on success
	InsertIntake(ctx context.Context, record *model.IntakeRecord) error
	GetIntake(ctx context.Context, id uint) (*model.IntakeRecord, error)
	ListIntake(ctx context.Context) ([]model.IntakeRecord, error)
	UpdateIntake(ctx context.Context, id uint, patch model.IntakePatch) error
	DeleteIntake(ctx context.Context, id uint) error

	// Latest record for the email by model.NewerIntake, nil when there is none
	LatestIntakeByEmail(ctx context.Context, email string) (*model.IntakeRecord, error)

	// Writes the sync outcome without touching updated_at
	SetSyncResult(ctx context.Context, id uint, status model.SyncStatus, note string) error
}

type HouseRepo interface {
	InsertHouse(ctx context.Context, house *model.House) error
	GetHouse(ctx context.Context, id uint) (*model.House, error)
	// nil, nil when no house carries the number
	FindHouseByNumber(ctx context.Context, number string) (*model.House, error)
	ListHouses(ctx context.Context) ([]model.House, error)
	ListHousesWithCount(ctx context.Context) ([]model.HouseWithCount, error)
	UpdateHouse(ctx context.Context, id uint, patch model.HousePatch) (*model.House, error)
	DeleteHouse(ctx context.Context, id uint) error
}

// MemberRepo owns the seat table. InsertMember and UpdateMember enforce
// model.HouseCapacity atomically against the target house.
type MemberRepo interface {
	CountMembers(ctx context.Context, houseID uint, excludeMemberID *uint) (int64, error)
	InsertMember(ctx context.Context, member *model.Member) error
	UpdateMember(ctx context.Context, id uint, patch model.MemberPatch) (*model.Member, error)
	DeleteMember(ctx context.Context, id uint) error

	GetMember(ctx context.Context, id uint) (*model.Member, error)
	// Oldest member row for the email, nil when there is none
	FindMemberByEmail(ctx context.Context, email string) (*model.Member, error)
	ListMembers(ctx context.Context) ([]model.Member, error)
	ListMembersByHouse(ctx context.Context, houseID uint) ([]model.Member, error)
	ListActiveMembers(ctx context.Context, today time.Time) ([]model.Member, error)
	ListExpiredMembers(ctx context.Context, today time.Time) ([]model.Member, error)
}

type ArchiveRepo interface {
	// Moves members that expired before today into the archive and removes
	// them from their houses. Returns the number of archived rows.
	ArchiveExpiredMembers(ctx context.Context, today time.Time, reason string) (int, error)
	ListArchivedMembers(ctx context.Context) ([]model.ArchivedMember, error)
}
