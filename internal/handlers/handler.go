package handlers

import (
	"context"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/model"

	"go.uber.org/zap"
)

type IntakeService interface {
	List(ctx context.Context) ([]model.IntakeRecord, error)
	Get(ctx context.Context, id uint) (*model.IntakeRecord, error)
	Create(ctx context.Context, record model.IntakeRecord) (*model.IntakeRecord, error)
	Update(ctx context.Context, id uint, patch model.IntakePatch) (*model.IntakeRecord, error)
	Delete(ctx context.Context, id uint) error
}

type MemberService interface {
	CreateMember(ctx context.Context, in model.NewMember) (*model.Member, error)
	UpdateMember(ctx context.Context, id uint, patch model.MemberPatch) (*model.Member, error)
	DeleteMember(ctx context.Context, id uint) error
}

type HouseFinder interface {
	AvailableHouses(ctx context.Context) ([]model.HouseWithCount, error)
}

// Pinger checks that the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ExpiredCleaner archives expired members and returns how many it moved.
type ExpiredCleaner interface {
	Refresh(ctx context.Context) (int, error)
}

type Handler struct {
	logger    *zap.Logger
	Intake    IntakeService
	Houses    domain.HouseRepo
	Members   domain.MemberRepo
	MemberSvc MemberService
	Archive   domain.ArchiveRepo
	Available HouseFinder
	Cleaner   ExpiredCleaner
	DB        Pinger
	now       func() time.Time
}

type Deps struct {
	Intake    IntakeService
	Houses    domain.HouseRepo
	Members   domain.MemberRepo
	MemberSvc MemberService
	Archive   domain.ArchiveRepo
	Available HouseFinder
	Cleaner   ExpiredCleaner
	DB        Pinger
}

func NewHandler(d Deps, logger *zap.Logger) *Handler {
	return &Handler{
		logger:    logger,
		Intake:    d.Intake,
		Houses:    d.Houses,
		Members:   d.Members,
		MemberSvc: d.MemberSvc,
		Archive:   d.Archive,
		Available: d.Available,
		Cleaner:   d.Cleaner,
		DB:        d.DB,
		now:       time.Now,
	}
}

// SetClock replaces the clock used for active/expired listings.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

func (h *Handler) today() time.Time {
	return model.DateOnly(h.now())
}
