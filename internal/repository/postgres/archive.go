package postgres

import (
	"context"
	"time"

	"house_admin/internal/model"

	"gorm.io/gorm"
)

type ArchiveRepository struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewArchiveRepository(db *gorm.DB) *ArchiveRepository {
	return &ArchiveRepository{DB: db, now: time.Now}
}

// ArchiveExpiredMembers copies every member whose expiration is before today
// into the archive and deletes it, in one transaction.
func (r *ArchiveRepository) ArchiveExpiredMembers(ctx context.Context, today time.Time, reason string) (int, error) {
	archived := 0
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var expired []model.Member
		if err := tx.Where("expiration_date < ?", model.DateOnly(today)).Order("id").Find(&expired).Error; err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		houseNumbers, err := houseNumbersByID(tx, expired)
		if err != nil {
			return err
		}

		at := r.now()
		rows := make([]model.ArchivedMember, 0, len(expired))
		ids := make([]uint, 0, len(expired))
		for _, m := range expired {
			registered, err := registrationDateFor(tx, m.MemberEmail)
			if err != nil {
				return err
			}
			rows = append(rows, model.ArchiveOf(m, houseNumbers[m.HouseID], registered, reason, at))
			ids = append(ids, m.ID)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&model.Member{}).Error; err != nil {
			return err
		}
		archived = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return archived, nil
}

func (r *ArchiveRepository) ListArchivedMembers(ctx context.Context) ([]model.ArchivedMember, error) {
	var rows []model.ArchivedMember
	err := r.DB.WithContext(ctx).Order("archived_at DESC, id DESC").Find(&rows).Error
	return rows, err
}

func houseNumbersByID(tx *gorm.DB, members []model.Member) (map[uint]string, error) {
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.HouseID)
	}
	var houses []model.House
	if err := tx.Select("id", "house_number").Where("id IN ?", ids).Find(&houses).Error; err != nil {
		return nil, err
	}
	numbers := make(map[uint]string, len(houses))
	for _, h := range houses {
		numbers[h.ID] = h.HouseNumber
	}
	return numbers, nil
}

// registrationDateFor takes the registration date of the latest intake
// record for the email, if any.
func registrationDateFor(tx *gorm.DB, email string) (*time.Time, error) {
	var records []model.IntakeRecord
	if err := tx.Where("email = ?", email).Find(&records).Error; err != nil {
		return nil, err
	}
	latest, ok := model.LatestIntake(records)
	if !ok {
		return nil, nil
	}
	return latest.RegistrationDate, nil
}
