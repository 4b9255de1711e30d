package postgres

import (
	"context"
	"fmt"
	"time"

	"house_admin/internal/domain"
	"house_admin/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository struct {
	DB *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{DB: db}
}

func (r *MemberRepository) CountMembers(ctx context.Context, houseID uint, excludeMemberID *uint) (int64, error) {
	return countMembers(r.DB.WithContext(ctx), houseID, excludeMemberID)
}

func countMembers(db *gorm.DB, houseID uint, excludeMemberID *uint) (int64, error) {
	var count int64
	q := db.Model(&model.Member{}).Where("house_id = ?", houseID)
	if excludeMemberID != nil {
		q = q.Where("id <> ?", *excludeMemberID)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// reserveSeat locks the house row for the rest of the transaction and checks
// that one more member fits. Concurrent writers targeting the same house
// queue on the lock, so the count they see is the committed one.
func reserveSeat(tx *gorm.DB, houseID uint, excludeMemberID *uint) error {
	var house model.House
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "house_number").
		Where("id = ?", houseID).
		Take(&house).Error
	if err != nil {
		if err = translate(err); err == domain.ErrNotFound {
			return fmt.Errorf("house %d: %w", houseID, domain.ErrNotFound)
		}
		return err
	}
	count, err := countMembers(tx, houseID, excludeMemberID)
	if err != nil {
		return err
	}
	if count >= model.HouseCapacity {
		return &domain.CapacityError{HouseID: houseID, HouseNumber: house.HouseNumber, Count: count}
	}
	return nil
}

// InsertMember adds a member if its house still has a free seat.
func (r *MemberRepository) InsertMember(ctx context.Context, member *model.Member) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := reserveSeat(tx, member.HouseID, nil); err != nil {
			return err
		}
		member.ExpirationDate = model.DateOnlyPtr(member.ExpirationDate)
		return tx.Create(member).Error
	})
}

// UpdateMember applies the patch. When the patch sets a house, the seat is
// checked against that house with the member itself excluded.
func (r *MemberRepository) UpdateMember(ctx context.Context, id uint, patch model.MemberPatch) (*model.Member, error) {
	var updated model.Member
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Member
		if err := tx.First(&current, id).Error; err != nil {
			return translate(err)
		}
		if patch.MovesHouse() {
			if err := reserveSeat(tx, *patch.HouseID, &current.ID); err != nil {
				return err
			}
		}
		if cols := patch.Columns(); len(cols) > 0 {
			if err := tx.Model(&current).Updates(cols).Error; err != nil {
				return err
			}
		}
		return tx.First(&updated, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MemberRepository) DeleteMember(ctx context.Context, id uint) error {
	return deleted(r.DB.WithContext(ctx).Delete(&model.Member{}, id))
}

func (r *MemberRepository) GetMember(ctx context.Context, id uint) (*model.Member, error) {
	var member model.Member
	if err := r.DB.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (r *MemberRepository) FindMemberByEmail(ctx context.Context, email string) (*model.Member, error) {
	var members []model.Member
	err := r.DB.WithContext(ctx).
		Where("member_email = ?", email).
		Order("id ASC").
		Limit(1).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}
	return &members[0], nil
}

func (r *MemberRepository) ListMembers(ctx context.Context) ([]model.Member, error) {
	var members []model.Member
	err := r.DB.WithContext(ctx).Order("house_id, id").Find(&members).Error
	return members, err
}

func (r *MemberRepository) ListMembersByHouse(ctx context.Context, houseID uint) ([]model.Member, error) {
	var members []model.Member
	err := r.DB.WithContext(ctx).Where("house_id = ?", houseID).Order("id").Find(&members).Error
	return members, err
}

// ListActiveMembers returns active members whose expiration is today or later
// or unset.
func (r *MemberRepository) ListActiveMembers(ctx context.Context, today time.Time) ([]model.Member, error) {
	var members []model.Member
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Where("expiration_date IS NULL OR expiration_date >= ?", model.DateOnly(today)).
		Order("expiration_date, id").
		Find(&members).Error
	return members, err
}

func (r *MemberRepository) ListExpiredMembers(ctx context.Context, today time.Time) ([]model.Member, error) {
	var members []model.Member
	err := r.DB.WithContext(ctx).
		Where("expiration_date < ?", model.DateOnly(today)).
		Order("expiration_date, id").
		Find(&members).Error
	return members, err
}
