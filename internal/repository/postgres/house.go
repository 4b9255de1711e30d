package postgres

import (
	"context"
	"errors"

	"house_admin/internal/domain"
	"house_admin/internal/model"

	"gorm.io/gorm"
)

type HouseRepository struct {
	DB *gorm.DB
}

func NewHouseRepository(db *gorm.DB) *HouseRepository {
	return &HouseRepository{DB: db}
}

func (r *HouseRepository) InsertHouse(ctx context.Context, house *model.House) error {
	if house.Status == "" {
		house.Status = model.HouseStatusActive
	}
	house.RegistrationDate = model.DateOnlyPtr(house.RegistrationDate)
	err := r.DB.WithContext(ctx).Create(house).Error
	if isUniqueViolation(err) {
		return domain.ErrHouseExists
	}
	return err
}

func (r *HouseRepository) GetHouse(ctx context.Context, id uint) (*model.House, error) {
	var house model.House
	if err := r.DB.WithContext(ctx).First(&house, id).Error; err != nil {
		return nil, translate(err)
	}
	return &house, nil
}

func (r *HouseRepository) FindHouseByNumber(ctx context.Context, number string) (*model.House, error) {
	var house model.House
	err := r.DB.WithContext(ctx).Where("house_number = ?", number).Take(&house).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &house, nil
}

func (r *HouseRepository) ListHouses(ctx context.Context) ([]model.House, error) {
	var houses []model.House
	err := r.DB.WithContext(ctx).Order("house_number").Find(&houses).Error
	return houses, err
}

// ListHousesWithCount returns every house with the number of members
// referencing it, in one query.
func (r *HouseRepository) ListHousesWithCount(ctx context.Context) ([]model.HouseWithCount, error) {
	var houses []model.HouseWithCount
	err := r.DB.WithContext(ctx).
		Table("house_list").
		Select("house_list.*, COUNT(house_members.id) AS member_count").
		Joins("LEFT JOIN house_members ON house_members.house_id = house_list.id").
		Group("house_list.id").
		Order("house_list.house_number").
		Scan(&houses).Error
	return houses, err
}

func (r *HouseRepository) UpdateHouse(ctx context.Context, id uint, patch model.HousePatch) (*model.House, error) {
	house, err := r.GetHouse(ctx, id)
	if err != nil {
		return nil, err
	}
	if cols := patch.Columns(); len(cols) > 0 {
		err = r.DB.WithContext(ctx).Model(house).Updates(cols).Error
		if isUniqueViolation(err) {
			return nil, domain.ErrHouseExists
		}
		if err != nil {
			return nil, err
		}
	}
	return r.GetHouse(ctx, id)
}

func (r *HouseRepository) DeleteHouse(ctx context.Context, id uint) error {
	return deleted(r.DB.WithContext(ctx).Delete(&model.House{}, id))
}
